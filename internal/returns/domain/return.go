package domain

import (
	"time"
)

type ReturnStatus string

const (
	ReturnPending         ReturnStatus = "Pending"
	ReturnApproved        ReturnStatus = "Approved"
	ReturnRejected        ReturnStatus = "Rejected"
	ReturnRefundProcessed ReturnStatus = "Refund Processed"
)

type ReturnMethod string

const (
	MethodOriginalPayment ReturnMethod = "Refund to Original Payment Method"
	MethodStoreCredit     ReturnMethod = "Store Credit"
	MethodBankTransfer    ReturnMethod = "Bank Transfer"
)

type BankDetails struct {
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
}

// Return adalah permintaan pengembalian pasca-delivery, 1:1 dengan order.
type Return struct {
	ID            string       `json:"id"`
	OrderID       string       `json:"order_id"`
	UserID        string       `json:"user_id"`
	Reason        string       `json:"reason"`
	Method        ReturnMethod `json:"return_method"`
	BankDetails   *BankDetails `json:"bank_details,omitempty"`
	Status        ReturnStatus `json:"return_status"`
	AdminNotes    string       `json:"admin_notes,omitempty"`
	ProcessedDate *time.Time   `json:"return_processed_date,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type RequestReturnRequest struct {
	OrderID      string       `json:"orderId" binding:"required"`
	Reason       string       `json:"reason" binding:"required"`
	ReturnMethod ReturnMethod `json:"returnMethod" binding:"required"`
	BankDetails  *BankDetails `json:"bankDetails"`
}

type ResolveReturnRequest struct {
	Status     ReturnStatus `json:"status" binding:"required"`
	AdminNotes string       `json:"adminNotes"`
}
