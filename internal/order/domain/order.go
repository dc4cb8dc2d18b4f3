package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusProcessing            OrderStatus = "Processing"
	StatusShipped               OrderStatus = "Shipped"
	StatusOutForDelivery        OrderStatus = "Out for Delivery"
	StatusDelivered             OrderStatus = "Delivered"
	StatusCancellationRequested OrderStatus = "Cancellation Requested"
	StatusCancelled             OrderStatus = "Cancelled"
	StatusReturnRequested       OrderStatus = "Return Requested"
	StatusReturnApproved        OrderStatus = "Return Approved"
	StatusReturnRejected        OrderStatus = "Return Rejected"
	StatusRefundProcessed       OrderStatus = "Refund Processed"
)

type PaymentMethod string

const (
	PaymentGateway        PaymentMethod = "gateway"
	PaymentCashOnDelivery PaymentMethod = "cod"
)

type CancellationStatus string

const (
	CancellationPending  CancellationStatus = "Pending"
	CancellationApproved CancellationStatus = "Approved"
	CancellationRejected CancellationStatus = "Rejected"
)

// transitions adalah diagram status order. Status yang tidak punya entry
// (Cancelled, Return Rejected, Refund Processed) bersifat terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusProcessing:            {StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCancellationRequested, StatusCancelled},
	StatusShipped:               {StatusOutForDelivery, StatusDelivered},
	StatusOutForDelivery:        {StatusDelivered},
	StatusDelivered:             {StatusReturnRequested},
	StatusCancellationRequested: {StatusCancelled, StatusProcessing},
	StatusReturnRequested:       {StatusReturnApproved, StatusReturnRejected},
	StatusReturnApproved:        {StatusRefundProcessed},
}

func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Order struct {
	ID     string      `json:"id"`
	UserID string      `json:"user_id"`
	Status OrderStatus `json:"status"`
	Items  []OrderItem `json:"items,omitempty"`

	ShippingAddress Address       `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`

	// Harga dibekukan saat order dibuat (snapshot, bukan referensi katalog)
	ItemsPrice     decimal.Decimal `json:"items_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxPrice       decimal.Decimal `json:"tax_price"`
	ShippingPrice  decimal.Decimal `json:"shipping_price"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	CouponApplied  string          `json:"coupon_applied,omitempty"` // Label denormalisasi untuk tampilan

	IsPaid        bool           `json:"is_paid"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	PaymentResult *PaymentResult `json:"payment_result,omitempty"`

	IsDelivered    bool       `json:"is_delivered"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
	ReturnDeadline *time.Time `json:"return_deadline,omitempty"`

	IsRefunded bool       `json:"is_refunded"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`

	Cancellation *CancellationDetails `json:"cancellation_details,omitempty"`

	ReturnInitiated   bool       `json:"return_initiated"`
	ReturnRequestDate *time.Time `json:"return_request_date,omitempty"`
	ReturnID          *string    `json:"return_id,omitempty"`

	IdempotencyKey *string   `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"-"`
	ProductID string          `json:"product_id"`
	VariantID *string         `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"` // Harga efektif saat pembelian
	Quantity  int             `json:"quantity"`
}

type PaymentResult struct {
	ID     string `json:"id"` // Correlation id dari payment gateway
	Status string `json:"status"`
}

type CancellationDetails struct {
	Reason      string             `json:"reason"`
	Status      CancellationStatus `json:"status"`
	RequestedAt time.Time          `json:"requested_at"`
}

type Address struct {
	FullName   string `json:"full_name" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

type CreateOrderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	VariantID *string `json:"variant_id"`
	Quantity  int     `json:"quantity" binding:"required,gt=0"`
	// Harga tidak diterima dari client: selalu di-resolve ulang dari katalog
}

type CreateOrderRequest struct {
	Items           []CreateOrderItemRequest `json:"items" binding:"required,dive"`
	ShippingAddress Address                  `json:"shipping_address" binding:"required"`
	PaymentMethod   PaymentMethod            `json:"payment_method" binding:"required,oneof=gateway cod"`
	CouponCode      *string                  `json:"coupon_code"`
}

type MarkPaidRequest struct {
	PaymentID     string `json:"payment_id" binding:"required"`
	PaymentStatus string `json:"payment_status" binding:"required"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type RequestCancellationRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ManageCancellationRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject"`
}
