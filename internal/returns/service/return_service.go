package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	orderdomain "github.com/cyclebazaar/cycle-bazaar-go/internal/order/domain"
	orderrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/order/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/repository"
)

var (
	ErrNotOrderOwner          = errors.New("order does not belong to this user")
	ErrOrderNotReturnable     = errors.New("only delivered orders can be returned")
	ErrReturnAlreadyRequested = errors.New("a return was already requested for this order")
	ErrReturnWindowClosed     = errors.New("the return window for this order has closed")
	ErrBankDetailsRequired    = errors.New("bank account number and IFSC code are required for bank transfer")
	ErrInvalidReturnStatus    = errors.New("return status transition not allowed")
)

type ReturnService interface {
	RequestReturn(ctx context.Context, userID string, req domain.RequestReturnRequest) (*domain.Return, error)
	ResolveReturn(ctx context.Context, returnID string, req domain.ResolveReturnRequest) (*domain.Return, error)
	List(ctx context.Context) ([]domain.Return, error)
}

type returnServiceImpl struct {
	returnRepo repository.ReturnRepository
	orderRepo  orderrepo.OrderRepository
}

func NewReturnService(rr repository.ReturnRepository, or orderrepo.OrderRepository) ReturnService {
	return &returnServiceImpl{returnRepo: rr, orderRepo: or}
}

// RequestReturn membuat permintaan retur untuk order Delivered milik requester,
// selama masih di dalam return window dan belum pernah ada retur sebelumnya.
// Order yang returnya ditolak TIDAK bisa diretur lagi: statusnya sudah bukan
// Delivered dan flag return_initiated tetap menyala.
func (s *returnServiceImpl) RequestReturn(ctx context.Context, userID string, req domain.RequestReturnRequest) (*domain.Return, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.Status != orderdomain.StatusDelivered {
		return nil, fmt.Errorf("%w: current status %s", ErrOrderNotReturnable, order.Status)
	}
	if order.ReturnInitiated {
		return nil, ErrReturnAlreadyRequested
	}
	if order.ReturnDeadline == nil || time.Now().After(*order.ReturnDeadline) {
		return nil, ErrReturnWindowClosed
	}
	if req.ReturnMethod == domain.MethodBankTransfer {
		if req.BankDetails == nil || req.BankDetails.AccountNumber == "" || req.BankDetails.IFSCCode == "" {
			return nil, ErrBankDetailsRequired
		}
	}

	ret := &domain.Return{
		OrderID:     req.OrderID,
		UserID:      userID,
		Reason:      req.Reason,
		Method:      req.ReturnMethod,
		BankDetails: req.BankDetails,
		Status:      domain.ReturnPending,
	}
	if err := s.returnRepo.Create(ctx, ret); err != nil {
		if errors.Is(err, repository.ErrReturnConflict) {
			return nil, ErrReturnAlreadyRequested
		}
		return nil, err
	}

	// CAS di kolom status + return_initiated: kalau ada request lain yang
	// menang duluan, insert kita di atas dibatalkan lagi.
	if err := s.orderRepo.MarkReturnRequested(ctx, req.OrderID, ret.ID, time.Now()); err != nil {
		if delErr := s.returnRepo.Delete(ctx, ret.ID); delErr != nil {
			logger.Error(fmt.Sprintf("RequestReturn: failed to clean up return %s after losing the race", ret.ID), delErr)
		}
		if errors.Is(err, orderrepo.ErrStaleOrderStatus) {
			return nil, ErrReturnAlreadyRequested
		}
		return nil, err
	}

	return ret, nil
}

// ResolveReturn (admin). Pending -> Approved|Rejected; Approved -> Refund
// Processed. Refund Processed hanya mencatat hasil: perpindahan dana terjadi
// di gateway atau transfer manual, di luar tanggung jawab operasi ini.
func (s *returnServiceImpl) ResolveReturn(ctx context.Context, returnID string, req domain.ResolveReturnRequest) (*domain.Return, error) {
	ret, err := s.returnRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, err
	}

	var processedDate *time.Time
	switch req.Status {
	case domain.ReturnApproved:
		if ret.Status != domain.ReturnPending {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidReturnStatus, ret.Status, req.Status)
		}
		err = s.orderRepo.SetReturnOutcome(ctx, ret.OrderID,
			orderdomain.StatusReturnRequested, orderdomain.StatusReturnApproved, false, time.Now())
	case domain.ReturnRejected:
		if ret.Status != domain.ReturnPending {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidReturnStatus, ret.Status, req.Status)
		}
		err = s.orderRepo.SetReturnOutcome(ctx, ret.OrderID,
			orderdomain.StatusReturnRequested, orderdomain.StatusReturnRejected, false, time.Now())
	case domain.ReturnRefundProcessed:
		if ret.Status != domain.ReturnApproved {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidReturnStatus, ret.Status, req.Status)
		}
		now := time.Now()
		processedDate = &now
		err = s.orderRepo.SetReturnOutcome(ctx, ret.OrderID,
			orderdomain.StatusReturnApproved, orderdomain.StatusRefundProcessed, true, now)
	default:
		return nil, fmt.Errorf("%w: unknown status %s", ErrInvalidReturnStatus, req.Status)
	}
	if err != nil {
		return nil, err
	}

	if err := s.returnRepo.UpdateStatus(ctx, returnID, req.Status, req.AdminNotes, processedDate); err != nil {
		return nil, err
	}

	ret.Status = req.Status
	ret.AdminNotes = req.AdminNotes
	ret.ProcessedDate = processedDate
	return ret, nil
}

func (s *returnServiceImpl) List(ctx context.Context) ([]domain.Return, error) {
	return s.returnRepo.List(ctx)
}
