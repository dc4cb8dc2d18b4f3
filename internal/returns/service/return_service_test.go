package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	orderdomain "github.com/cyclebazaar/cycle-bazaar-go/internal/order/domain"
	orderrepo "github.com/cyclebazaar/cycle-bazaar-go/internal/order/repository"
	orderMocks "github.com/cyclebazaar/cycle-bazaar-go/internal/order/repository/mocks"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/repository/mocks"
)

func deliveredOrder(deadline time.Time) *orderdomain.Order {
	deliveredAt := deadline.AddDate(0, 0, -7)
	return &orderdomain.Order{
		ID:             "o1",
		UserID:         "user1",
		Status:         orderdomain.StatusDelivered,
		IsDelivered:    true,
		DeliveredAt:    &deliveredAt,
		ReturnDeadline: &deadline,
	}
}

func TestReturnService_RequestReturn(t *testing.T) {
	ctx := context.TODO()
	baseReq := domain.RequestReturnRequest{
		OrderID:      "o1",
		Reason:       "frame arrived dented",
		ReturnMethod: domain.MethodStoreCredit,
	}

	t.Run("inside the window", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(deliveredOrder(time.Now().AddDate(0, 0, 3)), nil).Once()
		mockReturnRepo.On("Create", ctx, mock.AnythingOfType("*domain.Return")).Return(nil).Once()
		mockOrderRepo.On("MarkReturnRequested", ctx, "o1", "mock-return-id", mock.AnythingOfType("time.Time")).Return(nil).Once()

		ret, err := svc.RequestReturn(ctx, "user1", baseReq)

		assert.NoError(t, err)
		assert.Equal(t, domain.ReturnPending, ret.Status)
		assert.Equal(t, "o1", ret.OrderID)
		mockReturnRepo.AssertExpectations(t)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("window closed", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(deliveredOrder(time.Now().AddDate(0, 0, -1)), nil).Once()

		ret, err := svc.RequestReturn(ctx, "user1", baseReq)

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrReturnWindowClosed)
		mockReturnRepo.AssertNotCalled(t, "Create")
	})

	t.Run("second return on the same order", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		already := deliveredOrder(time.Now().AddDate(0, 0, 3))
		already.ReturnInitiated = true
		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(already, nil).Once()

		ret, err := svc.RequestReturn(ctx, "user1", baseReq)

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrReturnAlreadyRequested)
		mockReturnRepo.AssertNotCalled(t, "Create")
	})

	t.Run("rejected return is terminal, no re-return", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		rejected := deliveredOrder(time.Now().AddDate(0, 0, 3))
		rejected.Status = orderdomain.StatusReturnRejected
		rejected.ReturnInitiated = true
		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(rejected, nil).Once()

		ret, err := svc.RequestReturn(ctx, "user1", baseReq)

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrOrderNotReturnable)
	})

	t.Run("not the owner", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(deliveredOrder(time.Now().AddDate(0, 0, 3)), nil).Once()

		ret, err := svc.RequestReturn(ctx, "someone-else", baseReq)

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrNotOrderOwner)
	})

	t.Run("undelivered order", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		shipped := &orderdomain.Order{ID: "o1", UserID: "user1", Status: orderdomain.StatusShipped}
		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(shipped, nil).Once()

		ret, err := svc.RequestReturn(ctx, "user1", baseReq)

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrOrderNotReturnable)
	})

	t.Run("bank transfer requires bank details", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(deliveredOrder(time.Now().AddDate(0, 0, 3)), nil).Once()

		req := baseReq
		req.ReturnMethod = domain.MethodBankTransfer
		req.BankDetails = &domain.BankDetails{AccountNumber: "123456", IFSCCode: ""}

		ret, err := svc.RequestReturn(ctx, "user1", req)

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrBankDetailsRequired)
	})

	t.Run("losing the order CAS race cleans up the created return", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockOrderRepo.On("GetOrderByID", ctx, "o1").Return(deliveredOrder(time.Now().AddDate(0, 0, 3)), nil).Once()
		mockReturnRepo.On("Create", ctx, mock.AnythingOfType("*domain.Return")).Return(nil).Once()
		mockOrderRepo.On("MarkReturnRequested", ctx, "o1", "mock-return-id", mock.AnythingOfType("time.Time")).
			Return(orderrepo.ErrStaleOrderStatus).Once()
		mockReturnRepo.On("Delete", ctx, "mock-return-id").Return(nil).Once()

		ret, err := svc.RequestReturn(ctx, "user1", baseReq)

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrReturnAlreadyRequested)
		mockReturnRepo.AssertExpectations(t)
	})
}

func TestReturnService_ResolveReturn(t *testing.T) {
	ctx := context.TODO()
	pendingReturn := func() *domain.Return {
		return &domain.Return{ID: "r1", OrderID: "o1", UserID: "user1", Status: domain.ReturnPending}
	}

	t.Run("approve", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockReturnRepo.On("GetByID", ctx, "r1").Return(pendingReturn(), nil).Once()
		mockOrderRepo.On("SetReturnOutcome", ctx, "o1", orderdomain.StatusReturnRequested, orderdomain.StatusReturnApproved, false, mock.AnythingOfType("time.Time")).Return(nil).Once()
		mockReturnRepo.On("UpdateStatus", ctx, "r1", domain.ReturnApproved, "inspection passed", (*time.Time)(nil)).Return(nil).Once()

		ret, err := svc.ResolveReturn(ctx, "r1", domain.ResolveReturnRequest{Status: domain.ReturnApproved, AdminNotes: "inspection passed"})

		assert.NoError(t, err)
		assert.Equal(t, domain.ReturnApproved, ret.Status)
		mockOrderRepo.AssertExpectations(t)
		mockReturnRepo.AssertExpectations(t)
	})

	t.Run("reject", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockReturnRepo.On("GetByID", ctx, "r1").Return(pendingReturn(), nil).Once()
		mockOrderRepo.On("SetReturnOutcome", ctx, "o1", orderdomain.StatusReturnRequested, orderdomain.StatusReturnRejected, false, mock.AnythingOfType("time.Time")).Return(nil).Once()
		mockReturnRepo.On("UpdateStatus", ctx, "r1", domain.ReturnRejected, "wear and tear, not a defect", (*time.Time)(nil)).Return(nil).Once()

		ret, err := svc.ResolveReturn(ctx, "r1", domain.ResolveReturnRequest{Status: domain.ReturnRejected, AdminNotes: "wear and tear, not a defect"})

		assert.NoError(t, err)
		assert.Equal(t, domain.ReturnRejected, ret.Status)
	})

	t.Run("refund processed only from approved", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		mockReturnRepo.On("GetByID", ctx, "r1").Return(pendingReturn(), nil).Once()

		ret, err := svc.ResolveReturn(ctx, "r1", domain.ResolveReturnRequest{Status: domain.ReturnRefundProcessed})

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrInvalidReturnStatus)
		mockOrderRepo.AssertNotCalled(t, "SetReturnOutcome")
	})

	t.Run("refund processed records the processed date", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		approved := &domain.Return{ID: "r1", OrderID: "o1", UserID: "user1", Status: domain.ReturnApproved}
		mockReturnRepo.On("GetByID", ctx, "r1").Return(approved, nil).Once()
		mockOrderRepo.On("SetReturnOutcome", ctx, "o1", orderdomain.StatusReturnApproved, orderdomain.StatusRefundProcessed, true, mock.AnythingOfType("time.Time")).Return(nil).Once()
		mockReturnRepo.On("UpdateStatus", ctx, "r1", domain.ReturnRefundProcessed, "", mock.AnythingOfType("*time.Time")).Return(nil).Once()

		ret, err := svc.ResolveReturn(ctx, "r1", domain.ResolveReturnRequest{Status: domain.ReturnRefundProcessed})

		assert.NoError(t, err)
		assert.Equal(t, domain.ReturnRefundProcessed, ret.Status)
		assert.NotNil(t, ret.ProcessedDate)
	})

	t.Run("double resolve rejected", func(t *testing.T) {
		mockReturnRepo := new(mocks.MockReturnRepository)
		mockOrderRepo := new(orderMocks.MockOrderRepository)
		svc := NewReturnService(mockReturnRepo, mockOrderRepo)

		rejected := &domain.Return{ID: "r1", OrderID: "o1", UserID: "user1", Status: domain.ReturnRejected}
		mockReturnRepo.On("GetByID", ctx, "r1").Return(rejected, nil).Once()

		ret, err := svc.ResolveReturn(ctx, "r1", domain.ResolveReturnRequest{Status: domain.ReturnApproved})

		assert.Nil(t, ret)
		assert.ErrorIs(t, err, ErrInvalidReturnStatus)
	})
}
