package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/order/domain"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) CreateOrderWithItems(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	args := m.Called(ctx, order, items)
	if order != nil && args.Error(0) == nil {
		order.ID = "mock-order-id"
		if order.Status == "" {
			order.Status = domain.StatusProcessing
		}
		order.Items = items
	}
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	args := m.Called(ctx, userID, key)
	if o := args.Get(0); o != nil {
		return o.(*domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListOrdersByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if o := args.Get(0); o != nil {
		return o.([]domain.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) TransitionStatus(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	args := m.Called(ctx, orderID, from, to)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, orderID string, paidAt time.Time, result domain.PaymentResult) error {
	args := m.Called(ctx, orderID, paidAt, result)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkDelivered(ctx context.Context, orderID string, from domain.OrderStatus, deliveredAt, returnDeadline time.Time) error {
	args := m.Called(ctx, orderID, from, deliveredAt, returnDeadline)
	return args.Error(0)
}

func (m *MockOrderRepository) RequestCancellation(ctx context.Context, orderID string, details domain.CancellationDetails) error {
	args := m.Called(ctx, orderID, details)
	return args.Error(0)
}

func (m *MockOrderRepository) ResolveCancellation(ctx context.Context, orderID string, to domain.OrderStatus, cancellationStatus domain.CancellationStatus) error {
	args := m.Called(ctx, orderID, to, cancellationStatus)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkRefunded(ctx context.Context, orderID string, refundedAt time.Time) error {
	args := m.Called(ctx, orderID, refundedAt)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkReturnRequested(ctx context.Context, orderID, returnID string, requestedAt time.Time) error {
	args := m.Called(ctx, orderID, returnID, requestedAt)
	return args.Error(0)
}

func (m *MockOrderRepository) SetReturnOutcome(ctx context.Context, orderID string, from, to domain.OrderStatus, refunded bool, at time.Time) error {
	args := m.Called(ctx, orderID, from, to, refunded, at)
	return args.Error(0)
}
