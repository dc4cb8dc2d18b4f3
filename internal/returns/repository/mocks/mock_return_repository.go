package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/returns/domain"
)

type MockReturnRepository struct {
	mock.Mock
}

func (m *MockReturnRepository) Create(ctx context.Context, ret *domain.Return) error {
	args := m.Called(ctx, ret)
	if ret != nil && args.Error(0) == nil {
		ret.ID = "mock-return-id"
		if ret.Status == "" {
			ret.Status = domain.ReturnPending
		}
	}
	return args.Error(0)
}

func (m *MockReturnRepository) GetByID(ctx context.Context, id string) (*domain.Return, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*domain.Return), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReturnRepository) List(ctx context.Context) ([]domain.Return, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]domain.Return), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReturnRepository) UpdateStatus(ctx context.Context, id string, status domain.ReturnStatus, adminNotes string, processedDate *time.Time) error {
	args := m.Called(ctx, id, status, adminNotes, processedDate)
	return args.Error(0)
}

func (m *MockReturnRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
