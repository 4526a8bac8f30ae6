package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
	"chainfly/internal/service"
)

// MockPaymentService is a mock implementation of service.PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) BuildSchedule(ctx context.Context, contractID uuid.UUID) (*domain.PaymentSchedule, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentSchedule), args.Error(1)
}

func (m *MockPaymentService) RecordOpexPayment(ctx context.Context, contractID uuid.UUID, input *service.OpexPaymentInput) (*domain.Payment, error) {
	args := m.Called(ctx, contractID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}
