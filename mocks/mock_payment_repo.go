package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockPaymentRepo is a mock implementation of port.PaymentRepository.
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Commit(ctx context.Context, payment *domain.Payment, contract *domain.Contract) error {
	args := m.Called(ctx, payment, contract)
	return args.Error(0)
}

func (m *MockPaymentRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Payment, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}
