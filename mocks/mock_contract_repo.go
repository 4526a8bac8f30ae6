package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

// MockContractRepo is a mock implementation of port.ContractRepository.
// CreateChecked runs the supplied check against the blocking contracts set
// in Blocking before consulting the expectation.
type MockContractRepo struct {
	mock.Mock
	Blocking []domain.Contract
}

func (m *MockContractRepo) CreateChecked(ctx context.Context, contract *domain.Contract, check port.OverlapCheck) error {
	if err := check(m.Blocking); err != nil {
		return err
	}
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.Contract, int, error) {
	args := m.Called(ctx, customerID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Contract), args.Int(1), args.Error(2)
}

func (m *MockContractRepo) Update(ctx context.Context, contract *domain.Contract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockContractRepo) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]domain.Contract, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contract), args.Error(1)
}
