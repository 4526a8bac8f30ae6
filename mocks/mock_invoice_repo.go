package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockInvoiceRepo is a mock implementation of port.InvoiceRepository.
type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Commit(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract) error {
	args := m.Called(ctx, invoice, contract)
	return args.Error(0)
}

func (m *MockInvoiceRepo) MarkPaid(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract) error {
	args := m.Called(ctx, invoice, contract)
	return args.Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, contractID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) GetByPeriod(ctx context.Context, contractID uuid.UUID, period string) (*domain.Invoice, error) {
	args := m.Called(ctx, contractID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Invoice, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}
