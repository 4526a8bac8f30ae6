package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
	"chainfly/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Generate(ctx context.Context, contractID uuid.UUID, input *service.UsageInput) (*domain.Invoice, error) {
	args := m.Called(ctx, contractID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Pay(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, contractID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Get(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, contractID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Invoice, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockInvoiceService) Document(ctx context.Context, contractID, invoiceID uuid.UUID) (*service.InvoiceDocument, error) {
	args := m.Called(ctx, contractID, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceDocument), args.Error(1)
}
