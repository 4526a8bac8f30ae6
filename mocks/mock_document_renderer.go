package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

// MockDocumentRenderer is a mock implementation of port.DocumentRenderer.
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) RenderInvoice(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract, customer *domain.Customer) (*port.RenderedDocument, error) {
	args := m.Called(ctx, invoice, contract, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RenderedDocument), args.Error(1)
}

func (m *MockDocumentRenderer) RenderContract(ctx context.Context, contract *domain.Contract, customer *domain.Customer) (*port.RenderedDocument, error) {
	args := m.Called(ctx, contract, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RenderedDocument), args.Error(1)
}
