package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"chainfly/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendInvoiceNotification(ctx context.Context, toEmail, toName string, invoice *domain.Invoice) error {
	args := m.Called(ctx, toEmail, toName, invoice)
	return args.Error(0)
}
