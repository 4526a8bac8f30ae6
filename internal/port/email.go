package port

import (
	"context"

	"chainfly/internal/domain"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendInvoiceNotification(ctx context.Context, toEmail, toName string, invoice *domain.Invoice) error
}
