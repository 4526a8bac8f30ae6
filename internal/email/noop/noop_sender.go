package noop

import (
	"context"

	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

type noopSender struct {
	log *zap.Logger
}

// NewNoopSender creates an EmailSender that only logs what it would send.
func NewNoopSender(log *zap.Logger) port.EmailSender {
	return &noopSender{log: log}
}

func (s *noopSender) SendInvoiceNotification(_ context.Context, toEmail, toName string, inv *domain.Invoice) error {
	s.log.Info("noop email: invoice notification",
		zap.String("to", toEmail),
		zap.String("name", toName),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("billing_period", inv.BillingPeriod),
		zap.Float64("total_amount", inv.TotalAmount),
	)
	return nil
}
