package port

import (
	"context"

	"chainfly/internal/domain"
)

// RenderedDocument is a finalized invoice or contract document ready for storage.
type RenderedDocument struct {
	Body        []byte
	ContentType string
	Extension   string
}

// DocumentRenderer turns finalized invoices and contracts into customer-facing
// documents.
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract, customer *domain.Customer) (*RenderedDocument, error)
	RenderContract(ctx context.Context, contract *domain.Contract, customer *domain.Customer) (*RenderedDocument, error)
}
