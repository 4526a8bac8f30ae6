package port

import (
	"context"
	"time"
)

// Event types published by the billing services.
const (
	EventContractSigned   = "contract.signed"
	EventInvoiceGenerated = "invoice.generated"
	EventInvoicePaid      = "invoice.paid"
)

// Event is a domain event. Key partitions events of one contract together.
type Event struct {
	Type       string
	Key        string
	Payload    any
	OccurredAt time.Time
}

// EventPublisher abstracts the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
