package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chainfly/internal/domain"
)

// CustomerRepository defines the contract for customer persistence.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error)
}

// OverlapCheck inspects a customer's draft and active contracts and rejects
// the pending insert by returning an error.
type OverlapCheck func(blocking []domain.Contract) error

// ContractRepository defines the contract for contract persistence.
// Update is an optimistic write keyed on Contract.Version and returns
// domain.ErrConcurrentUpdate when the stored version has moved on.
type ContractRepository interface {
	// CreateChecked serializes creates per customer, runs check against the
	// customer's draft/active contracts and inserts only if check passes.
	CreateChecked(ctx context.Context, contract *domain.Contract, check OverlapCheck) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.Contract, int, error)
	Update(ctx context.Context, contract *domain.Contract) error
	ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]domain.Contract, error)
}

// InvoiceRepository defines the contract for invoice persistence.
// Commit and MarkPaid write the invoice and the contract's running totals in
// one transaction.
type InvoiceRepository interface {
	Commit(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract) error
	MarkPaid(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract) error
	GetByID(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error)
	GetByPeriod(ctx context.Context, contractID uuid.UUID, period string) (*domain.Invoice, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Invoice, error)
}

// UsageRepository defines the contract for meter reading persistence.
type UsageRepository interface {
	Create(ctx context.Context, reading *domain.UsageReading) error
	ListByContract(ctx context.Context, contractID uuid.UUID, offset, limit int) ([]domain.UsageReading, int, error)
}

// PaymentRepository defines the contract for OPEX payment persistence.
type PaymentRepository interface {
	Commit(ctx context.Context, payment *domain.Payment, contract *domain.Contract) error
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Payment, error)
}

// DiscomRepository defines the contract for discom lookups.
type DiscomRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Discom, error)
	MarkUpdated(ctx context.Context, id uuid.UUID, at time.Time) error
}

// TariffLookup selects a stored tariff structure.
type TariffLookup struct {
	DiscomID     uuid.UUID
	Category     string
	CustomerType string
	Source       domain.TariffSource
	Date         time.Time
}

// TariffStructureRepository defines the contract for stored tariffs
// (regulatory orders and manual overrides).
type TariffStructureRepository interface {
	Create(ctx context.Context, structure *domain.TariffStructure) error
	FindCovering(ctx context.Context, lookup TariffLookup) (*domain.TariffStructure, error)
}

// SubsidyRepository defines the contract for subsidy scheme lookups.
type SubsidyRepository interface {
	ListActive(ctx context.Context, state string, date time.Time) ([]domain.SubsidyScheme, error)
}
