package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chainfly/internal/billing"
	"chainfly/internal/domain"
	"chainfly/internal/port"
	"chainfly/internal/tariff"
)

// InvoiceConfig holds invoice document settings.
type InvoiceConfig struct {
	DocumentBucket     string
	PresignExpirySecs  int64
	NotifyOnGeneration bool
}

// InvoiceDocument is a stored invoice document and a time-limited link to it.
type InvoiceDocument struct {
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// InvoiceService defines invoice generation, payment and retrieval.
type InvoiceService interface {
	Generate(ctx context.Context, contractID uuid.UUID, input *UsageInput) (*domain.Invoice, error)
	Pay(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error)
	Get(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Invoice, error)
	Document(ctx context.Context, contractID, invoiceID uuid.UUID) (*InvoiceDocument, error)
}

type invoiceService struct {
	invoiceRepo  port.InvoiceRepository
	contractRepo port.ContractRepository
	customerRepo port.CustomerRepository
	tariffSvc    TariffService
	renderer     port.DocumentRenderer
	storage      port.ObjectStorage
	email        port.EmailSender
	publisher    port.EventPublisher
	cfg          InvoiceConfig
	log          *zap.Logger
	now          func() time.Time
}

// InvoiceDeps groups the collaborators of the invoice service.
type InvoiceDeps struct {
	InvoiceRepo  port.InvoiceRepository
	ContractRepo port.ContractRepository
	CustomerRepo port.CustomerRepository
	TariffSvc    TariffService
	Renderer     port.DocumentRenderer
	Storage      port.ObjectStorage
	Email        port.EmailSender
	Publisher    port.EventPublisher
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(deps InvoiceDeps, cfg InvoiceConfig, log *zap.Logger, now func() time.Time) InvoiceService {
	return &invoiceService{
		invoiceRepo:  deps.InvoiceRepo,
		contractRepo: deps.ContractRepo,
		customerRepo: deps.CustomerRepo,
		tariffSvc:    deps.TariffSvc,
		renderer:     deps.Renderer,
		storage:      deps.Storage,
		email:        deps.Email,
		publisher:    deps.Publisher,
		cfg:          cfg,
		log:          log,
		now:          now,
	}
}

func (s *invoiceService) Generate(ctx context.Context, contractID uuid.UUID, input *UsageInput) (*domain.Invoice, error) {
	now := s.now()
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	reading := input.reading(contract.ID, now)

	existing, err := s.invoiceRepo.ListByContract(ctx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("loading invoices: %w", err)
	}

	var resolution *domain.TariffResolution
	if contract.TariffMode == domain.TariffModeDynamic && billing.EffectiveStatus(contract, now) == domain.ContractStatusActive {
		if contract.DynamicTariff == nil {
			return nil, domain.NewValidationError("dynamic_tariff", "contract %s has no tariff lookup keys", contract.ID)
		}
		if _, err := billing.OpenPeriod(contract, reading.ReadingDate, existing); err != nil {
			return nil, err
		}
		dt := contract.DynamicTariff
		resolution, err = s.tariffSvc.Resolve(ctx, domain.TariffRequest{
			DiscomID:     dt.DiscomID,
			State:        dt.State,
			Category:     dt.Category,
			CustomerType: dt.CustomerType,
			Consumption:  tariff.BillableQuantity(reading),
			ContractDate: reading.ReadingDate,
			IncludeSlabs: dt.IncludeSlabs,
			IncludeTOU:   dt.IncludeTOU,
		})
		if err != nil {
			return nil, err
		}
	}

	result, err := billing.GenerateInvoice(billing.InvoiceInput{
		InvoiceID:  uuid.New(),
		Contract:   contract,
		Reading:    reading,
		Existing:   existing,
		Resolution: resolution,
		Now:        now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Commit(ctx, result.Invoice, result.Contract); err != nil {
		if errors.Is(err, domain.ErrDuplicateBillingPeriod) || errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, err
		}
		return nil, fmt.Errorf("committing invoice: %w", err)
	}

	inv := result.Invoice
	s.log.Info("invoice generated",
		zap.String("contract_id", contract.ID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("billing_period", inv.BillingPeriod),
		zap.String("tariff_source", string(inv.TariffSource)),
		zap.Float64("total_amount", inv.TotalAmount),
	)
	publish(ctx, s.publisher, s.log, port.Event{
		Type:       port.EventInvoiceGenerated,
		Key:        contract.ID.String(),
		Payload:    inv,
		OccurredAt: now,
	})
	if s.cfg.NotifyOnGeneration {
		s.notify(ctx, contract.CustomerID, inv)
	}
	return inv, nil
}

// notify emails the customer. Delivery problems never fail invoicing.
func (s *invoiceService) notify(ctx context.Context, customerID uuid.UUID, inv *domain.Invoice) {
	if s.email == nil {
		return
	}
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		s.log.Warn("invoice notification skipped", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		return
	}
	if err := s.email.SendInvoiceNotification(ctx, customer.Email, customer.Name, inv); err != nil {
		s.log.Warn("invoice notification failed", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
	}
}

func (s *invoiceService) Pay(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	inv, err := s.invoiceRepo.GetByID(ctx, contractID, invoiceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	next, paid, changed := billing.PayInvoice(contract, inv, now)
	if !changed {
		return inv, nil
	}
	if err := s.invoiceRepo.MarkPaid(ctx, paid, next); err != nil {
		return nil, fmt.Errorf("marking invoice paid: %w", err)
	}

	s.log.Info("invoice paid",
		zap.String("contract_id", contractID.String()),
		zap.String("invoice_id", invoiceID.String()),
	)
	publish(ctx, s.publisher, s.log, port.Event{
		Type:       port.EventInvoicePaid,
		Key:        contractID.String(),
		Payload:    paid,
		OccurredAt: now,
	})
	return paid, nil
}

func (s *invoiceService) Get(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(ctx, contractID, invoiceID)
}

func (s *invoiceService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Invoice, error) {
	if _, err := s.contractRepo.GetByID(ctx, contractID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListByContract(ctx, contractID)
}

func (s *invoiceService) Document(ctx context.Context, contractID, invoiceID uuid.UUID) (*InvoiceDocument, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, contractID, invoiceID)
	if err != nil {
		return nil, err
	}
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, contract.CustomerID)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.RenderInvoice(ctx, inv, contract, customer)
	if err != nil {
		return nil, fmt.Errorf("rendering invoice: %w", err)
	}

	key := fmt.Sprintf("invoices/%s/%s/%s%s", contractID, inv.BillingPeriod, invoiceID, doc.Extension)
	if _, err := s.storage.Upload(ctx, port.DocumentUpload{
		Bucket:      s.cfg.DocumentBucket,
		Key:         key,
		Body:        bytes.NewReader(doc.Body),
		ContentType: doc.ContentType,
		Size:        int64(len(doc.Body)),
		Filename:    fmt.Sprintf("invoice_%s%s", inv.BillingPeriod, doc.Extension),
		Metadata: map[string]string{
			"contract-id":    contractID.String(),
			"invoice-id":     invoiceID.String(),
			"billing-period": inv.BillingPeriod,
		},
	}); err != nil {
		return nil, fmt.Errorf("uploading invoice document: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.DocumentBucket, key, s.cfg.PresignExpirySecs)
	if err != nil {
		return nil, fmt.Errorf("presigning invoice document: %w", err)
	}
	return &InvoiceDocument{
		InvoiceID:   invoiceID,
		Key:         key,
		ContentType: doc.ContentType,
		URL:         url,
		ExpiresAt:   s.now().Add(time.Duration(s.cfg.PresignExpirySecs) * time.Second),
	}, nil
}
