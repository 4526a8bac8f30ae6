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
)

// ContractConfig holds contract creation and document settings.
type ContractConfig struct {
	DefaultTimezone   string
	Limits            billing.Limits
	DocumentBucket    string
	PresignExpirySecs int64
}

// ContractDocument is a stored contract document and a time-limited link to it.
type ContractDocument struct {
	ContractID  uuid.UUID `json:"contract_id"`
	Key         string    `json:"key"`
	ContentType string    `json:"content_type"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ContractService defines the contract lifecycle operations.
type ContractService interface {
	Create(ctx context.Context, terms *billing.Terms) (*domain.Contract, error)
	Sign(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	Terminate(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.Contract, int, error)
	SweepExpired(ctx context.Context, limit int) (int, error)
	Document(ctx context.Context, id uuid.UUID) (*ContractDocument, error)
}

type contractService struct {
	contractRepo port.ContractRepository
	customerRepo port.CustomerRepository
	publisher    port.EventPublisher
	renderer     port.DocumentRenderer
	storage      port.ObjectStorage
	cfg          ContractConfig
	log          *zap.Logger
	now          func() time.Time
}

// ContractDeps groups the collaborators of the contract service.
type ContractDeps struct {
	ContractRepo port.ContractRepository
	CustomerRepo port.CustomerRepository
	Publisher    port.EventPublisher
	Renderer     port.DocumentRenderer
	Storage      port.ObjectStorage
}

// NewContractService creates a new ContractService implementation.
func NewContractService(deps ContractDeps, cfg ContractConfig, log *zap.Logger, now func() time.Time) ContractService {
	return &contractService{
		contractRepo: deps.ContractRepo,
		customerRepo: deps.CustomerRepo,
		publisher:    deps.Publisher,
		renderer:     deps.Renderer,
		storage:      deps.Storage,
		cfg:          cfg,
		log:          log,
		now:          now,
	}
}

func (s *contractService) Create(ctx context.Context, terms *billing.Terms) (*domain.Contract, error) {
	now := s.now()
	customer, err := s.customerRepo.GetByID(ctx, terms.CustomerID)
	if err != nil {
		return nil, err
	}
	if err := billing.ValidateTerms(terms, now, s.cfg.Limits); err != nil {
		return nil, err
	}

	contract := billing.NewContract(uuid.New(), terms, s.cfg.DefaultTimezone, now)
	if contract.SiteState == "" {
		contract.SiteState = customer.State
	}

	err = s.contractRepo.CreateChecked(ctx, contract, func(blocking []domain.Contract) error {
		return billing.CheckOverlap(contract, blocking, now)
	})
	if err != nil {
		var overlap *domain.OverlapError
		if errors.As(err, &overlap) {
			s.log.Info("contract rejected: overlapping window",
				zap.String("customer_id", customer.ID.String()),
				zap.String("conflicting_contract_id", overlap.ConflictingContractID.String()),
			)
			return nil, err
		}
		return nil, fmt.Errorf("creating contract: %w", err)
	}

	s.log.Info("contract created",
		zap.String("contract_id", contract.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("status", string(contract.Status)),
	)
	return contract, nil
}

func (s *contractService) Get(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	contract.Status = billing.EffectiveStatus(contract, s.now())
	return contract, nil
}

func (s *contractService) ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.Contract, int, error) {
	contracts, total, err := s.contractRepo.ListByCustomer(ctx, customerID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	for i := range contracts {
		contracts[i].Status = billing.EffectiveStatus(&contracts[i], now)
	}
	return contracts, total, nil
}

func (s *contractService) Sign(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	signed, err := billing.Sign(contract, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.contractRepo.Update(ctx, signed); err != nil {
		return nil, fmt.Errorf("signing contract: %w", err)
	}

	publish(ctx, s.publisher, s.log, port.Event{
		Type:       port.EventContractSigned,
		Key:        signed.ID.String(),
		Payload:    signed,
		OccurredAt: *signed.SignedAt,
	})
	s.log.Info("contract signed", zap.String("contract_id", signed.ID.String()))
	return signed, nil
}

func (s *contractService) Terminate(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	terminated, err := billing.Terminate(contract, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.contractRepo.Update(ctx, terminated); err != nil {
		return nil, fmt.Errorf("terminating contract: %w", err)
	}
	s.log.Info("contract terminated", zap.String("contract_id", terminated.ID.String()))
	return terminated, nil
}

// SweepExpired persists the expired status of contracts whose end date has
// passed. Contracts modified concurrently are left for the next sweep.
func (s *contractService) SweepExpired(ctx context.Context, limit int) (int, error) {
	now := s.now()
	due, err := s.contractRepo.ListExpirable(ctx, now, limit)
	if err != nil {
		return 0, fmt.Errorf("listing expirable contracts: %w", err)
	}

	expired := 0
	for i := range due {
		next, changed := billing.Expire(&due[i], now)
		if !changed {
			continue
		}
		if err := s.contractRepo.Update(ctx, next); err != nil {
			if errors.Is(err, domain.ErrConcurrentUpdate) {
				s.log.Info("expiry skipped, contract changed", zap.String("contract_id", next.ID.String()))
				continue
			}
			return expired, fmt.Errorf("expiring contract %s: %w", next.ID, err)
		}
		expired++
	}
	return expired, nil
}

// Document renders the agreement, stores it and returns a presigned link.
func (s *contractService) Document(ctx context.Context, id uuid.UUID) (*ContractDocument, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	customer, err := s.customerRepo.GetByID(ctx, contract.CustomerID)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.RenderContract(ctx, contract, customer)
	if err != nil {
		return nil, fmt.Errorf("rendering contract: %w", err)
	}

	key := fmt.Sprintf("contracts/%s/v%d/agreement%s", contract.ID, contract.Version, doc.Extension)
	if _, err := s.storage.Upload(ctx, port.DocumentUpload{
		Bucket:      s.cfg.DocumentBucket,
		Key:         key,
		Body:        bytes.NewReader(doc.Body),
		ContentType: doc.ContentType,
		Size:        int64(len(doc.Body)),
		Filename:    fmt.Sprintf("ppa_%s%s", contract.ID, doc.Extension),
		Metadata: map[string]string{
			"contract-id": contract.ID.String(),
			"customer-id": contract.CustomerID.String(),
			"status":      string(contract.Status),
		},
	}); err != nil {
		return nil, fmt.Errorf("uploading contract document: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.DocumentBucket, key, s.cfg.PresignExpirySecs)
	if err != nil {
		return nil, fmt.Errorf("presigning contract document: %w", err)
	}
	return &ContractDocument{
		ContractID:  contract.ID,
		Key:         key,
		ContentType: doc.ContentType,
		URL:         url,
		ExpiresAt:   s.now().Add(time.Duration(s.cfg.PresignExpirySecs) * time.Second),
	}, nil
}

// publish sends an event after a committed write. Failures are only logged.
func publish(ctx context.Context, publisher port.EventPublisher, log *zap.Logger, event port.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		log.Warn("event publish failed", zap.String("type", event.Type), zap.String("key", event.Key), zap.Error(err))
	}
}
