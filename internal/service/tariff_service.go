package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/port"
	"chainfly/internal/tariff"
)

// OverrideInput is the DTO for recording a manual tariff override.
type OverrideInput struct {
	DiscomID     uuid.UUID        `json:"discom_id" binding:"required"`
	Category     string           `json:"category" binding:"required"`
	CustomerType string           `json:"customer_type" binding:"required"`
	BaseRate     float64          `json:"base_rate" binding:"required,gt=0"`
	ValidFrom    time.Time        `json:"valid_from" binding:"required"`
	ValidTo      *time.Time       `json:"valid_to"`
	Slabs        []domain.Slab    `json:"slabs"`
	TOURates     []domain.TOURate `json:"tou_rates"`
	Reference    string           `json:"reference"`
}

// TariffService exposes the dynamic tariff waterfall.
type TariffService interface {
	Resolve(ctx context.Context, req domain.TariffRequest) (*domain.TariffResolution, error)
	RecordOverride(ctx context.Context, input *OverrideInput) (*domain.TariffStructure, error)
}

// TariffResolver is satisfied by *tariff.Resolver.
type TariffResolver interface {
	Resolve(ctx context.Context, req domain.TariffRequest) (*domain.TariffResolution, error)
}

type tariffService struct {
	resolver      TariffResolver
	structureRepo port.TariffStructureRepository
	log           *zap.Logger
	now           func() time.Time
}

// NewTariffService creates a new TariffService implementation.
func NewTariffService(resolver TariffResolver, structureRepo port.TariffStructureRepository, log *zap.Logger, now func() time.Time) TariffService {
	return &tariffService{resolver: resolver, structureRepo: structureRepo, log: log, now: now}
}

func (s *tariffService) Resolve(ctx context.Context, req domain.TariffRequest) (*domain.TariffResolution, error) {
	if req.ContractDate.IsZero() {
		req.ContractDate = s.now()
	}
	return s.resolver.Resolve(ctx, req)
}

func (s *tariffService) RecordOverride(ctx context.Context, input *OverrideInput) (*domain.TariffStructure, error) {
	if input.ValidTo != nil && !input.ValidTo.After(input.ValidFrom) {
		return nil, domain.NewValidationError("valid_to", "must be after valid_from")
	}
	if err := tariff.ValidateSlabs(input.Slabs); err != nil {
		return nil, err
	}
	if err := tariff.ValidateTOU(input.TOURates); err != nil {
		return nil, err
	}

	structure := &domain.TariffStructure{
		ID:           uuid.New(),
		DiscomID:     input.DiscomID,
		Category:     input.Category,
		CustomerType: input.CustomerType,
		BaseRate:     input.BaseRate,
		ValidFrom:    input.ValidFrom,
		ValidTo:      input.ValidTo,
		Slabs:        input.Slabs,
		TOURates:     input.TOURates,
		Source:       domain.TariffSourceManualOverride,
		Reference:    input.Reference,
		CreatedAt:    s.now(),
	}
	if err := s.structureRepo.Create(ctx, structure); err != nil {
		return nil, fmt.Errorf("recording tariff override: %w", err)
	}
	s.log.Info("tariff override recorded",
		zap.String("discom_id", structure.DiscomID.String()),
		zap.String("category", structure.Category),
		zap.Float64("base_rate", structure.BaseRate),
	)
	return structure, nil
}
