package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chainfly/internal/billing"
	"chainfly/internal/domain"
	"chainfly/internal/port"
)

// UsageInput is the DTO for a meter reading.
type UsageInput struct {
	KWhUsed        float64    `json:"kwh_used" binding:"required,gt=0"`
	ReadingDate    time.Time  `json:"reading_date" binding:"required"`
	TimestampStart *time.Time `json:"timestamp_start"`
	TimestampEnd   *time.Time `json:"timestamp_end"`
	ImportEnergy   *float64   `json:"import_energy"`
	ExportEnergy   *float64   `json:"export_energy"`
}

func (in *UsageInput) reading(contractID uuid.UUID, now time.Time) *domain.UsageReading {
	return &domain.UsageReading{
		ID:             uuid.New(),
		ContractID:     contractID,
		KWhUsed:        in.KWhUsed,
		ReadingDate:    in.ReadingDate,
		TimestampStart: in.TimestampStart,
		TimestampEnd:   in.TimestampEnd,
		ImportEnergy:   in.ImportEnergy,
		ExportEnergy:   in.ExportEnergy,
		CreatedAt:      now,
	}
}

// UsageService defines meter reading intake.
type UsageService interface {
	Record(ctx context.Context, contractID uuid.UUID, input *UsageInput) (*domain.UsageReading, error)
	ListByContract(ctx context.Context, contractID uuid.UUID, offset, limit int) ([]domain.UsageReading, int, error)
}

type usageService struct {
	usageRepo    port.UsageRepository
	contractRepo port.ContractRepository
	log          *zap.Logger
	now          func() time.Time
}

// NewUsageService creates a new UsageService implementation.
func NewUsageService(usageRepo port.UsageRepository, contractRepo port.ContractRepository, log *zap.Logger, now func() time.Time) UsageService {
	return &usageService{usageRepo: usageRepo, contractRepo: contractRepo, log: log, now: now}
}

func (s *usageService) Record(ctx context.Context, contractID uuid.UUID, input *UsageInput) (*domain.UsageReading, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	reading := input.reading(contract.ID, s.now())
	if err := billing.ValidateReading(reading); err != nil {
		return nil, err
	}
	if reading.ReadingDate.Before(contract.StartDate) || !reading.ReadingDate.Before(contract.EndDate) {
		return nil, domain.NewValidationError("reading_date", "outside contract term")
	}
	if err := s.usageRepo.Create(ctx, reading); err != nil {
		return nil, fmt.Errorf("recording usage: %w", err)
	}
	s.log.Debug("usage recorded",
		zap.String("contract_id", contract.ID.String()),
		zap.Float64("kwh", reading.KWhUsed),
	)
	return reading, nil
}

func (s *usageService) ListByContract(ctx context.Context, contractID uuid.UUID, offset, limit int) ([]domain.UsageReading, int, error) {
	return s.usageRepo.ListByContract(ctx, contractID, offset, limit)
}
