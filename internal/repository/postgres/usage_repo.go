package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

type usageRepo struct {
	db *sqlx.DB
}

// NewUsageRepo creates a new PostgreSQL-backed UsageRepository.
func NewUsageRepo(db *sqlx.DB) port.UsageRepository {
	return &usageRepo{db: db}
}

func (r *usageRepo) Create(ctx context.Context, reading *domain.UsageReading) error {
	query := `INSERT INTO usage_readings (
			id, contract_id, kwh_used, reading_date, timestamp_start, timestamp_end,
			import_energy, export_energy, created_at)
		VALUES (
			:id, :contract_id, :kwh_used, :reading_date, :timestamp_start, :timestamp_end,
			:import_energy, :export_energy, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reading); err != nil {
		return fmt.Errorf("usageRepo.Create: %w", err)
	}
	return nil
}

func (r *usageRepo) ListByContract(ctx context.Context, contractID uuid.UUID, offset, limit int) ([]domain.UsageReading, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM usage_readings WHERE contract_id = $1", contractID)
	if err != nil {
		return nil, 0, fmt.Errorf("usageRepo.ListByContract count: %w", err)
	}

	var readings []domain.UsageReading
	err = r.db.SelectContext(ctx, &readings,
		"SELECT * FROM usage_readings WHERE contract_id = $1 ORDER BY reading_date DESC LIMIT $2 OFFSET $3",
		contractID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("usageRepo.ListByContract: %w", err)
	}
	return readings, total, nil
}
