package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

type discomRepo struct {
	db *sqlx.DB
}

// NewDiscomRepo creates a new PostgreSQL-backed DiscomRepository.
func NewDiscomRepo(db *sqlx.DB) port.DiscomRepository {
	return &discomRepo{db: db}
}

func (r *discomRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Discom, error) {
	var discom domain.Discom
	err := r.db.GetContext(ctx, &discom, "SELECT * FROM discoms WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("discom", id)
		}
		return nil, fmt.Errorf("discomRepo.GetByID: %w", err)
	}
	return &discom, nil
}

func (r *discomRepo) MarkUpdated(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.ExecContext(ctx, "UPDATE discoms SET last_updated_at = $1 WHERE id = $2", at, id)
	if err != nil {
		return fmt.Errorf("discomRepo.MarkUpdated: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NewNotFoundError("discom", id)
	}
	return nil
}

type tariffStructureRepo struct {
	db *sqlx.DB
}

// NewTariffStructureRepo creates a new PostgreSQL-backed TariffStructureRepository.
func NewTariffStructureRepo(db *sqlx.DB) port.TariffStructureRepository {
	return &tariffStructureRepo{db: db}
}

func (r *tariffStructureRepo) Create(ctx context.Context, s *domain.TariffStructure) error {
	query := `INSERT INTO tariff_structures (
			id, discom_id, category, customer_type, base_rate, valid_from, valid_to,
			slabs, tou_rates, source, reference, created_at)
		VALUES (
			:id, :discom_id, :category, :customer_type, :base_rate, :valid_from, :valid_to,
			:slabs, :tou_rates, :source, :reference, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		if isUniqueViolation(err, "") {
			return domain.NewValidationError("id", "tariff structure %s already exists", s.ID)
		}
		return fmt.Errorf("tariffStructureRepo.Create: %w", err)
	}
	return nil
}

// FindCovering returns the most recent structure valid on the lookup date,
// or nil when none matches.
func (r *tariffStructureRepo) FindCovering(ctx context.Context, l port.TariffLookup) (*domain.TariffStructure, error) {
	var s domain.TariffStructure
	err := r.db.GetContext(ctx, &s, `SELECT * FROM tariff_structures
		WHERE discom_id = $1
		  AND lower(category) = lower($2)
		  AND lower(customer_type) = lower($3)
		  AND source = $4
		  AND valid_from <= $5
		  AND (valid_to IS NULL OR valid_to > $5)
		ORDER BY valid_from DESC, created_at DESC
		LIMIT 1`,
		l.DiscomID, l.Category, l.CustomerType, l.Source, l.Date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("tariffStructureRepo.FindCovering: %w", err)
	}
	return &s, nil
}

type subsidyRepo struct {
	db *sqlx.DB
}

// NewSubsidyRepo creates a new PostgreSQL-backed SubsidyRepository.
func NewSubsidyRepo(db *sqlx.DB) port.SubsidyRepository {
	return &subsidyRepo{db: db}
}

func (r *subsidyRepo) ListActive(ctx context.Context, state string, date time.Time) ([]domain.SubsidyScheme, error) {
	var schemes []domain.SubsidyScheme
	err := r.db.SelectContext(ctx, &schemes, `SELECT * FROM subsidy_schemes
		WHERE (state = '' OR state = $1)
		  AND valid_from <= $2
		  AND (valid_to IS NULL OR valid_to > $2)
		ORDER BY name`, state, date)
	if err != nil {
		return nil, fmt.Errorf("subsidyRepo.ListActive: %w", err)
	}
	return schemes, nil
}
