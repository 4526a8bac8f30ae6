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

type contractRepo struct {
	db *sqlx.DB
}

// NewContractRepo creates a new PostgreSQL-backed ContractRepository.
func NewContractRepo(db *sqlx.DB) port.ContractRepository {
	return &contractRepo{db: db}
}

const insertContractQuery = `INSERT INTO contracts (
		id, customer_id, site_state, timezone, system_specs, rate_schedule, tariff_mode,
		dynamic_tariff, billing_cycle, start_date, end_date, status, business_model,
		capex_amount, opex_monthly_fee, opex_energy_rate, contract_duration_years,
		current_tariff_rate, next_escalation_date, total_energy_produced, total_billed,
		total_paid, last_billing_date, signed_at, version, created_at, updated_at)
	VALUES (
		:id, :customer_id, :site_state, :timezone, :system_specs, :rate_schedule, :tariff_mode,
		:dynamic_tariff, :billing_cycle, :start_date, :end_date, :status, :business_model,
		:capex_amount, :opex_monthly_fee, :opex_energy_rate, :contract_duration_years,
		:current_tariff_rate, :next_escalation_date, :total_energy_produced, :total_billed,
		:total_paid, :last_billing_date, :signed_at, :version, :created_at, :updated_at)`

func (r *contractRepo) CreateChecked(ctx context.Context, contract *domain.Contract, check port.OverlapCheck) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("contractRepo.CreateChecked begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// The customer row lock serializes concurrent creates for one customer.
	var locked uuid.UUID
	err = tx.GetContext(ctx, &locked, "SELECT id FROM customers WHERE id = $1 FOR UPDATE", contract.CustomerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("customer", contract.CustomerID)
		}
		return fmt.Errorf("contractRepo.CreateChecked lock: %w", err)
	}

	var blocking []domain.Contract
	err = tx.SelectContext(ctx, &blocking,
		`SELECT * FROM contracts WHERE customer_id = $1 AND status IN ('draft', 'active')`,
		contract.CustomerID)
	if err != nil {
		return fmt.Errorf("contractRepo.CreateChecked blocking: %w", err)
	}
	if err := check(blocking); err != nil {
		return err
	}

	if _, err := tx.NamedExecContext(ctx, insertContractQuery, contract); err != nil {
		return fmt.Errorf("contractRepo.CreateChecked insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("contractRepo.CreateChecked commit: %w", err)
	}
	return nil
}

func (r *contractRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.GetContext(ctx, &contract, "SELECT * FROM contracts WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("contract", id)
		}
		return nil, fmt.Errorf("contractRepo.GetByID: %w", err)
	}
	return &contract, nil
}

func (r *contractRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, offset, limit int) ([]domain.Contract, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM contracts WHERE customer_id = $1", customerID)
	if err != nil {
		return nil, 0, fmt.Errorf("contractRepo.ListByCustomer count: %w", err)
	}

	var contracts []domain.Contract
	err = r.db.SelectContext(ctx, &contracts,
		"SELECT * FROM contracts WHERE customer_id = $1 ORDER BY start_date DESC LIMIT $2 OFFSET $3",
		customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("contractRepo.ListByCustomer: %w", err)
	}
	return contracts, total, nil
}

func (r *contractRepo) Update(ctx context.Context, contract *domain.Contract) error {
	if err := updateContract(ctx, r.db, contract); err != nil {
		return fmt.Errorf("contractRepo.Update: %w", err)
	}
	return nil
}

func (r *contractRepo) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := r.db.SelectContext(ctx, &contracts,
		`SELECT * FROM contracts WHERE status IN ('draft', 'active') AND end_date < $1
		ORDER BY end_date LIMIT $2`, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("contractRepo.ListExpirable: %w", err)
	}
	return contracts, nil
}

// updateContract writes the mutable contract state if the stored version
// still matches, then advances the version on both sides.
func updateContract(ctx context.Context, ext sqlx.ExtContext, c *domain.Contract) error {
	query := `UPDATE contracts SET
			status = $1, current_tariff_rate = $2, next_escalation_date = $3,
			total_energy_produced = $4, total_billed = $5, total_paid = $6,
			last_billing_date = $7, signed_at = $8, updated_at = $9,
			version = version + 1
		WHERE id = $10 AND version = $11`
	result, err := ext.ExecContext(ctx, query,
		c.Status, c.CurrentTariffRate, c.NextEscalationDate,
		c.TotalEnergyProduced, c.TotalBilled, c.TotalPaid,
		c.LastBillingDate, c.SignedAt, c.UpdatedAt,
		c.ID, c.Version)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := sqlx.GetContext(ctx, ext, &exists, "SELECT EXISTS (SELECT 1 FROM contracts WHERE id = $1)", c.ID); err != nil {
			return err
		}
		if !exists {
			return domain.NewNotFoundError("contract", c.ID)
		}
		return domain.ErrConcurrentUpdate
	}
	c.Version++
	return nil
}
