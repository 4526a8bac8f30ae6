package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

const invoicePeriodConstraint = "invoices_contract_period_key"

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Commit(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Commit begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO invoices (
			id, contract_id, billing_period, period_start, period_end, reading_date,
			kwh_used, billable_kwh, tariff_rate_applied, tariff_source, escalation_years,
			escalation_pending, base_amount, tax_amount, penalty_amount, total_amount,
			currency, breakdown, status, due_date, created_at, paid_at)
		VALUES (
			:id, :contract_id, :billing_period, :period_start, :period_end, :reading_date,
			:kwh_used, :billable_kwh, :tariff_rate_applied, :tariff_source, :escalation_years,
			:escalation_pending, :base_amount, :tax_amount, :penalty_amount, :total_amount,
			:currency, :breakdown, :status, :due_date, :created_at, :paid_at)`
	if _, err := tx.NamedExecContext(ctx, query, invoice); err != nil {
		if isUniqueViolation(err, invoicePeriodConstraint) {
			return fmt.Errorf("contract %s period %s: %w", invoice.ContractID, invoice.BillingPeriod, domain.ErrDuplicateBillingPeriod)
		}
		return fmt.Errorf("invoiceRepo.Commit insert: %w", err)
	}
	if err := updateContract(ctx, tx, contract); err != nil {
		return fmt.Errorf("invoiceRepo.Commit contract: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.Commit: %w", err)
	}
	return nil
}

func (r *invoiceRepo) MarkPaid(ctx context.Context, invoice *domain.Invoice, contract *domain.Contract) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("invoiceRepo.MarkPaid begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx,
		`UPDATE invoices SET status = 'paid', paid_at = $1
		WHERE id = $2 AND contract_id = $3 AND status = 'unpaid'`,
		invoice.PaidAt, invoice.ID, invoice.ContractID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.MarkPaid: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("invoice %s already settled: %w", invoice.ID, domain.ErrConcurrentUpdate)
	}
	if err := updateContract(ctx, tx, contract); err != nil {
		return fmt.Errorf("invoiceRepo.MarkPaid contract: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("invoiceRepo.MarkPaid commit: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, contractID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE id = $1 AND contract_id = $2", invoiceID, contractID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("invoice", invoiceID)
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) GetByPeriod(ctx context.Context, contractID uuid.UUID, period string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.GetContext(ctx, &invoice,
		"SELECT * FROM invoices WHERE contract_id = $1 AND billing_period = $2", contractID, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByPeriod: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices,
		"SELECT * FROM invoices WHERE contract_id = $1 ORDER BY period_start", contractID)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListByContract: %w", err)
	}
	return invoices, nil
}
