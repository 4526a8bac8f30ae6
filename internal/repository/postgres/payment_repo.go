package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

type paymentRepo struct {
	db *sqlx.DB
}

// NewPaymentRepo creates a new PostgreSQL-backed PaymentRepository.
func NewPaymentRepo(db *sqlx.DB) port.PaymentRepository {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) Commit(ctx context.Context, payment *domain.Payment, contract *domain.Contract) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("paymentRepo.Commit begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := `INSERT INTO payments (
			id, contract_id, invoice_id, amount, monthly_fee, energy_cost,
			energy_consumed_kwh, paid_at, created_at)
		VALUES (
			:id, :contract_id, :invoice_id, :amount, :monthly_fee, :energy_cost,
			:energy_consumed_kwh, :paid_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("paymentRepo.Commit insert: %w", err)
	}
	if err := updateContract(ctx, tx, contract); err != nil {
		return fmt.Errorf("paymentRepo.Commit contract: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("paymentRepo.Commit: %w", err)
	}
	return nil
}

func (r *paymentRepo) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.SelectContext(ctx, &payments,
		"SELECT * FROM payments WHERE contract_id = $1 ORDER BY paid_at DESC", contractID)
	if err != nil {
		return nil, fmt.Errorf("paymentRepo.ListByContract: %w", err)
	}
	return payments, nil
}
