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

type customerRepo struct {
	db *sqlx.DB
}

// NewCustomerRepo creates a new PostgreSQL-backed CustomerRepository.
func NewCustomerRepo(db *sqlx.DB) port.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	query := `INSERT INTO customers (id, name, email, address, state, created_at)
		VALUES (:id, :name, :email, :address, :state, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, customer); err != nil {
		return fmt.Errorf("customerRepo.Create: %w", err)
	}
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.db.GetContext(ctx, &customer, "SELECT * FROM customers WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("customer", id)
		}
		return nil, fmt.Errorf("customerRepo.GetByID: %w", err)
	}
	return &customer, nil
}

func (r *customerRepo) List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers"); err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List count: %w", err)
	}

	var customers []domain.Customer
	err := r.db.SelectContext(ctx, &customers,
		"SELECT * FROM customers ORDER BY created_at DESC, id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("customerRepo.List: %w", err)
	}
	return customers, total, nil
}
