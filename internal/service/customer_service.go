package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chainfly/internal/domain"
	"chainfly/internal/port"
)

// CreateCustomerInput is the DTO for registering a customer.
type CreateCustomerInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Address string `json:"address"`
	State   string `json:"state"`
}

// CustomerService defines customer registration and lookup.
type CustomerService interface {
	Create(ctx context.Context, input *CreateCustomerInput) (*domain.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error)
}

type customerService struct {
	customerRepo port.CustomerRepository
	log          *zap.Logger
	now          func() time.Time
}

// NewCustomerService creates a new CustomerService implementation.
func NewCustomerService(customerRepo port.CustomerRepository, log *zap.Logger, now func() time.Time) CustomerService {
	return &customerService{customerRepo: customerRepo, log: log, now: now}
}

func (s *customerService) Create(ctx context.Context, input *CreateCustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Address:   input.Address,
		State:     input.State,
		CreatedAt: s.now(),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("creating customer: %w", err)
	}
	s.log.Info("customer created", zap.String("customer_id", customer.ID.String()))
	return customer, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) List(ctx context.Context, offset, limit int) ([]domain.Customer, int, error) {
	customers, total, err := s.customerRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing customers: %w", err)
	}
	return customers, total, nil
}
