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

// PaymentConfig holds the payment schedule parameters.
type PaymentConfig struct {
	Capex              billing.CapexPolicy
	ReconcileTolerance float64
}

// OpexPaymentInput is the DTO for an OPEX payment event.
type OpexPaymentInput struct {
	Amount            float64   `json:"amount" binding:"required,gt=0"`
	EnergyConsumedKWh float64   `json:"energy_consumed_kwh" binding:"gte=0"`
	PaidAt            time.Time `json:"paid_at"`
}

// PaymentService defines payment schedules and OPEX payment recording.
type PaymentService interface {
	BuildSchedule(ctx context.Context, contractID uuid.UUID) (*domain.PaymentSchedule, error)
	RecordOpexPayment(ctx context.Context, contractID uuid.UUID, input *OpexPaymentInput) (*domain.Payment, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Payment, error)
}

type paymentService struct {
	paymentRepo  port.PaymentRepository
	contractRepo port.ContractRepository
	subsidyRepo  port.SubsidyRepository
	cfg          PaymentConfig
	log          *zap.Logger
	now          func() time.Time
}

// NewPaymentService creates a new PaymentService implementation.
func NewPaymentService(
	paymentRepo port.PaymentRepository,
	contractRepo port.ContractRepository,
	subsidyRepo port.SubsidyRepository,
	cfg PaymentConfig,
	log *zap.Logger,
	now func() time.Time,
) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		contractRepo: contractRepo,
		subsidyRepo:  subsidyRepo,
		cfg:          cfg,
		log:          log,
		now:          now,
	}
}

func (s *paymentService) BuildSchedule(ctx context.Context, contractID uuid.UUID) (*domain.PaymentSchedule, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	var subsidies []domain.SubsidyScheme
	if contract.BusinessModel == domain.BusinessModelCapex {
		subsidies, err = s.subsidyRepo.ListActive(ctx, contract.SiteState, contract.StartDate)
		if err != nil {
			return nil, fmt.Errorf("loading subsidies: %w", err)
		}
	}
	return billing.BuildSchedule(contract, subsidies, s.cfg.Capex)
}

func (s *paymentService) RecordOpexPayment(ctx context.Context, contractID uuid.UUID, input *OpexPaymentInput) (*domain.Payment, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}

	next, payment, err := billing.RecordOpexPayment(uuid.New(), contract, billing.OpexPayment{
		Amount:            input.Amount,
		EnergyConsumedKWh: input.EnergyConsumedKWh,
		PaidAt:            input.PaidAt,
	}, s.cfg.ReconcileTolerance, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Commit(ctx, payment, next); err != nil {
		return nil, fmt.Errorf("recording payment: %w", err)
	}

	s.log.Info("opex payment recorded",
		zap.String("contract_id", contractID.String()),
		zap.Float64("amount", payment.Amount),
		zap.Float64("energy_cost", payment.EnergyCost),
	)
	return payment, nil
}

func (s *paymentService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Payment, error) {
	return s.paymentRepo.ListByContract(ctx, contractID)
}
