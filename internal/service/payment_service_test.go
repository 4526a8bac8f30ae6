package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chainfly/internal/billing"
	"chainfly/internal/domain"
	"chainfly/internal/service"
	"chainfly/mocks"
)

func newPaymentService(paymentRepo *mocks.MockPaymentRepo, contractRepo *mocks.MockContractRepo, subsidyRepo *mocks.MockSubsidyRepo) service.PaymentService {
	cfg := service.PaymentConfig{Capex: billing.DefaultCapexPolicy, ReconcileTolerance: 0.01}
	return service.NewPaymentService(paymentRepo, contractRepo, subsidyRepo, cfg, zap.NewNop(), clock)
}

func TestPaymentService_BuildSchedule_CapexWithSubsidy(t *testing.T) {
	contractRepo := new(mocks.MockContractRepo)
	subsidyRepo := new(mocks.MockSubsidyRepo)
	c := &domain.Contract{
		ID:            uuid.New(),
		SiteState:     "GJ",
		SystemSpecs:   domain.SystemSpecs{CapacityKW: 50},
		RateSchedule:  domain.RateSchedule{Currency: "INR"},
		BusinessModel: domain.BusinessModelCapex,
		CapexAmount:   1000000,
		StartDate:     day(2024, time.April, 1),
		EndDate:       day(2044, time.April, 1),
	}
	scheme := domain.SubsidyScheme{
		ID:        uuid.New(),
		State:     "GJ",
		Type:      domain.SubsidyTypeCapital,
		Rate:      3000,
		Unit:      domain.SubsidyUnitPerKW,
		ValidFrom: day(2023, time.January, 1),
	}
	contractRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	subsidyRepo.On("ListActive", mock.Anything, "GJ", c.StartDate).Return([]domain.SubsidyScheme{scheme}, nil)

	svc := newPaymentService(new(mocks.MockPaymentRepo), contractRepo, subsidyRepo)
	ps, err := svc.BuildSchedule(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, 150000.0, ps.SubsidyAmount)
	assert.Equal(t, 850000.0, ps.NetAmount)
	require.Len(t, ps.Installments, 2)
	assert.Equal(t, 170000.0, ps.Installments[0].Amount)
	assert.Equal(t, 680000.0, ps.Installments[1].Amount)
	assert.Equal(t, day(2024, time.May, 1), ps.Installments[1].DueDate)
}

func TestPaymentService_BuildSchedule_OpexSkipsSubsidies(t *testing.T) {
	contractRepo := new(mocks.MockContractRepo)
	subsidyRepo := new(mocks.MockSubsidyRepo)
	c := &domain.Contract{ID: uuid.New(), BusinessModel: domain.BusinessModelOpex, OpexMonthlyFee: 12000, OpexEnergyRate: 4.2}
	contractRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	svc := newPaymentService(new(mocks.MockPaymentRepo), contractRepo, subsidyRepo)
	ps, err := svc.BuildSchedule(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, 12000.0, ps.MonthlyFee)
	assert.Empty(t, ps.Installments)
	subsidyRepo.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything, mock.Anything)
}

func opexContract() *domain.Contract {
	return &domain.Contract{
		ID:             uuid.New(),
		Status:         domain.ContractStatusActive,
		BusinessModel:  domain.BusinessModelOpex,
		OpexMonthlyFee: 12000,
		OpexEnergyRate: 4.2,
		StartDate:      day(2024, time.January, 1),
		EndDate:        day(2029, time.January, 1),
		Version:        4,
	}
}

func TestPaymentService_RecordOpexPayment(t *testing.T) {
	paymentRepo := new(mocks.MockPaymentRepo)
	contractRepo := new(mocks.MockContractRepo)
	c := opexContract()
	contractRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	paymentRepo.On("Commit", mock.Anything,
		mock.MatchedBy(func(p *domain.Payment) bool { return p.EnergyCost == 4200 && p.MonthlyFee == 12000 }),
		mock.MatchedBy(func(next *domain.Contract) bool { return next.TotalPaid == 16200 && next.Version == 4 }),
	).Return(nil)

	svc := newPaymentService(paymentRepo, contractRepo, new(mocks.MockSubsidyRepo))
	p, err := svc.RecordOpexPayment(context.Background(), c.ID, &service.OpexPaymentInput{Amount: 16200, EnergyConsumedKWh: 1000})

	require.NoError(t, err)
	assert.Equal(t, fixedNow, p.PaidAt)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentService_RecordOpexPayment_Mismatch(t *testing.T) {
	paymentRepo := new(mocks.MockPaymentRepo)
	contractRepo := new(mocks.MockContractRepo)
	c := opexContract()
	contractRepo.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	svc := newPaymentService(paymentRepo, contractRepo, new(mocks.MockSubsidyRepo))
	_, err := svc.RecordOpexPayment(context.Background(), c.ID, &service.OpexPaymentInput{Amount: 16000, EnergyConsumedKWh: 1000})

	assert.ErrorIs(t, err, domain.ErrPaymentMismatch)
	assert.ErrorIs(t, err, domain.ErrValidation)
	paymentRepo.AssertNotCalled(t, "Commit", mock.Anything, mock.Anything, mock.Anything)
}
