package billing

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"chainfly/internal/domain"
	"chainfly/internal/tariff"
)

// CapexPolicy is the two-installment CAPEX plan.
type CapexPolicy struct {
	UpfrontPercent float64
	BalanceDueDays int
}

// DefaultCapexPolicy is 20% at start and the balance 30 days later.
var DefaultCapexPolicy = CapexPolicy{UpfrontPercent: 20, BalanceDueDays: 30}

// BuildSchedule derives the payment obligations of a contract. Capital
// subsidies reduce the CAPEX amount; other subsidy types never touch it.
func BuildSchedule(c *domain.Contract, subsidies []domain.SubsidyScheme, policy CapexPolicy) (*domain.PaymentSchedule, error) {
	ps := &domain.PaymentSchedule{
		ContractID:    c.ID,
		BusinessModel: c.BusinessModel,
		Currency:      c.RateSchedule.Currency,
	}

	switch c.BusinessModel {
	case domain.BusinessModelCapex:
		if policy.UpfrontPercent < 0 || policy.UpfrontPercent > 100 {
			return nil, domain.NewValidationError("capex_upfront_percent", "must be between 0 and 100")
		}
		ps.GrossAmount = tariff.RoundAmount(c.CapexAmount)
		for i := range subsidies {
			amount, ok := capitalSubsidy(&subsidies[i], c)
			if !ok {
				continue
			}
			ps.SubsidyAmount += amount
			ps.SubsidySchemes = append(ps.SubsidySchemes, subsidies[i].ID)
		}
		ps.SubsidyAmount = tariff.RoundAmount(math.Min(ps.SubsidyAmount, ps.GrossAmount))
		ps.NetAmount = tariff.RoundAmount(ps.GrossAmount - ps.SubsidyAmount)

		upfront := tariff.Percent(ps.NetAmount, policy.UpfrontPercent)
		ps.Installments = []domain.Installment{
			{
				Sequence: 1,
				Label:    "upfront",
				Percent:  policy.UpfrontPercent,
				Amount:   upfront,
				DueDate:  c.StartDate,
			},
			{
				Sequence: 2,
				Label:    "balance",
				Percent:  100 - policy.UpfrontPercent,
				Amount:   tariff.RoundAmount(ps.NetAmount - upfront),
				DueDate:  c.StartDate.AddDate(0, 0, policy.BalanceDueDays),
			},
		}
	case domain.BusinessModelOpex:
		ps.MonthlyFee = c.OpexMonthlyFee
		ps.EnergyRate = c.OpexEnergyRate
	default:
		return nil, domain.NewValidationError("business_model", "unknown model %q", c.BusinessModel)
	}
	return ps, nil
}

func capitalSubsidy(s *domain.SubsidyScheme, c *domain.Contract) (float64, bool) {
	if s.Type != domain.SubsidyTypeCapital {
		return 0, false
	}
	if s.State != "" && c.SiteState != "" && s.State != c.SiteState {
		return 0, false
	}
	if !s.Eligible(c.SystemSpecs.CapacityKW, c.StartDate) {
		return 0, false
	}
	switch s.Unit {
	case domain.SubsidyUnitPercent:
		return tariff.Percent(c.CapexAmount, s.Rate), true
	case domain.SubsidyUnitPerKW:
		return tariff.RoundAmount(s.Rate * c.SystemSpecs.CapacityKW), true
	default:
		return 0, false
	}
}

// OpexPayment is a payment event reported against an OPEX contract.
type OpexPayment struct {
	Amount            float64
	EnergyConsumedKWh float64
	PaidAt            time.Time
}

// RecordOpexPayment splits an OPEX payment into monthly fee and energy cost
// and checks that the reported amount matches their sum within tolerance.
func RecordOpexPayment(id uuid.UUID, c *domain.Contract, p OpexPayment, tolerance float64, now time.Time) (*domain.Contract, *domain.Payment, error) {
	if c.BusinessModel != domain.BusinessModelOpex {
		return nil, nil, domain.NewValidationError("business_model", "contract %s is not an opex contract", c.ID)
	}
	if status := EffectiveStatus(c, now); status == domain.ContractStatusDraft {
		return nil, nil, fmt.Errorf("contract %s is %s: %w", c.ID, status, domain.ErrContractNotActive)
	}
	if p.Amount <= 0 {
		return nil, nil, domain.NewValidationError("amount", "must be positive")
	}
	if p.EnergyConsumedKWh < 0 {
		return nil, nil, domain.NewValidationError("energy_consumed_kwh", "must not be negative")
	}

	energyCost := tariff.RoundAmount(p.EnergyConsumedKWh * c.OpexEnergyRate)
	expected := tariff.RoundAmount(c.OpexMonthlyFee + energyCost)
	if math.Abs(p.Amount-expected) > tolerance+1e-9 {
		verr := domain.NewValidationError("amount", "%.2f does not match monthly fee %.2f + energy cost %.2f", p.Amount, c.OpexMonthlyFee, energyCost)
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrPaymentMismatch, verr)
	}

	paidAt := p.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}
	payment := &domain.Payment{
		ID:                id,
		ContractID:        c.ID,
		Amount:            tariff.RoundAmount(p.Amount),
		MonthlyFee:        c.OpexMonthlyFee,
		EnergyCost:        energyCost,
		EnergyConsumedKWh: p.EnergyConsumedKWh,
		PaidAt:            paidAt,
		CreatedAt:         now,
	}

	next := *c
	next.TotalPaid = tariff.RoundAmount(c.TotalPaid + payment.Amount)
	next.UpdatedAt = now
	return &next, payment, nil
}
