package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"chainfly/internal/domain"
	"chainfly/internal/tariff"
)

const daysPerYear = 365.25

// EffectiveStatus applies lazy expiry: a draft or active contract whose end
// date has passed reads as expired.
func EffectiveStatus(c *domain.Contract, now time.Time) domain.ContractStatus {
	if c.Status.BlocksOverlap() && now.After(c.EndDate) {
		return domain.ContractStatusExpired
	}
	return c.Status
}

// Overlaps is the half-open interval test; touching windows do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CheckOverlap rejects candidate if any draft or active contract of the same
// customer shares part of its window.
func CheckOverlap(candidate *domain.Contract, existing []domain.Contract, now time.Time) error {
	for i := range existing {
		e := &existing[i]
		if e.ID == candidate.ID || e.CustomerID != candidate.CustomerID {
			continue
		}
		if !EffectiveStatus(e, now).BlocksOverlap() {
			continue
		}
		if Overlaps(candidate.StartDate, candidate.EndDate, e.StartDate, e.EndDate) {
			return &domain.OverlapError{ConflictingContractID: e.ID, CustomerID: candidate.CustomerID}
		}
	}
	return nil
}

// NewContract builds a contract from validated terms. It starts active when
// the start date has already been reached, otherwise as a draft.
func NewContract(id uuid.UUID, t *Terms, defaultTimezone string, now time.Time) *domain.Contract {
	status := domain.ContractStatusDraft
	if !t.StartDate.After(now) {
		status = domain.ContractStatusActive
	}
	mode := t.TariffMode
	if mode == "" {
		mode = domain.TariffModeStatic
	}
	tz := t.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	siteState := t.SiteState
	if siteState == "" && t.DynamicTariff != nil {
		siteState = t.DynamicTariff.State
	}

	c := &domain.Contract{
		ID:                    id,
		CustomerID:            t.CustomerID,
		SiteState:             siteState,
		Timezone:              tz,
		SystemSpecs:           t.SystemSpecs,
		RateSchedule:          t.RateSchedule,
		TariffMode:            mode,
		DynamicTariff:         t.DynamicTariff,
		BillingCycle:          t.BillingCycle,
		StartDate:             t.StartDate,
		EndDate:               t.EndDate,
		Status:                status,
		BusinessModel:         t.BusinessModel,
		CapexAmount:           t.CapexAmount,
		OpexMonthlyFee:        t.OpexMonthlyFee,
		OpexEnergyRate:        t.OpexEnergyRate,
		ContractDurationYears: DurationYears(t.StartDate, t.EndDate),
		CurrentTariffRate:     t.RateSchedule.BaseRate,
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	next := t.StartDate.AddDate(1, 0, 0)
	if !now.Before(t.StartDate) {
		next = tariff.NextEscalationDate(t.StartDate, now)
	}
	c.NextEscalationDate = &next
	return c
}

// DurationYears is the contract term in fractional years.
func DurationYears(start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	return tariff.RoundAmount(days / daysPerYear)
}

// Sign marks a draft or an auto-activated contract as signed and active.
func Sign(c *domain.Contract, now time.Time) (*domain.Contract, error) {
	status := EffectiveStatus(c, now)
	if !status.BlocksOverlap() || c.SignedAt != nil {
		return nil, transitionError(c.ID, status, "sign")
	}
	next := *c
	next.Status = domain.ContractStatusActive
	next.SignedAt = &now
	next.UpdatedAt = now
	return &next, nil
}

// Terminate ends a draft or active contract. Terminated is terminal.
func Terminate(c *domain.Contract, now time.Time) (*domain.Contract, error) {
	status := EffectiveStatus(c, now)
	if !status.BlocksOverlap() {
		return nil, transitionError(c.ID, status, "terminate")
	}
	next := *c
	next.Status = domain.ContractStatusTerminated
	next.UpdatedAt = now
	return &next, nil
}

// Expire persists lazy expiry. It reports false when the contract is not due.
func Expire(c *domain.Contract, now time.Time) (*domain.Contract, bool) {
	if c.Status == domain.ContractStatusExpired || EffectiveStatus(c, now) != domain.ContractStatusExpired {
		return c, false
	}
	next := *c
	next.Status = domain.ContractStatusExpired
	next.UpdatedAt = now
	return &next, true
}

// PayInvoice returns the paid invoice and the contract with its paid total
// advanced. Paying an already paid invoice changes nothing.
func PayInvoice(c *domain.Contract, inv *domain.Invoice, now time.Time) (*domain.Contract, *domain.Invoice, bool) {
	if inv.Status == domain.InvoiceStatusPaid {
		return c, inv, false
	}
	paid := *inv
	paid.Status = domain.InvoiceStatusPaid
	paid.PaidAt = &now

	next := *c
	next.TotalPaid = tariff.RoundAmount(c.TotalPaid + inv.TotalAmount)
	next.UpdatedAt = now
	return &next, &paid, true
}

func transitionError(id uuid.UUID, from domain.ContractStatus, action string) error {
	return fmt.Errorf("cannot %s contract %s in status %s: %w", action, id, from, domain.ErrInvalidStatusTransition)
}
