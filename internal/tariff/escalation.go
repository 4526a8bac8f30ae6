package tariff

import (
	"fmt"
	"math"
	"sort"
	"time"

	"chainfly/internal/domain"
)

// EscalationResult is the escalated base rate for an evaluation date.
type EscalationResult struct {
	Rate         float64
	ElapsedYears int
	// Pending is set for index-linked schedules, which have no index source in
	// this service and bill at the unescalated base rate.
	Pending bool
}

// ElapsedYears counts completed contract anniversaries between start and at.
func ElapsedYears(start, at time.Time) int {
	at = at.In(start.Location())
	years := at.Year() - start.Year()
	if years > 0 && start.AddDate(years, 0, 0).After(at) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}

// NextEscalationDate returns the first contract anniversary strictly after at.
func NextEscalationDate(start, at time.Time) time.Time {
	return start.AddDate(ElapsedYears(start, at)+1, 0, 0)
}

// Escalate returns the base rate in effect at the evaluation date.
func Escalate(rs *domain.RateSchedule, start, at time.Time) (EscalationResult, error) {
	if at.Before(start) {
		return EscalationResult{}, domain.NewValidationError("evaluation_date",
			"must not be before contract start %s", start.Format(time.DateOnly))
	}
	years := ElapsedYears(start, at)

	switch rs.EscalationType {
	case domain.EscalationFixedPercentage:
		rate := rs.BaseRate * math.Pow(1+rs.EscalationRate, float64(years))
		return EscalationResult{Rate: RoundRate(rate), ElapsedYears: years}, nil
	case domain.EscalationCustomSchedule:
		return EscalationResult{Rate: RoundRate(customScheduleRate(rs, years)), ElapsedYears: years}, nil
	case domain.EscalationCPILinked, domain.EscalationWholesalePriceIndex:
		return EscalationResult{Rate: rs.BaseRate, ElapsedYears: years, Pending: true}, nil
	default:
		return EscalationResult{}, domain.NewValidationError("escalation_type", "unknown type %q", rs.EscalationType)
	}
}

// customScheduleRate compounds every configured year up to and including
// elapsedYears+1. Years without an entry carry the running rate forward.
func customScheduleRate(rs *domain.RateSchedule, elapsedYears int) float64 {
	steps := make([]domain.EscalationStep, len(rs.EscalationSchedule))
	copy(steps, rs.EscalationSchedule)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Year < steps[j].Year })

	rate := rs.BaseRate
	for _, step := range steps {
		if step.Year > elapsedYears+1 {
			break
		}
		rate *= 1 + step.Rate
	}
	return rate
}

// ValidateEscalation checks the escalation configuration at write time.
// Custom schedule years must be unique and contiguous from 1.
func ValidateEscalation(rs *domain.RateSchedule) error {
	switch rs.EscalationType {
	case domain.EscalationFixedPercentage:
		if rs.EscalationRate < 0 {
			return domain.NewValidationError("escalation_rate", "must not be negative")
		}
	case domain.EscalationCustomSchedule:
		if len(rs.EscalationSchedule) == 0 {
			return domain.NewValidationError("escalation_schedule", "required for custom_schedule escalation")
		}
		seen := make(map[int]bool, len(rs.EscalationSchedule))
		maxYear := 0
		for _, step := range rs.EscalationSchedule {
			if step.Year < 1 {
				return domain.NewValidationError("escalation_schedule", "year %d must be >= 1", step.Year)
			}
			if seen[step.Year] {
				return domain.NewValidationError("escalation_schedule", "duplicate year %d", step.Year)
			}
			if step.Rate <= -1 {
				return domain.NewValidationError("escalation_schedule", "rate for year %d must be greater than -1", step.Year)
			}
			seen[step.Year] = true
			if step.Year > maxYear {
				maxYear = step.Year
			}
		}
		for y := 1; y <= maxYear; y++ {
			if !seen[y] {
				return domain.NewValidationError("escalation_schedule", "missing year %d", y)
			}
		}
	case domain.EscalationCPILinked, domain.EscalationWholesalePriceIndex:
	default:
		return domain.NewValidationError("escalation_type", "unknown type %q", rs.EscalationType)
	}
	return nil
}

// DescribeEscalation renders the escalation terms for documents.
func DescribeEscalation(rs *domain.RateSchedule) string {
	switch rs.EscalationType {
	case domain.EscalationFixedPercentage:
		return fmt.Sprintf("%.2f%% per year, compounding", rs.EscalationRate*100)
	case domain.EscalationCustomSchedule:
		return fmt.Sprintf("custom schedule (%d years)", len(rs.EscalationSchedule))
	case domain.EscalationCPILinked:
		return "linked to consumer price index"
	case domain.EscalationWholesalePriceIndex:
		return "linked to wholesale price index"
	default:
		return string(rs.EscalationType)
	}
}
