package billing

import (
	"fmt"
	"time"

	"chainfly/internal/domain"
)

// Period is a billing bucket. End is exclusive.
type Period struct {
	Key   string
	Start time.Time
	End   time.Time
}

// PeriodFor derives the billing period that contains at, evaluated in loc.
// Keys are "2024-03" (monthly), "2024-Q1" (quarterly) and "2024" (annually).
func PeriodFor(cycle domain.BillingCycle, at time.Time, loc *time.Location) (Period, error) {
	local := at.In(loc)
	year, month := local.Year(), local.Month()

	switch cycle {
	case domain.BillingCycleMonthly:
		start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
		return Period{
			Key:   fmt.Sprintf("%04d-%02d", year, int(month)),
			Start: start,
			End:   start.AddDate(0, 1, 0),
		}, nil
	case domain.BillingCycleQuarterly:
		quarter := (int(month)-1)/3 + 1
		start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, loc)
		return Period{
			Key:   fmt.Sprintf("%04d-Q%d", year, quarter),
			Start: start,
			End:   start.AddDate(0, 3, 0),
		}, nil
	case domain.BillingCycleAnnually:
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		return Period{
			Key:   fmt.Sprintf("%04d", year),
			Start: start,
			End:   start.AddDate(1, 0, 0),
		}, nil
	default:
		return Period{}, domain.NewValidationError("billing_cycle", "unknown cycle %q", cycle)
	}
}
