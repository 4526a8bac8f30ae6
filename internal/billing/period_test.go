package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainfly/internal/billing"
	"chainfly/internal/domain"
)

func TestPeriodFor(t *testing.T) {
	reading := time.Date(2024, time.May, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		cycle     domain.BillingCycle
		wantKey   string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{domain.BillingCycleMonthly, "2024-05", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{domain.BillingCycleQuarterly, "2024-Q2", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{domain.BillingCycleAnnually, "2024", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.cycle), func(t *testing.T) {
			p, err := billing.PeriodFor(tt.cycle, reading, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, p.Key)
			assert.True(t, tt.wantStart.Equal(p.Start))
			assert.True(t, tt.wantEnd.Equal(p.End))
		})
	}
}

func TestPeriodFor_UsesLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	// 20:00 UTC on Mar 31 is already Apr 1 in India.
	reading := time.Date(2024, time.March, 31, 20, 0, 0, 0, time.UTC)

	utc, err := billing.PeriodFor(domain.BillingCycleQuarterly, reading, time.UTC)
	require.NoError(t, err)
	ist, err := billing.PeriodFor(domain.BillingCycleQuarterly, reading, kolkata)
	require.NoError(t, err)

	assert.Equal(t, "2024-Q1", utc.Key)
	assert.Equal(t, "2024-Q2", ist.Key)
}

func TestPeriodFor_UnknownCycle(t *testing.T) {
	_, err := billing.PeriodFor("weekly", time.Now(), time.UTC)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
