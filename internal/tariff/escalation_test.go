package tariff_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainfly/internal/domain"
	"chainfly/internal/tariff"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEscalate_FixedPercentageCompounds(t *testing.T) {
	rs := &domain.RateSchedule{BaseRate: 8.0, EscalationType: domain.EscalationFixedPercentage, EscalationRate: 0.02}
	start := date(2024, time.January, 1)

	tests := []struct {
		name string
		at   time.Time
		want float64
	}{
		{"year 0", date(2024, time.June, 15), 8.00},
		{"day before first anniversary", date(2024, time.December, 31), 8.00},
		{"year 1", date(2025, time.January, 1), 8.16},
		{"year 2", date(2026, time.March, 10), 8.3232},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tariff.Escalate(rs, start, tt.at)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got.Rate, 1e-9)
			assert.False(t, got.Pending)
		})
	}
}

func TestEscalate_CustomSchedule(t *testing.T) {
	rs := &domain.RateSchedule{
		BaseRate:       8.0,
		EscalationType: domain.EscalationCustomSchedule,
		EscalationSchedule: []domain.EscalationStep{
			{Year: 2, Rate: 0.02},
			{Year: 1, Rate: 0.03},
		},
	}
	start := date(2024, time.January, 1)

	first, err := tariff.Escalate(rs, start, date(2024, time.July, 1))
	require.NoError(t, err)
	assert.InDelta(t, 8.24, first.Rate, 1e-9)

	second, err := tariff.Escalate(rs, start, date(2025, time.July, 1))
	require.NoError(t, err)
	assert.InDelta(t, 8.4048, second.Rate, 1e-9)
	assert.Equal(t, 1, second.ElapsedYears)

	// Years past the last entry carry the rate forward.
	later, err := tariff.Escalate(rs, start, date(2029, time.July, 1))
	require.NoError(t, err)
	assert.InDelta(t, 8.4048, later.Rate, 1e-9)
}

func TestEscalate_IndexLinkedIsPending(t *testing.T) {
	for _, typ := range []domain.EscalationType{domain.EscalationCPILinked, domain.EscalationWholesalePriceIndex} {
		rs := &domain.RateSchedule{BaseRate: 7.5, EscalationType: typ}
		got, err := tariff.Escalate(rs, date(2020, time.January, 1), date(2024, time.January, 1))
		require.NoError(t, err)
		assert.Equal(t, 7.5, got.Rate)
		assert.True(t, got.Pending)
		assert.Equal(t, 4, got.ElapsedYears)
	}
}

func TestEscalate_BeforeStartIsValidationError(t *testing.T) {
	rs := &domain.RateSchedule{BaseRate: 8.0, EscalationType: domain.EscalationFixedPercentage}
	_, err := tariff.Escalate(rs, date(2024, time.January, 1), date(2023, time.December, 31))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestElapsedYears_LeapDayStart(t *testing.T) {
	start := date(2024, time.February, 29)
	assert.Equal(t, 0, tariff.ElapsedYears(start, date(2025, time.February, 28)))
	assert.Equal(t, 1, tariff.ElapsedYears(start, date(2025, time.March, 1)))
}

func TestNextEscalationDate(t *testing.T) {
	start := date(2024, time.April, 1)
	assert.Equal(t, date(2025, time.April, 1), tariff.NextEscalationDate(start, date(2024, time.April, 1)))
	assert.Equal(t, date(2027, time.April, 1), tariff.NextEscalationDate(start, date(2026, time.April, 1)))
}

func TestValidateEscalation(t *testing.T) {
	custom := func(steps ...domain.EscalationStep) *domain.RateSchedule {
		return &domain.RateSchedule{BaseRate: 8, EscalationType: domain.EscalationCustomSchedule, EscalationSchedule: steps}
	}

	tests := []struct {
		name    string
		rs      *domain.RateSchedule
		wantErr bool
	}{
		{"contiguous", custom(domain.EscalationStep{Year: 1, Rate: 0.03}, domain.EscalationStep{Year: 2, Rate: 0.02}), false},
		{"gap", custom(domain.EscalationStep{Year: 1, Rate: 0.03}, domain.EscalationStep{Year: 3, Rate: 0.02}), true},
		{"duplicate year", custom(domain.EscalationStep{Year: 1, Rate: 0.03}, domain.EscalationStep{Year: 1, Rate: 0.02}), true},
		{"year zero", custom(domain.EscalationStep{Year: 0, Rate: 0.03}), true},
		{"empty schedule", custom(), true},
		{"unknown type", &domain.RateSchedule{BaseRate: 8, EscalationType: "linear"}, true},
		{"fixed", &domain.RateSchedule{BaseRate: 8, EscalationType: domain.EscalationFixedPercentage, EscalationRate: 0.02}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tariff.ValidateEscalation(tt.rs)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
