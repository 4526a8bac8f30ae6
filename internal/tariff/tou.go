package tariff

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"chainfly/internal/domain"
)

const minutesPerDay = 24 * 60

// Interval is a half-open metering window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// TimeBand is a parsed time-of-use band in minutes after local midnight.
type TimeBand struct {
	Label string
	Start int
	End   int
	Rate  float64
}

// Wraps reports whether the band crosses midnight.
func (b TimeBand) Wraps() bool {
	return b.End <= b.Start
}

func (b TimeBand) covers(minute int) bool {
	if b.Wraps() {
		return minute >= b.Start || minute < b.End
	}
	return minute >= b.Start && minute < b.End
}

// BandShare is the fraction of an interval that falls inside one band.
type BandShare struct {
	Band     string
	Rate     float64
	Fraction float64
}

// TOUAllocation is the per-band split of a consumption quantity.
type TOUAllocation struct {
	Charges []domain.BandCharge
	Total   float64
}

// ParseTimeRange parses "HH:MM-HH:MM" into minutes after midnight. An en dash
// separator is accepted as well.
func ParseTimeRange(s string) (start, end int, err error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), "–", "-")
	parts := strings.Split(normalized, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("time range %q: expected HH:MM-HH:MM", s)
	}
	if start, err = parseClock(parts[0]); err != nil {
		return 0, 0, fmt.Errorf("time range %q: %w", s, err)
	}
	if end, err = parseClock(parts[1]); err != nil {
		return 0, 0, fmt.Errorf("time range %q: %w", s, err)
	}
	if start == end {
		return 0, 0, fmt.Errorf("time range %q: start and end must differ", s)
	}
	return start, end, nil
}

func parseClock(s string) (int, error) {
	hm := strings.Split(strings.TrimSpace(s), ":")
	if len(hm) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(hm[0])
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(hm[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return (h*60 + m) % minutesPerDay, nil
}

// ParseBands converts configured ToU rates into bands.
func ParseBands(rates []domain.TOURate) ([]TimeBand, error) {
	bands := make([]TimeBand, 0, len(rates))
	for _, r := range rates {
		start, end, err := ParseTimeRange(r.TimeRange)
		if err != nil {
			return nil, err
		}
		bands = append(bands, TimeBand{Label: r.TimeRange, Start: start, End: end, Rate: r.Rate})
	}
	return bands, nil
}

// ValidateTOU rejects unparseable ranges and bands that overlap each other.
// Full-day coverage is not required.
func ValidateTOU(rates []domain.TOURate) error {
	bands, err := ParseBands(rates)
	if err != nil {
		return domain.NewValidationError("tou_rates", "%v", err)
	}
	var owner [minutesPerDay]int
	for i, b := range bands {
		if b.Rate < 0 {
			return domain.NewValidationError("tou_rates", "band %s: rate must not be negative", b.Label)
		}
		for m := 0; m < minutesPerDay; m++ {
			if !b.covers(m) {
				continue
			}
			if owner[m] != 0 {
				return domain.NewValidationError("tou_rates", "band %s overlaps band %s", b.Label, bands[owner[m]-1].Label)
			}
			owner[m] = i + 1
		}
	}
	return nil
}

// Shares splits an interval across bands by overlapping duration. Time not
// covered by any band is returned as the unspecified share with rate baseRate.
func Shares(bands []TimeBand, iv Interval, baseRate float64, loc *time.Location) ([]BandShare, error) {
	start, end := iv.Start.In(loc), iv.End.In(loc)
	total := end.Sub(start)
	if total <= 0 {
		return nil, domain.NewValidationError("timestamp_end", "must be after timestamp_start")
	}

	shares := make([]BandShare, 0, len(bands)+1)
	var matched time.Duration
	for _, b := range bands {
		d := bandOverlap(b, start, end, loc)
		if d <= 0 {
			continue
		}
		matched += d
		shares = append(shares, BandShare{Band: b.Label, Rate: b.Rate, Fraction: float64(d) / float64(total)})
	}
	if rest := total - matched; rest > 0 {
		shares = append(shares, BandShare{Band: domain.UnspecifiedBand, Rate: baseRate, Fraction: float64(rest) / float64(total)})
	}
	return shares, nil
}

// bandOverlap sums the intersection of [start, end) with every daily occurrence
// of the band. Occurrences are built from wall-clock times so DST shifts are honored.
func bandOverlap(b TimeBand, start, end time.Time, loc *time.Location) time.Duration {
	var sum time.Duration
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, -1)
	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		winStart := time.Date(day.Year(), day.Month(), day.Day(), 0, b.Start, 0, 0, loc)
		endDay := day
		if b.Wraps() {
			endDay = day.AddDate(0, 0, 1)
		}
		winEnd := time.Date(endDay.Year(), endDay.Month(), endDay.Day(), 0, b.End, 0, 0, loc)
		sum += intersect(winStart, winEnd, start, end)
	}
	return sum
}

func intersect(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	lo, hi := aStart, aEnd
	if bStart.After(lo) {
		lo = bStart
	}
	if bEnd.Before(hi) {
		hi = bEnd
	}
	if !hi.After(lo) {
		return 0
	}
	return hi.Sub(lo)
}

// AllocateTimeOfUse prices quantity per band. Without an interval the whole
// quantity is attributed to the unspecified band at baseRate.
func AllocateTimeOfUse(rates []domain.TOURate, quantity float64, iv *Interval, baseRate float64, loc *time.Location) (TOUAllocation, error) {
	if iv == nil {
		amount := RoundAmount(quantity * baseRate)
		return TOUAllocation{
			Charges: []domain.BandCharge{{Band: domain.UnspecifiedBand, Rate: baseRate, Quantity: quantity, Amount: amount}},
			Total:   amount,
		}, nil
	}

	bands, err := ParseBands(rates)
	if err != nil {
		return TOUAllocation{}, domain.NewValidationError("tou_rates", "%v", err)
	}
	shares, err := Shares(bands, *iv, baseRate, loc)
	if err != nil {
		return TOUAllocation{}, err
	}

	alloc := TOUAllocation{Charges: make([]domain.BandCharge, 0, len(shares))}
	for _, sh := range shares {
		q := quantity * sh.Fraction
		amount := RoundAmount(q * sh.Rate)
		alloc.Charges = append(alloc.Charges, domain.BandCharge{Band: sh.Band, Rate: sh.Rate, Quantity: q, Amount: amount})
		alloc.Total += amount
	}
	alloc.Total = RoundAmount(alloc.Total)
	return alloc, nil
}
