package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"chainfly/internal/domain"
	"chainfly/internal/tariff"
)

// InvoiceInput is everything the engine needs to bill one reading. The engine
// never reads storage; callers load Existing and, for dynamic contracts,
// resolve the tariff first.
type InvoiceInput struct {
	InvoiceID  uuid.UUID
	Contract   *domain.Contract
	Reading    *domain.UsageReading
	Existing   []domain.Invoice
	Resolution *domain.TariffResolution
	Now        time.Time
}

// InvoiceResult is the new contract state and the invoice derived from it.
// Both must be committed together.
type InvoiceResult struct {
	Contract *domain.Contract
	Invoice  *domain.Invoice
}

// effectiveTariff is the rate basis an invoice is priced on.
type effectiveTariff struct {
	baseRate float64
	slabs    []domain.Slab
	bands    []domain.TOURate
	source   domain.TariffSource
	years    int
	pending  bool
}

// GenerateInvoice prices one usage reading against the contract's terms.
func GenerateInvoice(in InvoiceInput) (*InvoiceResult, error) {
	c := in.Contract
	if status := EffectiveStatus(c, in.Now); status != domain.ContractStatusActive {
		return nil, fmt.Errorf("contract %s is %s: %w", c.ID, status, domain.ErrContractNotActive)
	}
	if err := ValidateReading(in.Reading); err != nil {
		return nil, err
	}
	reading := in.Reading
	if reading.ReadingDate.Before(c.StartDate) || !reading.ReadingDate.Before(c.EndDate) {
		return nil, domain.NewValidationError("reading_date", "outside contract term %s to %s",
			c.StartDate.Format(time.DateOnly), c.EndDate.Format(time.DateOnly))
	}

	loc := c.Location()
	period, err := OpenPeriod(c, reading.ReadingDate, in.Existing)
	if err != nil {
		return nil, err
	}

	et, err := resolveTariff(c, reading.ReadingDate, in.Resolution)
	if err != nil {
		return nil, err
	}

	quantity := tariff.BillableQuantity(reading)
	var interval *tariff.Interval
	if reading.HasInterval() {
		interval = &tariff.Interval{Start: *reading.TimestampStart, End: *reading.TimestampEnd}
	}
	baseAmount, breakdown, err := price(et, quantity, interval, loc)
	if err != nil {
		return nil, err
	}

	rs := &c.RateSchedule
	taxAmount := tariff.Percent(baseAmount, rs.TaxRatePercent)
	penaltyAmount := tariff.Percent(outstanding(in.Existing, reading.ReadingDate, rs.GracePeriodDays), rs.LatePenaltyRatePercent)
	totalAmount := tariff.RoundAmount(baseAmount + taxAmount + penaltyAmount)

	applied := et.baseRate
	if quantity > 0 {
		applied = tariff.RoundRate(baseAmount / quantity)
	}

	inv := &domain.Invoice{
		ID:                in.InvoiceID,
		ContractID:        c.ID,
		BillingPeriod:     period.Key,
		PeriodStart:       period.Start,
		PeriodEnd:         period.End,
		ReadingDate:       reading.ReadingDate,
		KWhUsed:           reading.KWhUsed,
		BillableKWh:       quantity,
		TariffRateApplied: applied,
		TariffSource:      et.source,
		EscalationYears:   et.years,
		EscalationPending: et.pending,
		BaseAmount:        baseAmount,
		TaxAmount:         taxAmount,
		PenaltyAmount:     penaltyAmount,
		TotalAmount:       totalAmount,
		Currency:          rs.Currency,
		Breakdown:         breakdown,
		Status:            domain.InvoiceStatusUnpaid,
		DueDate:           DueDate(reading.ReadingDate, rs.GracePeriodDays, period),
		CreatedAt:         in.Now,
	}

	next := *c
	next.Status = domain.ContractStatusActive
	next.TotalBilled = tariff.RoundAmount(c.TotalBilled + totalAmount)
	next.TotalEnergyProduced = c.TotalEnergyProduced + reading.KWhUsed
	lastBilling := reading.ReadingDate
	next.LastBillingDate = &lastBilling
	next.CurrentTariffRate = et.baseRate
	nextEscalation := tariff.NextEscalationDate(c.StartDate, reading.ReadingDate)
	next.NextEscalationDate = &nextEscalation
	next.UpdatedAt = in.Now

	return &InvoiceResult{Contract: &next, Invoice: inv}, nil
}

func resolveTariff(c *domain.Contract, at time.Time, res *domain.TariffResolution) (effectiveTariff, error) {
	rs := &c.RateSchedule
	switch c.TariffMode {
	case domain.TariffModeStatic, "":
		esc, err := tariff.Escalate(rs, c.StartDate, at)
		if err != nil {
			return effectiveTariff{}, err
		}
		return effectiveTariff{
			baseRate: esc.Rate,
			slabs:    rs.Slabs,
			bands:    rs.TOURates,
			source:   domain.TariffSourceContract,
			years:    esc.ElapsedYears,
			pending:  esc.Pending,
		}, nil
	case domain.TariffModeDynamic:
		if res == nil {
			return effectiveTariff{}, fmt.Errorf("dynamic contract %s billed without a tariff resolution: %w", c.ID, domain.ErrTariffUnresolvable)
		}
		et := effectiveTariff{
			baseRate: res.Rate,
			slabs:    rs.Slabs,
			bands:    rs.TOURates,
			source:   res.Source,
			years:    tariff.ElapsedYears(c.StartDate, at),
		}
		if len(res.Slabs) > 0 {
			et.slabs = res.Slabs
		}
		if len(res.TOURates) > 0 {
			et.bands = res.TOURates
		}
		return et, nil
	default:
		return effectiveTariff{}, domain.NewValidationError("tariff_mode", "unknown mode %q", c.TariffMode)
	}
}

// price allocates quantity over slabs and time bands. With both configured,
// the slab blended rate is the reference price and each band scales it by
// band rate over base rate.
func price(et effectiveTariff, quantity float64, iv *tariff.Interval, loc *time.Location) (float64, domain.ChargeBreakdown, error) {
	var breakdown domain.ChargeBreakdown
	hasSlabs, hasBands := len(et.slabs) > 0, len(et.bands) > 0

	switch {
	case !hasSlabs && !hasBands:
		return tariff.RoundAmount(quantity * et.baseRate), breakdown, nil
	case hasSlabs && !hasBands:
		alloc := tariff.AllocateSlabs(et.slabs, quantity)
		breakdown.Slabs = alloc.Charges
		return alloc.Total, breakdown, nil
	case !hasSlabs && hasBands:
		alloc, err := tariff.AllocateTimeOfUse(et.bands, quantity, iv, et.baseRate, loc)
		if err != nil {
			return 0, breakdown, err
		}
		breakdown.Bands = alloc.Charges
		return alloc.Total, breakdown, nil
	}

	slabs := tariff.AllocateSlabs(et.slabs, quantity)
	breakdown.Slabs = slabs.Charges
	blended := slabs.BlendedRate(quantity)
	if iv == nil || et.baseRate <= 0 {
		breakdown.Bands = []domain.BandCharge{{
			Band:     domain.UnspecifiedBand,
			Rate:     tariff.RoundRate(blended),
			Quantity: quantity,
			Amount:   slabs.Total,
		}}
		return slabs.Total, breakdown, nil
	}

	bands, err := tariff.ParseBands(et.bands)
	if err != nil {
		return 0, breakdown, domain.NewValidationError("tou_rates", "%v", err)
	}
	shares, err := tariff.Shares(bands, *iv, et.baseRate, loc)
	if err != nil {
		return 0, breakdown, err
	}
	var total float64
	for _, sh := range shares {
		rate := blended * sh.Rate / et.baseRate
		q := quantity * sh.Fraction
		amount := tariff.RoundAmount(q * rate)
		breakdown.Bands = append(breakdown.Bands, domain.BandCharge{
			Band:     sh.Band,
			Rate:     tariff.RoundRate(rate),
			Quantity: q,
			Amount:   amount,
		})
		total += amount
	}
	return tariff.RoundAmount(total), breakdown, nil
}

// outstanding sums prior unpaid invoices that are past due plus grace as of asOf.
func outstanding(existing []domain.Invoice, asOf time.Time, graceDays int) float64 {
	var sum float64
	for i := range existing {
		if existing[i].IsOverdue(asOf, graceDays) {
			sum += existing[i].TotalAmount
		}
	}
	return tariff.RoundAmount(sum)
}

// OpenPeriod returns the billing period containing readingDate, or
// ErrDuplicateBillingPeriod when one of existing already bills it.
func OpenPeriod(c *domain.Contract, readingDate time.Time, existing []domain.Invoice) (Period, error) {
	period, err := PeriodFor(c.BillingCycle, readingDate, c.Location())
	if err != nil {
		return Period{}, err
	}
	for i := range existing {
		if existing[i].BillingPeriod == period.Key {
			return Period{}, fmt.Errorf("contract %s period %s: %w", c.ID, period.Key, domain.ErrDuplicateBillingPeriod)
		}
	}
	return period, nil
}

// DueDate is the reading date plus the grace period, never earlier than the
// end of the billing period the reading falls in.
func DueDate(readingDate time.Time, graceDays int, period Period) time.Time {
	due := readingDate.AddDate(0, 0, graceDays)
	if due.Before(period.End) {
		return period.End
	}
	return due
}
