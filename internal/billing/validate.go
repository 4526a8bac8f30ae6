package billing

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"chainfly/internal/domain"
	"chainfly/internal/tariff"
)

// Terms are the caller-supplied contract terms.
type Terms struct {
	CustomerID     uuid.UUID             `json:"customer_id" validate:"required"`
	SiteState      string                `json:"site_state"`
	Timezone       string                `json:"timezone"`
	SystemSpecs    domain.SystemSpecs    `json:"system_specs"`
	RateSchedule   domain.RateSchedule   `json:"rate_schedule"`
	TariffMode     domain.TariffMode     `json:"tariff_mode" validate:"omitempty,oneof=static dynamic"`
	DynamicTariff  *domain.DynamicTariff `json:"dynamic_tariff" validate:"required_if=TariffMode dynamic"`
	BillingCycle   domain.BillingCycle   `json:"billing_cycle" validate:"required,oneof=monthly quarterly annually"`
	StartDate      time.Time             `json:"start_date" validate:"required"`
	EndDate        time.Time             `json:"end_date" validate:"required"`
	BusinessModel  domain.BusinessModel  `json:"business_model" validate:"required,oneof=capex opex"`
	CapexAmount    float64               `json:"capex_amount" validate:"gte=0"`
	OpexMonthlyFee float64               `json:"opex_monthly_fee" validate:"gte=0"`
	OpexEnergyRate float64               `json:"opex_energy_rate" validate:"gte=0"`
}

// Limits bound how far a contract start may sit from the creation date.
type Limits struct {
	MaxBackdateDays    int
	MaxFutureStartDays int
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateTerms checks contract terms at creation time. All configuration
// errors surface here so invoicing never meets a malformed schedule.
func ValidateTerms(t *Terms, now time.Time, limits Limits) error {
	if err := validate.Struct(t); err != nil {
		return fromValidator(err)
	}

	if !t.StartDate.Before(t.EndDate) {
		return domain.NewValidationError("end_date", "must be after start_date")
	}
	if limits.MaxBackdateDays > 0 && t.StartDate.Before(now.AddDate(0, 0, -limits.MaxBackdateDays)) {
		return domain.NewValidationError("start_date", "cannot be more than %d days in the past", limits.MaxBackdateDays)
	}
	if limits.MaxFutureStartDays > 0 && t.StartDate.After(now.AddDate(0, 0, limits.MaxFutureStartDays)) {
		return domain.NewValidationError("start_date", "cannot be more than %d days in the future", limits.MaxFutureStartDays)
	}
	if t.Timezone != "" {
		if _, err := time.LoadLocation(t.Timezone); err != nil {
			return domain.NewValidationError("timezone", "unknown zone %q", t.Timezone)
		}
	}

	rs := &t.RateSchedule
	if err := tariff.ValidateEscalation(rs); err != nil {
		return err
	}
	if err := tariff.ValidateSlabs(rs.Slabs); err != nil {
		return err
	}
	if err := tariff.ValidateTOU(rs.TOURates); err != nil {
		return err
	}

	switch t.BusinessModel {
	case domain.BusinessModelCapex:
		if t.CapexAmount <= 0 {
			return domain.NewValidationError("capex_amount", "must be positive for capex contracts")
		}
	case domain.BusinessModelOpex:
		if t.OpexMonthlyFee <= 0 && t.OpexEnergyRate <= 0 {
			return domain.NewValidationError("opex_monthly_fee", "opex contracts need a monthly fee or an energy rate")
		}
	}
	return nil
}

func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("terms", "%v", err)
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Terms.")
	if fe.Param() != "" {
		return domain.NewValidationError(field, "failed %s=%s", fe.Tag(), fe.Param())
	}
	return domain.NewValidationError(field, "failed %s", fe.Tag())
}

// ValidateReading checks a usage reading before it is stored or billed.
func ValidateReading(r *domain.UsageReading) error {
	if r.KWhUsed <= 0 {
		return domain.NewValidationError("kwh_used", "must be positive")
	}
	if r.ReadingDate.IsZero() {
		return domain.NewValidationError("reading_date", "is required")
	}
	if (r.TimestampStart == nil) != (r.TimestampEnd == nil) {
		return domain.NewValidationError("timestamp_end", "interval needs both start and end")
	}
	if r.HasInterval() && !r.TimestampEnd.After(*r.TimestampStart) {
		return domain.NewValidationError("timestamp_end", "must be after timestamp_start")
	}
	if r.ImportEnergy != nil && *r.ImportEnergy < 0 {
		return domain.NewValidationError("import_energy", "must not be negative")
	}
	if r.ExportEnergy != nil && *r.ExportEnergy < 0 {
		return domain.NewValidationError("export_energy", "must not be negative")
	}
	return nil
}
