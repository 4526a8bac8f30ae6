package domain

import (
	"time"

	"github.com/google/uuid"
)

// Customer is the counterparty of a contract.
type Customer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Address   string    `db:"address" json:"address"`
	State     string    `db:"state" json:"state"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SystemSpecs describes the installation. It is passed through, never computed.
type SystemSpecs struct {
	CapacityKW                   float64   `json:"capacity_kw" validate:"gt=0"`
	PanelType                    string    `json:"panel_type" validate:"required"`
	InverterType                 string    `json:"inverter_type" validate:"required"`
	InstallationDate             time.Time `json:"installation_date"`
	EstimatedAnnualProductionKWh float64   `json:"estimated_annual_production_kwh" validate:"gte=0"`
}

// EscalationStep is one entry of a custom escalation schedule.
type EscalationStep struct {
	Year int     `json:"year" validate:"gte=1"`
	Rate float64 `json:"rate"`
}

// Slab is a consumption tier priced at its own rate.
type Slab struct {
	Min  float64 `json:"min" validate:"gte=0"`
	Max  float64 `json:"max" validate:"gt=0"`
	Rate float64 `json:"rate" validate:"gte=0"`
	Unit string  `json:"unit"`
}

// TOURate prices consumption falling within a time-of-day band.
// TimeRange is "HH:MM-HH:MM" and may wrap midnight.
type TOURate struct {
	TimeRange string  `json:"time_range" validate:"required"`
	Rate      float64 `json:"rate" validate:"gte=0"`
	Unit      string  `json:"unit"`
}

// RateSchedule is the immutable description of how a contract's rate evolves.
type RateSchedule struct {
	BaseRate               float64          `json:"base_rate" validate:"gt=0"`
	EscalationType         EscalationType   `json:"escalation_type" validate:"required,oneof=fixed_percentage custom_schedule cpi_linked wholesale_price_index"`
	EscalationRate         float64          `json:"escalation_rate" validate:"gte=0"`
	EscalationSchedule     []EscalationStep `json:"escalation_schedule" validate:"dive"`
	Slabs                  []Slab           `json:"slabs" validate:"dive"`
	TOURates               []TOURate        `json:"tou_rates" validate:"dive"`
	TaxRatePercent         float64          `json:"tax_rate_percent" validate:"gte=0"`
	LatePenaltyRatePercent float64          `json:"late_penalty_rate_percent" validate:"gte=0,lte=10"`
	GracePeriodDays        int              `json:"grace_period_days" validate:"gte=0"`
	Currency               string           `json:"currency" validate:"required,len=3"`
}

// DynamicTariff holds the lookup keys used when a contract bills through the
// DISCOM tariff waterfall instead of its own schedule.
type DynamicTariff struct {
	DiscomID     uuid.UUID `json:"discom_id" validate:"required"`
	State        string    `json:"state" validate:"required"`
	Category     string    `json:"category" validate:"required"`
	CustomerType string    `json:"customer_type" validate:"required"`
	IncludeSlabs bool      `json:"include_slabs"`
	IncludeTOU   bool      `json:"include_tou"`
}

// Contract is a power purchase agreement. Status and running totals are derived
// state and only change through lifecycle transitions.
type Contract struct {
	ID                    uuid.UUID      `db:"id" json:"id"`
	CustomerID            uuid.UUID      `db:"customer_id" json:"customer_id"`
	SiteState             string         `db:"site_state" json:"site_state"`
	Timezone              string         `db:"timezone" json:"timezone"`
	SystemSpecs           SystemSpecs    `db:"system_specs" json:"system_specs"`
	RateSchedule          RateSchedule   `db:"rate_schedule" json:"rate_schedule"`
	TariffMode            TariffMode     `db:"tariff_mode" json:"tariff_mode"`
	DynamicTariff         *DynamicTariff `db:"dynamic_tariff" json:"dynamic_tariff,omitempty"`
	BillingCycle          BillingCycle   `db:"billing_cycle" json:"billing_cycle"`
	StartDate             time.Time      `db:"start_date" json:"start_date"`
	EndDate               time.Time      `db:"end_date" json:"end_date"`
	Status                ContractStatus `db:"status" json:"status"`
	BusinessModel         BusinessModel  `db:"business_model" json:"business_model"`
	CapexAmount           float64        `db:"capex_amount" json:"capex_amount"`
	OpexMonthlyFee        float64        `db:"opex_monthly_fee" json:"opex_monthly_fee"`
	OpexEnergyRate        float64        `db:"opex_energy_rate" json:"opex_energy_rate"`
	ContractDurationYears float64        `db:"contract_duration_years" json:"contract_duration_years"`
	CurrentTariffRate     float64        `db:"current_tariff_rate" json:"current_tariff_rate"`
	NextEscalationDate    *time.Time     `db:"next_escalation_date" json:"next_escalation_date"`
	TotalEnergyProduced   float64        `db:"total_energy_produced" json:"total_energy_produced"`
	TotalBilled           float64        `db:"total_billed" json:"total_billed"`
	TotalPaid             float64        `db:"total_paid" json:"total_paid"`
	LastBillingDate       *time.Time     `db:"last_billing_date" json:"last_billing_date"`
	SignedAt              *time.Time     `db:"signed_at" json:"signed_at"`
	Version               int            `db:"version" json:"version"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// Location returns the contract's billing timezone, defaulting to UTC when the
// stored name cannot be loaded.
func (c *Contract) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UsageReading is one metered energy reading for a contract.
type UsageReading struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ContractID     uuid.UUID  `db:"contract_id" json:"contract_id"`
	KWhUsed        float64    `db:"kwh_used" json:"kwh_used"`
	ReadingDate    time.Time  `db:"reading_date" json:"reading_date"`
	TimestampStart *time.Time `db:"timestamp_start" json:"timestamp_start,omitempty"`
	TimestampEnd   *time.Time `db:"timestamp_end" json:"timestamp_end,omitempty"`
	ImportEnergy   *float64   `db:"import_energy" json:"import_energy,omitempty"`
	ExportEnergy   *float64   `db:"export_energy" json:"export_energy,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// HasInterval reports whether the reading carries a metering interval.
func (r *UsageReading) HasInterval() bool {
	return r.TimestampStart != nil && r.TimestampEnd != nil
}

// IsNetMetered reports whether import/export energy should be netted.
func (r *UsageReading) IsNetMetered() bool {
	return r.ImportEnergy != nil || r.ExportEnergy != nil
}
