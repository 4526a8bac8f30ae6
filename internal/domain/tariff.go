package domain

import (
	"time"

	"github.com/google/uuid"
)

// Discom is a distribution company that publishes tariffs of record.
type Discom struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	Name                 string     `db:"name" json:"name"`
	State                string     `db:"state" json:"state"`
	APIEndpoint          string     `db:"api_endpoint" json:"api_endpoint,omitempty"`
	APIKey               string     `db:"api_key" json:"-"`
	UpdateFrequencyHours int        `db:"update_frequency_hours" json:"update_frequency_hours"`
	LastUpdatedAt        *time.Time `db:"last_updated_at" json:"last_updated_at"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// HasAPI reports whether the discom exposes an external tariff endpoint.
func (d *Discom) HasAPI() bool {
	return d.APIEndpoint != ""
}

// TariffStructure is a stored tariff, either from a regulatory order or a manual override.
type TariffStructure struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	DiscomID     uuid.UUID    `db:"discom_id" json:"discom_id"`
	Category     string       `db:"category" json:"category"`
	CustomerType string       `db:"customer_type" json:"customer_type"`
	BaseRate     float64      `db:"base_rate" json:"base_rate"`
	ValidFrom    time.Time    `db:"valid_from" json:"valid_from"`
	ValidTo      *time.Time   `db:"valid_to" json:"valid_to"`
	Slabs        SlabList     `db:"slabs" json:"slabs"`
	TOURates     TOURateList  `db:"tou_rates" json:"tou_rates"`
	Source       TariffSource `db:"source" json:"source"`
	Reference    string       `db:"reference" json:"reference"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// Covers reports whether the structure's validity window contains t.
func (s *TariffStructure) Covers(t time.Time) bool {
	if t.Before(s.ValidFrom) {
		return false
	}
	return s.ValidTo == nil || t.Before(*s.ValidTo)
}

// TariffRequest is the input to the dynamic tariff waterfall.
type TariffRequest struct {
	DiscomID     uuid.UUID `json:"discom_id" binding:"required"`
	State        string    `json:"state"`
	Category     string    `json:"category" binding:"required"`
	CustomerType string    `json:"customer_type" binding:"required"`
	Consumption  float64   `json:"consumption"`
	ContractDate time.Time `json:"contract_date"`
	IncludeSlabs bool      `json:"include_slabs"`
	IncludeTOU   bool      `json:"include_tou"`
}

// TariffAttempt records the outcome of one waterfall step.
type TariffAttempt struct {
	Source TariffSource `json:"source"`
	Error  string       `json:"error,omitempty"`
}

// TariffResolution is the waterfall result with its provenance.
type TariffResolution struct {
	Rate         float64         `json:"rate"`
	Slabs        []Slab          `json:"slabs,omitempty"`
	TOURates     []TOURate       `json:"tou_rates,omitempty"`
	Source       TariffSource    `json:"source"`
	Cached       bool            `json:"cached"`
	DiscomID     uuid.UUID       `json:"discom_id"`
	Category     string          `json:"category"`
	CustomerType string          `json:"customer_type"`
	ContractDate time.Time       `json:"contract_date"`
	Attempts     []TariffAttempt `json:"attempts"`
}

// SubsidyScheme is a read-only incentive that can reduce a CAPEX amount.
type SubsidyScheme struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	State         string      `db:"state" json:"state"`
	Type          SubsidyType `db:"type" json:"type"`
	Rate          float64     `db:"rate" json:"rate"`
	Unit          SubsidyUnit `db:"unit" json:"unit"`
	MinCapacityKW float64     `db:"min_capacity_kw" json:"min_capacity_kw"`
	MaxCapacityKW float64     `db:"max_capacity_kw" json:"max_capacity_kw"`
	ValidFrom     time.Time   `db:"valid_from" json:"valid_from"`
	ValidTo       *time.Time  `db:"valid_to" json:"valid_to"`
}

// Eligible reports whether an installation of capacityKW on date qualifies.
func (s *SubsidyScheme) Eligible(capacityKW float64, date time.Time) bool {
	if capacityKW < s.MinCapacityKW {
		return false
	}
	if s.MaxCapacityKW > 0 && capacityKW > s.MaxCapacityKW {
		return false
	}
	if date.Before(s.ValidFrom) {
		return false
	}
	return s.ValidTo == nil || date.Before(*s.ValidTo)
}
