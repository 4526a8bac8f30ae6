package domain

import (
	"time"

	"github.com/google/uuid"
)

// SlabCharge is the portion of consumption billed inside one slab.
type SlabCharge struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Rate     float64 `json:"rate"`
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// BandCharge is the portion of consumption billed inside one time-of-use band.
type BandCharge struct {
	Band     string  `json:"band"`
	Rate     float64 `json:"rate"`
	Quantity float64 `json:"quantity"`
	Amount   float64 `json:"amount"`
}

// ChargeBreakdown records how an invoice's base amount was derived.
type ChargeBreakdown struct {
	Slabs []SlabCharge `json:"slabs,omitempty"`
	Bands []BandCharge `json:"bands,omitempty"`
}

// Invoice is created at most once per contract and billing period.
type Invoice struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	ContractID        uuid.UUID       `db:"contract_id" json:"contract_id"`
	BillingPeriod     string          `db:"billing_period" json:"billing_period"`
	PeriodStart       time.Time       `db:"period_start" json:"period_start"`
	PeriodEnd         time.Time       `db:"period_end" json:"period_end"`
	ReadingDate       time.Time       `db:"reading_date" json:"reading_date"`
	KWhUsed           float64         `db:"kwh_used" json:"kwh_used"`
	BillableKWh       float64         `db:"billable_kwh" json:"billable_kwh"`
	TariffRateApplied float64         `db:"tariff_rate_applied" json:"tariff_rate_applied"`
	TariffSource      TariffSource    `db:"tariff_source" json:"tariff_source"`
	EscalationYears   int             `db:"escalation_years" json:"escalation_years"`
	EscalationPending bool            `db:"escalation_pending" json:"escalation_pending"`
	BaseAmount        float64         `db:"base_amount" json:"base_amount"`
	TaxAmount         float64         `db:"tax_amount" json:"tax_amount"`
	PenaltyAmount     float64         `db:"penalty_amount" json:"penalty_amount"`
	TotalAmount       float64         `db:"total_amount" json:"total_amount"`
	Currency          string          `db:"currency" json:"currency"`
	Breakdown         ChargeBreakdown `db:"breakdown" json:"breakdown"`
	Status            InvoiceStatus   `db:"status" json:"status"`
	DueDate           time.Time       `db:"due_date" json:"due_date"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	PaidAt            *time.Time      `db:"paid_at" json:"paid_at"`
}

// IsOverdue reports whether the invoice is unpaid past its due date plus grace days.
func (i *Invoice) IsOverdue(asOf time.Time, graceDays int) bool {
	if i.Status != InvoiceStatusUnpaid {
		return false
	}
	return asOf.After(i.DueDate.AddDate(0, 0, graceDays))
}

// Payment records money received against a contract.
type Payment struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	ContractID        uuid.UUID  `db:"contract_id" json:"contract_id"`
	InvoiceID         *uuid.UUID `db:"invoice_id" json:"invoice_id,omitempty"`
	Amount            float64    `db:"amount" json:"amount"`
	MonthlyFee        float64    `db:"monthly_fee" json:"monthly_fee"`
	EnergyCost        float64    `db:"energy_cost" json:"energy_cost"`
	EnergyConsumedKWh float64    `db:"energy_consumed_kwh" json:"energy_consumed_kwh"`
	PaidAt            time.Time  `db:"paid_at" json:"paid_at"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

// Installment is one scheduled CAPEX payment.
type Installment struct {
	Sequence int       `json:"sequence"`
	Label    string    `json:"label"`
	Percent  float64   `json:"percent"`
	Amount   float64   `json:"amount"`
	DueDate  time.Time `json:"due_date"`
}

// PaymentSchedule describes what a contract's business model obliges the customer to pay.
type PaymentSchedule struct {
	ContractID     uuid.UUID     `json:"contract_id"`
	BusinessModel  BusinessModel `json:"business_model"`
	Currency       string        `json:"currency"`
	GrossAmount    float64       `json:"gross_amount"`
	SubsidyAmount  float64       `json:"subsidy_amount"`
	NetAmount      float64       `json:"net_amount"`
	SubsidySchemes []uuid.UUID   `json:"subsidy_schemes,omitempty"`
	Installments   []Installment `json:"installments,omitempty"`
	MonthlyFee     float64       `json:"monthly_fee,omitempty"`
	EnergyRate     float64       `json:"energy_rate,omitempty"`
}
