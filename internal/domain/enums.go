package domain

// ContractStatus represents the lifecycle of a power purchase agreement.
type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusActive     ContractStatus = "active"
	ContractStatusExpired    ContractStatus = "expired"
	ContractStatusTerminated ContractStatus = "terminated"
)

// BlocksOverlap reports whether a contract in this status reserves its date window.
func (s ContractStatus) BlocksOverlap() bool {
	return s == ContractStatusDraft || s == ContractStatusActive
}

// BusinessModel is the ownership model of the installation.
type BusinessModel string

const (
	BusinessModelCapex BusinessModel = "capex"
	BusinessModelOpex  BusinessModel = "opex"
)

// BillingCycle determines how readings are bucketed into billing periods.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleAnnually  BillingCycle = "annually"
)

// EscalationType selects how the base rate evolves over the contract term.
type EscalationType string

const (
	EscalationFixedPercentage     EscalationType = "fixed_percentage"
	EscalationCustomSchedule      EscalationType = "custom_schedule"
	EscalationCPILinked           EscalationType = "cpi_linked"
	EscalationWholesalePriceIndex EscalationType = "wholesale_price_index"
)

// TariffMode selects between a contract's own rate schedule and the DISCOM waterfall.
type TariffMode string

const (
	TariffModeStatic  TariffMode = "static"
	TariffModeDynamic TariffMode = "dynamic"
)

// TariffSource is the provenance of a resolved tariff.
type TariffSource string

const (
	TariffSourceDiscomAPI       TariffSource = "discom_api"
	TariffSourceRegulatoryOrder TariffSource = "regulatory_order"
	TariffSourceManualOverride  TariffSource = "manual_override"
	TariffSourceCalculated      TariffSource = "calculated"
	TariffSourceFallback        TariffSource = "fallback"
	TariffSourceContract        TariffSource = "contract"
)

// InvoiceStatus represents the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// SubsidyType classifies government incentive schemes.
type SubsidyType string

const (
	SubsidyTypeCapital    SubsidyType = "capital"
	SubsidyTypeGeneration SubsidyType = "generation"
	SubsidyTypeTax        SubsidyType = "tax"
)

// SubsidyUnit describes how a subsidy rate is applied.
type SubsidyUnit string

const (
	SubsidyUnitPercent SubsidyUnit = "percent"
	SubsidyUnitPerKW   SubsidyUnit = "per_kw"
	SubsidyUnitPerKWh  SubsidyUnit = "per_kwh"
)

// UnspecifiedBand labels consumption that falls outside every configured time band.
const UnspecifiedBand = "unspecified"

// Role is the caller's role carried in the bearer token.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)
