package tariff

import "github.com/shopspring/decimal"

// RoundAmount rounds a currency amount to two decimal places, half away from zero.
func RoundAmount(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// RoundRate rounds a per-unit rate to four decimal places.
func RoundRate(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}

// Percent returns pct percent of amount, rounded as an amount.
func Percent(amount, pct float64) float64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromFloat(pct)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}
