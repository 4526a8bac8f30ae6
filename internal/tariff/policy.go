package tariff

import "strings"

// PolicyTable holds rule-based rates keyed by customer type, then category.
type PolicyTable map[string]map[string]float64

// DefaultPolicy returns the built-in customer type x category rates, in
// currency units per kWh.
func DefaultPolicy() PolicyTable {
	return PolicyTable{
		"residential": {
			"domestic":     6.50,
			"lt_domestic":  6.50,
			"rooftop":      5.90,
			"agricultural": 3.20,
		},
		"commercial": {
			"lt_commercial": 8.75,
			"ht_commercial": 8.10,
			"rooftop":       7.40,
		},
		"industrial": {
			"lt_industrial": 7.90,
			"ht_industrial": 7.25,
			"open_access":   6.80,
		},
		"institutional": {
			"public_service": 7.10,
			"rooftop":        6.30,
		},
	}
}

// Rate looks up the calculated rate. Keys are matched case-insensitively.
func (p PolicyTable) Rate(customerType, category string) (float64, bool) {
	byCategory, ok := p[strings.ToLower(customerType)]
	if !ok {
		return 0, false
	}
	rate, ok := byCategory[strings.ToLower(category)]
	if !ok || rate <= 0 {
		return 0, false
	}
	return rate, true
}
