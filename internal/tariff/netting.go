package tariff

import "chainfly/internal/domain"

// BillableQuantity nets import against export for net-metered readings. A net
// export bills as zero.
func BillableQuantity(r *domain.UsageReading) float64 {
	if !r.IsNetMetered() {
		return r.KWhUsed
	}
	var imp, exp float64
	if r.ImportEnergy != nil {
		imp = *r.ImportEnergy
	}
	if r.ExportEnergy != nil {
		exp = *r.ExportEnergy
	}
	if net := imp - exp; net > 0 {
		return net
	}
	return 0
}
