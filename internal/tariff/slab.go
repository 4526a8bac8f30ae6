package tariff

import (
	"sort"

	"chainfly/internal/domain"
)

// SlabAllocation is the per-slab split of a consumption quantity.
type SlabAllocation struct {
	Charges []domain.SlabCharge
	Total   float64
}

// BlendedRate is the effective per-unit rate across all slabs.
func (a SlabAllocation) BlendedRate(quantity float64) float64 {
	if quantity <= 0 {
		return 0
	}
	return a.Total / quantity
}

func sortedSlabs(slabs []domain.Slab) []domain.Slab {
	out := make([]domain.Slab, len(slabs))
	copy(out, slabs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Min < out[j].Min })
	return out
}

// AllocateSlabs splits quantity across slabs in ascending order. Consumption
// above the highest slab's max is charged at that slab's rate. Slabs are
// assumed to have passed ValidateSlabs.
func AllocateSlabs(slabs []domain.Slab, quantity float64) SlabAllocation {
	ordered := sortedSlabs(slabs)
	alloc := SlabAllocation{Charges: make([]domain.SlabCharge, 0, len(ordered))}
	if quantity < 0 {
		quantity = 0
	}

	for i, slab := range ordered {
		upper := slab.Max
		if i == len(ordered)-1 && quantity > upper {
			upper = quantity
		}
		inSlab := minFloat(quantity, upper) - slab.Min
		if inSlab < 0 {
			inSlab = 0
		}
		amount := RoundAmount(inSlab * slab.Rate)
		alloc.Charges = append(alloc.Charges, domain.SlabCharge{
			Min:      slab.Min,
			Max:      slab.Max,
			Rate:     slab.Rate,
			Quantity: inSlab,
			Amount:   amount,
		})
		alloc.Total += amount
	}
	alloc.Total = RoundAmount(alloc.Total)
	return alloc
}

// ValidateSlabs enforces min < max, ascending order, no overlap and no gaps,
// starting from zero.
func ValidateSlabs(slabs []domain.Slab) error {
	if len(slabs) == 0 {
		return nil
	}
	for i := range slabs {
		if slabs[i].Min >= slabs[i].Max {
			return domain.NewValidationError("slabs", "slab %d: min %.2f must be below max %.2f", i, slabs[i].Min, slabs[i].Max)
		}
		if slabs[i].Rate < 0 {
			return domain.NewValidationError("slabs", "slab %d: rate must not be negative", i)
		}
		if i > 0 && slabs[i].Min < slabs[i-1].Min {
			return domain.NewValidationError("slabs", "slabs must be sorted by ascending min")
		}
	}
	if slabs[0].Min != 0 {
		return domain.NewValidationError("slabs", "first slab must start at 0")
	}
	for i := 1; i < len(slabs); i++ {
		switch {
		case slabs[i].Min < slabs[i-1].Max:
			return domain.NewValidationError("slabs", "slab %d overlaps slab %d", i, i-1)
		case slabs[i].Min > slabs[i-1].Max:
			return domain.NewValidationError("slabs", "gap between slab %d and slab %d", i-1, i)
		}
	}
	return nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
