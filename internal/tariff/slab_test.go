package tariff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chainfly/internal/domain"
	"chainfly/internal/tariff"
)

func residentialSlabs() []domain.Slab {
	return []domain.Slab{
		{Min: 0, Max: 100, Rate: 3.0, Unit: "kWh"},
		{Min: 100, Max: 300, Rate: 4.5, Unit: "kWh"},
		{Min: 300, Max: 500, Rate: 6.0, Unit: "kWh"},
	}
}

func sumCharges(charges []domain.SlabCharge) float64 {
	var sum float64
	for _, c := range charges {
		sum += c.Amount
	}
	return tariff.RoundAmount(sum)
}

func TestAllocateSlabs(t *testing.T) {
	tests := []struct {
		name      string
		quantity  float64
		wantTotal float64
		wantQty   []float64
	}{
		{"zero", 0, 0, []float64{0, 0, 0}},
		{"inside first slab", 50, 150, []float64{50, 0, 0}},
		{"spans two slabs", 250, 975, []float64{100, 150, 0}},
		{"exact upper bound", 500, 2400, []float64{100, 200, 200}},
		{"open tail above last max", 700, 3600, []float64{100, 200, 400}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc := tariff.AllocateSlabs(residentialSlabs(), tt.quantity)

			assert.InDelta(t, tt.wantTotal, alloc.Total, 1e-9)
			assert.InDelta(t, alloc.Total, sumCharges(alloc.Charges), 1e-9)
			for i, q := range tt.wantQty {
				assert.InDelta(t, q, alloc.Charges[i].Quantity, 1e-9, "slab %d", i)
			}
		})
	}
}

func TestAllocateSlabs_InputOrderIndependent(t *testing.T) {
	shuffled := []domain.Slab{
		{Min: 300, Max: 500, Rate: 6.0},
		{Min: 0, Max: 100, Rate: 3.0},
		{Min: 100, Max: 300, Rate: 4.5},
	}
	for _, q := range []float64{0, 42.5, 100, 299.99, 450, 1200} {
		sorted := tariff.AllocateSlabs(residentialSlabs(), q)
		unsorted := tariff.AllocateSlabs(shuffled, q)
		assert.Equal(t, sorted.Total, unsorted.Total, "quantity %.2f", q)
		assert.Equal(t, sorted.Charges[0].Min, unsorted.Charges[0].Min)
	}
}

func TestAllocateSlabs_DoesNotReorderInput(t *testing.T) {
	input := []domain.Slab{{Min: 100, Max: 200, Rate: 2}, {Min: 0, Max: 100, Rate: 1}}
	tariff.AllocateSlabs(input, 150)
	assert.Equal(t, 100.0, input[0].Min)
}

func TestSlabAllocation_BlendedRate(t *testing.T) {
	alloc := tariff.AllocateSlabs(residentialSlabs(), 250)
	assert.InDelta(t, 3.9, alloc.BlendedRate(250), 1e-9)
	assert.Equal(t, 0.0, alloc.BlendedRate(0))
}

func TestValidateSlabs(t *testing.T) {
	tests := []struct {
		name    string
		slabs   []domain.Slab
		wantErr bool
	}{
		{"none", nil, false},
		{"valid", residentialSlabs(), false},
		{"min not below max", []domain.Slab{{Min: 0, Max: 0, Rate: 1}}, true},
		{"not starting at zero", []domain.Slab{{Min: 10, Max: 100, Rate: 1}}, true},
		{"overlap", []domain.Slab{{Min: 0, Max: 100, Rate: 1}, {Min: 50, Max: 200, Rate: 2}}, true},
		{"gap", []domain.Slab{{Min: 0, Max: 100, Rate: 1}, {Min: 150, Max: 200, Rate: 2}}, true},
		{"descending", []domain.Slab{{Min: 100, Max: 200, Rate: 2}, {Min: 0, Max: 100, Rate: 1}}, true},
		{"negative rate", []domain.Slab{{Min: 0, Max: 100, Rate: -1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tariff.ValidateSlabs(tt.slabs)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}
