package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainfly/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Len(t, row, len(columns))
	assert.Equal(t, "Invoice ID", row[0])
	assert.Equal(t, "Paid At", row[len(row)-1])
}

func TestWriteInvoices(t *testing.T) {
	paidAt := time.Date(2024, time.April, 2, 10, 30, 0, 0, time.UTC)
	invoices := []domain.Invoice{
		{
			ID:                uuid.MustParse("7a1e6c2c-0d3b-4f55-9a0e-5b7b7f7f1a01"),
			BillingPeriod:     "2024-03",
			PeriodStart:       time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
			PeriodEnd:         time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			ReadingDate:       time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
			KWhUsed:           500,
			BillableKWh:       487.5,
			TariffRateApplied: 8.16,
			TariffSource:      domain.TariffSourceContract,
			EscalationYears:   1,
			BaseAmount:        3978,
			TaxAmount:         716.04,
			TotalAmount:       4694.04,
			Currency:          "INR",
			Status:            domain.InvoiceStatusPaid,
			DueDate:           time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			PaidAt:            &paidAt,
		},
		{
			ID:            uuid.New(),
			BillingPeriod: "2024-04",
			Status:        domain.InvoiceStatusUnpaid,
		},
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices(invoices))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "7a1e6c2c-0d3b-4f55-9a0e-5b7b7f7f1a01", first[0])
	assert.Equal(t, "2024-03", first[1])
	assert.Equal(t, "2024-03-15", first[4])
	assert.Equal(t, "487.5", first[6])
	assert.Equal(t, "8.1600", first[7])
	assert.Equal(t, "contract", first[8])
	assert.Equal(t, "4694.04", first[13])
	assert.Equal(t, "2024-04-02T10:30:00Z", first[17])

	assert.Equal(t, "unpaid", rows[1][15])
	assert.Empty(t, rows[1][17])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sunrise Textiles / Plant 2", "Sunrise_Textiles_Plant_2"},
		{"__a__b__", "a_b"},
		{"ok-name_1", "ok-name_1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in))
	}
}

func TestBuildFilename(t *testing.T) {
	got := BuildFilename("Acme PPA", time.Date(2024, time.May, 9, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "statement_Acme_PPA_2024-05-09.csv", got)
}
