package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"chainfly/internal/domain"
)

// BOM lets spreadsheet tools on Windows detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns is the statement header row.
var columns = []string{
	"Invoice ID",
	"Billing Period",
	"Period Start",
	"Period End",
	"Reading Date",
	"kWh Used",
	"Billable kWh",
	"Tariff Rate",
	"Tariff Source",
	"Escalation Years",
	"Base Amount",
	"Tax Amount",
	"Penalty Amount",
	"Total Amount",
	"Currency",
	"Status",
	"Due Date",
	"Paid At",
}

// Writer writes a contract's invoices as a CSV billing statement.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices writes one row per invoice.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func invoiceToRow(inv *domain.Invoice) []string {
	return []string{
		inv.ID.String(),
		inv.BillingPeriod,
		formatDate(inv.PeriodStart),
		formatDate(inv.PeriodEnd),
		formatDate(inv.ReadingDate),
		formatQuantity(inv.KWhUsed),
		formatQuantity(inv.BillableKWh),
		strconv.FormatFloat(inv.TariffRateApplied, 'f', 4, 64),
		string(inv.TariffSource),
		strconv.Itoa(inv.EscalationYears),
		formatMoney(inv.BaseAmount),
		formatMoney(inv.TaxAmount),
		formatMoney(inv.PenaltyAmount),
		formatMoney(inv.TotalAmount),
		inv.Currency,
		string(inv.Status),
		formatDate(inv.DueDate),
		formatTime(inv.PaidAt),
	}
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename makes name safe for a Content-Disposition header and
// truncates it to 100 characters.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns "statement_{label}_{YYYY-MM-DD}.csv".
func BuildFilename(label string, asOf time.Time) string {
	return fmt.Sprintf("statement_%s_%s.csv", SanitizeFilename(label), asOf.Format("2006-01-02"))
}
