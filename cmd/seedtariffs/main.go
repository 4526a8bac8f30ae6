// Command seedtariffs converts a regulatory tariff order workbook into a SQL
// seed file for tariff_structures.
// Reads the "Tariffs" sheet and, when present, the "Slabs" sheet.
// Usage: go run ./cmd/seedtariffs -in tariff_order.xlsx -out db/seeds/tariff_orders.sql
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"chainfly/internal/domain"
	"chainfly/internal/tariff"
)

const batchSize = 200

type tariffRow struct {
	state        string
	discom       string
	category     string
	customerType string
	baseRate     float64
	validFrom    time.Time
	validTo      *time.Time
	reference    string
	slabs        []domain.Slab
}

func (r *tariffRow) key() string {
	return strings.ToLower(r.discom + "|" + r.category + "|" + r.customerType)
}

func main() {
	in := flag.String("in", "tariff_order.xlsx", "tariff order workbook")
	out := flag.String("out", "db/seeds/tariff_orders.sql", "output SQL file")
	flag.Parse()

	if err := run(*in, *out); err != nil {
		log.Fatal(err)
	}
}

func run(inPath, outPath string) error {
	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := parseWorkbook(f)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, rows); err != nil {
		return err
	}
	log.Printf("Generated %d tariff structures (%d batches) in %s",
		len(rows), (len(rows)+batchSize-1)/batchSize, outPath)
	return nil
}

func parseWorkbook(f *excelize.File) ([]tariffRow, error) {
	rows, err := parseTariffSheet(f)
	if err != nil {
		return nil, fmt.Errorf("parse Tariffs sheet: %w", err)
	}
	if idx, _ := f.GetSheetIndex("Slabs"); idx >= 0 {
		if err := attachSlabs(f, rows); err != nil {
			return nil, fmt.Errorf("parse Slabs sheet: %w", err)
		}
	}
	return rows, nil
}

// parseTariffSheet reads the Tariffs sheet.
// Columns: A=state, B=discom name, C=category, D=customer type, E=base rate,
// F=valid from (YYYY-MM-DD), G=valid to (optional), H=order reference.
// Row 1 is the header.
func parseTariffSheet(f *excelize.File) ([]tariffRow, error) {
	sheet, err := f.GetRows("Tariffs")
	if err != nil {
		return nil, err
	}

	var rows []tariffRow
	for i := 1; i < len(sheet); i++ {
		row := sheet[i]
		if strings.TrimSpace(cellVal(row, 1)) == "" {
			continue
		}

		rate, err := parseRate(cellVal(row, 4))
		if err != nil {
			return nil, fmt.Errorf("row %d: base rate: %w", i+1, err)
		}
		validFrom, err := time.Parse("2006-01-02", strings.TrimSpace(cellVal(row, 5)))
		if err != nil {
			return nil, fmt.Errorf("row %d: valid from: %w", i+1, err)
		}
		var validTo *time.Time
		if s := strings.TrimSpace(cellVal(row, 6)); s != "" {
			t, err := time.Parse("2006-01-02", s)
			if err != nil {
				return nil, fmt.Errorf("row %d: valid to: %w", i+1, err)
			}
			if !t.After(validFrom) {
				return nil, fmt.Errorf("row %d: valid to must be after valid from", i+1)
			}
			validTo = &t
		}

		rows = append(rows, tariffRow{
			state:        strings.TrimSpace(cellVal(row, 0)),
			discom:       strings.TrimSpace(cellVal(row, 1)),
			category:     strings.TrimSpace(cellVal(row, 2)),
			customerType: strings.ToLower(strings.TrimSpace(cellVal(row, 3))),
			baseRate:     rate,
			validFrom:    validFrom,
			validTo:      validTo,
			reference:    strings.TrimSpace(cellVal(row, 7)),
		})
	}
	return rows, nil
}

// attachSlabs reads the Slabs sheet.
// Columns: A=discom name, B=category, C=customer type, D=min kWh, E=max kWh,
// F=rate. Row 1 is the header. Consumption above the last slab is charged at
// its rate.
func attachSlabs(f *excelize.File, rows []tariffRow) error {
	sheet, err := f.GetRows("Slabs")
	if err != nil {
		return err
	}

	index := make(map[string]int, len(rows))
	for i := range rows {
		index[rows[i].key()] = i
	}

	for i := 1; i < len(sheet); i++ {
		row := sheet[i]
		key := strings.ToLower(strings.TrimSpace(cellVal(row, 0)) + "|" +
			strings.TrimSpace(cellVal(row, 1)) + "|" + strings.TrimSpace(cellVal(row, 2)))
		target, ok := index[key]
		if !ok {
			return fmt.Errorf("row %d: no tariff for %q", i+1, key)
		}

		minKWh, err := strconv.ParseFloat(strings.TrimSpace(cellVal(row, 3)), 64)
		if err != nil {
			return fmt.Errorf("row %d: min: %w", i+1, err)
		}
		maxKWh, err := strconv.ParseFloat(strings.TrimSpace(cellVal(row, 4)), 64)
		if err != nil {
			return fmt.Errorf("row %d: max: %w", i+1, err)
		}
		rate, err := parseRate(cellVal(row, 5))
		if err != nil {
			return fmt.Errorf("row %d: rate: %w", i+1, err)
		}
		rows[target].slabs = append(rows[target].slabs, domain.Slab{Min: minKWh, Max: maxKWh, Rate: rate, Unit: "kWh"})
	}

	for i := range rows {
		if err := tariff.ValidateSlabs(rows[i].slabs); err != nil {
			return fmt.Errorf("%s: %w", rows[i].key(), err)
		}
	}
	return nil
}

// parseRate accepts plain numbers and values like "₹6.50" or "6.50/kWh".
func parseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSuffix(s, "/kWh")
	rate, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, fmt.Errorf("rate must be positive, got %v", rate)
	}
	return rate, nil
}

func writeSeed(out io.Writer, rows []tariffRow) error {
	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Regulatory tariff order seed data generated from Excel.",
		fmt.Sprintf("-- %d tariff structures in batches of %d.", len(rows), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(rows); i += batchSize {
		end := i + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := writeBatch(out, rows[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}
	return nil
}

// writeBatch resolves each discom by name and state, so the seed can be
// applied to any environment that already holds the discoms.
func writeBatch(out io.Writer, batch []tariffRow) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO tariff_structures (id, discom_id, category, customer_type, base_rate, valid_from, valid_to, slabs, source, reference)\n")

	for i := range batch {
		r := &batch[i]
		if i == 0 {
			b.WriteString("SELECT * FROM (VALUES\n")
		} else {
			b.WriteString(",\n")
		}

		slabs := r.slabs
		if slabs == nil {
			slabs = []domain.Slab{}
		}
		slabJSON, err := json.Marshal(slabs)
		if err != nil {
			return fmt.Errorf("encoding slabs for %s: %w", r.key(), err)
		}

		validTo := "NULL::timestamptz"
		if r.validTo != nil {
			validTo = fmt.Sprintf("'%s'::timestamptz", r.validTo.Format("2006-01-02"))
		}

		fmt.Fprintf(&b,
			"  (gen_random_uuid(), (SELECT id FROM discoms WHERE lower(name) = lower('%s') AND lower(state) = lower('%s')), '%s', '%s', %.4f, '%s'::timestamptz, %s, '%s'::jsonb, 'regulatory_order', '%s')",
			escapeSQL(r.discom), escapeSQL(r.state), escapeSQL(r.category), escapeSQL(r.customerType),
			r.baseRate, r.validFrom.Format("2006-01-02"), validTo, escapeSQL(string(slabJSON)), escapeSQL(r.reference))
	}

	b.WriteString("\n) AS v(id, discom_id, category, customer_type, base_rate, valid_from, valid_to, slabs, source, reference)\nWHERE v.discom_id IS NOT NULL;\n")

	_, err := io.WriteString(out, b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
