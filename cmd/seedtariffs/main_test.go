package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, tariffs, slabs [][]interface{}) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Tariffs"))
	header := []interface{}{"State", "Discom", "Category", "Customer Type", "Base Rate", "Valid From", "Valid To", "Order"}
	require.NoError(t, f.SetSheetRow("Tariffs", "A1", &header))
	for i, row := range tariffs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, f.SetSheetRow("Tariffs", cell, &row))
	}

	if slabs != nil {
		_, err := f.NewSheet("Slabs")
		require.NoError(t, err)
		slabHeader := []interface{}{"Discom", "Category", "Customer Type", "Min", "Max", "Rate"}
		require.NoError(t, f.SetSheetRow("Slabs", "A1", &slabHeader))
		for i, row := range slabs {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			require.NoError(t, f.SetSheetRow("Slabs", cell, &row))
		}
	}

	// Round-trip through disk so cells are read back as stored strings.
	path := filepath.Join(t.TempDir(), "order.xlsx")
	require.NoError(t, f.SaveAs(path))
	reopened, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	return reopened
}

func TestParseWorkbook(t *testing.T) {
	f := buildWorkbook(t,
		[][]interface{}{
			{"Maharashtra", "MSEDCL", "LT-II", "Commercial", "₹7.25", "2024-04-01", "2025-03-31", "MERC 322/2023"},
			{"Karnataka", "BESCOM", "LT-5", "industrial", "6.80", "2024-04-01", "", "KERC 2024"},
			{"", "", "", "", "", "", "", ""},
		},
		[][]interface{}{
			{"MSEDCL", "LT-II", "commercial", "0", "100", "5.5"},
			{"MSEDCL", "LT-II", "commercial", "100", "300", "7.25"},
		},
	)

	rows, err := parseWorkbook(f)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "commercial", rows[0].customerType)
	assert.Equal(t, 7.25, rows[0].baseRate)
	require.NotNil(t, rows[0].validTo)
	assert.Len(t, rows[0].slabs, 2)

	assert.Nil(t, rows[1].validTo)
	assert.Empty(t, rows[1].slabs)
}

func TestParseWorkbook_Errors(t *testing.T) {
	tests := []struct {
		name    string
		tariffs [][]interface{}
		slabs   [][]interface{}
	}{
		{"bad rate", [][]interface{}{{"MH", "MSEDCL", "LT-II", "commercial", "abc", "2024-04-01", "", ""}}, nil},
		{"zero rate", [][]interface{}{{"MH", "MSEDCL", "LT-II", "commercial", "0", "2024-04-01", "", ""}}, nil},
		{"bad date", [][]interface{}{{"MH", "MSEDCL", "LT-II", "commercial", "7", "01/04/2024", "", ""}}, nil},
		{"inverted window", [][]interface{}{{"MH", "MSEDCL", "LT-II", "commercial", "7", "2024-04-01", "2024-03-01", ""}}, nil},
		{
			"slab for unknown tariff",
			[][]interface{}{{"MH", "MSEDCL", "LT-II", "commercial", "7", "2024-04-01", "", ""}},
			[][]interface{}{{"BESCOM", "LT-II", "commercial", "0", "100", "5"}},
		},
		{
			"slab gap",
			[][]interface{}{{"MH", "MSEDCL", "LT-II", "commercial", "7", "2024-04-01", "", ""}},
			[][]interface{}{
				{"MSEDCL", "LT-II", "commercial", "0", "100", "5"},
				{"MSEDCL", "LT-II", "commercial", "150", "300", "7"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseWorkbook(buildWorkbook(t, tt.tariffs, tt.slabs))
			assert.Error(t, err)
		})
	}
}

func TestWriteSeed(t *testing.T) {
	var buf bytes.Buffer
	f := buildWorkbook(t,
		[][]interface{}{{"Maharashtra", "O'Brien Power", "LT-II", "commercial", "7.25", "2024-04-01", "", "MERC"}},
		nil,
	)
	rows, err := parseWorkbook(f)
	require.NoError(t, err)

	require.NoError(t, writeSeed(&buf, rows))

	sql := buf.String()
	assert.Contains(t, sql, "BEGIN;")
	assert.Contains(t, sql, "COMMIT;")
	assert.Contains(t, sql, "lower('O''Brien Power')")
	assert.Contains(t, sql, "7.2500")
	assert.Contains(t, sql, "NULL::timestamptz")
	assert.Contains(t, sql, "'[]'::jsonb")
	assert.Contains(t, sql, "'regulatory_order'")
}
