package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"chainfly/internal/domain"
	"chainfly/internal/port"
	"chainfly/internal/tariff"
)

const (
	contentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	invoiceSheet  = "Invoice"
	contractSheet = "Contract"
	dateLayout    = "2006-01-02"
)

type renderer struct{}

// NewRenderer creates a DocumentRenderer producing XLSX workbooks.
func NewRenderer() port.DocumentRenderer {
	return renderer{}
}

func (renderer) RenderInvoice(_ context.Context, inv *domain.Invoice, c *domain.Contract, customer *domain.Customer) (*port.RenderedDocument, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), invoiceSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}

	rows := [][]interface{}{
		{"Power Purchase Agreement Invoice"},
		{},
		{"Invoice ID", inv.ID.String()},
		{"Customer", customer.Name},
		{"Address", customer.Address},
		{"Contract ID", c.ID.String()},
		{"Installed capacity (kW)", c.SystemSpecs.CapacityKW},
		{"Billing period", inv.BillingPeriod},
		{"Period", fmt.Sprintf("%s to %s", inv.PeriodStart.Format(dateLayout), inv.PeriodEnd.Format(dateLayout))},
		{"Reading date", inv.ReadingDate.Format(dateLayout)},
		{"Energy used (kWh)", inv.KWhUsed},
		{"Billable energy (kWh)", inv.BillableKWh},
		{"Tariff rate applied", inv.TariffRateApplied},
		{"Tariff source", string(inv.TariffSource)},
		{},
		{"Base amount", inv.BaseAmount},
		{"Tax", inv.TaxAmount},
		{"Late penalty", inv.PenaltyAmount},
		{"Total due (" + inv.Currency + ")", inv.TotalAmount},
		{"Due date", inv.DueDate.Format(dateLayout)},
		{"Status", string(inv.Status)},
	}
	row := 1
	for _, values := range rows {
		if err := setRow(f, invoiceSheet, row, values); err != nil {
			return nil, err
		}
		row++
	}
	if err := f.SetCellStyle(invoiceSheet, "A1", "A1", bold); err != nil {
		return nil, fmt.Errorf("styling title: %w", err)
	}
	totalCell := fmt.Sprintf("B%d", row-3)
	if err := f.SetCellStyle(invoiceSheet, totalCell, totalCell, bold); err != nil {
		return nil, fmt.Errorf("styling total: %w", err)
	}

	if len(inv.Breakdown.Slabs) > 0 {
		row++
		if err := setRow(f, invoiceSheet, row, []interface{}{"Slab from (kWh)", "Slab to (kWh)", "Rate", "Quantity (kWh)", "Amount"}); err != nil {
			return nil, err
		}
		row++
		for _, s := range inv.Breakdown.Slabs {
			if err := setRow(f, invoiceSheet, row, []interface{}{s.Min, s.Max, s.Rate, s.Quantity, s.Amount}); err != nil {
				return nil, err
			}
			row++
		}
	}
	if len(inv.Breakdown.Bands) > 0 {
		row++
		if err := setRow(f, invoiceSheet, row, []interface{}{"Time band", "Rate", "Quantity (kWh)", "Amount"}); err != nil {
			return nil, err
		}
		row++
		for _, b := range inv.Breakdown.Bands {
			if err := setRow(f, invoiceSheet, row, []interface{}{b.Band, b.Rate, b.Quantity, b.Amount}); err != nil {
				return nil, err
			}
			row++
		}
	}

	if err := f.SetColWidth(invoiceSheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(invoiceSheet, "B", "E", 18); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return &port.RenderedDocument{
		Body:        buf.Bytes(),
		ContentType: contentType,
		Extension:   ".xlsx",
	}, nil
}

// RenderContract lays out the agreement terms: parties, system, rate schedule
// and the commercial model.
func (renderer) RenderContract(_ context.Context, c *domain.Contract, customer *domain.Customer) (*port.RenderedDocument, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), contractSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}

	rs := &c.RateSchedule
	specs := &c.SystemSpecs
	rows := [][]interface{}{
		{"Power Purchase Agreement"},
		{},
		{"Contract ID", c.ID.String()},
		{"Customer", customer.Name},
		{"Address", customer.Address},
		{"Site state", c.SiteState},
		{"Status", string(c.Status)},
		{"Term", fmt.Sprintf("%s to %s", c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout))},
		{"Duration (years)", c.ContractDurationYears},
		{"Signed", signedLabel(c)},
		{},
		{"System specifications"},
		{"Installed capacity (kW)", specs.CapacityKW},
		{"Panel type", specs.PanelType},
		{"Inverter type", specs.InverterType},
		{"Estimated annual production (kWh)", specs.EstimatedAnnualProductionKWh},
		{},
		{"Rate schedule"},
		{"Tariff mode", string(c.TariffMode)},
		{"Base rate (" + rs.Currency + "/kWh)", rs.BaseRate},
		{"Escalation", tariff.DescribeEscalation(rs)},
		{"Tax rate (%)", rs.TaxRatePercent},
		{"Late payment penalty (%)", rs.LatePenaltyRatePercent},
		{"Grace period (days)", rs.GracePeriodDays},
		{"Billing cycle", string(c.BillingCycle)},
		{},
		{"Business model", string(c.BusinessModel)},
	}
	switch c.BusinessModel {
	case domain.BusinessModelCapex:
		rows = append(rows, []interface{}{"Capex amount", c.CapexAmount})
	case domain.BusinessModelOpex:
		rows = append(rows,
			[]interface{}{"Monthly fee", c.OpexMonthlyFee},
			[]interface{}{"Energy rate", c.OpexEnergyRate},
		)
	}

	row := 1
	for _, values := range rows {
		if err := setRow(f, contractSheet, row, values); err != nil {
			return nil, err
		}
		row++
	}
	for _, title := range []string{"A1", "A12", "A18"} {
		if err := f.SetCellStyle(contractSheet, title, title, bold); err != nil {
			return nil, fmt.Errorf("styling headings: %w", err)
		}
	}

	if rs.EscalationType == domain.EscalationCustomSchedule && len(rs.EscalationSchedule) > 0 {
		row++
		if err := setRow(f, contractSheet, row, []interface{}{"Escalation year", "Rate"}); err != nil {
			return nil, err
		}
		row++
		for _, step := range rs.EscalationSchedule {
			if err := setRow(f, contractSheet, row, []interface{}{step.Year, step.Rate}); err != nil {
				return nil, err
			}
			row++
		}
	}
	if len(rs.Slabs) > 0 {
		row++
		if err := setRow(f, contractSheet, row, []interface{}{"Slab from (kWh)", "Slab to (kWh)", "Rate"}); err != nil {
			return nil, err
		}
		row++
		for _, sl := range rs.Slabs {
			if err := setRow(f, contractSheet, row, []interface{}{sl.Min, sl.Max, sl.Rate}); err != nil {
				return nil, err
			}
			row++
		}
	}
	if len(rs.TOURates) > 0 {
		row++
		if err := setRow(f, contractSheet, row, []interface{}{"Time band", "Rate"}); err != nil {
			return nil, err
		}
		row++
		for _, b := range rs.TOURates {
			if err := setRow(f, contractSheet, row, []interface{}{b.TimeRange, b.Rate}); err != nil {
				return nil, err
			}
			row++
		}
	}

	if err := f.SetColWidth(contractSheet, "A", "A", 34); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}
	if err := f.SetColWidth(contractSheet, "B", "C", 24); err != nil {
		return nil, fmt.Errorf("sizing columns: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return &port.RenderedDocument{
		Body:        buf.Bytes(),
		ContentType: contentType,
		Extension:   ".xlsx",
	}, nil
}

func signedLabel(c *domain.Contract) string {
	if c.SignedAt == nil {
		return "not signed"
	}
	return c.SignedAt.Format(dateLayout)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	if len(values) == 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}
