// Package xlsx exports kedai reports as an Excel workbook.
package xlsx

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xraph/kedai/report"
	"github.com/xraph/kedai/types"
)

// Sheet names.
const (
	SheetSales      = "Sales"
	SheetCashFlow   = "Cash Flow"
	SheetProfitLoss = "Profit & Loss"
	SheetInventory  = "Inventory"
)

// ErrEmptyWorkbook is returned when a Workbook holds no report.
var ErrEmptyWorkbook = errors.New("xlsx: workbook has no reports")

// Workbook selects the reports to export. Nil reports are skipped; each
// present report becomes one sheet, in field order.
type Workbook struct {
	Sales      *report.SalesReport
	CashFlow   *report.CashFlowReport
	ProfitLoss *report.ProfitLossReport
	Inventory  *report.InventoryReport
}

// Write renders wb and writes the .xlsx file to w.
func Write(w io.Writer, wb Workbook) error {
	f, err := Build(wb)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

// Build renders wb into an in-memory workbook.
func Build(wb Workbook) (*excelize.File, error) {
	var sheets []func(*sheet)
	var names []string
	if wb.Sales != nil {
		names = append(names, SheetSales)
		sheets = append(sheets, func(s *sheet) { salesSheet(s, wb.Sales) })
	}
	if wb.CashFlow != nil {
		names = append(names, SheetCashFlow)
		sheets = append(sheets, func(s *sheet) { cashFlowSheet(s, wb.CashFlow) })
	}
	if wb.ProfitLoss != nil {
		names = append(names, SheetProfitLoss)
		sheets = append(sheets, func(s *sheet) { profitLossSheet(s, wb.ProfitLoss) })
	}
	if wb.Inventory != nil {
		names = append(names, SheetInventory)
		sheets = append(sheets, func(s *sheet) { inventorySheet(s, wb.Inventory) })
	}
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}

	for i, name := range names {
		if i == 0 {
			err = f.SetSheetName(f.GetSheetName(0), name)
		} else {
			_, err = f.NewSheet(name)
		}
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("xlsx: sheet %s: %w", name, err)
		}

		s := &sheet{f: f, name: name, bold: bold}
		sheets[i](s)
		if s.err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("xlsx: sheet %s: %w", name, s.err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// sheet appends rows to one worksheet, keeping the first error.
type sheet struct {
	f    *excelize.File
	name string
	bold int
	row  int
	err  error
}

func (s *sheet) append(values ...any) {
	s.row++
	if s.err != nil || len(values) == 0 {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.name, cell, &values)
}

// header appends a bold row.
func (s *sheet) header(values ...any) {
	s.append(values...)
	if s.err != nil {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, s.row)
	last, _ := excelize.CoordinatesToCellName(len(values), s.row)
	s.err = s.f.SetCellStyle(s.name, first, last, s.bold)
}

func (s *sheet) widths(widths ...float64) {
	for i, w := range widths {
		if s.err != nil {
			return
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			s.err = err
			return
		}
		s.err = s.f.SetColWidth(s.name, col, col, w)
	}
}

// amount renders money in the currency's minor unit, which for IDR is the
// rupiah itself.
func amount(m types.Money) int64 { return m.Amount }

func currencyLabel(label string, m types.Money) string {
	if m.Currency == "" {
		return label
	}
	return label + " (" + strings.ToUpper(m.Currency) + ")"
}

const dateLayout = "2006-01-02"

// ──────────────────────────────────────────────────
// Sheets
// ──────────────────────────────────────────────────

func salesSheet(s *sheet, r *report.SalesReport) {
	s.widths(24, 16, 10, 16)

	s.header("Sales report", string(r.Kind))
	s.append("Period", r.Start.Format(dateLayout)+" to "+r.End.Format(dateLayout))
	s.append(currencyLabel("Total sales", r.TotalSales), amount(r.TotalSales))
	s.append("Orders", r.OrderCount)
	s.append(currencyLabel("Average order", r.AverageOrder), amount(r.AverageOrder))
	s.append()

	s.header("Bucket", "Sales", "Orders")
	for _, p := range r.Series {
		s.append(p.Label, amount(p.Sales), p.Orders)
	}
	s.append()

	s.header("Rank", "Product", "Quantity", "Revenue")
	for i, p := range r.TopProducts {
		s.append(i+1, p.Name, p.Quantity, amount(p.Revenue))
	}
}

func cashFlowSheet(s *sheet, r *report.CashFlowReport) {
	s.widths(14, 14, 14, 14, 14, 14)

	s.header("Month", "Income", "Expenses", "Purchases", "Outflow", "Net")
	for _, m := range r.Months {
		s.append(m.Label, amount(m.Income), amount(m.Expenses), amount(m.Purchases), amount(m.Outflow), amount(m.Net))
	}
	sum := r.Summary
	s.header("Total", amount(sum.Income), amount(sum.Expenses), amount(sum.Purchases), amount(sum.Outflow), amount(sum.Net))
	s.append()
	s.append("Positive months", sum.PositiveMonths)
	s.append("Negative months", sum.NegativeMonths)
}

func profitLossSheet(s *sheet, r *report.ProfitLossReport) {
	s.widths(14, 14, 14, 14, 14, 14, 14, 14)

	s.header("Month", "Revenue", "Cost of goods", "Gross profit", "Expenses", "Net profit", "Gross margin %", "Net margin %")
	for _, m := range r.Months {
		s.append(m.Label, amount(m.Revenue), amount(m.CostOfGoods), amount(m.GrossProfit),
			amount(m.Expenses), amount(m.NetProfit), m.GrossMargin, m.NetMargin)
	}
	s.header(fmt.Sprint(r.Year), amount(r.Revenue), amount(r.CostOfGoods), amount(r.GrossProfit),
		amount(r.Expenses), amount(r.NetProfit), r.GrossMargin, r.NetMargin)
	s.append()

	s.header("Expense category", "Amount", "Count")
	for _, c := range r.ExpenseBreakdown {
		s.append(c.Category, amount(c.Amount), c.Count)
	}
}

func inventorySheet(s *sheet, r *report.InventoryReport) {
	s.widths(20, 8, 10, 10, 14, 14, 10)

	s.header("Ingredient", "Unit", "Stock", "Min stock", "Cost per unit", "Value", "Status")
	for _, l := range r.Lines {
		s.append(l.Name, string(l.Unit), l.Stock.InexactFloat64(), l.MinStock.InexactFloat64(),
			amount(l.CostPerUnit), amount(l.Value), string(l.Status))
	}
	s.header("Total", "", "", "", "", amount(r.TotalValue), "")
}
