package interfaces

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	reports "billing-reports/internal/reports/domain"
)

const (
	minColWidth = 10
	maxColWidth = 40

	currencyNumFmt = "#,##0.00"
)

// XLSXRenderer writes the pivot document as a workbook: a summary sheet
// plus one pivot sheet per year (or a single sheet when the document
// does not split).
type XLSXRenderer struct{}

// Ext returns the file extension.
func (XLSXRenderer) Ext() string { return "xlsx" }

// ContentType returns the download MIME type.
func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Render builds the workbook bytes.
func (XLSXRenderer) Render(doc reports.Document) ([]byte, error) {
	if doc.Pivot == nil {
		return nil, reports.ErrEmptyPivot
	}
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}

	summarySheet := "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := writeSummarySheet(f, summarySheet, doc, styles); err != nil {
		return nil, err
	}

	if doc.Meta.SplitSheetsByYear && len(doc.Pivot.Years()) > 1 {
		for _, year := range doc.Pivot.Years() {
			sheet := fmt.Sprintf("%d", year)
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, err
			}
			periods := doc.Pivot.PeriodsForYear(year)
			spans := []reports.YearSpan{{Year: year, StartCol: 0, ColSpan: len(periods)}}
			if err := writePivotSheet(f, sheet, doc, periods, spans, styles); err != nil {
				return nil, err
			}
		}
	} else {
		sheet := "Pivot"
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := writePivotSheet(f, sheet, doc, doc.Pivot.Periods, doc.Pivot.Spans, styles); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type workbookStyles struct {
	title    int
	header   int
	currency int
	total    int
	text     int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var styles workbookStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	numFmt := currencyNumFmt

	styles.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return styles, err
	}
	styles.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E1F2"}},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return styles, err
	}
	styles.currency, err = f.NewStyle(&excelize.Style{Border: border, CustomNumFmt: &numFmt})
	if err != nil {
		return styles, err
	}
	styles.total, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		Border:       border,
		CustomNumFmt: &numFmt,
	})
	if err != nil {
		return styles, err
	}
	styles.text, err = f.NewStyle(&excelize.Style{Border: border})
	return styles, err
}

func writeSummarySheet(f *excelize.File, sheet string, doc reports.Document, styles workbookStyles) error {
	summary := doc.Summary
	setCell := func(cell string, value any) {
		_ = f.SetCellValue(sheet, cell, value)
	}

	setCell("A1", doc.Meta.Title)
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)
	setCell("A2", fmt.Sprintf("Reference: %s", doc.Meta.Reference))
	setCell("A3", fmt.Sprintf("Period: %s to %s", doc.Meta.From.Full(), doc.Meta.To.Full()))
	setCell("A4", fmt.Sprintf("Generated: %s", doc.Meta.GeneratedAt.Format("2006-01-02 15:04:05")))

	setCell("A6", "Records")
	setCell("B6", summary.Records)
	setCell("A7", "Invoiced")
	setCell("B7", summary.Invoiced)
	setCell("C7", fmt.Sprintf("%.1f%%", summary.InvoicedPercent()))
	setCell("A8", "Accrued")
	setCell("B8", summary.Accrued)
	setCell("C8", fmt.Sprintf("%.1f%%", summary.AccruedPercent()))
	setCell("A9", "Dropped (unparseable period)")
	setCell("B9", summary.Dropped)

	return f.SetColWidth(sheet, "A", "A", 30)
}

func writePivotSheet(f *excelize.File, sheet string, doc reports.Document, periods []reports.PeriodKey, spans []reports.YearSpan, styles workbookStyles) error {
	pivot := doc.Pivot
	trendWidth := trendColumns(pivot)

	const (
		labelCol     = 1
		yearRow      = 4
		monthRow     = 5
		firstDataRow = 6
	)
	firstPeriodCol := labelCol + 1
	subtotalCol := firstPeriodCol + len(periods)
	lastCol := subtotalCol + trendWidth

	_ = f.SetCellValue(sheet, "A1", doc.Meta.Title)
	_ = f.SetCellStyle(sheet, "A1", "A1", styles.title)
	_ = f.SetCellValue(sheet, "A2", fmt.Sprintf("Period: %s to %s (amounts in currency units)", doc.Meta.From.Full(), doc.Meta.To.Full()))

	widths := make([]int, lastCol+1)
	note := func(col int, text string) {
		if len(text) > widths[col] {
			widths[col] = len(text)
		}
	}

	// Header: merged year cells over month sub-columns, from the span
	// plan computed by the pivot builder.
	labelHeader := rowLabelHeader(doc)
	if err := setStyledCell(f, sheet, labelCol, yearRow, labelHeader, styles.header); err != nil {
		return err
	}
	if err := mergeCells(f, sheet, labelCol, yearRow, labelCol, monthRow); err != nil {
		return err
	}
	note(labelCol, labelHeader)

	for _, span := range spans {
		start := firstPeriodCol + span.StartCol
		end := start + span.ColSpan - 1
		if err := setStyledCell(f, sheet, start, yearRow, span.Year, styles.header); err != nil {
			return err
		}
		if span.ColSpan > 1 {
			if err := mergeCells(f, sheet, start, yearRow, end, yearRow); err != nil {
				return err
			}
		}
	}
	for i, period := range periods {
		col := firstPeriodCol + i
		if err := setStyledCell(f, sheet, col, monthRow, period.Compact(), styles.header); err != nil {
			return err
		}
		note(col, period.Compact())
	}
	if err := setStyledCell(f, sheet, subtotalCol, yearRow, "Subtotal", styles.header); err != nil {
		return err
	}
	if err := mergeCells(f, sheet, subtotalCol, yearRow, subtotalCol, monthRow); err != nil {
		return err
	}
	note(subtotalCol, "Subtotal")
	for i := 0; i < trendWidth; i++ {
		col := subtotalCol + 1 + i
		label := fmt.Sprintf("Prior %d", trendWidth-i)
		if err := setStyledCell(f, sheet, col, yearRow, label, styles.header); err != nil {
			return err
		}
		if err := mergeCells(f, sheet, col, yearRow, col, monthRow); err != nil {
			return err
		}
		note(col, label)
	}

	row := firstDataRow
	for _, pivotRow := range pivot.Rows {
		if err := setStyledCell(f, sheet, labelCol, row, pivotRow.Label, styles.text); err != nil {
			return err
		}
		note(labelCol, pivotRow.Label)

		var sheetSubtotal reports.Amount
		for i, period := range periods {
			col := firstPeriodCol + i
			cell := pivotRow.Cells[period]
			if !cell.HasData {
				// Missing data stays visually distinct from a real zero.
				if err := setStyledCell(f, sheet, col, row, reports.DisplayFallback, styles.text); err != nil {
					return err
				}
				continue
			}
			if err := setStyledCell(f, sheet, col, row, cell.Amount.Float64(), styles.currency); err != nil {
				return err
			}
			sheetSubtotal += cell.Amount
			note(col, cell.Amount.String())
		}
		if err := setStyledCell(f, sheet, subtotalCol, row, sheetSubtotal.Float64(), styles.total); err != nil {
			return err
		}
		note(subtotalCol, sheetSubtotal.String())

		for i, entry := range pivotRow.Trend {
			col := subtotalCol + 1 + i
			text := trendCellText(entry)
			if err := setStyledCell(f, sheet, col, row, text, styles.text); err != nil {
				return err
			}
			note(col, text)
		}
		row++
	}

	// Grand total over the rendered columns.
	if err := setStyledCell(f, sheet, labelCol, row, pivot.GrandTotal.Label, styles.header); err != nil {
		return err
	}
	var grandSubtotal reports.Amount
	for i, period := range periods {
		col := firstPeriodCol + i
		cell := pivot.GrandTotal.Cells[period]
		if err := setStyledCell(f, sheet, col, row, cell.Amount.Float64(), styles.total); err != nil {
			return err
		}
		grandSubtotal += cell.Amount
		note(col, cell.Amount.String())
	}
	if err := setStyledCell(f, sheet, subtotalCol, row, grandSubtotal.Float64(), styles.total); err != nil {
		return err
	}
	note(subtotalCol, grandSubtotal.String())

	// Auto-fit columns to the widest rendered text, bounded.
	for col := labelCol; col <= lastCol; col++ {
		width := widths[col] + 2
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

func rowLabelHeader(doc reports.Document) string {
	switch doc.Meta.Kind {
	case "service-billing":
		return "Service"
	case "cost-center-billing":
		return "Account / Cost Center"
	default:
		return "Account"
	}
}

func trendColumns(pivot *reports.PivotTable) int {
	for _, row := range pivot.Rows {
		if len(row.Trend) > 0 {
			return len(row.Trend)
		}
	}
	return 0
}

func trendCellText(entry reports.TrendEntry) string {
	if !entry.HasData {
		return reports.DisplayFallback
	}
	if delta := entry.DeltaLabel(); delta != "" {
		return fmt.Sprintf("%s (%s)", entry.AmountLabel(), delta)
	}
	return entry.AmountLabel()
}

func setStyledCell(f *excelize.File, sheet string, col, row int, value any, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, style)
}

func mergeCells(f *excelize.File, sheet string, startCol, startRow, endCol, endRow int) error {
	start, err := excelize.CoordinatesToCellName(startCol, startRow)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(endCol, endRow)
	if err != nil {
		return err
	}
	return f.MergeCell(sheet, start, end)
}
