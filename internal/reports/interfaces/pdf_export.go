package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	reports "billing-reports/internal/reports/domain"
)

const (
	pdfMarginLeft   = 15.0
	pdfMarginTop    = 15.0
	pdfMarginBottom = 20.0

	labelColWidth  = 42.0
	tableRowHeight = 6.0

	// Per-entry height of the signatures block: rule line, name, title
	// and trailing gap.
	signatureEntryHeight = 18.0
	signatureBlockLead   = 6.0
)

// PDFRenderer writes the pivot document as a fixed-layout printable memo.
type PDFRenderer struct{}

// Ext returns the file extension.
func (PDFRenderer) Ext() string { return "pdf" }

// ContentType returns the download MIME type.
func (PDFRenderer) ContentType() string { return "application/pdf" }

// Render builds the memo bytes: header block, to/from fields, pivot
// table, trend block, grand total and a signatures block that is pushed
// to a fresh page when it would not fit above the bottom margin.
func (PDFRenderer) Render(doc reports.Document) ([]byte, error) {
	if doc.Pivot == nil {
		return nil, reports.ErrEmptyPivot
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginLeft, pdfMarginTop, pdfMarginLeft)
	pdf.SetAutoPageBreak(true, pdfMarginBottom)
	pdf.AliasNbPages("")

	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s  (Ref: %s)", doc.Meta.Title, doc.Meta.Reference), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeMemoHeader(pdf, doc)
	if err := writePivotTable(pdf, doc); err != nil {
		return nil, err
	}
	writeTrendBlock(pdf, doc)
	writeSignatureBlock(pdf, doc)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeMemoHeader(pdf *gofpdf.Fpdf, doc reports.Document) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, doc.Meta.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Reference: %s", doc.Meta.Reference), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s", doc.Meta.From.Full(), doc.Meta.To.Full()), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", doc.Meta.GeneratedAt.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	if doc.Meta.PreparedFor != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("To: %s", doc.Meta.PreparedFor), "", 1, "L", false, 0, "")
	}
	if doc.Meta.PreparedBy != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("From: %s", doc.Meta.PreparedBy), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Records: %d (invoiced %.1f%%, accrued %.1f%%)",
		doc.Summary.Records, doc.Summary.InvoicedPercent(), doc.Summary.AccruedPercent()), "", 1, "L", false, 0, "")
	pdf.Ln(3)
}

func writePivotTable(pdf *gofpdf.Fpdf, doc reports.Document) error {
	pivot := doc.Pivot
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pdfMarginLeft
	columns := len(pivot.Periods) + 1
	amountColWidth := (usable - labelColWidth) / float64(columns)
	if amountColWidth < 12 {
		return fmt.Errorf("pivot too wide for page: %d period columns", len(pivot.Periods))
	}
	fontSize := 9.0
	if amountColWidth < 18 {
		fontSize = 7.0
	}

	// Year header row from the builder's merge-span plan.
	pdf.SetFont("Arial", "B", fontSize)
	pdf.SetFillColor(217, 225, 242)
	pdf.CellFormat(labelColWidth, tableRowHeight, "", "1", 0, "C", true, 0, "")
	for _, span := range pivot.Spans {
		width := amountColWidth * float64(span.ColSpan)
		pdf.CellFormat(width, tableRowHeight, fmt.Sprintf("%d", span.Year), "1", 0, "C", true, 0, "")
	}
	pdf.CellFormat(amountColWidth, tableRowHeight, "", "1", 1, "C", true, 0, "")

	// Month header row.
	pdf.CellFormat(labelColWidth, tableRowHeight, "Account", "1", 0, "C", true, 0, "")
	for _, period := range pivot.Periods {
		pdf.CellFormat(amountColWidth, tableRowHeight, period.Compact(), "1", 0, "C", true, 0, "")
	}
	pdf.CellFormat(amountColWidth, tableRowHeight, "Subtotal", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", fontSize)
	for _, row := range pivot.Rows {
		pdf.CellFormat(labelColWidth, tableRowHeight, row.Label, "1", 0, "L", false, 0, "")
		for _, period := range pivot.Periods {
			cell := row.Cells[period]
			text := reports.DisplayFallback
			if cell.HasData {
				text = cell.Amount.String()
			}
			pdf.CellFormat(amountColWidth, tableRowHeight, text, "1", 0, "R", false, 0, "")
		}
		pdf.CellFormat(amountColWidth, tableRowHeight, row.Subtotal.String(), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", fontSize)
	pdf.CellFormat(labelColWidth, tableRowHeight, pivot.GrandTotal.Label, "1", 0, "L", true, 0, "")
	for _, period := range pivot.Periods {
		pdf.CellFormat(amountColWidth, tableRowHeight, pivot.GrandTotal.Cells[period].Amount.String(), "1", 0, "R", true, 0, "")
	}
	pdf.CellFormat(amountColWidth, tableRowHeight, pivot.GrandTotal.Subtotal.String(), "1", 1, "R", true, 0, "")
	pdf.Ln(4)
	return nil
}

func writeTrendBlock(pdf *gofpdf.Fpdf, doc reports.Document) {
	pivot := doc.Pivot
	window := trendColumns(pivot)
	if window == 0 {
		return
	}
	pageWidth, _ := pdf.GetPageSize()
	usable := pageWidth - 2*pdfMarginLeft
	colWidth := (usable - labelColWidth) / float64(window)

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Previous %d periods", window), "", 1, "L", false, 0, "")
	pdf.SetFillColor(217, 225, 242)
	pdf.CellFormat(labelColWidth, tableRowHeight, "Account", "1", 0, "C", true, 0, "")
	for i := 0; i < window; i++ {
		pdf.CellFormat(colWidth, tableRowHeight, fmt.Sprintf("Prior %d", window-i), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range pivot.Rows {
		pdf.CellFormat(labelColWidth, tableRowHeight, row.Label, "1", 0, "L", false, 0, "")
		for _, entry := range row.Trend {
			pdf.CellFormat(colWidth, tableRowHeight, trendCellText(entry), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}

func writeSignatureBlock(pdf *gofpdf.Fpdf, doc reports.Document) {
	signatories := doc.Meta.Signatories
	if len(signatories) == 0 {
		signatories = []reports.Signatory{{Name: "", Title: "Prepared by"}, {Name: "", Title: "Approved by"}}
	}

	_, pageHeight := pdf.GetPageSize()
	if needsPageBreak(pdf.GetY(), pageHeight, pdfMarginBottom, signatureBlockHeight(len(signatories))) {
		pdf.AddPage()
	}

	pdf.SetFont("Arial", "", 10)
	pdf.Ln(signatureBlockLead)
	for _, signatory := range signatories {
		pdf.CellFormat(70, 6, "_______________________", "", 1, "L", false, 0, "")
		name := signatory.Name
		if name == "" {
			name = reports.DisplayFallback
		}
		pdf.CellFormat(70, 5, name, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(70, 5, signatory.Title, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.Ln(2)
	}
}

// signatureBlockHeight is the vertical space the signatures block needs
// for the given number of entries. The block never splits across a page
// boundary, so the guard must see the full height.
func signatureBlockHeight(entries int) float64 {
	return signatureBlockLead + float64(entries)*signatureEntryHeight
}

// needsPageBreak reports whether a block of the given fixed height would
// cross the bottom margin if drawn at y.
func needsPageBreak(y, pageHeight, bottomMargin, blockHeight float64) bool {
	return y+blockHeight > pageHeight-bottomMargin
}
