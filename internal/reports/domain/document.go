package reports

import "time"

// Signatory is one name/title pair in the trailing signature block.
type Signatory struct {
	Name  string
	Title string
}

// ReportMeta carries the document framing: everything the renderers need
// beyond the pivot values themselves.
type ReportMeta struct {
	Kind        string
	Title       string
	Reference   string
	From        PeriodKey
	To          PeriodKey
	GeneratedAt time.Time
	PreparedFor string
	PreparedBy  string
	Signatories []Signatory
	// SplitSheetsByYear selects one workbook sheet per pivot year.
	SplitSheetsByYear bool
}

// Document is the shared renderer input: both document back ends consume
// the same pivot, trend and summary data.
type Document struct {
	Meta    ReportMeta
	Pivot   *PivotTable
	Summary Summary
}
