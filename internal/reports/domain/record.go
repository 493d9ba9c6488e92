package reports

// BillStatus classifies a bill's invoicing state.
type BillStatus string

const (
	StatusInvoiced    BillStatus = "invoiced"
	StatusNotInvoiced BillStatus = "not-invoiced"
	StatusOther       BillStatus = "other"
)

// DisplayFallback substitutes absent display-only text fields.
const DisplayFallback = "-"

// BillRecord is the canonical in-memory form of one billable event.
// Records are built once per export run by the normalizer and never
// mutated afterwards.
type BillRecord struct {
	AccountRef      string
	AccountNo       string
	Beneficiary     string
	CostCenter      string
	ServiceCategory string
	Location        string

	// Period is valid only when PeriodValid is set; RawPeriod keeps the
	// original label for diagnostics on dropped records.
	Period      PeriodKey
	PeriodValid bool
	RawPeriod   string

	Amount Amount
	Status BillStatus

	// Delta is the upstream-supplied prior-period movement, present only
	// on trend history payloads.
	Delta    Amount
	HasDelta bool
}

// Account describes the party a bill is charged to.
type Account struct {
	ID              string
	AccountNo       string
	Beneficiary     string
	FileRef         string
	PreparedBy      string
	CostCenter      string
	Location        string
	ServiceCategory string
}

// AccrualPolicy decides whether a bill counts as accrued: recorded but
// not yet invoiced. The threshold is configurable pending confirmation
// from the billing owners; the default of zero matches observed behavior.
type AccrualPolicy struct {
	MinAmount Amount
}

// IsAccrued reports whether the record is an accrued liability under the
// policy.
func (p AccrualPolicy) IsAccrued(r BillRecord) bool {
	return r.Status != StatusInvoiced && r.Amount > p.MinAmount
}
