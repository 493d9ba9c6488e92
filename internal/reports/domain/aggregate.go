package reports

// GroupKey identifies one aggregation bucket.
type GroupKey string

// GroupUnknown collects records whose grouping fields could not be
// resolved. They stay visible in the pivot instead of being dropped.
const GroupUnknown GroupKey = "unknown"

// GroupKeyFn derives the bucket key and display label for a record.
type GroupKeyFn func(r BillRecord) (GroupKey, string)

// GroupByAccount buckets per account reference.
func GroupByAccount(r BillRecord) (GroupKey, string) {
	if r.AccountRef == "" {
		return GroupUnknown, "Unknown"
	}
	label := r.AccountNo
	if label == "" || label == DisplayFallback {
		label = r.AccountRef
	}
	return GroupKey(r.AccountRef), label
}

// GroupByAccountCostCenter buckets per account and cost center pair.
func GroupByAccountCostCenter(r BillRecord) (GroupKey, string) {
	key, label := GroupByAccount(r)
	if key == GroupUnknown {
		return key, label
	}
	cc := r.CostCenter
	if cc == "" || cc == DisplayFallback {
		return key, label
	}
	return key + "/" + GroupKey(cc), label + " / " + cc
}

// GroupByServiceCategory buckets per service category.
func GroupByServiceCategory(r BillRecord) (GroupKey, string) {
	if r.ServiceCategory == "" || r.ServiceCategory == DisplayFallback {
		return GroupUnknown, "Unknown"
	}
	return GroupKey(r.ServiceCategory), r.ServiceCategory
}

// Bucket accumulates per-period sums for one group key.
type Bucket struct {
	Key      GroupKey
	Label    string
	Amounts  map[PeriodKey]Amount
	Subtotal Amount

	// Sample is the first record seen for the group, kept for row
	// identity fields the label does not carry.
	Sample BillRecord

	Records  int
	Invoiced int
	Accrued  int
}

// AggregateResult is the output of one grouping pass.
type AggregateResult struct {
	Buckets map[GroupKey]*Bucket
	// Dropped counts records excluded for unparseable periods.
	Dropped int
}

// Aggregate groups records by keyFn and sums amounts per period. Records
// without a valid period are counted in Dropped and otherwise ignored;
// the rest of the aggregate is unaffected. Sums are integer cents, so the
// result does not depend on input order.
func Aggregate(records []BillRecord, keyFn GroupKeyFn, accrual AccrualPolicy) AggregateResult {
	result := AggregateResult{Buckets: make(map[GroupKey]*Bucket)}
	for _, r := range records {
		if !r.PeriodValid {
			result.Dropped++
			continue
		}
		key, label := keyFn(r)
		bucket, ok := result.Buckets[key]
		if !ok {
			bucket = &Bucket{
				Key:     key,
				Label:   label,
				Amounts: make(map[PeriodKey]Amount),
				Sample:  r,
			}
			result.Buckets[key] = bucket
		}
		bucket.Amounts[r.Period] += r.Amount
		bucket.Subtotal += r.Amount
		bucket.Records++
		if r.Status == StatusInvoiced {
			bucket.Invoiced++
		}
		if accrual.IsAccrued(r) {
			bucket.Accrued++
		}
	}
	return result
}

// Summary aggregates record counts across all buckets for the workbook
// summary sheet.
type Summary struct {
	Records  int
	Invoiced int
	Accrued  int
	Dropped  int
}

// Summarize folds bucket counts into a single Summary.
func (r AggregateResult) Summarize() Summary {
	s := Summary{Dropped: r.Dropped}
	for _, bucket := range r.Buckets {
		s.Records += bucket.Records
		s.Invoiced += bucket.Invoiced
		s.Accrued += bucket.Accrued
	}
	return s
}

// InvoicedPercent returns the invoiced share of usable records.
func (s Summary) InvoicedPercent() float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(s.Invoiced) * 100 / float64(s.Records)
}

// AccruedPercent returns the accrued share of usable records.
func (s Summary) AccruedPercent() float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(s.Accrued) * 100 / float64(s.Records)
}
