package reports

import "sort"

// PivotCell is one row/period intersection. HasData distinguishes a
// genuinely missing period from a real zero amount.
type PivotCell struct {
	Amount  Amount
	HasData bool
}

// PivotRow is one group's series of per-period amounts.
type PivotRow struct {
	Key      GroupKey
	Label    string
	Account  Account
	Cells    map[PeriodKey]PivotCell
	Subtotal Amount
	Trend    []TrendEntry
}

// YearSpan is the merge geometry for one year header cell spanning its
// month sub-columns. StartCol is a zero-based index into the period
// universe.
type YearSpan struct {
	Year     int
	StartCol int
	ColSpan  int
}

// PivotTable is the full grid: ascending period universe, ordered rows,
// year merge plan and a grand total row. The builder computes values and
// geometry only; drawing belongs to the renderers.
type PivotTable struct {
	Periods    []PeriodKey
	Rows       []PivotRow
	Spans      []YearSpan
	GrandTotal PivotRow
}

// BuildPivot constructs the pivot grid from aggregated buckets. The
// period universe is the sorted union across all buckets, so every row
// renders the same column set. The grand total is a second pass over the
// built rows, not over raw records, keeping the two summation paths from
// diverging.
func BuildPivot(result AggregateResult) (*PivotTable, error) {
	if len(result.Buckets) == 0 {
		return nil, ErrEmptyPivot
	}

	seen := make(map[PeriodKey]struct{})
	for _, bucket := range result.Buckets {
		for period := range bucket.Amounts {
			seen[period] = struct{}{}
		}
	}
	periods := make([]PeriodKey, 0, len(seen))
	for period := range seen {
		periods = append(periods, period)
	}
	SortPeriods(periods)

	rows := make([]PivotRow, 0, len(result.Buckets))
	for _, bucket := range result.Buckets {
		row := PivotRow{
			Key:   bucket.Key,
			Label: bucket.Label,
			Account: Account{
				AccountNo:       bucket.Sample.AccountNo,
				Beneficiary:     bucket.Sample.Beneficiary,
				CostCenter:      bucket.Sample.CostCenter,
				Location:        bucket.Sample.Location,
				ServiceCategory: bucket.Sample.ServiceCategory,
			},
			Cells: make(map[PeriodKey]PivotCell, len(periods)),
		}
		for _, period := range periods {
			amount, ok := bucket.Amounts[period]
			if !ok {
				row.Cells[period] = PivotCell{}
				continue
			}
			row.Cells[period] = PivotCell{Amount: amount, HasData: true}
			row.Subtotal += amount
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Label != rows[j].Label {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].Key < rows[j].Key
	})

	grand := PivotRow{Label: "Grand Total", Cells: make(map[PeriodKey]PivotCell, len(periods))}
	for _, period := range periods {
		cell := PivotCell{}
		for _, row := range rows {
			if c := row.Cells[period]; c.HasData {
				cell.Amount += c.Amount
				cell.HasData = true
			}
		}
		grand.Cells[period] = cell
		grand.Subtotal += cell.Amount
	}

	return &PivotTable{
		Periods:    periods,
		Rows:       rows,
		Spans:      yearSpans(periods),
		GrandTotal: grand,
	}, nil
}

func yearSpans(periods []PeriodKey) []YearSpan {
	var spans []YearSpan
	for i, period := range periods {
		if len(spans) > 0 && spans[len(spans)-1].Year == period.Year {
			spans[len(spans)-1].ColSpan++
			continue
		}
		spans = append(spans, YearSpan{Year: period.Year, StartCol: i, ColSpan: 1})
	}
	return spans
}

// Years lists the distinct years of the period universe in order.
func (t *PivotTable) Years() []int {
	years := make([]int, 0, len(t.Spans))
	for _, span := range t.Spans {
		years = append(years, span.Year)
	}
	return years
}

// PeriodsForYear returns the universe periods belonging to one year.
func (t *PivotTable) PeriodsForYear(year int) []PeriodKey {
	var keys []PeriodKey
	for _, period := range t.Periods {
		if period.Year == year {
			keys = append(keys, period)
		}
	}
	return keys
}
