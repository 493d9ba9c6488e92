package reports

// TrendEntry is one slot of the trailing prior-period block shown next to
// a row. A slot without data is an explicit placeholder so the rendered
// trend table keeps its column count across rows.
type TrendEntry struct {
	Period   PeriodKey
	Amount   Amount
	Delta    Amount
	HasDelta bool
	HasData  bool
}

// DefaultTrendWindow is the number of prior periods shown when a report
// definition does not override it.
const DefaultTrendWindow = 5

// BuildTrend selects at most the window most recent valid periods from
// history, in ascending period order regardless of payload order.
// Multiple records in one period are summed; an upstream delta is kept
// only when every contributing record agrees it exists. The result always
// has exactly window slots, padded with trailing placeholders.
func BuildTrend(history []BillRecord, window int) []TrendEntry {
	if window <= 0 {
		window = DefaultTrendWindow
	}

	byPeriod := make(map[PeriodKey]*TrendEntry)
	for _, r := range history {
		if !r.PeriodValid {
			continue
		}
		entry, ok := byPeriod[r.Period]
		if !ok {
			entry = &TrendEntry{Period: r.Period, HasData: true, HasDelta: true}
			byPeriod[r.Period] = entry
		}
		entry.Amount += r.Amount
		if r.HasDelta {
			entry.Delta += r.Delta
		} else {
			entry.HasDelta = false
			entry.Delta = 0
		}
	}

	periods := make([]PeriodKey, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	SortPeriods(periods)
	if len(periods) > window {
		periods = periods[len(periods)-window:]
	}

	entries := make([]TrendEntry, 0, window)
	for _, period := range periods {
		entries = append(entries, *byPeriod[period])
	}
	for len(entries) < window {
		entries = append(entries, TrendEntry{})
	}
	return entries
}

// DeltaLabel renders the signed, thousands-separated movement for the
// slot, or empty when no delta was supplied.
func (e TrendEntry) DeltaLabel() string {
	if !e.HasData || !e.HasDelta {
		return ""
	}
	return e.Delta.Signed()
}

// AmountLabel renders the slot amount, or the display placeholder for an
// empty slot.
func (e TrendEntry) AmountLabel() string {
	if !e.HasData {
		return DisplayFallback
	}
	return e.Amount.String()
}
