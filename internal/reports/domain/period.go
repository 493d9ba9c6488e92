package reports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PeriodKey identifies one calendar billing month. Two keys with equal
// year and month are equal regardless of the label they were parsed from.
type PeriodKey struct {
	Year  int
	Month time.Month
}

var monthAbbrevs = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// ParsePeriod parses a period label of the form "Mon-YYYY" or "YYYY-MM".
// Malformed labels, including unknown month abbreviations and month
// numbers outside 1..12, return ok=false. Callers drop such records
// instead of failing the export.
func ParsePeriod(label string) (PeriodKey, bool) {
	label = strings.TrimSpace(label)
	parts := strings.SplitN(label, "-", 2)
	if len(parts) != 2 {
		return PeriodKey{}, false
	}
	left, right := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	// "Mon-YYYY"
	if month, ok := monthAbbrevs[strings.ToLower(left)]; ok {
		year, err := strconv.Atoi(right)
		if err != nil || len(right) != 4 {
			return PeriodKey{}, false
		}
		return PeriodKey{Year: year, Month: month}, true
	}

	// "YYYY-MM"
	if len(left) == 4 {
		year, err := strconv.Atoi(left)
		if err != nil {
			return PeriodKey{}, false
		}
		monthNum, err := strconv.Atoi(right)
		if err != nil || monthNum < 1 || monthNum > 12 {
			return PeriodKey{}, false
		}
		return PeriodKey{Year: year, Month: time.Month(monthNum)}, true
	}

	return PeriodKey{}, false
}

// PeriodOf builds the key for the month containing t.
func PeriodOf(t time.Time) PeriodKey {
	return PeriodKey{Year: t.Year(), Month: t.Month()}
}

// ComparePeriods orders by year first, then calendar month.
func ComparePeriods(a, b PeriodKey) int {
	if a.Year != b.Year {
		if a.Year < b.Year {
			return -1
		}
		return 1
	}
	if a.Month != b.Month {
		if a.Month < b.Month {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether k precedes other.
func (k PeriodKey) Before(other PeriodKey) bool {
	return ComparePeriods(k, other) < 0
}

// IsZero reports whether k is the zero value.
func (k PeriodKey) IsZero() bool {
	return k.Year == 0 && k.Month == 0
}

// Prev returns the preceding calendar month.
func (k PeriodKey) Prev() PeriodKey {
	if k.Month == time.January {
		return PeriodKey{Year: k.Year - 1, Month: time.December}
	}
	return PeriodKey{Year: k.Year, Month: k.Month - 1}
}

// Next returns the following calendar month.
func (k PeriodKey) Next() PeriodKey {
	if k.Month == time.December {
		return PeriodKey{Year: k.Year + 1, Month: time.January}
	}
	return PeriodKey{Year: k.Year, Month: k.Month + 1}
}

// Compact renders the constrained column form, e.g. "Jul'25".
func (k PeriodKey) Compact() string {
	return fmt.Sprintf("%s'%02d", k.Month.String()[:3], k.Year%100)
}

// Full renders the canonical label form, e.g. "Jul-2025".
func (k PeriodKey) Full() string {
	return fmt.Sprintf("%s-%04d", k.Month.String()[:3], k.Year)
}

// SortPeriods sorts keys ascending in place.
func SortPeriods(keys []PeriodKey) {
	sort.Slice(keys, func(i, j int) bool {
		return ComparePeriods(keys[i], keys[j]) < 0
	})
}

// PeriodRange returns every month from from to to inclusive. An inverted
// range returns nil.
func PeriodRange(from, to PeriodKey) []PeriodKey {
	if to.Before(from) {
		return nil
	}
	var keys []PeriodKey
	for k := from; !to.Before(k); k = k.Next() {
		keys = append(keys, k)
	}
	return keys
}
