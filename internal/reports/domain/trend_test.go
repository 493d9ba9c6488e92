package reports

import (
	"testing"
	"time"
)

func trendRecord(label string, amount Amount, delta Amount, hasDelta bool) BillRecord {
	r := record("A1", label, amount)
	r.Delta = delta
	r.HasDelta = hasDelta
	return r
}

func TestBuildTrendWindowWithPlaceholders(t *testing.T) {
	history := []BillRecord{
		trendRecord("Nov-2024", 1000, 0, false),
		trendRecord("Dec-2024", 1500, 500, true),
	}
	entries := BuildTrend(history, 5)
	if len(entries) != 5 {
		t.Fatalf("entries = %d, want 5", len(entries))
	}
	populated := 0
	for _, e := range entries {
		if e.HasData {
			populated++
		}
	}
	if populated != 2 {
		t.Fatalf("populated = %d, want 2", populated)
	}
	// Placeholders pad the tail, populated slots stay ascending.
	if !entries[0].HasData || !entries[1].HasData {
		t.Fatal("populated entries must lead")
	}
	if entries[0].Period != (PeriodKey{2024, time.November}) {
		t.Fatalf("first period = %+v", entries[0].Period)
	}
	if entries[1].Period != (PeriodKey{2024, time.December}) {
		t.Fatalf("second period = %+v", entries[1].Period)
	}
	for _, e := range entries[2:] {
		if e.HasData {
			t.Fatal("tail slots must be placeholders")
		}
		if e.AmountLabel() != DisplayFallback {
			t.Fatalf("placeholder label = %q", e.AmountLabel())
		}
	}
}

func TestBuildTrendKeepsMostRecentWindow(t *testing.T) {
	history := []BillRecord{
		trendRecord("Mar-2025", 3, 0, false),
		trendRecord("Jan-2025", 1, 0, false),
		trendRecord("Jun-2025", 6, 0, false),
		trendRecord("Feb-2025", 2, 0, false),
		trendRecord("May-2025", 5, 0, false),
		trendRecord("Apr-2025", 4, 0, false),
	}
	entries := BuildTrend(history, 5)
	if len(entries) != 5 {
		t.Fatalf("entries = %d", len(entries))
	}
	// Jan-2025 falls outside the 5 most recent periods.
	if entries[0].Period != (PeriodKey{2025, time.February}) {
		t.Fatalf("oldest kept = %+v", entries[0].Period)
	}
	if entries[4].Period != (PeriodKey{2025, time.June}) {
		t.Fatalf("newest kept = %+v", entries[4].Period)
	}
	for i := 1; i < len(entries); i++ {
		if !entries[i-1].Period.Before(entries[i].Period) {
			t.Fatal("entries not ascending")
		}
	}
}

func TestBuildTrendDeltaLabels(t *testing.T) {
	history := []BillRecord{
		trendRecord("Jan-2025", 100000, 123456, true),
		trendRecord("Feb-2025", 90000, -1000, true),
		trendRecord("Mar-2025", 90000, 0, false),
	}
	entries := BuildTrend(history, 3)
	if got := entries[0].DeltaLabel(); got != "+1,234.56" {
		t.Fatalf("delta label = %q", got)
	}
	if got := entries[1].DeltaLabel(); got != "-10.00" {
		t.Fatalf("delta label = %q", got)
	}
	// Absent delta renders blank, never a NaN-like artifact.
	if got := entries[2].DeltaLabel(); got != "" {
		t.Fatalf("delta label = %q", got)
	}
}

func TestBuildTrendIgnoresPayloadOrder(t *testing.T) {
	history := []BillRecord{
		trendRecord("Feb-2025", 2, 0, false),
		trendRecord("Jan-2025", 1, 0, false),
	}
	entries := BuildTrend(history, 2)
	if entries[0].Amount != 1 || entries[1].Amount != 2 {
		t.Fatalf("order = %d,%d", entries[0].Amount, entries[1].Amount)
	}
}

func TestBuildTrendSumsDuplicatePeriods(t *testing.T) {
	history := []BillRecord{
		trendRecord("Jan-2025", 100, 0, false),
		trendRecord("Jan-2025", 50, 0, false),
	}
	entries := BuildTrend(history, 2)
	if entries[0].Amount != 150 {
		t.Fatalf("summed = %d", entries[0].Amount)
	}
}

func TestBuildTrendEmptyHistory(t *testing.T) {
	entries := BuildTrend(nil, 5)
	if len(entries) != 5 {
		t.Fatalf("entries = %d", len(entries))
	}
	for _, e := range entries {
		if e.HasData {
			t.Fatal("empty history must be all placeholders")
		}
	}
}

func TestBuildTrendSkipsInvalidPeriods(t *testing.T) {
	history := []BillRecord{
		trendRecord("Jan-2025", 100, 0, false),
		trendRecord("13-2025", 999, 0, false),
	}
	entries := BuildTrend(history, 2)
	if !entries[0].HasData || entries[1].HasData {
		t.Fatal("invalid-period history must not populate slots")
	}
}
