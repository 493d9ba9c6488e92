package application

import (
	"testing"
	"time"

	reports "billing-reports/internal/reports/domain"
)

func TestNormalizeEmptyPayload(t *testing.T) {
	r := Normalize(map[string]any{})
	if r.Amount != 0 {
		t.Fatalf("amount = %d, want 0", r.Amount)
	}
	if r.AccountRef != "" {
		t.Fatalf("account ref = %q, want empty", r.AccountRef)
	}
	if r.AccountNo != reports.DisplayFallback {
		t.Fatalf("account no = %q, want %q", r.AccountNo, reports.DisplayFallback)
	}
	if r.Beneficiary != reports.DisplayFallback {
		t.Fatalf("beneficiary = %q", r.Beneficiary)
	}
	if r.Status != reports.StatusOther {
		t.Fatalf("status = %q", r.Status)
	}
	if r.PeriodValid {
		t.Fatal("empty payload must not have a valid period")
	}
	if r.HasDelta {
		t.Fatal("empty payload must not carry a delta")
	}
}

func TestNormalizeFlatPayload(t *testing.T) {
	r := Normalize(map[string]any{
		"account_ref": "A1",
		"account_no":  "ACC-001",
		"period":      "Jan-2025",
		"amount":      "100.00",
		"status":      "Invoiced",
	})
	if r.AccountRef != "A1" || r.AccountNo != "ACC-001" {
		t.Fatalf("account = %q/%q", r.AccountRef, r.AccountNo)
	}
	if !r.PeriodValid || r.Period != (reports.PeriodKey{Year: 2025, Month: time.January}) {
		t.Fatalf("period = %+v valid=%v", r.Period, r.PeriodValid)
	}
	if r.Amount != 10000 {
		t.Fatalf("amount = %d", r.Amount)
	}
	if r.Status != reports.StatusInvoiced {
		t.Fatalf("status = %q", r.Status)
	}
}

func TestNormalizeNestedAccountShape(t *testing.T) {
	r := Normalize(map[string]any{
		"account": map[string]any{
			"id":         "A9",
			"account_no": "ACC-009",
			"location":   "HQ",
		},
		"bill_month":  "2025-03",
		"bill_amount": 42.5,
		"bill_status": "not invoiced",
	})
	if r.AccountRef != "A9" {
		t.Fatalf("account ref = %q", r.AccountRef)
	}
	if r.AccountNo != "ACC-009" {
		t.Fatalf("account no = %q", r.AccountNo)
	}
	if r.Location != "HQ" {
		t.Fatalf("location = %q", r.Location)
	}
	if r.Amount != 4250 {
		t.Fatalf("amount = %d", r.Amount)
	}
	if r.Status != reports.StatusNotInvoiced {
		t.Fatalf("status = %q", r.Status)
	}
	if !r.PeriodValid || r.Period.Month != time.March {
		t.Fatalf("period = %+v", r.Period)
	}
}

func TestNormalizeCoercion(t *testing.T) {
	cases := []struct {
		value any
		want  reports.Amount
	}{
		{"1,234.56", 123456},
		{float64(10.5), 1050},
		{int(7), 700},
		{"not-a-number", 0},
		{"", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tc := range cases {
		r := Normalize(map[string]any{"amount": tc.value, "period": "Jan-2025"})
		if r.Amount != tc.want {
			t.Fatalf("amount %v -> %d, want %d", tc.value, r.Amount, tc.want)
		}
	}
}

func TestNormalizeInvalidPeriodKeptButFlagged(t *testing.T) {
	r := Normalize(map[string]any{"period": "13-2025", "amount": "5"})
	if r.PeriodValid {
		t.Fatal("invalid period must not validate")
	}
	if r.RawPeriod != "13-2025" {
		t.Fatalf("raw period = %q", r.RawPeriod)
	}
	if r.Amount != 500 {
		t.Fatal("amount must survive an invalid period")
	}
}

func TestNormalizeDelta(t *testing.T) {
	r := Normalize(map[string]any{"period": "Jan-2025", "trend": "-12.50"})
	if !r.HasDelta || r.Delta != -1250 {
		t.Fatalf("delta = %d has=%v", r.Delta, r.HasDelta)
	}
	r = Normalize(map[string]any{"period": "Jan-2025"})
	if r.HasDelta {
		t.Fatal("absent delta must stay absent")
	}
}

func TestNormalizeAccount(t *testing.T) {
	acct := NormalizeAccount(map[string]any{
		"id":         "A1",
		"account_no": "ACC-001",
		"beneficiary": map[string]any{
			"name":     "Jordan Crane",
			"file_ref": "F-2211",
		},
		"cost_center": "CC-4",
	})
	if acct.ID != "A1" || acct.AccountNo != "ACC-001" {
		t.Fatalf("account = %+v", acct)
	}
	if acct.Beneficiary != "Jordan Crane" {
		t.Fatalf("beneficiary = %q", acct.Beneficiary)
	}
	if acct.FileRef != "F-2211" {
		t.Fatalf("file ref = %q", acct.FileRef)
	}
	if acct.CostCenter != "CC-4" {
		t.Fatalf("cost center = %q", acct.CostCenter)
	}
	if acct.Location != reports.DisplayFallback {
		t.Fatalf("location = %q", acct.Location)
	}
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	records := NormalizeAll([]map[string]any{
		{"account_ref": "A1"},
		{"account_ref": "A2"},
	})
	if len(records) != 2 || records[0].AccountRef != "A1" || records[1].AccountRef != "A2" {
		t.Fatalf("records = %+v", records)
	}
}
