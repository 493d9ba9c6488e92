package reports

import (
	"testing"
	"time"
)

func record(account, label string, amount Amount) BillRecord {
	r := BillRecord{AccountRef: account, AccountNo: account, Amount: amount, Status: StatusInvoiced, RawPeriod: label}
	if key, ok := ParsePeriod(label); ok {
		r.Period = key
		r.PeriodValid = true
	}
	return r
}

func TestAggregateByAccount(t *testing.T) {
	records := []BillRecord{
		record("A1", "Jan-2025", 10000),
		record("A1", "Feb-2025", 5000),
		record("A2", "Jan-2025", 2500),
		record("A1", "Jan-2025", 1000),
	}
	result := Aggregate(records, GroupByAccount, AccrualPolicy{})
	if len(result.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(result.Buckets))
	}
	a1 := result.Buckets["A1"]
	if a1 == nil {
		t.Fatal("missing A1 bucket")
	}
	jan := PeriodKey{2025, time.January}
	feb := PeriodKey{2025, time.February}
	if a1.Amounts[jan] != 11000 {
		t.Fatalf("A1 Jan = %d", a1.Amounts[jan])
	}
	if a1.Amounts[feb] != 5000 {
		t.Fatalf("A1 Feb = %d", a1.Amounts[feb])
	}
	if a1.Subtotal != 16000 {
		t.Fatalf("A1 subtotal = %d", a1.Subtotal)
	}
	if result.Dropped != 0 {
		t.Fatalf("dropped = %d", result.Dropped)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	records := []BillRecord{
		record("A1", "Jan-2025", 33),
		record("A1", "Jan-2025", 67),
		record("A1", "Feb-2025", 100),
		record("A2", "Jan-2025", 1),
	}
	reversed := make([]BillRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	forward := Aggregate(records, GroupByAccount, AccrualPolicy{})
	backward := Aggregate(reversed, GroupByAccount, AccrualPolicy{})
	for key, bucket := range forward.Buckets {
		other := backward.Buckets[key]
		if other == nil {
			t.Fatalf("missing bucket %s", key)
		}
		if bucket.Subtotal != other.Subtotal {
			t.Fatalf("subtotal differs for %s: %d vs %d", key, bucket.Subtotal, other.Subtotal)
		}
		for period, amount := range bucket.Amounts {
			if other.Amounts[period] != amount {
				t.Fatalf("amount differs for %s %s", key, period.Full())
			}
		}
	}
}

func TestAggregateDropsInvalidPeriods(t *testing.T) {
	records := []BillRecord{
		record("A1", "Jan-2025", 10000),
		record("A1", "13-2025", 9999),
		record("A1", "garbage", 1),
	}
	result := Aggregate(records, GroupByAccount, AccrualPolicy{})
	if result.Dropped != 2 {
		t.Fatalf("dropped = %d, want 2", result.Dropped)
	}
	if result.Buckets["A1"].Subtotal != 10000 {
		t.Fatalf("subtotal = %d, want 10000", result.Buckets["A1"].Subtotal)
	}
}

func TestAggregateUnknownGroup(t *testing.T) {
	records := []BillRecord{
		record("", "Jan-2025", 500),
		record("A1", "Jan-2025", 100),
	}
	result := Aggregate(records, GroupByAccount, AccrualPolicy{})
	unknown := result.Buckets[GroupUnknown]
	if unknown == nil {
		t.Fatal("expected explicit unknown bucket")
	}
	if unknown.Subtotal != 500 {
		t.Fatalf("unknown subtotal = %d", unknown.Subtotal)
	}
	if unknown.Label != "Unknown" {
		t.Fatalf("unknown label = %q", unknown.Label)
	}
}

func TestGroupByAccountCostCenter(t *testing.T) {
	r := record("A1", "Jan-2025", 100)
	r.CostCenter = "CC-9"
	key, label := GroupByAccountCostCenter(r)
	if key != "A1/CC-9" {
		t.Fatalf("key = %s", key)
	}
	if label != "A1 / CC-9" {
		t.Fatalf("label = %s", label)
	}

	bare := record("A1", "Jan-2025", 100)
	key, _ = GroupByAccountCostCenter(bare)
	if key != "A1" {
		t.Fatalf("key without cost center = %s", key)
	}
}

func TestAccrualPolicy(t *testing.T) {
	policy := AccrualPolicy{}
	accrued := BillRecord{Status: StatusNotInvoiced, Amount: 100}
	if !policy.IsAccrued(accrued) {
		t.Fatal("expected accrued")
	}
	invoiced := BillRecord{Status: StatusInvoiced, Amount: 100}
	if policy.IsAccrued(invoiced) {
		t.Fatal("invoiced record must not be accrued")
	}
	zero := BillRecord{Status: StatusNotInvoiced, Amount: 0}
	if policy.IsAccrued(zero) {
		t.Fatal("zero amount must not be accrued at default threshold")
	}
	raised := AccrualPolicy{MinAmount: 1000}
	if raised.IsAccrued(accrued) {
		t.Fatal("amount below threshold must not be accrued")
	}
}

func TestSummarize(t *testing.T) {
	records := []BillRecord{
		record("A1", "Jan-2025", 100),
		record("A2", "Jan-2025", 200),
		record("A2", "bad", 1),
	}
	records[1].Status = StatusNotInvoiced
	result := Aggregate(records, GroupByAccount, AccrualPolicy{})
	s := result.Summarize()
	if s.Records != 2 || s.Invoiced != 1 || s.Accrued != 1 || s.Dropped != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if s.InvoicedPercent() != 50 {
		t.Fatalf("invoiced percent = %v", s.InvoicedPercent())
	}
}
