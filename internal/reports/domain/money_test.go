package reports

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  string
		want Amount
	}{
		{"100.00", 10000},
		{"50", 5000},
		{"1,234.56", 123456},
		// Commas are thousands separators, never a decimal mark.
		{"1234,56", 12345600},
		{"  12.34 ", 1234},
		{"12.344", 1234},
		{"12.345", 1235},
		{"-45.10", -4510},
		{"+7.5", 750},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"12.3.4", 0},
		{"1.2e3", 0},
	}
	for _, tc := range cases {
		if got := ParseAmount(tc.raw); got != tc.want {
			t.Fatalf("ParseAmount(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestAmountString(t *testing.T) {
	cases := []struct {
		amount Amount
		want   string
	}{
		{10000, "100.00"},
		{5000, "50.00"},
		{123456, "1,234.56"},
		{123456789, "1,234,567.89"},
		{-4510, "-45.10"},
		{5, "0.05"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := tc.amount.String(); got != tc.want {
			t.Fatalf("Amount(%d).String() = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestAmountSigned(t *testing.T) {
	if got := Amount(1500).Signed(); got != "+15.00" {
		t.Fatalf("Signed() = %q", got)
	}
	if got := Amount(-1500).Signed(); got != "-15.00" {
		t.Fatalf("Signed() = %q", got)
	}
	if got := Amount(0).Signed(); got != "0.00" {
		t.Fatalf("Signed() = %q", got)
	}
}

func TestAmountFromFloat(t *testing.T) {
	if got := AmountFromFloat(12.345); got != 1235 {
		t.Fatalf("AmountFromFloat(12.345) = %d", got)
	}
	if got := AmountFromFloat(-12.345); got != -1235 {
		t.Fatalf("AmountFromFloat(-12.345) = %d", got)
	}
}
