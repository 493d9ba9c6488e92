package reports

import (
	"strconv"
	"strings"
	"unicode"
)

// Amount is a monetary value in cents. Integer addition keeps pipeline
// totals exact and independent of summation order.
type Amount int64

// ParseAmount converts a decimal string to cents. Commas are treated as
// thousands separators and stripped (the decimal mark is always a dot),
// surrounding whitespace is tolerated, and rounding on the third decimal
// is half-up. Non-numeric or empty input coerces to 0 so a bad upstream
// field never poisons a total.
func ParseAmount(raw string) Amount {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	negative := false
	switch {
	case strings.HasPrefix(s, "-"):
		negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.SplitN(s, ".", 3)
	if len(parts) > 2 {
		return 0
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0
		}
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0
	}

	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := whole*100 + fracCents
	if negative {
		cents = -cents
	}
	return Amount(cents)
}

// AmountFromFloat converts a float value in currency units to cents with
// half-up rounding.
func AmountFromFloat(value float64) Amount {
	if value < 0 {
		return -AmountFromFloat(-value)
	}
	return Amount(value*100 + 0.5)
}

// Float64 returns the value in currency units for numeric spreadsheet cells.
func (a Amount) Float64() float64 {
	return float64(a) / 100.0
}

// String renders the fixed currency form: two decimals, thousands
// separators, no symbol. The symbol belongs in headers and labels only.
func (a Amount) String() string {
	cents := int64(a)
	negative := cents < 0
	if negative {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	if frac < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.FormatInt(frac, 10))
	return b.String()
}

// Signed renders like String but with an explicit leading "+" for
// positive values, used for trend deltas.
func (a Amount) Signed() string {
	if a > 0 {
		return "+" + a.String()
	}
	return a.String()
}
