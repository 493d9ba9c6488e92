package application

import (
	"strconv"
	"strings"

	reports "billing-reports/internal/reports/domain"
)

// Normalize maps one loosely-typed upstream payload into the canonical
// bill record. Every field has a defined fallback: 0 for amounts, "-" for
// display-only text, empty string for optional references. The mapping is
// total and side-effect free; payload ambiguity stops here.
func Normalize(raw map[string]any) reports.BillRecord {
	account := nestedObject(raw, "account")

	r := reports.BillRecord{
		AccountRef:      firstString(raw, "account_ref", "account_id", "accountRef"),
		AccountNo:       displayString(raw, account, "account_no", "accountNo", "account_number"),
		Beneficiary:     displayString(raw, account, "beneficiary", "beneficiary_name", "customer"),
		CostCenter:      firstString(raw, "cost_center_ref", "cost_center", "costCenter"),
		ServiceCategory: displayString(raw, account, "service_category", "service", "category"),
		Location:        displayString(raw, account, "location", "site"),
		RawPeriod:       firstString(raw, "period", "bill_month", "month", "billing_period"),
		Amount:          amountField(raw, "amount", "bill_amount", "total", "total_amount"),
		Status:          normalizeStatus(firstString(raw, "status", "bill_status", "invoice_status")),
	}

	if r.AccountRef == "" && account != nil {
		r.AccountRef = firstString(account, "id", "account_id", "account_ref")
	}
	if r.CostCenter == "" && account != nil {
		r.CostCenter = firstString(account, "cost_center_ref", "cost_center")
	}

	if key, ok := reports.ParsePeriod(r.RawPeriod); ok {
		r.Period = key
		r.PeriodValid = true
	}

	if deltaRaw, ok := lookup(raw, "trend", "delta", "movement"); ok {
		if delta, parsed := coerceAmount(deltaRaw); parsed {
			r.Delta = delta
			r.HasDelta = true
		}
	}

	return r
}

// NormalizeAll maps a payload batch, preserving input order.
func NormalizeAll(rawRecords []map[string]any) []reports.BillRecord {
	records := make([]reports.BillRecord, 0, len(rawRecords))
	for _, raw := range rawRecords {
		records = append(records, Normalize(raw))
	}
	return records
}

// NormalizeAccount maps an account/beneficiary payload into the canonical
// account shape with the same fallback rules as Normalize.
func NormalizeAccount(raw map[string]any) reports.Account {
	beneficiary := nestedObject(raw, "beneficiary")
	acct := reports.Account{
		ID:              firstString(raw, "id", "account_id"),
		AccountNo:       displayString(raw, nil, "account_no", "accountNo", "account_number"),
		Beneficiary:     displayString(raw, beneficiary, "beneficiary", "name", "beneficiary_name"),
		FileRef:         firstString(raw, "file_ref", "filing_reference", "file_no"),
		PreparedBy:      displayString(raw, beneficiary, "prepared_by", "preparer"),
		CostCenter:      firstString(raw, "cost_center_ref", "cost_center"),
		Location:        displayString(raw, nil, "location", "site"),
		ServiceCategory: displayString(raw, nil, "service_category", "service"),
	}
	if beneficiary != nil && acct.FileRef == "" {
		acct.FileRef = firstString(beneficiary, "file_ref", "filing_reference")
	}
	return acct
}

func normalizeStatus(value string) reports.BillStatus {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "invoiced", "billed":
		return reports.StatusInvoiced
	case "not-invoiced", "not invoiced", "uninvoiced", "pending":
		return reports.StatusNotInvoiced
	default:
		return reports.StatusOther
	}
}

func nestedObject(raw map[string]any, key string) map[string]any {
	if raw == nil {
		return nil
	}
	if obj, ok := raw[key].(map[string]any); ok {
		return obj
	}
	return nil
}

func lookup(raw map[string]any, keys ...string) (any, bool) {
	if raw == nil {
		return nil, false
	}
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// firstString resolves the first present key to a string, empty when
// absent. Used for optional references that must not render as "-".
func firstString(raw map[string]any, keys ...string) string {
	value, ok := lookup(raw, keys...)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// displayString resolves a display-only text field, checking the flat
// payload first and a nested object second, falling back to "-".
func displayString(raw, nested map[string]any, keys ...string) string {
	if value := firstString(raw, keys...); value != "" {
		return value
	}
	if value := firstString(nested, keys...); value != "" {
		return value
	}
	return reports.DisplayFallback
}

func amountField(raw map[string]any, keys ...string) reports.Amount {
	value, ok := lookup(raw, keys...)
	if !ok {
		return 0
	}
	amount, _ := coerceAmount(value)
	return amount
}

// coerceAmount converts any plausible numeric payload value to cents.
// Unparseable input yields (0, false), never NaN.
func coerceAmount(value any) (reports.Amount, bool) {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false
		}
		return reports.ParseAmount(v), true
	case float64:
		return reports.AmountFromFloat(v), true
	case int:
		return reports.Amount(int64(v) * 100), true
	case int64:
		return reports.Amount(v * 100), true
	default:
		return 0, false
	}
}
