// Package core provides amount parsing and formatting utilities.
//
// Amounts are stored as float64 rupees. Parsing and display go through
// decimal arithmetic so that user input such as "12.10" round-trips as typed.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount to rupees.
//
// The dot is the only decimal mark. Commas group digits in the integer
// part, in either the Indian (1,23,456) or the Western (123,456) style,
// and are dropped. A comma at the edges, doubled, or after the dot is
// rejected. Negative values are accepted as refunds.
//
// Examples:
//
//	ParseAmount("12.34")       -> 12.34, nil
//	ParseAmount("₹2,000")      -> 2000, nil
//	ParseAmount("1,23,456.50") -> 123456.5, nil
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	intPart, frac, hasDot := strings.Cut(s, ".")
	if strings.Contains(frac, ",") {
		return 0, ErrInvalidAmount
	}
	digits := strings.TrimPrefix(intPart, "-")
	if strings.HasPrefix(digits, ",") || strings.HasSuffix(digits, ",") || strings.Contains(digits, ",,") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(intPart, ",", "")
	if hasDot {
		s += "." + frac
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	v := d.InexactFloat64()
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateAmount rejects NaN and infinities. Any finite value is a valid
// amount; the store performs no range checks.
func ValidateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrInvalidAmount
	}
	return nil
}

// FormatAmount renders v with exactly two decimals, e.g. "1234.50".
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatRupees renders v for display, e.g. "₹1234.50" or "-₹3.00".
func FormatRupees(v float64) string {
	d := decimal.NewFromFloat(v)
	if d.IsNegative() {
		return "-₹" + d.Neg().StringFixed(2)
	}
	return "₹" + d.StringFixed(2)
}

// SumAmounts adds amounts in decimal to avoid accumulating float error.
func SumAmounts(vs ...float64) float64 {
	total := decimal.Zero
	for _, v := range vs {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}
