// Package utils provides number formatting shared by reports and the CLI.
package utils

import (
	"fmt"
	"math"
	"strings"
)

// RupeeSymbol switches formatting to Indian digit grouping and lakh/crore units.
const RupeeSymbol = "₹"

// FormatMoney formats an amount with two decimals and thousands separators,
// e.g. 1234567.891 → "$1,234,567.89". With the rupee symbol the Indian
// system is used: last 3 digits, then groups of 2 (₹12,34,567.89).
func FormatMoney(amount float64, symbol string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	negative := amount < 0
	amount = math.Abs(amount)

	cents := int64(math.Round(amount * 100))
	intPart := cents / 100
	decPart := cents % 100

	var grouped string
	if symbol == RupeeSymbol {
		grouped = groupIndian(intPart)
	} else {
		grouped = groupThousands(intPart)
	}
	formatted := fmt.Sprintf("%s%s.%02d", symbol, grouped, decPart)

	if negative && cents != 0 {
		return "-" + formatted
	}
	return formatted
}

// FormatCompact formats large amounts with a unit suffix: K, M, B, T, or
// K, L, Cr, L Cr for the rupee symbol. Trailing zeros are dropped.
func FormatCompact(amount float64, symbol string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	prefix := symbol
	if amount < 0 {
		prefix = "-" + symbol
	}
	amount = math.Abs(amount)

	type unit struct {
		size   float64
		suffix string
	}
	units := []unit{{1e12, "T"}, {1e9, "B"}, {1e6, "M"}, {1e3, "K"}}
	if symbol == RupeeSymbol {
		units = []unit{{1e12, "L Cr"}, {1e7, "Cr"}, {1e5, "L"}, {1e3, "K"}}
	}

	for _, u := range units {
		if amount >= u.size {
			return fmt.Sprintf("%s%s %s", prefix, trimDecimals(amount/u.size), u.suffix)
		}
	}
	return fmt.Sprintf("%s%.2f", prefix, amount)
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatRate formats a decimal rate as a percentage, 0.1559 → "15.59%".
func FormatRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// FormatMultiple formats a valuation multiple, 13.04 → "13.04x".
func FormatMultiple(m float64) string {
	return fmt.Sprintf("%.2fx", m)
}

// groupThousands formats a non-negative integer with commas every 3 digits.
func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// groupIndian formats an integer with Indian grouping (last 3, then 2s).
func groupIndian(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	s := fmt.Sprintf("%d", n)
	length := len(s)

	// Take the last 3 digits
	result := s[length-3:]
	remaining := s[:length-3]

	// Group remaining digits in pairs from right
	for len(remaining) > 0 {
		if len(remaining) > 2 {
			result = remaining[len(remaining)-2:] + "," + result
			remaining = remaining[:len(remaining)-2]
		} else {
			result = remaining + "," + result
			remaining = ""
		}
	}

	return result
}

// trimDecimals formats with up to 2 decimal places, removing trailing zeros.
func trimDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
