package service

import (
	"encoding/json"
	"strings"

	"github.com/shockerli/cvt"
	"github.com/shopspring/decimal"
)

// FormatMoney renders d rounded to 2 places with comma thousands separators,
// e.g. 1234.5 -> "1,234.50".
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return sign + intPart + "." + frac
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + "." + frac
}

// FormatQuantity drops trailing zeros: 2.50 -> "2.5", 3 -> "3".
func FormatQuantity(d decimal.Decimal) string {
	return d.String()
}

// ParseLenientDecimal accepts a JSON number, a numeric string or nothing.
// Anything it cannot read counts as zero.
func ParseLenientDecimal(v any) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	}
	s, err := cvt.StringE(v)
	if err != nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// isBlankInput reports whether a lenient numeric field was left empty.
func isBlankInput(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}
