package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var nonAmountChars = regexp.MustCompile(`[^0-9,.\-]`)

// ParseCents parses Brazilian-formatted amounts (ex: "1.234,56", "480,80", "R$ 50")
// into integer cents.
//
// Rules:
//   - ',' present together with '.': '.' is the thousands separator, ',' the decimal.
//   - only ',': decimal separator ('.' treated as thousands if any).
//   - only '.': decimal separator.
//   - digits only: whole currency units.
//
// It never fails — empty or unparseable input yields 0. Callers that require a
// non-zero amount must reject 0 themselves. A leading '-' keeps the sign.
func ParseCents(value string) int64 {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = nonAmountChars.ReplaceAllString(s, "")

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	// Stray signs in the middle make the value unparseable
	s = strings.ReplaceAll(s, "-", "")
	if s == "" {
		return 0
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")
	switch {
	case hasComma && hasDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasComma:
		s = strings.Replace(s, ",", ".", 1)
	}
	// Multiple dots left over: everything but the last is a thousands separator
	if parts := strings.Split(s, "."); len(parts) > 2 {
		s = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}
	// A second comma after the decimal one makes the value unparseable
	if strings.Contains(s, ",") {
		return 0
	}

	dec, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	// Round half up to two decimal places before scaling to cents
	cents := dec.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	if neg {
		return -cents
	}
	return cents
}

// FormatCents renders integer cents as "1.234,56" — thousands grouped with '.',
// two decimal digits after ','. Negative values get a leading '-'.
func FormatCents(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	units := cents / 100
	frac := cents % 100

	digits := decimal.NewFromInt(units).String()
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	b.WriteByte(byte('0' + frac/10))
	b.WriteByte(byte('0' + frac%10))
	return b.String()
}
