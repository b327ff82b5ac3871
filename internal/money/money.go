// Package money parses and formats the portal's localized monetary strings.
// All amounts are exact decimals; float64 never carries a monetary value.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidFormat indicates a string could not be read as a monetary value.
var ErrInvalidFormat = errors.New("invalid monetary format")

// Parse converts a localized monetary string to a decimal. The portal writes
// Brazilian notation: "." groups thousands and "," separates decimals, e.g.
// "1.234,56". Currency symbols and surrounding whitespace are stripped, and a
// spaced minus ("- 75,88") is collapsed. When both separators appear the dots
// are grouping; a lone comma is the decimal separator; a lone dot is grouping
// and is dropped.
func Parse(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(s, "R$", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", " ")
	cleaned = strings.TrimSpace(cleaned)

	if strings.HasPrefix(cleaned, "-") {
		cleaned = "-" + strings.TrimSpace(cleaned[1:])
	}

	if cleaned == "" || cleaned == "-" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	switch {
	case strings.Contains(cleaned, ","):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	case strings.Contains(cleaned, "."):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
	return d, nil
}

// Format renders a decimal in the portal's notation: grouped thousands,
// comma decimal separator, two decimal places. Display only; computation
// always stays in decimal.Decimal.
func Format(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	negative := strings.HasPrefix(fixed, "-")
	if negative {
		fixed = fixed[1:]
	}

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte(',')
	b.WriteString(fracPart)

	return b.String()
}
