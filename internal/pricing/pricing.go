// Package pricing holds the money arithmetic of the widget. All amounts are
// integer cents; conversion to major units only happens when formatting.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// TaxPercent is the VAT rate applied to every subtotal.
	TaxPercent = 15
	// CentsPerUnit is the scale between minor and major currency units.
	CentsPerUnit = 100
)

// Breakdown is the priced summary of a line or a whole cart.
type Breakdown struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// LineSubtotal multiplies price by quantity. Negative inputs count as zero.
func LineSubtotal(priceCents int64, qty int) int64 {
	if priceCents < 0 || qty < 0 {
		return 0
	}
	return priceCents * int64(qty)
}

// Tax rounds subtotal*TaxPercent/100 half up.
func Tax(subtotalCents int64) int64 {
	if subtotalCents <= 0 {
		return 0
	}
	return (subtotalCents*TaxPercent + CentsPerUnit/2) / CentsPerUnit
}

func Total(subtotalCents int64) int64 {
	return subtotalCents + Tax(subtotalCents)
}

func Compute(subtotalCents int64) Breakdown {
	tax := Tax(subtotalCents)
	return Breakdown{
		Subtotal: subtotalCents,
		Tax:      tax,
		Total:    subtotalCents + tax,
	}
}

// Format renders cents as en-US dollars, e.g. $1,234.50.
func Format(cents int64) string {
	amount := decimal.New(cents, -2)
	neg := amount.IsNegative()

	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.Grow(len(fixed) + len(whole)/3 + 2)
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')

	head := len(whole) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(whole[:head])
	for i := head; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// Formatted is a Breakdown rendered for display.
type Formatted struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"vat"`
	Total    string `json:"total"`
}

func (b Breakdown) Format() Formatted {
	return Formatted{
		Subtotal: Format(b.Subtotal),
		Tax:      Format(b.Tax),
		Total:    Format(b.Total),
	}
}
