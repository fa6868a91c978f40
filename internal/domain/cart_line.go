package domain

// MaxQtyPerItem caps the quantity of a single cart line.
const MaxQtyPerItem = 99

// CartLine is one entry of the cart: an item snapshot plus its quantity.
type CartLine struct {
	ID         string
	Name       LocalizedText
	PriceCents int64
	Qty        int
}

// SafeQty returns the line quantity, treating negative values as zero.
func (l CartLine) SafeQty() int {
	if l.Qty < 0 {
		return 0
	}
	return l.Qty
}

// Subtotal is price times quantity in minor units.
func (l CartLine) Subtotal() int64 {
	return SafePrice(l.PriceCents) * int64(l.SafeQty())
}
