package cart

import (
	"fmt"

	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/pricing"
)

// PricePolicy decides what happens to a line's name and price when an item
// that is already in the cart is added again.
type PricePolicy string

const (
	// PriceLatest overwrites the stored name and price on every add.
	PriceLatest PricePolicy = "latest"
	// PriceFirst keeps the snapshot taken by the first add.
	PriceFirst PricePolicy = "first"
)

func ParsePricePolicy(s string) (PricePolicy, error) {
	switch PricePolicy(s) {
	case PriceLatest, "":
		return PriceLatest, nil
	case PriceFirst:
		return PriceFirst, nil
	default:
		return "", fmt.Errorf("unknown price policy %q", s)
	}
}

// Cart maps item ids to lines and remembers insertion order for display.
// It is not safe for concurrent use; the owning widget serializes access.
type Cart struct {
	lines  map[string]*domain.CartLine
	order  []string
	policy PricePolicy
	maxQty int
}

type Option func(*Cart)

func WithPricePolicy(p PricePolicy) Option {
	return func(c *Cart) { c.policy = p }
}

func WithMaxQty(n int) Option {
	return func(c *Cart) {
		if n > 0 {
			c.maxQty = n
		}
	}
}

func New(opts ...Option) *Cart {
	c := &Cart{
		lines:  make(map[string]*domain.CartLine),
		policy: PriceLatest,
		maxQty: domain.MaxQtyPerItem,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxQty is the per-line quantity cap.
func (c *Cart) MaxQty() int {
	return c.maxQty
}

// Add increments the quantity of item by one. At the quantity cap the cart
// is left untouched and ErrQuantityLimitExceeded is returned.
func (c *Cart) Add(item domain.CatalogItem) error {
	if !domain.ValidItemID(item.ID) {
		return ErrInvalidItemID
	}

	line, exists := c.lines[item.ID]
	if !exists {
		line = &domain.CartLine{
			ID:         item.ID,
			Name:       item.Name,
			PriceCents: domain.SafePrice(item.PriceCents),
		}
	}

	qty := line.SafeQty()
	if qty >= c.maxQty {
		return ErrQuantityLimitExceeded
	}
	line.Qty = qty + 1

	if exists && c.policy == PriceLatest {
		line.Name = item.Name
		line.PriceCents = domain.SafePrice(item.PriceCents)
	}

	if !exists {
		c.lines[item.ID] = line
		c.order = append(c.order, item.ID)
	}
	return nil
}

// Remove decrements the quantity of id and drops the line when it reaches
// zero. Unknown ids are ignored.
func (c *Cart) Remove(id string) {
	line, exists := c.lines[id]
	if !exists {
		return
	}

	next := line.SafeQty() - 1
	if next <= 0 {
		c.delete(id)
		return
	}
	line.Qty = next
}

func (c *Cart) delete(id string) {
	delete(c.lines, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Get returns a copy of the line for id.
func (c *Cart) Get(id string) (domain.CartLine, bool) {
	line, ok := c.lines[id]
	if !ok {
		return domain.CartLine{}, false
	}
	return *line, true
}

// Lines returns copies of the lines with a positive quantity, in the order
// they were first added.
func (c *Cart) Lines() []domain.CartLine {
	out := make([]domain.CartLine, 0, len(c.order))
	for _, id := range c.order {
		line := c.lines[id]
		if line.SafeQty() == 0 {
			continue
		}
		out = append(out, *line)
	}
	return out
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Clear() {
	c.lines = make(map[string]*domain.CartLine)
	c.order = nil
}

func (c *Cart) Subtotal() int64 {
	var subtotal int64
	for _, line := range c.Lines() {
		subtotal += pricing.LineSubtotal(line.PriceCents, line.SafeQty())
	}
	return subtotal
}

// Totals prices the whole cart.
func (c *Cart) Totals() pricing.Breakdown {
	return pricing.Compute(c.Subtotal())
}
