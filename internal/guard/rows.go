package guard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/pricing"
)

// BuildRows turns cart lines into order rows stamped with at. Lines without a
// positive quantity are skipped. Each row carries its own VAT.
func BuildRows(lines []domain.CartLine, lang domain.Language, at time.Time, loc *time.Location) []domain.OrderRow {
	local, iso := domain.FormatTimestamps(at, loc)

	rows := make([]domain.OrderRow, 0, len(lines))
	for _, line := range lines {
		qty := line.SafeQty()
		if qty == 0 {
			continue
		}
		amounts := pricing.Compute(pricing.LineSubtotal(line.PriceCents, qty)).Format()
		rows = append(rows, domain.OrderRow{
			Timestamp:    local,
			TimestampISO: iso,
			Item:         line.Name.In(lang),
			Qty:          qty,
			Subtotal:     amounts.Subtotal,
			VAT:          amounts.Tax,
			Total:        amounts.Total,
		})
	}
	return rows
}

// EncodeRows serializes rows as a JSON array without HTML escaping.
func EncodeRows(rows []domain.OrderRow) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rows); err != nil {
		return nil, fmt.Errorf("encode order rows: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
