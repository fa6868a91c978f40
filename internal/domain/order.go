package domain

import "time"

const (
	// TimestampLayout renders MM/DD/YYYY HH:MM.
	TimestampLayout = "01/02/2006 15:04"
	// ISOTimestampLayout matches the UTC ISO-8601 form with milliseconds.
	ISOTimestampLayout = "2006-01-02T15:04:05.000Z"
)

// OrderRow is one line of a submitted order as sent over the wire.
type OrderRow struct {
	Timestamp    string `json:"timestamp"`
	TimestampISO string `json:"timestamp_iso"`
	Item         string `json:"item"`
	Qty          int    `json:"qty"`
	Subtotal     string `json:"subtotal"`
	VAT          string `json:"vat"`
	Total        string `json:"total"`
}

// FormatTimestamps returns the local and UTC ISO renderings of t.
func FormatTimestamps(t time.Time, loc *time.Location) (string, string) {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimestampLayout), t.UTC().Format(ISOTimestampLayout)
}
