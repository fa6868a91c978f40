package domain

import "regexp"

// ItemIDPattern is the only shape an item identifier may take.
var ItemIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// CatalogItem is a purchasable option or extra.
type CatalogItem struct {
	ID          string
	Name        LocalizedText
	Description LocalizedText
	PriceCents  int64
	Variant     string
}

// ValidItemID reports whether id matches ItemIDPattern.
func ValidItemID(id string) bool {
	return ItemIDPattern.MatchString(id)
}

// SafePrice coerces a negative price to zero.
func SafePrice(cents int64) int64 {
	if cents < 0 {
		return 0
	}
	return cents
}
