package catalog

import "github.com/fjod/order-widget/internal/domain"

const optionVariant = "cafe"

var options = [...]domain.CatalogItem{
	{
		ID:          "op1",
		Name:        domain.LocalizedText{ES: "Opción 1", EN: "Option 1"},
		Description: domain.LocalizedText{ES: "Tortilla + Huevo + Chorizo + Bebida", EN: "Tortilla + Eggs + Sausage + Drink"},
		PriceCents:  320,
		Variant:     optionVariant,
	},
	{
		ID:          "op2",
		Name:        domain.LocalizedText{ES: "Opción 2", EN: "Option 2"},
		Description: domain.LocalizedText{ES: "Tortilla + Chorizo + Bebida", EN: "Tortilla + Sausage + Drink"},
		PriceCents:  270,
		Variant:     optionVariant,
	},
	{
		ID:          "op3",
		Name:        domain.LocalizedText{ES: "Opción 3", EN: "Option 3"},
		Description: domain.LocalizedText{ES: "Tortilla + Huevos + Bebida", EN: "Tortilla + Eggs + Drink"},
		PriceCents:  270,
		Variant:     optionVariant,
	},
	{
		ID:          "op4",
		Name:        domain.LocalizedText{ES: "Opción 4", EN: "Option 4"},
		Description: domain.LocalizedText{ES: "2 Tortilla + 2 Huevos + 2 Chorizo + 2 Bebida", EN: "2 Tortillas + 2 Eggs + 2 Sausages + 2 Drinks"},
		PriceCents:  640,
		Variant:     optionVariant,
	},
}

var extras = [...]domain.CatalogItem{
	{ID: "ex_cafe", Name: domain.LocalizedText{ES: "Café", EN: "Coffee"}, PriceCents: 70, Variant: "cafe"},
	{ID: "ex_cola", Name: domain.LocalizedText{ES: "Cola", EN: "Cola"}, PriceCents: 70, Variant: "cola"},
	{ID: "ex_chorizo", Name: domain.LocalizedText{ES: "Chorizo", EN: "Sausage"}, PriceCents: 50, Variant: "chorizo"},
	{ID: "ex_huevo", Name: domain.LocalizedText{ES: "Huevo", EN: "Egg"}, PriceCents: 50, Variant: "huevo"},
	{ID: "ex_jugos", Name: domain.LocalizedText{ES: "Jugos", EN: "Juice"}, PriceCents: 100, Variant: "jugos"},
	{ID: "ex_tortilla", Name: domain.LocalizedText{ES: "Tortilla", EN: "Tortilla"}, PriceCents: 150, Variant: "tortilla"},
}

// Catalog is a read-only view over a fixed set of options and extras.
// Accessors hand out copies so callers cannot change the menu.
type Catalog struct {
	options []domain.CatalogItem
	extras  []domain.CatalogItem
}

// Default returns the breakfast menu.
func Default() *Catalog {
	return New(options[:], extras[:])
}

// New builds a catalog from the given items. The slices are copied.
func New(opts, ext []domain.CatalogItem) *Catalog {
	return &Catalog{
		options: append([]domain.CatalogItem(nil), opts...),
		extras:  append([]domain.CatalogItem(nil), ext...),
	}
}

func (c *Catalog) Options() []domain.CatalogItem {
	return append([]domain.CatalogItem(nil), c.options...)
}

func (c *Catalog) Extras() []domain.CatalogItem {
	return append([]domain.CatalogItem(nil), c.extras...)
}

// Lookup finds an item by id, searching options before extras.
func (c *Catalog) Lookup(id string) (domain.CatalogItem, bool) {
	for _, o := range c.options {
		if o.ID == id {
			return o, true
		}
	}
	for _, e := range c.extras {
		if e.ID == id {
			return e, true
		}
	}
	return domain.CatalogItem{}, false
}
