// Package view turns widget state into a view-model. It does no I/O and
// never mutates its input, so the same state always renders the same way.
package view

import (
	"github.com/fjod/order-widget/internal/domain"
	"github.com/fjod/order-widget/internal/pricing"
)

const (
	ActionAdd    = "add"
	ActionRemove = "rem"

	defaultVariant = "cafe"
)

var actionLabels = map[string]domain.LocalizedText{
	ActionAdd:    {ES: "+ Agregar", EN: "+ Add"},
	ActionRemove: {ES: "− Quitar", EN: "− Remove"},
}

// ActionLabel returns the button text for act in lang.
func ActionLabel(act string, lang domain.Language) string {
	return actionLabels[act].In(lang)
}

// Menu is the part of the input that lists what can be ordered.
type Menu interface {
	Options() []domain.CatalogItem
	Extras() []domain.CatalogItem
}

type Input struct {
	Menu       Menu
	Lines      []domain.CartLine
	Lang       domain.Language
	Theme      domain.Theme
	Submitting bool
}

type ItemView struct {
	ID          string `json:"id"`
	Badge       int    `json:"badge,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"`
	Variant     string `json:"variant"`
	AddLabel    string `json:"add_label"`
	RemoveLabel string `json:"remove_label"`
}

type LineView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Qty      int    `json:"qty"`
	Subtotal string `json:"subtotal"`
}

type ViewModel struct {
	Lang       domain.Language   `json:"lang"`
	LangLabel  string            `json:"lang_label"`
	Theme      domain.Theme      `json:"theme"`
	ThemeLabel string            `json:"theme_label"`
	Options    []ItemView        `json:"options"`
	Extras     []ItemView        `json:"extras"`
	Lines      []LineView        `json:"lines"`
	Totals     pricing.Formatted `json:"totals"`
	Submitting bool              `json:"submitting"`
}

func Render(in Input) ViewModel {
	vm := ViewModel{
		Lang:       in.Lang,
		LangLabel:  in.Lang.Label(),
		Theme:      in.Theme,
		ThemeLabel: in.Theme.Label(),
		Options:    []ItemView{},
		Extras:     []ItemView{},
		Lines:      []LineView{},
		Submitting: in.Submitting,
	}

	if in.Menu != nil {
		for i, o := range in.Menu.Options() {
			iv := itemView(o, in.Lang)
			iv.Badge = i + 1
			iv.Variant = defaultVariant
			vm.Options = append(vm.Options, iv)
		}
		for _, e := range in.Menu.Extras() {
			vm.Extras = append(vm.Extras, itemView(e, in.Lang))
		}
	}

	var subtotal int64
	for _, line := range in.Lines {
		qty := line.SafeQty()
		if qty == 0 {
			continue
		}
		rowSubtotal := pricing.LineSubtotal(line.PriceCents, qty)
		subtotal += rowSubtotal
		vm.Lines = append(vm.Lines, LineView{
			ID:       line.ID,
			Name:     line.Name.In(in.Lang),
			Qty:      qty,
			Subtotal: pricing.Format(rowSubtotal),
		})
	}
	vm.Totals = pricing.Compute(subtotal).Format()

	return vm
}

func itemView(item domain.CatalogItem, lang domain.Language) ItemView {
	variant := item.Variant
	if variant == "" {
		variant = defaultVariant
	}
	return ItemView{
		ID:          item.ID,
		Title:       item.Name.In(lang),
		Description: item.Description.In(lang),
		Price:       pricing.Format(item.PriceCents),
		Variant:     variant,
		AddLabel:    ActionLabel(ActionAdd, lang),
		RemoveLabel: ActionLabel(ActionRemove, lang),
	}
}
