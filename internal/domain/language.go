package domain

import "strings"

// Language is the active display language of the widget.
type Language string

const (
	LangES Language = "es"
	LangEN Language = "en"
)

// DefaultLanguage is the language a new widget starts in.
const DefaultLanguage = LangES

func ParseLanguage(s string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LangES:
		return LangES, true
	case LangEN:
		return LangEN, true
	default:
		return "", false
	}
}

// Toggle flips between the two supported languages.
func (l Language) Toggle() Language {
	if l == LangES {
		return LangEN
	}
	return LangES
}

// Label is the text shown on the language button.
func (l Language) Label() string {
	return strings.ToUpper(string(l))
}

func (l Language) String() string {
	return string(l)
}

// LocalizedText holds a string in both supported languages.
type LocalizedText struct {
	ES string `json:"es"`
	EN string `json:"en"`
}

// In returns the text for lang, falling back to Spanish.
func (t LocalizedText) In(lang Language) string {
	if lang == LangEN && t.EN != "" {
		return t.EN
	}
	return t.ES
}

func (t LocalizedText) IsZero() bool {
	return t.ES == "" && t.EN == ""
}

// Map applies fn to both translations.
func (t LocalizedText) Map(fn func(string) string) LocalizedText {
	return LocalizedText{ES: fn(t.ES), EN: fn(t.EN)}
}

// Theme is the colour scheme of the widget.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

const DefaultTheme = ThemeLight

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Label is the text shown on the theme button.
func (t Theme) Label() string {
	if t == ThemeLight {
		return "Light"
	}
	return "Dark"
}
