package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"es", LangES, true},
		{" EN ", LangEN, true},
		{"fr", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLanguage(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguageAndThemeToggle(t *testing.T) {
	assert.Equal(t, LangEN, LangES.Toggle())
	assert.Equal(t, LangES, LangEN.Toggle())
	assert.Equal(t, "ES", LangES.Label())

	assert.Equal(t, ThemeDark, ThemeLight.Toggle())
	assert.Equal(t, ThemeLight, ThemeDark.Toggle())
	assert.Equal(t, "Light", ThemeLight.Label())
	assert.Equal(t, "Dark", ThemeDark.Label())
}

func TestLocalizedText_FallsBackToSpanish(t *testing.T) {
	text := LocalizedText{ES: "Jugo"}
	assert.Equal(t, "Jugo", text.In(LangEN))
	assert.True(t, LocalizedText{}.IsZero())

	marked := LocalizedText{ES: "a<b>", EN: "c"}.Map(func(s string) string { return s + "!" })
	assert.Equal(t, LocalizedText{ES: "a<b>!", EN: "c!"}, marked)
}

func TestValidItemID(t *testing.T) {
	assert.True(t, ValidItemID("op1"))
	assert.True(t, ValidItemID("ex_cafe"))
	assert.False(t, ValidItemID(""))
	assert.False(t, ValidItemID("Op1"))
	assert.False(t, ValidItemID("op-1"))
	assert.False(t, ValidItemID("<script>"))
}

func TestCartLine_Subtotal(t *testing.T) {
	assert.Equal(t, int64(640), CartLine{PriceCents: 320, Qty: 2}.Subtotal())
	assert.Equal(t, int64(0), CartLine{PriceCents: 320, Qty: -3}.Subtotal())
	assert.Equal(t, int64(0), CartLine{PriceCents: -5, Qty: 2}.Subtotal())
}

func TestSubmissionState_Transitions(t *testing.T) {
	assert.True(t, CanTransitionTo(SubmissionIdle, SubmissionValidating))
	assert.True(t, CanTransitionTo(SubmissionValidating, SubmissionSending))
	assert.True(t, CanTransitionTo(SubmissionValidating, SubmissionIdle))
	assert.True(t, CanTransitionTo(SubmissionSending, SubmissionIdle))

	assert.False(t, CanTransitionTo(SubmissionIdle, SubmissionSending))
	assert.False(t, CanTransitionTo(SubmissionSending, SubmissionValidating))
	assert.False(t, CanTransitionTo(SubmissionIdle, SubmissionIdle))
}

func TestFormatTimestamps(t *testing.T) {
	at := time.Date(2026, 10, 16, 14, 5, 9, 250_000_000, time.UTC)
	quito := time.FixedZone("ECT", -5*60*60)

	local, iso := FormatTimestamps(at, quito)

	assert.Equal(t, "10/16/2026 09:05", local)
	assert.Equal(t, "2026-10-16T14:05:09.250Z", iso)
}
