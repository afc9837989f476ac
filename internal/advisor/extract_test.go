package advisor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-advisor/internal/model"
)

func TestExtractInsights(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		wantTypes []model.InsightType
	}{
		{name: "neutral", answer: "You spent $400 on groceries this month."},
		{name: "tip inside a word", answer: "You made multiple purchases at the same store."},
		{name: "risk inside a word", answer: "Your asterisk-marked rows are pending."},
		{name: "inflected warning", answer: "You exceeded your dining budget.", wantTypes: []model.InsightType{model.InsightWarning}},
		{name: "warning word", answer: "Be CAREFUL with restaurant spending.", wantTypes: []model.InsightType{model.InsightWarning}},
		{name: "warning emoji", answer: "⚠️ Rent is due soon.", wantTypes: []model.InsightType{model.InsightWarning}},
		{name: "tip word", answer: "I recommend setting up an emergency fund.", wantTypes: []model.InsightType{model.InsightTip}},
		{name: "tip emoji", answer: "💡 Automate your savings.", wantTypes: []model.InsightType{model.InsightTip}},
		{name: "phrase", answer: "You could save $50 by switching plans.", wantTypes: []model.InsightType{model.InsightTip}},
		{
			name:      "both",
			answer:    "You may exceed your budget. Consider cooking at home.",
			wantTypes: []model.InsightType{model.InsightWarning, model.InsightTip},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil, DefaultSettings())
			insights := env.svc.extractInsights(tt.answer)

			require.Len(t, insights, len(tt.wantTypes))
			for i, want := range tt.wantTypes {
				assert.Equal(t, want, insights[i].Type)
				assert.Equal(t, tt.answer, insights[i].Description)
				assert.NotEmpty(t, insights[i].ID)
			}
		})
	}
}

func TestExtractInsights_TruncatesDescription(t *testing.T) {
	env := newTestEnv(t, nil, DefaultSettings())
	answer := "Warning: " + strings.Repeat("é", 300)

	insights := env.svc.extractInsights(answer)
	require.Len(t, insights, 1)

	desc := insights[0].Description
	assert.True(t, strings.HasSuffix(desc, "..."))
	assert.Equal(t, ExcerptLength+3, utf8.RuneCountInString(desc))
	assert.True(t, utf8.ValidString(desc))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "short", truncateRunes("short", 10))
	assert.Equal(t, "abc...", truncateRunes("abcdef", 3))
	assert.Equal(t, "", truncateRunes("", 3))
}
