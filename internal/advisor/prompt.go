package advisor

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-advisor/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// PromptBuilder renders the system and user prompts sent to the provider.
type PromptBuilder struct {
	templates map[string]*template.Template
}

// NewPromptBuilder parses the embedded prompt templates.
func NewPromptBuilder() (*PromptBuilder, error) {
	pb := &PromptBuilder{
		templates: make(map[string]*template.Template),
	}

	funcMap := template.FuncMap{
		"formatAmount":  formatAmount,
		"formatDate":    formatDate,
		"formatPercent": formatPercent,
		"join":          strings.Join,
	}

	for _, name := range []string{"system_prompt", "user_prompt"} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(name + ".tmpl").Funcs(funcMap).ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

// categoryAmount is one line of the per-category breakdown.
type categoryAmount struct {
	Amount decimal.Decimal
	Name   string
}

type userPromptData struct {
	Query      string
	Context    model.FinancialContext
	Categories []categoryAmount
	History    []model.ConversationMessage
}

// SystemPrompt returns the fixed instructions for the assistant.
func (pb *PromptBuilder) SystemPrompt() (string, error) {
	var buf bytes.Buffer
	if err := pb.templates["system_prompt"].Execute(&buf, nil); err != nil {
		return "", fmt.Errorf("failed to execute system_prompt template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// UserPrompt serializes the query, the context sections and the tail of the history.
func (pb *PromptBuilder) UserPrompt(query string, fc model.FinancialContext, history []model.ConversationMessage) (string, error) {
	data := userPromptData{
		Query:      query,
		Context:    fc,
		Categories: sortedCategories(fc.Transactions.ByCategory),
		History:    tail(history, PromptHistoryTurns),
	}

	var buf bytes.Buffer
	if err := pb.templates["user_prompt"].Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute user_prompt template: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// sortedCategories orders categories by amount, largest first, then by name.
func sortedCategories(byCategory map[string]decimal.Decimal) []categoryAmount {
	out := make([]categoryAmount, 0, len(byCategory))
	for name, amount := range byCategory {
		out = append(out, categoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func tail[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[len(items)-n:]
}

// Template helper functions

func formatAmount(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Format("2006-01-02")
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}
