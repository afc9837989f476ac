package advisor

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/testutil"
)

func TestPromptBuilder_SystemPrompt(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	prompt, err := pb.SystemPrompt()
	require.NoError(t, err)
	assert.Contains(t, prompt, "personal finance assistant")
	assert.Contains(t, prompt, "same language")
	assert.Contains(t, prompt, "300 words")
}

func TestPromptBuilder_UserPrompt(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	fc := testutil.NewContextBuilder().
		WithIncome(4200).
		WithExpenses(1800).
		WithCategory("Groceries", 300).
		WithCategory("Rent", 1200).
		WithCategory("Dining", 300).
		WithBudgetPercentage(72.5).
		WithAverageMonthlySpending(1650).
		Build()
	fc.Patterns.TopCategories = []string{"Rent", "Groceries"}

	prompt, err := pb.UserPrompt("Can I afford a vacation?", fc, nil)
	require.NoError(t, err)

	for _, want := range []string{
		"User question: Can I afford a vacation?",
		"## Financial context (2024-05-01 to 2024-05-31)",
		"### Transactions",
		"- Income: $4200.00",
		"- Expenses: $1800.00",
		"### Budgets",
		"(72.5%)",
		"### Goals",
		"### Spending patterns",
		"- Top categories: Rent, Groceries",
		"- Average monthly spending: $1650.00",
	} {
		assert.Contains(t, prompt, want)
	}
	assert.NotContains(t, prompt, "Recent conversation")

	// Categories are ordered by amount, then by name.
	rent := strings.Index(prompt, "Rent: $1200.00")
	dining := strings.Index(prompt, "Dining: $300.00")
	groceries := strings.Index(prompt, "Groceries: $300.00")
	require.True(t, rent >= 0 && dining >= 0 && groceries >= 0)
	assert.Less(t, rent, dining)
	assert.Less(t, dining, groceries)
}

func TestPromptBuilder_HistoryWindow(t *testing.T) {
	pb, err := NewPromptBuilder()
	require.NoError(t, err)

	var history []model.ConversationMessage
	for i := 0; i < 10; i++ {
		history = append(history, model.ConversationMessage{
			Role:    model.RoleUser,
			Content: fmt.Sprintf("message-%02d", i),
		})
	}

	prompt, err := pb.UserPrompt("next", model.FinancialContext{}, history)
	require.NoError(t, err)

	assert.Contains(t, prompt, "## Recent conversation")
	assert.Contains(t, prompt, "(unknown to unknown)")
	for i := 0; i < 10; i++ {
		line := fmt.Sprintf("user: message-%02d", i)
		if i < 10-PromptHistoryTurns {
			assert.NotContains(t, prompt, line)
		} else {
			assert.Contains(t, prompt, line)
		}
	}
}
