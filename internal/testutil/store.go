// Package testutil provides shared helpers for tests across the advisor packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/storage"
)

// SetupTestStore creates a migrated in-memory SQLite store that is closed
// when the test finishes.
func SetupTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()

	store, err := storage.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// Clock is a manually advanced time source.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at the given instant.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// ContextBuilder assembles FinancialContext values for tests.
type ContextBuilder struct {
	ctx model.FinancialContext
}

// NewContextBuilder starts from an empty context for a test user.
func NewContextBuilder() *ContextBuilder {
	return &ContextBuilder{ctx: model.FinancialContext{
		UserID: "test-user",
		TimeRange: model.TimeRange{
			Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
		},
		Transactions: model.TransactionSummary{
			ByCategory: map[string]decimal.Decimal{},
		},
	}}
}

// WithExpenses sets the current-period expense total.
func (b *ContextBuilder) WithExpenses(amount int64) *ContextBuilder {
	b.ctx.Transactions.Expenses = decimal.NewFromInt(amount)
	return b
}

// WithIncome sets the current-period income total.
func (b *ContextBuilder) WithIncome(amount int64) *ContextBuilder {
	b.ctx.Transactions.Income = decimal.NewFromInt(amount)
	return b
}

// WithAverageMonthlySpending sets the baseline used by the anomaly detector.
func (b *ContextBuilder) WithAverageMonthlySpending(amount int64) *ContextBuilder {
	b.ctx.Patterns.AverageMonthlySpending = decimal.NewFromInt(amount)
	return b
}

// WithBudgetPercentage sets how much of the budget has been used.
func (b *ContextBuilder) WithBudgetPercentage(pct float64) *ContextBuilder {
	b.ctx.Budgets.Percentage = pct
	return b
}

// WithCategory adds a category expense amount.
func (b *ContextBuilder) WithCategory(name string, amount int64) *ContextBuilder {
	b.ctx.Transactions.ByCategory[name] = decimal.NewFromInt(amount)
	return b
}

// Build returns the assembled context.
func (b *ContextBuilder) Build() model.FinancialContext {
	return b.ctx
}
