package finctx

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-advisor/internal/model"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 12, 0, 0, 0, time.UTC)
}

func expense(id string, date time.Time, merchant, category string, amount string) model.Transaction {
	txn := model.Transaction{
		ID:           id,
		Date:         date,
		Name:         merchant,
		MerchantName: merchant,
		AccountID:    "acct-1",
		Category:     category,
		Direction:    model.DirectionExpense,
		Amount:       decimal.RequireFromString(amount),
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func income(id string, date time.Time, amount string) model.Transaction {
	txn := model.Transaction{
		ID:           id,
		Date:         date,
		Name:         "PAYROLL",
		MerchantName: "Acme Corp",
		AccountID:    "acct-1",
		Direction:    model.DirectionIncome,
		Amount:       decimal.RequireFromString(amount),
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func TestFromTransactions(t *testing.T) {
	txns := []model.Transaction{
		income("1", day(time.April, 30), "4000.00"),
		expense("2", day(time.April, 3), "Netflix", "Entertainment", "15.99"),
		expense("3", day(time.May, 3), "Netflix", "Entertainment", "15.99"),
		expense("4", day(time.May, 5), "WHOLE FOODS #123", "", "120.50"),
		expense("5", day(time.May, 9), "Shell", "", "45.00"),
		expense("6", day(time.May, 12), "Landlord LLC", "Rent", "1500.00"),
	}
	// Same statement line imported twice.
	txns = append(txns, txns[4])

	fc, err := FromTransactions(txns, BuildOptions{
		UserID:      "u-1",
		BudgetTotal: decimal.NewFromInt(2000),
		Rules: []CategoryRule{
			{Pattern: "whole foods", Category: "Groceries"},
		},
		CategoryBudgets: map[string]decimal.Decimal{
			"Rent":      decimal.NewFromInt(1500),
			"Groceries": decimal.NewFromInt(300),
		},
		Goals: model.GoalSummary{Total: 2, Active: 1, Completed: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, "u-1", fc.UserID)
	assert.Equal(t, 6, fc.Transactions.Total)
	assert.True(t, decimal.RequireFromString("4000").Equal(fc.Transactions.Income))
	assert.True(t, decimal.RequireFromString("1697.48").Equal(fc.Transactions.Expenses), fc.Transactions.Expenses.String())

	assert.True(t, decimal.RequireFromString("120.50").Equal(fc.Transactions.ByCategory["Groceries"]))
	assert.True(t, decimal.RequireFromString("45").Equal(fc.Transactions.ByCategory[Uncategorized]))
	assert.True(t, decimal.RequireFromString("31.98").Equal(fc.Transactions.ByCategory["Entertainment"]))

	assert.Equal(t, day(time.April, 3), fc.TimeRange.Start)
	assert.Equal(t, day(time.May, 12), fc.TimeRange.End)

	assert.InDelta(t, 84.87, fc.Budgets.Percentage, 0.01)
	assert.Equal(t, 1, fc.Budgets.Alerts)
	assert.Equal(t, []string{"Rent", "Groceries", Uncategorized}, fc.Patterns.TopCategories)
	assert.Equal(t, 1, fc.Patterns.RecurringTransactions)
	assert.True(t, decimal.RequireFromString("848.74").Equal(fc.Patterns.AverageMonthlySpending),
		fc.Patterns.AverageMonthlySpending.String())
	assert.Equal(t, 2, fc.Goals.Total)
}

func TestFromTransactions_Period(t *testing.T) {
	txns := []model.Transaction{
		expense("1", day(time.April, 20), "Cafe", "Dining", "10"),
		expense("2", day(time.May, 2), "Cafe", "Dining", "20"),
	}

	period := model.TimeRange{Start: day(time.May, 1), End: day(time.May, 31)}
	fc, err := FromTransactions(txns, BuildOptions{
		Period:                 period,
		AverageMonthlySpending: decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fc.Transactions.Total)
	assert.Equal(t, period, fc.TimeRange)
	assert.True(t, decimal.NewFromInt(20).Equal(fc.Transactions.Expenses))
	assert.True(t, decimal.NewFromInt(500).Equal(fc.Patterns.AverageMonthlySpending))
	assert.Zero(t, fc.Budgets.Percentage)
}

func TestFromTransactions_Empty(t *testing.T) {
	fc, err := FromTransactions(nil, BuildOptions{})
	require.NoError(t, err)
	assert.Zero(t, fc.Transactions.Total)
	assert.NotNil(t, fc.Transactions.ByCategory)
	assert.Empty(t, fc.Patterns.TopCategories)
	assert.True(t, fc.Patterns.AverageMonthlySpending.IsZero())
}

func TestFromTransactions_InvalidRule(t *testing.T) {
	_, err := FromTransactions(nil, BuildOptions{Rules: []CategoryRule{{Pattern: "(", Category: "x"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid category rule")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid snapshot", func(t *testing.T) {
		path := filepath.Join(dir, "context.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"userId": "u-42",
			"timeRange": {"start": "2024-05-01T00:00:00Z", "end": "2024-05-31T00:00:00Z"},
			"transactions": {"total": 12, "income": "3000", "expenses": 1250.75, "byCategory": {"Dining": "420.10"}},
			"budgets": {"total": "2000", "used": "1500"},
			"patterns": {"averageMonthlySpending": "1000", "topCategories": ["Dining"]}
		}`), 0o600))

		fc, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "u-42", fc.UserID)
		assert.Equal(t, 12, fc.Transactions.Total)
		assert.True(t, decimal.RequireFromString("1250.75").Equal(fc.Transactions.Expenses))
		assert.True(t, decimal.RequireFromString("420.10").Equal(fc.Transactions.ByCategory["Dining"]))
		assert.InDelta(t, 75.0, fc.Budgets.Percentage, 1e-9)
		assert.Equal(t, time.May, fc.TimeRange.Start.Month())
	})

	t.Run("missing byCategory", func(t *testing.T) {
		path := filepath.Join(dir, "sparse.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"userId": "u-1"}`), 0o600))

		fc, err := LoadFile(path)
		require.NoError(t, err)
		assert.NotNil(t, fc.Transactions.ByCategory)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"userId": `), 0o600))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode context file")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.json"))
		require.Error(t, err)
	})
}
