package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialContext is a read-only snapshot of a user's finances, built fresh
// by the caller for every request.
type FinancialContext struct {
	TimeRange    TimeRange          `json:"timeRange"`
	UserID       string             `json:"userId"`
	Transactions TransactionSummary `json:"transactions"`
	Budgets      BudgetSummary      `json:"budgets"`
	Patterns     PatternSummary     `json:"patterns"`
	Goals        GoalSummary        `json:"goals"`
}

// TimeRange is the period a snapshot covers.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TransactionSummary aggregates transactions over the snapshot period.
type TransactionSummary struct {
	ByCategory map[string]decimal.Decimal `json:"byCategory"`
	Income     decimal.Decimal            `json:"income"`
	Expenses   decimal.Decimal            `json:"expenses"`
	Total      int                        `json:"total"`
}

// BudgetSummary describes budget consumption. Percentage is Used/Total*100.
type BudgetSummary struct {
	Total      decimal.Decimal `json:"total"`
	Used       decimal.Decimal `json:"used"`
	Percentage float64         `json:"percentage"`
	Alerts     int             `json:"alerts"`
}

// GoalSummary counts savings goals by state.
type GoalSummary struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
}

// PatternSummary captures longer-running spending habits.
type PatternSummary struct {
	TopCategories          []string        `json:"topCategories"`
	AverageMonthlySpending decimal.Decimal `json:"averageMonthlySpending"`
	RecurringTransactions  int             `json:"recurringTransactions"`
}
