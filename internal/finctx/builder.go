// Package finctx builds FinancialContext snapshots from JSON files or from
// imported transactions.
package finctx

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-advisor/internal/model"
)

// Uncategorized labels expenses that no rule or import assigned a category.
const Uncategorized = "Uncategorized"

// TopCategoryCount is how many categories are listed in the pattern summary.
const TopCategoryCount = 3

var hundred = decimal.NewFromInt(100)

// CategoryRule assigns Category to transactions whose merchant or name matches Pattern.
type CategoryRule struct {
	Pattern  string `mapstructure:"pattern" json:"pattern"`
	Category string `mapstructure:"category" json:"category"`
}

// BuildOptions carries the inputs that transactions alone cannot provide.
type BuildOptions struct {
	// Period limits the transactions considered. A zero period uses the
	// span of the transactions.
	Period model.TimeRange
	// BudgetTotal is the spending budget for the period. Zero disables the budget summary.
	BudgetTotal decimal.Decimal
	// AverageMonthlySpending overrides the value derived from the transactions.
	AverageMonthlySpending decimal.Decimal
	// CategoryBudgets raise one alert per category spent at or above its limit.
	CategoryBudgets map[string]decimal.Decimal
	UserID          string
	Rules           []CategoryRule
	Goals           model.GoalSummary
}

// LoadFile reads a JSON FinancialContext snapshot.
func LoadFile(path string) (model.FinancialContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FinancialContext{}, fmt.Errorf("failed to read context file: %w", err)
	}

	var fc model.FinancialContext
	if err := json.Unmarshal(data, &fc); err != nil {
		return model.FinancialContext{}, fmt.Errorf("failed to decode context file %s: %w", path, err)
	}

	if fc.Transactions.ByCategory == nil {
		fc.Transactions.ByCategory = map[string]decimal.Decimal{}
	}
	if fc.Budgets.Percentage == 0 && fc.Budgets.Total.IsPositive() {
		fc.Budgets.Percentage = percentOf(fc.Budgets.Used, fc.Budgets.Total)
	}
	return fc, nil
}

type compiledRule struct {
	re       *regexp.Regexp
	category string
}

func compileRules(rules []CategoryRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid category rule %q: %w", r.Pattern, err)
		}
		compiled = append(compiled, compiledRule{re: re, category: r.Category})
	}
	return compiled, nil
}

// FromTransactions aggregates txns into a snapshot. Duplicate transactions,
// identified by hash, are counted once.
func FromTransactions(txns []model.Transaction, opts BuildOptions) (model.FinancialContext, error) {
	rules, err := compileRules(opts.Rules)
	if err != nil {
		return model.FinancialContext{}, err
	}

	period := opts.Period
	filterByPeriod := !period.Start.IsZero() || !period.End.IsZero()

	seen := make(map[string]bool, len(txns))
	selected := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if filterByPeriod && !inPeriod(txn, period) {
			continue
		}
		key := txn.Hash
		if key == "" {
			key = txn.GenerateHash()
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		selected = append(selected, txn)
	}

	if !filterByPeriod {
		period = spanOf(selected)
	}

	fc := model.FinancialContext{
		UserID:    opts.UserID,
		TimeRange: period,
		Transactions: model.TransactionSummary{
			ByCategory: map[string]decimal.Decimal{},
			Total:      len(selected),
		},
		Goals: opts.Goals,
	}

	for _, txn := range selected {
		if txn.Direction == model.DirectionIncome {
			fc.Transactions.Income = fc.Transactions.Income.Add(txn.Amount)
			continue
		}
		fc.Transactions.Expenses = fc.Transactions.Expenses.Add(txn.Amount)
		category := categorize(txn, rules)
		fc.Transactions.ByCategory[category] = fc.Transactions.ByCategory[category].Add(txn.Amount)
	}

	fc.Budgets = budgetSummary(fc.Transactions, opts)
	fc.Patterns = model.PatternSummary{
		TopCategories:          topCategories(fc.Transactions.ByCategory, TopCategoryCount),
		AverageMonthlySpending: opts.AverageMonthlySpending,
		RecurringTransactions:  countRecurring(selected),
	}
	if fc.Patterns.AverageMonthlySpending.IsZero() {
		fc.Patterns.AverageMonthlySpending = monthlyAverage(fc.Transactions.Expenses, period)
	}

	return fc, nil
}

func inPeriod(txn model.Transaction, period model.TimeRange) bool {
	if !period.Start.IsZero() && txn.Date.Before(period.Start) {
		return false
	}
	if !period.End.IsZero() && txn.Date.After(period.End) {
		return false
	}
	return true
}

func spanOf(txns []model.Transaction) model.TimeRange {
	var span model.TimeRange
	for _, txn := range txns {
		if span.Start.IsZero() || txn.Date.Before(span.Start) {
			span.Start = txn.Date
		}
		if txn.Date.After(span.End) {
			span.End = txn.Date
		}
	}
	return span
}

// categorize prefers the first matching rule, then the imported category.
func categorize(txn model.Transaction, rules []compiledRule) string {
	for _, r := range rules {
		if r.re.MatchString(txn.MerchantName) || r.re.MatchString(txn.Name) {
			return r.category
		}
	}
	if txn.Category != "" {
		return txn.Category
	}
	return Uncategorized
}

func budgetSummary(summary model.TransactionSummary, opts BuildOptions) model.BudgetSummary {
	budgets := model.BudgetSummary{
		Total: opts.BudgetTotal,
		Used:  summary.Expenses,
	}
	if opts.BudgetTotal.IsPositive() {
		budgets.Percentage = percentOf(summary.Expenses, opts.BudgetTotal)
	}
	for category, limit := range opts.CategoryBudgets {
		if limit.IsPositive() && summary.ByCategory[category].GreaterThanOrEqual(limit) {
			budgets.Alerts++
		}
	}
	return budgets
}

func topCategories(byCategory map[string]decimal.Decimal, n int) []string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if c := byCategory[names[i]].Cmp(byCategory[names[j]]); c != 0 {
			return c > 0
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// countRecurring counts merchants charged in at least two different months.
func countRecurring(txns []model.Transaction) int {
	months := make(map[string]map[string]bool)
	for _, txn := range txns {
		if txn.Direction == model.DirectionIncome {
			continue
		}
		merchant := strings.ToLower(strings.TrimSpace(txn.MerchantName))
		if merchant == "" {
			continue
		}
		if months[merchant] == nil {
			months[merchant] = make(map[string]bool)
		}
		months[merchant][txn.Date.Format("2006-01")] = true
	}

	count := 0
	for _, seen := range months {
		if len(seen) >= 2 {
			count++
		}
	}
	return count
}

// monthlyAverage spreads expenses over the calendar months the period touches.
func monthlyAverage(expenses decimal.Decimal, period model.TimeRange) decimal.Decimal {
	if period.Start.IsZero() || period.End.IsZero() {
		return expenses
	}
	months := (period.End.Year()-period.Start.Year())*12 + int(period.End.Month()-period.Start.Month()) + 1
	if months < 1 {
		months = 1
	}
	return expenses.Div(decimal.NewFromInt(int64(months))).Round(2)
}

func percentOf(part, whole decimal.Decimal) float64 {
	return part.Div(whole).Mul(hundred).Round(2).InexactFloat64()
}
