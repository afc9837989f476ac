package advisor

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/notify"
	"github.com/Veraticus/spice-advisor/internal/service"
)

// Escalation points at which a detector raises its insight to high priority.
const (
	highDeviationPercent = 50.0
	highBudgetPercent    = 95.0
	savingsSharePercent  = 30.0
)

var hundred = decimal.NewFromInt(100)

// GenerateProactiveInsights runs the anomaly, budget and savings detectors
// against fc. New insights are persisted and medium or high ones are pushed
// to the notifier. Failures are logged, never returned.
func (s *Service) GenerateProactiveInsights(ctx context.Context, fc model.FinancialContext) []model.Insight {
	if !s.settings.NotificationsEnabled {
		s.logger.Debug("proactive insights disabled")
		return []model.Insight{}
	}

	insights := make([]model.Insight, 0, 3)
	if insight, ok := s.detectSpendingAnomaly(fc); ok {
		insights = append(insights, insight)
	}
	if insight, ok := s.detectBudgetPressure(fc); ok {
		insights = append(insights, insight)
	}
	if insight, ok := s.detectSavingsOpportunity(fc); ok {
		insights = append(insights, insight)
	}

	if len(insights) == 0 {
		return insights
	}

	s.saveInsights(ctx, insights)

	for _, insight := range insights {
		if insight.Priority != model.PriorityMedium && insight.Priority != model.PriorityHigh {
			continue
		}
		err := s.deps.Notifier.Create(ctx, notify.SeverityFor(insight.Priority), insight.Title, insight.Description, service.NotifyOptions{
			Priority:    insight.Priority,
			ActionURL:   insight.ActionURL,
			ActionLabel: insight.ActionLabel,
		})
		if err != nil {
			s.logger.Warn("failed to send insight notification",
				"insight_id", insight.ID,
				"error", err)
		}
	}

	s.logger.Info("generated proactive insights",
		"user_id", fc.UserID,
		"count", len(insights))

	return insights
}

// detectSpendingAnomaly compares current expenses with the monthly average.
func (s *Service) detectSpendingAnomaly(fc model.FinancialContext) (model.Insight, bool) {
	avg := fc.Patterns.AverageMonthlySpending
	if !avg.IsPositive() {
		return model.Insight{}, false
	}

	current := fc.Transactions.Expenses
	deviation := current.Sub(avg).Div(avg).Mul(hundred)
	if deviation.LessThan(decimal.NewFromFloat(s.settings.UnusualSpendingThreshold)) {
		return model.Insight{}, false
	}

	priority := model.PriorityMedium
	if deviation.GreaterThanOrEqual(decimal.NewFromFloat(highDeviationPercent)) {
		priority = model.PriorityHigh
	}

	pct := deviation.Round(1).InexactFloat64()
	return s.newInsight(model.Insight{
		Type:  model.InsightWarning,
		Title: "Unusual spending detected",
		Description: fmt.Sprintf("Your expenses this period (%s) are %.0f%% above your monthly average (%s).",
			formatAmount(current), pct, formatAmount(avg)),
		Actionable:  true,
		ActionURL:   "/transactions",
		ActionLabel: "Review transactions",
		Priority:    priority,
		Metadata: &model.InsightMetadata{
			Amount:     &current,
			Percentage: pct,
		},
	}), true
}

// detectBudgetPressure warns when budget usage crosses the configured threshold.
func (s *Service) detectBudgetPressure(fc model.FinancialContext) (model.Insight, bool) {
	pct := fc.Budgets.Percentage
	if pct < s.settings.BudgetWarningThreshold {
		return model.Insight{}, false
	}

	priority := model.PriorityMedium
	title := "Budget limit approaching"
	if pct >= highBudgetPercent {
		priority = model.PriorityHigh
		title = "Budget almost exhausted"
	}

	used := fc.Budgets.Used
	return s.newInsight(model.Insight{
		Type:  model.InsightWarning,
		Title: title,
		Description: fmt.Sprintf("You have used %.0f%% of your budget (%s of %s).",
			pct, formatAmount(used), formatAmount(fc.Budgets.Total)),
		Actionable:  true,
		ActionURL:   "/budgets",
		ActionLabel: "Review budget",
		Priority:    priority,
		Metadata: &model.InsightMetadata{
			Amount:     &used,
			Percentage: pct,
		},
	}), true
}

// detectSavingsOpportunity points at the category with the largest share of expenses.
func (s *Service) detectSavingsOpportunity(fc model.FinancialContext) (model.Insight, bool) {
	total := fc.Transactions.Expenses
	if !total.IsPositive() {
		total = decimal.Zero
		for _, amount := range fc.Transactions.ByCategory {
			total = total.Add(amount)
		}
	}
	if !total.IsPositive() {
		return model.Insight{}, false
	}

	names := make([]string, 0, len(fc.Transactions.ByCategory))
	for name := range fc.Transactions.ByCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	var topName string
	topAmount := decimal.Zero
	for _, name := range names {
		if amount := fc.Transactions.ByCategory[name]; amount.GreaterThan(topAmount) {
			topName, topAmount = name, amount
		}
	}
	if topName == "" {
		return model.Insight{}, false
	}

	share := topAmount.Div(total).Mul(hundred)
	if share.LessThan(decimal.NewFromFloat(savingsSharePercent)) {
		return model.Insight{}, false
	}

	pct := share.Round(1).InexactFloat64()
	saving := topAmount.Div(decimal.NewFromInt(10))
	return s.newInsight(model.Insight{
		Type:  model.InsightTip,
		Title: "Savings opportunity",
		Description: fmt.Sprintf("%s accounts for %.0f%% of your expenses (%s). Cutting it by 10%% would save %s.",
			topName, pct, formatAmount(topAmount), formatAmount(saving)),
		Actionable:  true,
		ActionURL:   "/analytics",
		ActionLabel: "See category breakdown",
		Priority:    model.PriorityLow,
		Metadata: &model.InsightMetadata{
			Category:   topName,
			Amount:     &topAmount,
			Percentage: pct,
		},
	}), true
}
