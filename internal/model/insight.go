package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InsightType classifies an insight.
type InsightType string

// Insight types.
const (
	InsightWarning     InsightType = "warning"
	InsightTip         InsightType = "tip"
	InsightAchievement InsightType = "achievement"
	InsightPrediction  InsightType = "prediction"
)

// Priority ranks how urgently an insight or notification should surface.
type Priority string

// Priorities, lowest first.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether p is one of the known priorities.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Insight is a structured finding shown to the user.
type Insight struct {
	Timestamp   time.Time        `json:"timestamp"`
	Metadata    *InsightMetadata `json:"metadata,omitempty"`
	ID          string           `json:"id"`
	Type        InsightType      `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	ActionURL   string           `json:"actionUrl,omitempty"`
	ActionLabel string           `json:"actionLabel,omitempty"`
	Priority    Priority         `json:"priority"`
	Actionable  bool             `json:"actionable"`
}

// InsightMetadata carries the numbers behind a detector finding.
type InsightMetadata struct {
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Category   string           `json:"category,omitempty"`
	Percentage float64          `json:"percentage,omitempty"`
}
