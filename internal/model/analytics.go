package model

import "time"

// EventType names a tracked usage event.
type EventType string

// Tracked event types.
const (
	EventChatOpen         EventType = "chat_open"
	EventChatClose        EventType = "chat_close"
	EventMessageSent      EventType = "message_sent"
	EventInsightViewed    EventType = "insight_viewed"
	EventInsightDismissed EventType = "insight_dismissed"
	EventFeatureUsed      EventType = "feature_used"
)

// ParseEventType validates s against the known event types.
func ParseEventType(s string) (EventType, bool) {
	switch t := EventType(s); t {
	case EventChatOpen, EventChatClose, EventMessageSent,
		EventInsightViewed, EventInsightDismissed, EventFeatureUsed:
		return t, true
	}
	return "", false
}

// AnalyticsEvent is one entry of the usage log.
type AnalyticsEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Metadata  *EventMetadata `json:"metadata,omitempty"`
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
}

// EventMetadata holds the optional details attached to an event.
type EventMetadata struct {
	InsightPriority Priority      `json:"insightPriority,omitempty"`
	InsightCategory string        `json:"insightCategory,omitempty"`
	FeatureName     string        `json:"featureName,omitempty"`
	MessageCount    int           `json:"messageCount,omitempty"`
	SessionDuration time.Duration `json:"sessionDuration,omitempty"`
}

// FeatureUsage counts uses of a named feature.
type FeatureUsage struct {
	Feature string `json:"feature"`
	Count   int    `json:"count"`
}

// UsageStats is the rollup maintained incrementally from the event stream.
type UsageStats struct {
	LastUpdated            time.Time        `json:"lastUpdated"`
	InsightsByPriority     map[Priority]int `json:"insightsByPriority"`
	MostUsedFeatures       []FeatureUsage   `json:"mostUsedFeatures"`
	// FeatureCounts holds every feature ever used, in first-seen order.
	// MostUsedFeatures is derived from it.
	FeatureCounts          []FeatureUsage   `json:"featureCounts"`
	AverageSessionDuration time.Duration    `json:"averageSessionDuration"`
	TotalChatSessions      int              `json:"totalChatSessions"`
	CompletedChatSessions  int              `json:"completedChatSessions"`
	TotalMessages          int              `json:"totalMessages"`
	InsightsViewed         int              `json:"insightsViewed"`
	InsightsDismissed      int              `json:"insightsDismissed"`
}

// NewUsageStats returns the zeroed rollup.
func NewUsageStats() UsageStats {
	return UsageStats{
		InsightsByPriority: map[Priority]int{
			PriorityLow:    0,
			PriorityMedium: 0,
			PriorityHigh:   0,
		},
		MostUsedFeatures: []FeatureUsage{},
		FeatureCounts:    []FeatureUsage{},
	}
}
