package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-advisor/internal/model"
)

// MaxTopFeatures bounds the feature leaderboard in UsageStats.
const MaxTopFeatures = 10

// applyEvent folds one event into stats.
func applyEvent(stats *model.UsageStats, event model.AnalyticsEvent) {
	meta := event.Metadata
	if meta == nil {
		meta = &model.EventMetadata{}
	}

	switch event.Type {
	case model.EventChatOpen:
		stats.TotalChatSessions++

	case model.EventChatClose:
		if meta.SessionDuration > 0 {
			stats.CompletedChatSessions++
			stats.AverageSessionDuration = runningMean(
				stats.AverageSessionDuration, meta.SessionDuration, stats.CompletedChatSessions)
		}

	case model.EventMessageSent:
		stats.TotalMessages++

	case model.EventInsightViewed:
		stats.InsightsViewed++
		if meta.InsightPriority.IsValid() {
			if stats.InsightsByPriority == nil {
				stats.InsightsByPriority = make(map[model.Priority]int)
			}
			stats.InsightsByPriority[meta.InsightPriority]++
		}

	case model.EventInsightDismissed:
		stats.InsightsDismissed++

	case model.EventFeatureUsed:
		if meta.FeatureName != "" {
			bumpFeature(stats, meta.FeatureName)
		}
	}

	stats.LastUpdated = event.Timestamp
}

// runningMean folds sample into avg, where n counts samples including this one.
func runningMean(avg, sample time.Duration, n int) time.Duration {
	if n <= 1 {
		return sample
	}
	count := decimal.NewFromInt(int64(n))
	total := decimal.NewFromInt(int64(avg)).Mul(count.Sub(decimal.NewFromInt(1))).Add(decimal.NewFromInt(int64(sample)))
	return time.Duration(total.Div(count).Round(0).IntPart())
}

// bumpFeature counts one use of name and rebuilds the leaderboard from the
// full counts, so a feature outside the top ten still accumulates.
func bumpFeature(stats *model.UsageStats, name string) {
	if len(stats.FeatureCounts) == 0 && len(stats.MostUsedFeatures) > 0 {
		// Rollups saved before full counts were kept.
		stats.FeatureCounts = append([]model.FeatureUsage(nil), stats.MostUsedFeatures...)
	}

	found := false
	for i := range stats.FeatureCounts {
		if stats.FeatureCounts[i].Feature == name {
			stats.FeatureCounts[i].Count++
			found = true
			break
		}
	}
	if !found {
		stats.FeatureCounts = append(stats.FeatureCounts, model.FeatureUsage{Feature: name, Count: 1})
	}

	stats.MostUsedFeatures = topFeatures(stats.FeatureCounts, MaxTopFeatures)
}

// topFeatures returns the n most used features. Ties keep first-seen order.
func topFeatures(counts []model.FeatureUsage, n int) []model.FeatureUsage {
	top := append([]model.FeatureUsage(nil), counts...)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > n {
		top = top[:n]
	}
	return top
}
