package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-advisor/internal/model"
)

func TestApplyEvent(t *testing.T) {
	ts := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		event  model.AnalyticsEvent
		verify func(t *testing.T, stats model.UsageStats)
	}{
		{
			name:  "chat open",
			event: model.AnalyticsEvent{Type: model.EventChatOpen},
			verify: func(t *testing.T, stats model.UsageStats) {
				assert.Equal(t, 1, stats.TotalChatSessions)
				assert.Zero(t, stats.CompletedChatSessions)
			},
		},
		{
			name:  "chat close without duration",
			event: model.AnalyticsEvent{Type: model.EventChatClose},
			verify: func(t *testing.T, stats model.UsageStats) {
				assert.Zero(t, stats.CompletedChatSessions)
				assert.Zero(t, stats.AverageSessionDuration)
			},
		},
		{
			name: "first chat close takes the sample",
			event: model.AnalyticsEvent{Type: model.EventChatClose, Metadata: &model.EventMetadata{
				SessionDuration: 42 * time.Second,
			}},
			verify: func(t *testing.T, stats model.UsageStats) {
				assert.Equal(t, 1, stats.CompletedChatSessions)
				assert.Equal(t, 42*time.Second, stats.AverageSessionDuration)
			},
		},
		{
			name:  "viewed with unknown priority",
			event: model.AnalyticsEvent{Type: model.EventInsightViewed, Metadata: &model.EventMetadata{InsightPriority: "urgent"}},
			verify: func(t *testing.T, stats model.UsageStats) {
				assert.Equal(t, 1, stats.InsightsViewed)
				assert.NotContains(t, stats.InsightsByPriority, model.Priority("urgent"))
			},
		},
		{
			name:  "feature without name",
			event: model.AnalyticsEvent{Type: model.EventFeatureUsed},
			verify: func(t *testing.T, stats model.UsageStats) {
				assert.Empty(t, stats.MostUsedFeatures)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := model.NewUsageStats()
			tt.event.Timestamp = ts
			applyEvent(&stats, tt.event)
			assert.Equal(t, ts, stats.LastUpdated)
			tt.verify(t, stats)
		})
	}
}

func TestBumpFeature_KeepsTopTen(t *testing.T) {
	stats := model.NewUsageStats()
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("feature-%02d", i)
		for j := 0; j <= i; j++ {
			bumpFeature(&stats, name)
		}
	}
	features := stats.MostUsedFeatures

	assert.Len(t, features, MaxTopFeatures)
	assert.Equal(t, "feature-11", features[0].Feature)
	assert.Equal(t, 12, features[0].Count)
	for i := 1; i < len(features); i++ {
		assert.GreaterOrEqual(t, features[i-1].Count, features[i].Count)
	}
	assert.Len(t, stats.FeatureCounts, 12)
}

func TestBumpFeature_LateFeatureClimbsPastFullBoard(t *testing.T) {
	stats := model.NewUsageStats()
	for i := 0; i < MaxTopFeatures; i++ {
		for j := 0; j < 3; j++ {
			bumpFeature(&stats, fmt.Sprintf("feature-%02d", i))
		}
	}
	require.Len(t, stats.MostUsedFeatures, MaxTopFeatures)

	for j := 0; j < 4; j++ {
		bumpFeature(&stats, "late")
	}

	require.Len(t, stats.MostUsedFeatures, MaxTopFeatures)
	assert.Equal(t, model.FeatureUsage{Feature: "late", Count: 4}, stats.MostUsedFeatures[0])
	assert.Equal(t, "feature-08", stats.MostUsedFeatures[MaxTopFeatures-1].Feature)
}

func TestBumpFeature_SeedsFromLegacyLeaderboard(t *testing.T) {
	stats := model.UsageStats{
		MostUsedFeatures: []model.FeatureUsage{{Feature: "export", Count: 5}},
	}

	bumpFeature(&stats, "export")

	assert.Equal(t, []model.FeatureUsage{{Feature: "export", Count: 6}}, stats.FeatureCounts)
	assert.Equal(t, []model.FeatureUsage{{Feature: "export", Count: 6}}, stats.MostUsedFeatures)
}

func TestBumpFeature_StableOnTies(t *testing.T) {
	stats := model.NewUsageStats()
	for _, name := range []string{"budgets", "chat", "export"} {
		bumpFeature(&stats, name)
	}
	features := stats.MostUsedFeatures

	assert.Equal(t, []model.FeatureUsage{
		{Feature: "budgets", Count: 1},
		{Feature: "chat", Count: 1},
		{Feature: "export", Count: 1},
	}, features)
}

func TestProperty_RunningMeanMatchesArithmeticMean(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("incremental average tracks the true mean", prop.ForAll(
		func(seconds []int64) bool {
			stats := model.NewUsageStats()
			var sum time.Duration
			for _, s := range seconds {
				d := time.Duration(s) * time.Second
				sum += d
				applyEvent(&stats, model.AnalyticsEvent{
					Type:     model.EventChatClose,
					Metadata: &model.EventMetadata{SessionDuration: d},
				})
			}

			if stats.CompletedChatSessions != len(seconds) {
				return false
			}
			if len(seconds) == 0 {
				return stats.AverageSessionDuration == 0
			}
			want := sum / time.Duration(len(seconds))
			diff := stats.AverageSessionDuration - want
			if diff < 0 {
				diff = -diff
			}
			// Each step rounds to the nearest nanosecond.
			return diff <= time.Duration(len(seconds))
		},
		gen.SliceOf(gen.Int64Range(1, 7200)),
	))

	properties.TestingRun(t)
}
