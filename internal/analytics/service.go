// Package analytics records usage events in a capped log and keeps an
// incrementally updated rollup of them.
package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/service"
)

// MaxEvents bounds the persisted event log. The oldest events are evicted first.
const MaxEvents = 1000

// Service tracks usage events. It is safe for concurrent use.
type Service struct {
	store  service.Store
	logger *slog.Logger
	now    func() time.Time

	// sessionStart is zero when no chat session is open.
	sessionStart time.Time
	messageCount int
	mu           sync.Mutex
}

// NewService creates an analytics service. A nil logger uses the default
// logger and a nil clock uses time.Now.
func NewService(store service.Store, logger *slog.Logger, now func() time.Time) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store dependency is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:  store,
		logger: common.SourceLogger(logger, "analytics"),
		now:    now,
	}, nil
}

// TrackEvent appends an event to the log and folds it into the rollup.
// Storage failures are logged.
func (s *Service) TrackEvent(ctx context.Context, eventType model.EventType, meta *model.EventMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackLocked(ctx, eventType, meta)
}

func (s *Service) trackLocked(ctx context.Context, eventType model.EventType, meta *model.EventMetadata) {
	event := model.AnalyticsEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: s.now(),
		Metadata:  meta,
	}

	// An unreadable value is left in place rather than overwritten.
	if events, err := s.loadEvents(ctx); err != nil {
		s.logger.Error("skipping event log update", "event_type", eventType, "error", err)
	} else {
		events = append(events, event)
		if len(events) > MaxEvents {
			events = events[len(events)-MaxEvents:]
		}
		if err := s.store.Save(ctx, service.KeyAnalyticsEvents, events); err != nil {
			s.logger.Error("failed to save analytics events", "event_type", eventType, "error", err)
		}
	}

	if stats, err := s.loadStats(ctx); err != nil {
		s.logger.Error("skipping usage stats update", "event_type", eventType, "error", err)
	} else {
		applyEvent(&stats, event)
		if err := s.store.Save(ctx, service.KeyAnalyticsStats, stats); err != nil {
			s.logger.Error("failed to save usage stats", "event_type", eventType, "error", err)
		}
	}

	s.logger.Debug("tracked event", "event_type", eventType)
}

// StartChatSession opens a session and emits chat_open. A session already
// open is replaced without emitting chat_close.
func (s *Service) StartChatSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionStart = s.now()
	s.messageCount = 0
	s.trackLocked(ctx, model.EventChatOpen, nil)
}

// EndChatSession emits chat_close with the session duration and message
// count. It does nothing when no session is open.
func (s *Service) EndChatSession(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessionStart.IsZero() {
		return
	}
	meta := &model.EventMetadata{
		SessionDuration: s.now().Sub(s.sessionStart),
		MessageCount:    s.messageCount,
	}
	s.sessionStart = time.Time{}
	s.messageCount = 0
	s.trackLocked(ctx, model.EventChatClose, meta)
}

// TrackMessage bumps the session message counter and emits message_sent.
func (s *Service) TrackMessage(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messageCount++
	s.trackLocked(ctx, model.EventMessageSent, &model.EventMetadata{MessageCount: s.messageCount})
}

// TrackInsightViewed emits insight_viewed.
func (s *Service) TrackInsightViewed(ctx context.Context, priority model.Priority, category string) {
	s.TrackEvent(ctx, model.EventInsightViewed, &model.EventMetadata{
		InsightPriority: priority,
		InsightCategory: category,
	})
}

// TrackInsightDismissed emits insight_dismissed.
func (s *Service) TrackInsightDismissed(ctx context.Context, priority model.Priority, category string) {
	s.TrackEvent(ctx, model.EventInsightDismissed, &model.EventMetadata{
		InsightPriority: priority,
		InsightCategory: category,
	})
}

// TrackFeatureUsed emits feature_used.
func (s *Service) TrackFeatureUsed(ctx context.Context, name string) {
	s.TrackEvent(ctx, model.EventFeatureUsed, &model.EventMetadata{FeatureName: name})
}

// HasActiveSession reports whether a chat session is open.
func (s *Service) HasActiveSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.sessionStart.IsZero()
}

// GetUsageStats returns the rollup, or zeroed stats when none exist.
func (s *Service) GetUsageStats(ctx context.Context) model.UsageStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, err := s.loadStats(ctx)
	if err != nil {
		s.logger.Warn("failed to load usage stats", "error", err)
		return model.NewUsageStats()
	}
	return stats
}

// GetRecentEvents returns up to limit events, newest first.
func (s *Service) GetRecentEvents(ctx context.Context, limit int) []model.AnalyticsEvent {
	s.mu.Lock()
	events, err := s.loadEvents(ctx)
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("failed to load analytics events", "error", err)
	}

	if limit <= 0 {
		return []model.AnalyticsEvent{}
	}
	if limit > len(events) {
		limit = len(events)
	}
	out := make([]model.AnalyticsEvent, 0, limit)
	for i := len(events) - 1; i >= len(events)-limit; i-- {
		out = append(out, events[i])
	}
	return out
}

// ClearAnalytics removes the event log and the rollup. The active session is kept.
func (s *Service) ClearAnalytics(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{service.KeyAnalyticsEvents, service.KeyAnalyticsStats} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear analytics: %w", err)
		}
	}
	s.logger.Info("analytics cleared")
	return nil
}

func (s *Service) loadEvents(ctx context.Context) ([]model.AnalyticsEvent, error) {
	var events []model.AnalyticsEvent
	if _, err := s.store.Load(ctx, service.KeyAnalyticsEvents, &events); err != nil {
		return []model.AnalyticsEvent{}, err
	}
	return events, nil
}

func (s *Service) loadStats(ctx context.Context) (model.UsageStats, error) {
	stats := model.NewUsageStats()
	found, err := s.store.Load(ctx, service.KeyAnalyticsStats, &stats)
	if err != nil {
		return model.NewUsageStats(), err
	}
	if !found {
		return model.NewUsageStats(), nil
	}
	if stats.InsightsByPriority == nil {
		stats.InsightsByPriority = model.NewUsageStats().InsightsByPriority
	}
	if stats.MostUsedFeatures == nil {
		stats.MostUsedFeatures = []model.FeatureUsage{}
	}
	if stats.FeatureCounts == nil {
		stats.FeatureCounts = []model.FeatureUsage{}
	}
	return stats, nil
}
