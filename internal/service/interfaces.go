// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/spice-advisor/internal/model"
)

// Store keys owned by the advisor and analytics services.
const (
	KeyAIConfig            = "ai_config"
	KeyConversationHistory = "ai_conversation_history"
	KeyInsights            = "ai_insights"
	KeyAnalyticsEvents     = "analytics_events"
	KeyAnalyticsStats      = "analytics_stats"
	KeyNotifications       = "notifications"
)

// SaveOptions tunes a single Save call.
type SaveOptions struct {
	// Backup also writes the value to the backup table.
	Backup bool
}

// SaveOption mutates SaveOptions.
type SaveOption func(*SaveOptions)

// WithBackup keeps a backup copy of the saved value.
func WithBackup() SaveOption {
	return func(o *SaveOptions) { o.Backup = true }
}

// ApplySaveOptions folds opts into a SaveOptions value.
func ApplySaveOptions(opts ...SaveOption) SaveOptions {
	var o SaveOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Store is the persistent key-value contract. Values are JSON-serializable.
type Store interface {
	// Save writes value under key, replacing any previous value.
	Save(ctx context.Context, key string, value any, opts ...SaveOption) error
	// Load decodes the value under key into dest. It reports false when the key is absent.
	Load(ctx context.Context, key string, dest any) (bool, error)
	// LoadBackup decodes the backup copy under key into dest.
	LoadBackup(ctx context.Context, key string, dest any) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// NotifyOptions carries the optional parts of a notification.
type NotifyOptions struct {
	Priority    model.Priority
	ActionURL   string
	ActionLabel string
}

// Notifier pushes user-facing alerts.
type Notifier interface {
	Create(ctx context.Context, severity model.Severity, title, body string, opts NotifyOptions) error
}
