// Package notify provides Notifier implementations for user-facing alerts.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
	"github.com/Veraticus/spice-advisor/internal/service"
)

// MaxInboxSize bounds the persisted notification inbox.
const MaxInboxSize = 100

// LogNotifier writes notifications to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: common.SourceLogger(logger, "notify")}
}

// Create logs the notification at a level matching its severity.
func (n *LogNotifier) Create(ctx context.Context, severity model.Severity, title, body string, opts service.NotifyOptions) error {
	level := slog.LevelInfo
	switch severity {
	case model.SeverityWarning:
		level = slog.LevelWarn
	case model.SeverityError:
		level = slog.LevelError
	}

	n.logger.Log(ctx, level, title,
		"body", body,
		"severity", severity,
		"priority", opts.Priority,
		"action_url", opts.ActionURL)
	return nil
}

// InboxNotifier persists notifications in the store, newest first.
type InboxNotifier struct {
	store service.Store
	now   func() time.Time
	mu    sync.Mutex
}

// NewInboxNotifier creates a store-backed notifier.
func NewInboxNotifier(store service.Store) *InboxNotifier {
	return &InboxNotifier{store: store, now: time.Now}
}

// Create prepends the notification to the inbox.
func (n *InboxNotifier) Create(ctx context.Context, severity model.Severity, title, body string, opts service.NotifyOptions) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	inbox, err := n.load(ctx)
	if err != nil {
		return err
	}

	entry := model.Notification{
		ID:          uuid.New().String(),
		CreatedAt:   n.now(),
		Severity:    severity,
		Title:       title,
		Body:        body,
		Priority:    opts.Priority,
		ActionURL:   opts.ActionURL,
		ActionLabel: opts.ActionLabel,
	}

	inbox = append([]model.Notification{entry}, inbox...)
	if len(inbox) > MaxInboxSize {
		inbox = inbox[:MaxInboxSize]
	}

	return n.store.Save(ctx, service.KeyNotifications, inbox)
}

// List returns the inbox, newest first.
func (n *InboxNotifier) List(ctx context.Context) ([]model.Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.load(ctx)
}

// Clear empties the inbox.
func (n *InboxNotifier) Clear(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.store.Delete(ctx, service.KeyNotifications)
}

func (n *InboxNotifier) load(ctx context.Context) ([]model.Notification, error) {
	var inbox []model.Notification
	if _, err := n.store.Load(ctx, service.KeyNotifications, &inbox); err != nil {
		return nil, err
	}
	if inbox == nil {
		inbox = []model.Notification{}
	}
	return inbox, nil
}

// Multi fans a notification out to several notifiers.
type Multi []service.Notifier

// Create delivers to every notifier and joins their errors.
func (m Multi) Create(ctx context.Context, severity model.Severity, title, body string, opts service.NotifyOptions) error {
	var errs []error
	for _, n := range m {
		if err := n.Create(ctx, severity, title, body, opts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SeverityFor maps an insight priority to a notification severity.
func SeverityFor(p model.Priority) model.Severity {
	switch p {
	case model.PriorityHigh:
		return model.SeverityError
	case model.PriorityMedium:
		return model.SeverityWarning
	default:
		return model.SeverityInfo
	}
}
