package model

import "time"

// Severity is the visual weight of a user-facing notification.
type Severity string

// Notification severities.
const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is an alert pushed to the user.
type Notification struct {
	CreatedAt   time.Time `json:"createdAt"`
	ID          string    `json:"id"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Priority    Priority  `json:"priority"`
	ActionURL   string    `json:"actionUrl,omitempty"`
	ActionLabel string    `json:"actionLabel,omitempty"`
}
