package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-advisor/internal/model"
)

const timeLayout = "2006-01-02 15:04"

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), value)
}

// RenderConfig shows a provider configuration. Callers pass a redacted copy.
func RenderConfig(cfg model.ProviderConfig, configured bool) string {
	status := ErrorStyle.Render("not configured")
	if configured {
		status = SuccessStyle.Render("configured")
	}
	key := cfg.APIKey
	if key == "" {
		key = SubtleStyle.Render("(none)")
	}

	return strings.Join([]string{
		FormatTitle(RobotIcon, "AI provider"),
		row("Status", status),
		row("Provider", cfg.Provider),
		row("Model", cfg.Model),
		row("Endpoint", cfg.Endpoint),
		row("API key", key),
		row("Max tokens", fmt.Sprintf("%d", cfg.MaxTokens)),
		row("Temperature", fmt.Sprintf("%.2f", cfg.Temperature)),
	}, "\n")
}

// RenderInsight draws one insight card.
func RenderInsight(in model.Insight) string {
	header := fmt.Sprintf("%s %s %s",
		InsightIcon(in.Type),
		in.Title,
		PriorityStyle(in.Priority).Render("["+string(in.Priority)+"]"))

	lines := []string{in.Description}
	if in.Actionable && in.ActionLabel != "" {
		lines = append(lines, SubtleStyle.Render(fmt.Sprintf("→ %s (%s)", in.ActionLabel, in.ActionURL)))
	}
	if !in.Timestamp.IsZero() {
		lines = append(lines, SubtleStyle.Render(in.Timestamp.Local().Format(timeLayout)))
	}
	return RenderBox(header, strings.Join(lines, "\n"))
}

// RenderInsights draws every insight, or a placeholder when there are none.
func RenderInsights(insights []model.Insight) string {
	if len(insights) == 0 {
		return SubtleStyle.Render("No insights yet.")
	}
	cards := make([]string, 0, len(insights))
	for _, in := range insights {
		cards = append(cards, RenderInsight(in))
	}
	return strings.Join(cards, "\n")
}

// RenderHistory prints the conversation oldest first.
func RenderHistory(history []model.ConversationMessage) string {
	if len(history) == 0 {
		return SubtleStyle.Render("No conversation history.")
	}
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(SubtleStyle.Render(msg.Timestamp.Local().Format(timeLayout)))
		b.WriteString(" ")
		b.WriteString(RoleLabel(msg.Role))
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RoleLabel styles the speaker of a message.
func RoleLabel(role model.Role) string {
	if role == model.RoleUser {
		return UserStyle.Render("You")
	}
	if role == model.RoleAssistant {
		return AssistantStyle.Render("Advisor")
	}
	return SubtleStyle.Render(string(role))
}

// RenderStats shows the usage rollup.
func RenderStats(stats model.UsageStats) string {
	lines := []string{
		FormatTitle(ChartIcon, "Usage"),
		row("Chat sessions", fmt.Sprintf("%d (%d completed)", stats.TotalChatSessions, stats.CompletedChatSessions)),
		row("Average session", stats.AverageSessionDuration.Round(time.Second).String()),
		row("Messages", fmt.Sprintf("%d", stats.TotalMessages)),
		row("Insights viewed", fmt.Sprintf("%d", stats.InsightsViewed)),
		row("Insights dismissed", fmt.Sprintf("%d", stats.InsightsDismissed)),
		row("Viewed by priority", fmt.Sprintf("high %d · medium %d · low %d",
			stats.InsightsByPriority[model.PriorityHigh],
			stats.InsightsByPriority[model.PriorityMedium],
			stats.InsightsByPriority[model.PriorityLow])),
	}

	if len(stats.MostUsedFeatures) > 0 {
		lines = append(lines, "", BoldStyle.Render("Most used features"))
		for i, f := range stats.MostUsedFeatures {
			lines = append(lines, fmt.Sprintf("%2d. %-24s %d", i+1, f.Feature, f.Count))
		}
	}
	if !stats.LastUpdated.IsZero() {
		lines = append(lines, "", SubtleStyle.Render("Updated "+stats.LastUpdated.Local().Format(timeLayout)))
	}
	return strings.Join(lines, "\n")
}

// RenderEvents lists events as given, one per line.
func RenderEvents(events []model.AnalyticsEvent) string {
	if len(events) == 0 {
		return SubtleStyle.Render("No events recorded.")
	}
	lines := make([]string, 0, len(events))
	for _, e := range events {
		lines = append(lines, fmt.Sprintf("%s  %-18s %s",
			SubtleStyle.Render(e.Timestamp.Local().Format(timeLayout)),
			e.Type,
			describeMetadata(e.Metadata)))
	}
	return strings.Join(lines, "\n")
}

func describeMetadata(meta *model.EventMetadata) string {
	if meta == nil {
		return ""
	}
	var parts []string
	if meta.FeatureName != "" {
		parts = append(parts, "feature="+meta.FeatureName)
	}
	if meta.InsightPriority != "" {
		parts = append(parts, "priority="+string(meta.InsightPriority))
	}
	if meta.InsightCategory != "" {
		parts = append(parts, "category="+meta.InsightCategory)
	}
	if meta.MessageCount > 0 {
		parts = append(parts, fmt.Sprintf("messages=%d", meta.MessageCount))
	}
	if meta.SessionDuration > 0 {
		parts = append(parts, "duration="+meta.SessionDuration.Round(time.Second).String())
	}
	return strings.Join(parts, " ")
}

// RenderNotifications lists inbox entries, newest first.
func RenderNotifications(list []model.Notification) string {
	if len(list) == 0 {
		return SubtleStyle.Render("Inbox is empty.")
	}
	lines := make([]string, 0, len(list))
	for _, n := range list {
		lines = append(lines, fmt.Sprintf("%s %s %s\n   %s",
			BellIcon,
			SeverityStyle(n.Severity).Render(strings.ToUpper(string(n.Severity))),
			BoldStyle.Render(n.Title),
			n.Body))
	}
	return strings.Join(lines, "\n")
}
