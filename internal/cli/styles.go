// Package cli renders advisor output for the terminal using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-advisor/internal/model"
)

var (
	// AccentColor is the main theme color.
	AccentColor = lipgloss.Color("#4ECDC4")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#7BD389")
	// WarningColor marks medium priority items.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor marks failures and high priority items.
	ErrorColor = lipgloss.Color("#FF6B6B")
	// SubtleColor is for timestamps and secondary text.
	SubtleColor = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)

	// BoxStyle frames answers and insight cards.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(26)

	UserStyle      = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	AssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(SuccessColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	TipIcon     = "💡"
	TrophyIcon  = "🏆"
	CrystalIcon = "🔮"
	RobotIcon   = "🤖"
	ChartIcon   = "📊"
	BellIcon    = "🔔"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatTitle formats a section title.
func FormatTitle(icon, title string) string {
	return TitleStyle.Render(icon + " " + title)
}

// RenderBox renders content in a bordered box under title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		BoldStyle.Render(title),
		content,
	))
}

// PriorityStyle picks the color for an insight priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityHigh:
		return ErrorStyle
	case model.PriorityMedium:
		return WarningStyle
	default:
		return SubtleStyle
	}
}

// InsightIcon returns the glyph shown next to an insight of type t.
func InsightIcon(t model.InsightType) string {
	switch t {
	case model.InsightWarning:
		return WarningIcon
	case model.InsightTip:
		return TipIcon
	case model.InsightAchievement:
		return TrophyIcon
	case model.InsightPrediction:
		return CrystalIcon
	default:
		return "•"
	}
}

// SeverityStyle picks the color for a notification severity.
func SeverityStyle(s model.Severity) lipgloss.Style {
	switch s {
	case model.SeverityError:
		return ErrorStyle
	case model.SeverityWarning:
		return WarningStyle
	case model.SeveritySuccess:
		return SuccessStyle
	default:
		return SubtleStyle
	}
}
