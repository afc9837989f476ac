package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spice-advisor/internal/cli"
	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/model"
)

// View renders the chat screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := cli.TitleStyle.UnsetMargins().Render(cli.RobotIcon + " Financial advisor")

	status := ""
	switch {
	case m.waiting:
		status = m.spinner.View() + " thinking..."
	case m.err != nil:
		status = cli.FormatError(describeError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		m.viewport.View(),
		status,
		m.input.View(),
		m.help.ShortHelpView(m.keymap.ShortHelp()),
	)
}

func renderTranscript(messages []model.ConversationMessage, width int) string {
	if len(messages) == 0 {
		return cli.SubtleStyle.Render("Ask a question to get started.")
	}

	wrap := lipgloss.NewStyle().Width(max(width-2, 20))
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(cli.RoleLabel(msg.Role))
		b.WriteString("\n")
		b.WriteString(wrap.Render(msg.Content))
	}
	return b.String()
}

func describeError(err error) string {
	if common.IsConfigurationError(err) {
		return "No API key configured. Run: advisor config set --api-key <key>"
	}
	if common.IsProviderError(err) {
		return "The AI provider returned an error: " + err.Error()
	}
	return err.Error()
}
