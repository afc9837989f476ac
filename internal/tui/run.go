package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat screen and blocks until the user quits or ctx ends.
// The chat session is recorded through cfg.Tracker when one is set.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Chat == nil {
		return fmt.Errorf("chat service is required")
	}

	if cfg.Tracker != nil {
		cfg.Tracker.StartChatSession(ctx)
		// Record the close even when ctx was canceled by an interrupt.
		defer cfg.Tracker.EndChatSession(context.WithoutCancel(ctx))
	}

	program := tea.NewProgram(newModel(ctx, cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("chat UI failed: %w", err)
	}
	return nil
}
