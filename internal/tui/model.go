// Package tui implements the interactive advisor chat with bubbletea.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/spice-advisor/internal/model"
)

// ChatService is the part of the advisor the chat screen drives.
type ChatService interface {
	Chat(ctx context.Context, message string, fc model.FinancialContext) (string, error)
	GetConversation(ctx context.Context) []model.ConversationMessage
	ClearConversation(ctx context.Context)
}

// SessionTracker records chat usage. It may be nil.
type SessionTracker interface {
	StartChatSession(ctx context.Context)
	EndChatSession(ctx context.Context)
	TrackMessage(ctx context.Context)
}

// Config holds what the chat screen needs.
type Config struct {
	Chat    ChatService
	Tracker SessionTracker
	Context model.FinancialContext
	Now     func() time.Time
	Width   int
	Height  int
}

// headerHeight and footerHeight are the rows reserved around the transcript.
const (
	headerHeight = 2
	footerHeight = 4
)

// Model is the chat screen state.
type Model struct {
	ctx      context.Context
	err      error
	cfg      Config
	keymap   KeyMap
	help     help.Model
	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	messages []model.ConversationMessage
	width    int
	height   int
	waiting  bool
	quitting bool
}

func newModel(ctx context.Context, cfg Config) Model {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Width == 0 {
		cfg.Width = 80
	}
	if cfg.Height == 0 {
		cfg.Height = 24
	}

	input := textinput.New()
	input.Placeholder = "Ask about your spending, budgets or goals..."
	input.Prompt = "› "
	input.CharLimit = 2000
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:      ctx,
		cfg:      cfg,
		keymap:   DefaultKeyMap(),
		help:     help.New(),
		input:    input,
		spinner:  sp,
		viewport: viewport.New(cfg.Width, cfg.Height),
	}
	m.resize(cfg.Width, cfg.Height)
	return m
}

// Init loads the persisted conversation.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadHistory())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case historyLoadedMsg:
		m.messages = msg.messages
		m.refresh()
		return m, nil

	case historyClearedMsg:
		m.messages = nil
		m.err = nil
		m.refresh()
		return m, nil

	case answerMsg:
		m.waiting = false
		m.messages = append(m.messages, model.ConversationMessage{
			Role:      model.RoleAssistant,
			Content:   msg.answer,
			Timestamp: m.cfg.Now(),
		})
		m.refresh()
		return m, nil

	case chatErrorMsg:
		m.waiting = false
		m.err = msg.err
		// The failed turn was not persisted, so drop it and give the text back.
		if n := len(m.messages); n > 0 && m.messages[n-1].Role == model.RoleUser {
			m.messages = m.messages[:n-1]
		}
		m.input.SetValue(msg.input)
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.waiting {
			return m, nil
		}
		m.input.Reset()
		m.err = nil
		m.waiting = true
		m.messages = append(m.messages, model.ConversationMessage{
			Role:      model.RoleUser,
			Content:   text,
			Timestamp: m.cfg.Now(),
		})
		m.refresh()
		return m, tea.Batch(m.spinner.Tick, m.send(text))

	case key.Matches(msg, m.keymap.Clear):
		if m.waiting {
			return m, nil
		}
		return m, m.clearHistory()

	case key.Matches(msg, m.keymap.ScrollUp), key.Matches(msg, m.keymap.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) loadHistory() tea.Cmd {
	chat, ctx := m.cfg.Chat, m.ctx
	return func() tea.Msg {
		return historyLoadedMsg{messages: chat.GetConversation(ctx)}
	}
}

func (m Model) send(text string) tea.Cmd {
	chat, tracker, ctx, fc := m.cfg.Chat, m.cfg.Tracker, m.ctx, m.cfg.Context
	return func() tea.Msg {
		if tracker != nil {
			tracker.TrackMessage(ctx)
		}
		answer, err := chat.Chat(ctx, text, fc)
		if err != nil {
			return chatErrorMsg{err: err, input: text}
		}
		return answerMsg{answer: answer}
	}
}

func (m Model) clearHistory() tea.Cmd {
	chat, ctx := m.cfg.Chat, m.ctx
	return func() tea.Msg {
		chat.ClearConversation(ctx)
		return historyClearedMsg{}
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	bodyHeight := height - headerHeight - footerHeight
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = bodyHeight
	m.input.Width = width - 4
	m.help.Width = width
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.messages, m.width))
	m.viewport.GotoBottom()
}
