package tui

import "github.com/Veraticus/spice-advisor/internal/model"

type historyLoadedMsg struct {
	messages []model.ConversationMessage
}

type answerMsg struct {
	answer string
}

type chatErrorMsg struct {
	err   error
	input string
}

type historyClearedMsg struct{}
