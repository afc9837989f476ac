package model

import "time"

// Role identifies the author of a conversation message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ConversationMessage is one turn of the advisor chat.
type ConversationMessage struct {
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
	ID        string           `json:"id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
}

// MessageMetadata records what an assistant reply cost.
type MessageMetadata struct {
	Model  string  `json:"model,omitempty"`
	Tokens int     `json:"tokens,omitempty"`
	Cost   float64 `json:"cost,omitempty"`
}
