package model

import (
	"time"

	"github.com/parley-sh/parley/contract"
)

// Role identifies who authored a message.
type Role string

const (
	RoleAgent     Role = "agent"
	RoleRecipient Role = "recipient"
)

// MessageType distinguishes one-way notifications from questions.
type MessageType string

const (
	// TypeLog is a one-way informational message requiring no answer.
	TypeLog MessageType = "log"
	// TypeAsk is a structured prompt whose answer the sender awaits.
	TypeAsk MessageType = "ask"
)

// Message is a single entry in a conversation, as the server represents it.
// ResponseContent is a pointer so an empty-string answer is distinguishable
// from no answer at all.
type Message struct {
	ID              string           `json:"id"`
	Role            Role             `json:"role"`
	Type            MessageType      `json:"type"`
	Content         string           `json:"content"`
	Inputs          []contract.Input `json:"inputs,omitempty"`
	SenderID        string           `json:"senderId,omitempty"`
	ResponseContent *string          `json:"responseContent,omitempty"`
	RespondedAt     *time.Time       `json:"respondedAt,omitempty"`
	RespondedBy     string           `json:"respondedBy,omitempty"`
	Persist         bool             `json:"persist,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// Answered reports whether the message carries a response.
func (m *Message) Answered() bool {
	return m.ResponseContent != nil || m.RespondedAt != nil
}

// Conversation is one logical exchange between an agent and its participants.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	AgentName string    `json:"agentName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Participant is a human authorized to respond within a conversation.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Email    string    `json:"email,omitempty"`
	JoinedAt time.Time `json:"joinedAt,omitempty"`
}

// InviteLink grants a human access to a conversation.
type InviteLink struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}
