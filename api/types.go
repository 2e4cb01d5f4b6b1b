package api

import "github.com/parley-sh/parley/model"

// ListOptions controls cursor-based pagination. The cursor is opaque;
// an empty cursor in a response means the listing is exhausted.
type ListOptions struct {
	Limit  int
	Cursor string
}

// CreateConversationRequest is the payload for POST /conversations.
type CreateConversationRequest struct {
	Title     string `json:"title,omitempty"`
	AgentName string `json:"agentName,omitempty"`
}

// ConversationsPage is one page from GET /conversations.
type ConversationsPage struct {
	Conversations []model.Conversation `json:"conversations"`
	Cursor        string               `json:"cursor"`
}

// AddParticipantRequest is the payload for POST
// /conversations/{id}/participants.
type AddParticipantRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ParticipantsPage is one page from GET /conversations/{id}/participants.
type ParticipantsPage struct {
	Participants []model.Participant `json:"participants"`
	Cursor       string              `json:"cursor"`
}

// MessagesPage is one page from GET /conversations/{id}/messages.
type MessagesPage struct {
	Messages []model.Message `json:"messages"`
	Cursor   string          `json:"cursor"`
}

// conversationResponse wraps a single conversation record.
type conversationResponse struct {
	Conversation model.Conversation `json:"conversation"`
}

// participantResponse wraps a single participant record.
type participantResponse struct {
	Participant model.Participant `json:"participant"`
}

// inviteResponse wraps an issued invite link.
type inviteResponse struct {
	Invite model.InviteLink `json:"invite"`
}
