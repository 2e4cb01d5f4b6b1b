package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/parley-sh/parley/model"
)

// AddParticipant adds a participant to a conversation.
func (c *Client) AddParticipant(ctx context.Context, conversationID string, req AddParticipantRequest) (*model.Participant, error) {
	var resp participantResponse
	path := "/conversations/" + url.PathEscape(conversationID) + "/participants"
	if err := c.post(ctx, path, req, &resp); err != nil {
		return nil, fmt.Errorf("add participant: %w", err)
	}
	return &resp.Participant, nil
}

// GetParticipant fetches a single participant.
func (c *Client) GetParticipant(ctx context.Context, conversationID, participantID string) (*model.Participant, error) {
	var resp participantResponse
	path := "/conversations/" + url.PathEscape(conversationID) + "/participants/" + url.PathEscape(participantID)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("get participant %s: %w", participantID, err)
	}
	return &resp.Participant, nil
}

// RemoveParticipant removes a participant from a conversation.
func (c *Client) RemoveParticipant(ctx context.Context, conversationID, participantID string) error {
	path := "/conversations/" + url.PathEscape(conversationID) + "/participants/" + url.PathEscape(participantID)
	if err := c.del(ctx, path); err != nil {
		return fmt.Errorf("remove participant %s: %w", participantID, err)
	}
	return nil
}

// ListParticipants fetches one page of a conversation's participants.
func (c *Client) ListParticipants(ctx context.Context, conversationID string, opts ListOptions) (*ParticipantsPage, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	var page ParticipantsPage
	path := "/conversations/" + url.PathEscape(conversationID) + "/participants"
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, fmt.Errorf("list participants %s: %w", conversationID, err)
	}
	return &page, nil
}

// ListAllParticipants fetches every participant by paginating until the
// cursor is exhausted.
func (c *Client) ListAllParticipants(ctx context.Context, conversationID string) ([]model.Participant, error) {
	var all []model.Participant
	opts := ListOptions{Limit: 100}

	for {
		page, err := c.ListParticipants(ctx, conversationID, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Participants...)

		if page.Cursor == "" {
			break
		}
		opts.Cursor = page.Cursor
	}

	return all, nil
}
