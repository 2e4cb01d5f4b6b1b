package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/parley-sh/parley/model"
)

// CreateConversation creates a new conversation.
func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (*model.Conversation, error) {
	var resp conversationResponse
	if err := c.post(ctx, "/conversations", req, &resp); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &resp.Conversation, nil
}

// GetConversation fetches a single conversation by id.
func (c *Client) GetConversation(ctx context.Context, id string) (*model.Conversation, error) {
	var resp conversationResponse
	if err := c.get(ctx, "/conversations/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", id, err)
	}
	return &resp.Conversation, nil
}

// DeleteConversation deletes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	if err := c.del(ctx, "/conversations/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete conversation %s: %w", id, err)
	}
	return nil
}

// ListConversations fetches one page of conversations.
func (c *Client) ListConversations(ctx context.Context, opts ListOptions) (*ConversationsPage, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	var page ConversationsPage
	if err := c.get(ctx, "/conversations", query, &page); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return &page, nil
}

// ListAllConversations fetches every conversation by paginating until
// the cursor is exhausted.
func (c *Client) ListAllConversations(ctx context.Context) ([]model.Conversation, error) {
	var all []model.Conversation
	opts := ListOptions{Limit: 100}

	for {
		page, err := c.ListConversations(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Conversations...)

		if page.Cursor == "" {
			break
		}
		opts.Cursor = page.Cursor
	}

	return all, nil
}

// ListMessages fetches one page of a conversation's message history.
func (c *Client) ListMessages(ctx context.Context, conversationID string, opts ListOptions) (*MessagesPage, error) {
	query := url.Values{}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	var page MessagesPage
	path := "/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.get(ctx, path, query, &page); err != nil {
		return nil, fmt.Errorf("list messages %s: %w", conversationID, err)
	}
	return &page, nil
}

// CreateInviteLink issues an invite link for a conversation.
func (c *Client) CreateInviteLink(ctx context.Context, conversationID string) (*model.InviteLink, error) {
	var resp inviteResponse
	path := "/conversations/" + url.PathEscape(conversationID) + "/invite"
	if err := c.post(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("create invite link %s: %w", conversationID, err)
	}
	return &resp.Invite, nil
}
