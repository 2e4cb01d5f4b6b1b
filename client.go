package parley

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/parley-sh/parley/api"
	"github.com/parley-sh/parley/config"
	"github.com/parley-sh/parley/connection"
	"github.com/parley-sh/parley/session"
)

// Client is the top-level entry point: it holds the REST client for
// conversation management and opens live sessions over the websocket
// endpoint.
type Client struct {
	cfg    *config.Config
	rest   *api.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client from a validated configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rest = api.NewClient(cfg.Server.BaseURL, cfg.Server.APIKey,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithRetries(cfg.Server.MaxRetries, time.Second),
		api.WithLogger(c.logger),
	)
	return c
}

// API returns the REST client for conversation and participant CRUD.
func (c *Client) API() *api.Client { return c.rest }

// OpenSession connects a live session to an existing conversation. The
// participant roster is fetched first so questions against an empty
// conversation fail fast with session.ErrNoRecipients.
func (c *Client) OpenSession(ctx context.Context, conversationID string) (*session.Session, error) {
	participants, err := c.rest.ListAllParticipants(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}

	connCfg := connection.Config{
		URL:                  c.socketURL(conversationID),
		Token:                c.cfg.Server.APIKey,
		HandshakeTimeout:     c.cfg.Connection.HandshakeTimeout,
		WriteTimeout:         c.cfg.Connection.WriteTimeout,
		AutoReconnect:        c.cfg.Connection.AutoReconnect,
		ReconnectBaseDelay:   c.cfg.Connection.ReconnectBaseDelay,
		ReconnectMaxDelay:    c.cfg.Connection.ReconnectMaxDelay,
		MaxReconnectAttempts: c.cfg.Connection.MaxReconnectAttempts,
	}
	conn := connection.New(connCfg, c.logger)

	sessOpts := []session.Option{
		session.WithLogger(c.logger),
		session.WithAskTimeout(c.cfg.Ask.DefaultTimeout),
		session.WithRecipients(len(participants)),
	}
	if c.cfg.Agent.SenderID != "" {
		sessOpts = append(sessOpts, session.WithSenderID(c.cfg.Agent.SenderID))
	}
	sess := session.New(conn, sessOpts...)

	if err := sess.Connect(ctx); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

// socketURL builds the websocket endpoint for one conversation.
func (c *Client) socketURL(conversationID string) string {
	base := strings.TrimSuffix(c.cfg.Server.SocketURL, "/")
	return base + "/conversations/" + url.PathEscape(conversationID) + "/socket"
}
