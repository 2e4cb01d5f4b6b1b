package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	if c.Server.SocketURL == "" {
		return errors.New("server.socket_url is required")
	}
	if !strings.HasPrefix(c.Server.SocketURL, "ws://") && !strings.HasPrefix(c.Server.SocketURL, "wss://") {
		return fmt.Errorf("server.socket_url must be a ws:// or wss:// URL, got %q", c.Server.SocketURL)
	}
	if c.Server.APIKey == "" {
		return errors.New("server.api_key is required")
	}

	if c.Connection.ReconnectBaseDelay > c.Connection.ReconnectMaxDelay {
		return fmt.Errorf("connection.reconnect_base_delay (%s) cannot exceed reconnect_max_delay (%s)",
			c.Connection.ReconnectBaseDelay, c.Connection.ReconnectMaxDelay)
	}
	if c.Connection.MaxReconnectAttempts < 0 {
		return errors.New("connection.max_reconnect_attempts must be >= 0")
	}

	if c.Ask.DefaultTimeout <= 0 {
		return errors.New("ask.default_timeout must be > 0")
	}

	return nil
}
