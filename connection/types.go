package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected     = errors.New("not connected")
	ErrClosed           = errors.New("connection closed")
	ErrHandshakeTimeout = errors.New("handshake timeout")
)

// ProtocolError reports a server-signaled error frame or an underlying
// channel failure.
type ProtocolError struct {
	Code    string
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Code != "" {
		return "protocol error " + e.Code + ": " + e.Message
	}
	return "protocol error: " + e.Message
}

// Status is the connection lifecycle state.
type Status string

const (
	// StatusDisconnected is the initial state, and the state after an
	// unexpected close.
	StatusDisconnected Status = "disconnected"
	// StatusConnecting means the channel is being opened or the
	// handshake is still outstanding.
	StatusConnecting Status = "connecting"
	// StatusConnected means the server handshake completed.
	StatusConnected Status = "connected"
	// StatusError means the last connect or reconnect attempt failed.
	StatusError Status = "error"
	// StatusClosed is reached only through Close and permanently
	// suppresses reconnection.
	StatusClosed Status = "closed"
)

// Events emitted through Conn.Events().
const (
	EventConnected      = "connected"
	EventMessage        = "message"
	EventMessageUpdated = "message_updated"
	EventMessageAck     = "message_ack"
	EventError          = "error"
	EventDisconnected   = "disconnected"
	EventStatusChange   = "status_change"
)

// CloseSessionInvalid is the close status code the server sends when it
// has invalidated the whole conversation. It is distinct from ordinary
// close codes: pending work must be torn down and no reconnect attempted.
const CloseSessionInvalid = 4001

// Disconnect is the payload of EventDisconnected.
type Disconnect struct {
	Code           int   // websocket close code, 0 if unknown
	Err            error // underlying read error
	SessionInvalid bool  // server invalidated the conversation
}

// Config configures a Conn.
type Config struct {
	URL                  string        // websocket URL for one conversation endpoint
	Token                string        // bearer token, empty for none
	HandshakeTimeout     time.Duration // bound on dial plus server handshake frame
	WriteTimeout         time.Duration // write deadline for sends
	AutoReconnect        bool          // retry after unexpected closes
	ReconnectBaseDelay   time.Duration // backoff base
	ReconnectMaxDelay    time.Duration // backoff cap
	MaxReconnectAttempts int           // retry budget before going idle
}

// DefaultConfig returns sensible defaults; URL must still be set.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout:     10 * time.Second,
		WriteTimeout:         5 * time.Second,
		AutoReconnect:        true,
		ReconnectBaseDelay:   time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: 8,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.ReconnectBaseDelay <= 0 {
		c.ReconnectBaseDelay = def.ReconnectBaseDelay
	}
	if c.ReconnectMaxDelay <= 0 {
		c.ReconnectMaxDelay = def.ReconnectMaxDelay
	}
	if c.MaxReconnectAttempts <= 0 {
		c.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
}
