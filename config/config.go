package config

import "time"

// Config is the root configuration for a parley agent.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Connection ConnectionConfig `yaml:"connection"`
	Ask        AskConfig        `yaml:"ask"`
	Agent      AgentConfig      `yaml:"agent"`
}

// ServerConfig holds conversation service endpoints and credentials.
type ServerConfig struct {
	BaseURL    string        `yaml:"base_url"`   // REST base URL
	SocketURL  string        `yaml:"socket_url"` // websocket base URL (ws:// or wss://)
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// ConnectionConfig holds websocket connection settings.
type ConnectionConfig struct {
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	AutoReconnect        bool          `yaml:"auto_reconnect"`
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay    time.Duration `yaml:"reconnect_max_delay"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
}

// AskConfig holds question settings.
type AskConfig struct {
	DefaultTimeout time.Duration `yaml:"default_timeout"`
}

// AgentConfig identifies this agent to participants.
type AgentConfig struct {
	Name     string `yaml:"name"`
	SenderID string `yaml:"sender_id"`
}
