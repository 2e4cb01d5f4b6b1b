package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
server:
  base_url: https://parley.example/api
  socket_url: wss://parley.example
  api_key: secret
agent:
  name: deployer
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://parley.example/api" {
		t.Errorf("Server.BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Agent.Name != "deployer" {
		t.Errorf("Agent.Name = %q", cfg.Agent.Name)
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("PARLEY_API_KEY", "secret123")

	yaml := `
server:
  base_url: https://parley.example/api
  socket_url: wss://parley.example
  api_key: ${PARLEY_API_KEY}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.APIKey != "secret123" {
		t.Errorf("Server.APIKey = %q, want secret123", cfg.Server.APIKey)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
server:
  base_url: https://parley.example/api
  socket_url: wss://parley.example
  api_key: secret
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Connection.ReconnectBaseDelay != DefaultReconnectBaseDelay {
		t.Errorf("ReconnectBaseDelay = %v", cfg.Connection.ReconnectBaseDelay)
	}
	if cfg.Connection.MaxReconnectAttempts != DefaultMaxReconnectAttempts {
		t.Errorf("MaxReconnectAttempts = %d", cfg.Connection.MaxReconnectAttempts)
	}
	if cfg.Ask.DefaultTimeout != DefaultAskTimeout {
		t.Errorf("Ask.DefaultTimeout = %v", cfg.Ask.DefaultTimeout)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.Server.BaseURL = "https://parley.example/api"
		cfg.Server.SocketURL = "wss://parley.example"
		cfg.Server.APIKey = "secret"
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing base url", mutate: func(c *Config) { c.Server.BaseURL = "" }, wantErr: true},
		{name: "missing socket url", mutate: func(c *Config) { c.Server.SocketURL = "" }, wantErr: true},
		{name: "http socket url", mutate: func(c *Config) { c.Server.SocketURL = "https://x" }, wantErr: true},
		{name: "missing api key", mutate: func(c *Config) { c.Server.APIKey = "" }, wantErr: true},
		{name: "base delay above cap", mutate: func(c *Config) {
			c.Connection.ReconnectBaseDelay = time.Minute
			c.Connection.ReconnectMaxDelay = time.Second
		}, wantErr: true},
		{name: "zero ask timeout", mutate: func(c *Config) { c.Ask.DefaultTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate passed, want error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}
