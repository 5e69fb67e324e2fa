// Package config handles application configuration.
// file: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings is the full configuration of an mcpcore endpoint.
type Settings struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Schema    SchemaConfig    `yaml:"schema"`
	Hooks     HooksConfig     `yaml:"hooks"`
	Logging   LoggingConfig   `yaml:"logging"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// ServerConfig identifies this endpoint to its peer during initialize.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// TransportConfig selects the wire transport. Only "stdio" is wired
// today; the field exists so adding one later isn't a breaking change.
type TransportConfig struct {
	Kind string `yaml:"kind"`
}

// SchemaConfig names a directory of per-tool JSON Schema documents. It is
// loaded and overridable but cmd/mcpserver does not read it; tool schemas are
// compiled from each Tool's InputSchema when the tool is registered.
type SchemaConfig struct {
	Dir string `yaml:"dir"`
}

// HooksConfig configures the pre-dispatch middleware chain.
type HooksConfig struct {
	Auth      AuthHookConfig      `yaml:"auth"`
	RateLimit RateLimitHookConfig `yaml:"rateLimit"`
}

// AuthHookConfig mirrors middleware.AuthConfig. internal/config doesn't
// import internal/middleware, so cmd/mcpserver does the translation.
type AuthHookConfig struct {
	Enabled        bool     `yaml:"enabled"`
	APIKeys        []string `yaml:"apiKeys"`
	AllowAnonymous bool     `yaml:"allowAnonymous"`
}

// RateLimitHookConfig selects a sliding-window preset by name (an empty or
// unknown name resolves to MODERATE); a positive WindowMs or MaxRequests
// overrides that field of the chosen preset.
type RateLimitHookConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Preset      string `yaml:"preset"`
	WindowMs    int64  `yaml:"windowMs"`
	MaxRequests int    `yaml:"maxRequests"`
}

// LoggingConfig controls the initial log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TimeoutConfig bounds outbound request waits, in milliseconds.
type TimeoutConfig struct {
	RequestMs int64 `yaml:"requestMs"`
}

// New returns Settings populated with defaults, able to run without a
// config file.
func New() *Settings {
	return &Settings{
		Server: ServerConfig{
			Name:    "mcpcore",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Kind: "stdio",
		},
		Schema: SchemaConfig{
			Dir: "schemas",
		},
		Hooks: HooksConfig{
			Auth: AuthHookConfig{
				AllowAnonymous: true,
			},
			RateLimit: RateLimitHookConfig{
				Preset: "MODERATE",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Timeouts: TimeoutConfig{
			RequestMs: 30_000,
		},
	}
}

// LoadConfig layers defaults, an optional YAML file, then environment
// variables, in that order. A missing path is not an error.
func LoadConfig(path string) (*Settings, error) {
	settings := New()

	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, fmt.Errorf("expanding config path: %w", err)
		}
		data, err := os.ReadFile(expanded)
		if err != nil {
			if os.IsNotExist(err) {
				return settings, applyEnvAndValidate(settings)
			}
			return nil, fmt.Errorf("reading config file %q: %w", expanded, err)
		}
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parsing config file %q: %w", expanded, err)
		}
	}

	return settings, applyEnvAndValidate(settings)
}

func applyEnvAndValidate(s *Settings) error {
	applyEnvOverrides(s)
	return s.Validate()
}

func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("MCPCORE_SERVER_NAME"); v != "" {
		s.Server.Name = v
	}
	if v := os.Getenv("MCPCORE_SERVER_VERSION"); v != "" {
		s.Server.Version = v
	}
	if v := os.Getenv("MCPCORE_LOG_LEVEL"); v != "" {
		s.Logging.Level = v
	}
	if v := os.Getenv("MCPCORE_SCHEMA_DIR"); v != "" {
		s.Schema.Dir = v
	}
	if v := os.Getenv("MCPCORE_AUTH_API_KEYS"); v != "" {
		s.Hooks.Auth.APIKeys = strings.Split(v, ",")
		s.Hooks.Auth.Enabled = true
	}
	if v := os.Getenv("MCPCORE_RATE_LIMIT_PRESET"); v != "" {
		s.Hooks.RateLimit.Preset = v
		s.Hooks.RateLimit.Enabled = true
	}
}

// Validate rejects settings that would make an endpoint unusable.
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.Server.Name) == "" {
		return fmt.Errorf("server.name must not be empty")
	}
	if s.Transport.Kind != "stdio" {
		return fmt.Errorf("unsupported transport kind %q", s.Transport.Kind)
	}
	if s.Timeouts.RequestMs <= 0 {
		return fmt.Errorf("timeouts.requestMs must be positive")
	}
	return nil
}

// GetServerName returns the server name.
func (s *Settings) GetServerName() string {
	return s.Server.Name
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
