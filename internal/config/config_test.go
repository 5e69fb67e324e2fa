// file: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsUsableDefaults(t *testing.T) {
	s := New()
	require.NoError(t, s.Validate())
	assert.Equal(t, "mcpcore", s.Server.Name)
	assert.Equal(t, "stdio", s.Transport.Kind)
	assert.True(t, s.Hooks.Auth.AllowAnonymous)
	assert.Equal(t, "MODERATE", s.Hooks.RateLimit.Preset)
}

func TestLoadConfigMissingFileFallsBackToDefaults(t *testing.T) {
	s, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mcpcore", s.Server.Name)
}

func TestLoadConfigReadsYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  name: custom-server
  version: "2.0"
hooks:
  auth:
    enabled: true
    apiKeys: ["one", "two"]
`), 0o600))

	s, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "custom-server", s.Server.Name)
	assert.Equal(t, "2.0", s.Server.Version)
	assert.True(t, s.Hooks.Auth.Enabled)
	assert.Equal(t, []string{"one", "two"}, s.Hooks.Auth.APIKeys)
	// fields absent from the file keep their defaults
	assert.Equal(t, "stdio", s.Transport.Kind)
}

func TestLoadConfigEnvOverridesTakePrecedenceOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcpcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  name: from-file\n"), 0o600))

	t.Setenv("MCPCORE_SERVER_NAME", "from-env")
	t.Setenv("MCPCORE_LOG_LEVEL", "debug")
	t.Setenv("MCPCORE_AUTH_API_KEYS", "a,b,c")

	s, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", s.Server.Name)
	assert.Equal(t, "debug", s.Logging.Level)
	assert.Equal(t, []string{"a", "b", "c"}, s.Hooks.Auth.APIKeys)
	assert.True(t, s.Hooks.Auth.Enabled)
}

func TestValidateRejectsEmptyServerName(t *testing.T) {
	s := New()
	s.Server.Name = "  "
	assert.Error(t, s.Validate())
}

func TestValidateRejectsUnsupportedTransport(t *testing.T) {
	s := New()
	s.Transport.Kind = "websocket"
	assert.Error(t, s.Validate())
}

func TestValidateRejectsNonPositiveTimeout(t *testing.T) {
	s := New()
	s.Timeouts.RequestMs = 0
	assert.Error(t, s.Validate())
}

func TestExpandPathExpandsHomeDirectory(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	expanded, err := ExpandPath("~/data/tools.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data/tools.yaml"), expanded)
}

func TestExpandPathLeavesAbsolutePathUnchanged(t *testing.T) {
	expanded, err := ExpandPath("/etc/mcpcore/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/mcpcore/config.yaml", expanded)
}
