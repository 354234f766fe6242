package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ProviderHTTP, c.LLM.Provider)
	require.Equal(t, "gemini-1.5-flash-latest", c.LLM.RefinerModel)
	require.Equal(t, "gemini-1.5-pro-latest", c.LLM.PlannerModel)
	require.InDelta(t, 0.7, c.LLM.Temperature, 1e-6)
	require.Zero(t, c.LLM.Timeout)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "9090"
database:
  type: memory
llm:
  provider: sdk
  planner_model: gemini-2.0-pro
  timeout: 30s
storage:
  credential_backend: keyring
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "9090", c.Server.Port)
	require.Equal(t, "memory", c.Database.Type)
	require.Equal(t, ProviderSDK, c.LLM.Provider)
	require.Equal(t, "gemini-2.0-pro", c.LLM.PlannerModel)
	require.Equal(t, "gemini-1.5-flash-latest", c.LLM.RefinerModel)
	require.Equal(t, 30*time.Second, c.LLM.Timeout)
	require.Equal(t, CredentialBackendKeyring, c.Storage.CredentialBackend)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("GEMINI_API_URL", "http://localhost:1234/v1beta/")
	t.Setenv("GOOGLE_API_KEY", "abc")
	t.Setenv("LLM_HTTP_TIMEOUT_MS", "1500")
	t.Setenv("LLM_PROVIDER", "SDK")

	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "7000", c.Server.Port)
	require.Equal(t, "http://localhost:1234/v1beta/models", c.LLM.BaseURL)
	require.Equal(t, "abc", c.LLM.APIKey)
	require.Equal(t, 1500*time.Millisecond, c.LLM.Timeout)
	require.Equal(t, ProviderSDK, c.LLM.Provider)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad provider", func(c *Config) { c.LLM.Provider = "openai" }},
		{"bad database", func(c *Config) { c.Database.Type = "postgres" }},
		{"bad credential backend", func(c *Config) { c.Storage.CredentialBackend = "vault" }},
		{"missing model", func(c *Config) { c.LLM.PlannerModel = "" }},
		{"temperature out of range", func(c *Config) { c.LLM.Temperature = 3 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			require.Error(t, c.Validate())
		})
	}
	require.NoError(t, Default().Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
