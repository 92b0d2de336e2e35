package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"unknown provider", func(c *Config) { c.Provider = "llamacpp" }, "provider"},
		{"openai without endpoint", func(c *Config) { c.BaseURL = "" }, "base_url"},
		{"anthropic without key", func(c *Config) { c.Provider = ProviderAnthropic; c.APIKey = "" }, "api_key"},
		{"missing manager model", func(c *Config) { c.ManagerModel = "" }, "manager_model"},
		{"missing specialist model", func(c *Config) { c.SpecialistModel = "" }, "specialist_model"},
		{"zero timeout", func(c *Config) { c.RunTimeout = 0 }, "run_timeout"},
		{"zero turns", func(c *Config) { c.ManagerTurns = 0 }, "manager_turns"},
		{"negative retries", func(c *Config) { c.TransportRetries = -1 }, "transport_retries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadkg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: http://gpu-box:11434/v1
manager_model: gpt-oss:120b
run_timeout: 5m
limits:
  geometry_parts: 10
  document_chars: 4000
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://gpu-box:11434/v1", cfg.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 10, cfg.Limits.GeometryParts)
	assert.Equal(t, 4000, cfg.Limits.DocumentChars)
	// Untouched fields keep their defaults.
	assert.Equal(t, "gpt-oss:20b", cfg.SpecialistModel)
	assert.Equal(t, 20, cfg.ManagerTurns)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadkg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("specialist_model: from-yaml\n"), 0o644))

	t.Setenv("OPENAI_MODEL_SPECIALIST", "from-env")
	t.Setenv("CADKG_MANAGER_TURNS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.SpecialistModel)
	assert.Equal(t, 7, cfg.ManagerTurns)
}

func TestLoad_MissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var cfgErr *Error
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoad_InvalidResultFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadkg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: weird\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
