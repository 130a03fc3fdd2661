// internal/common/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	t.Setenv("NVIDIA_API_KEY", "")
	t.Setenv("PORT", "")

	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: greenguide\n"))
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "https://integrate.api.nvidia.com/v1/chat/completions", cfg.Inference.Endpoint)
	assert.Equal(t, 60*time.Second, GetDuration(cfg.Inference.Timeout))
	assert.Equal(t, "nvidia/nemotron-nano-12b-v2-vl", cfg.Inference.Vision.Model)
	assert.Equal(t, 200, cfg.Inference.Vision.MaxTokens)
	assert.Equal(t, 0.1, cfg.Inference.Reasoning.Temperature)
	assert.Equal(t, 0.7, cfg.Inference.Educator.Temperature)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 1024, cfg.Image.MaxDimension)
	assert.Equal(t, 50_000_000, cfg.Image.MaxPixels)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.False(t, cfg.Inference.CredentialConfigured())
	assert.False(t, cfg.RateLimitActive())
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("NVIDIA_API_KEY", "nvapi-abc123")
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg, err := LoadFromFile(writeConfig(t, `
inference:
  api_key: ${NVIDIA_API_KEY}
rate_limit:
  enabled: true
  requests: 5
`))
	require.NoError(t, err)

	assert.Equal(t, "nvapi-abc123", cfg.Inference.APIKey)
	assert.True(t, cfg.Inference.CredentialConfigured())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.True(t, cfg.RateLimitActive())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	t.Setenv("PORT", "")

	tests := []struct {
		name string
		body string
	}{
		{"bad port", "server:\n  port: 70000\n"},
		{"bad endpoint", "inference:\n  endpoint: not a url\n"},
		{"bad temperature", "inference:\n  vision:\n    temperature: 5\n"},
		{"bad level", "logging:\n  level: chatty\n"},
		{"bad trusted proxy", "server:\n  trusted_proxies: [\"10.0.0.0/8\", \"not-an-ip\"]\n"},
		{"bad max pixels", "image:\n  max_pixels: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_TrustedProxies(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := LoadFromFile(writeConfig(t, `
server:
  trusted_proxies: ["10.0.0.0/8", "192.168.1.10"]
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.Server.TrustedProxies)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestCredentialConfigured(t *testing.T) {
	c := InferenceConfig{CredentialPrefix: "nvapi-"}
	assert.False(t, c.CredentialConfigured())

	c.APIKey = "sk-wrong"
	assert.False(t, c.CredentialConfigured())

	c.APIKey = "nvapi-ok"
	assert.True(t, c.CredentialConfigured())
}
