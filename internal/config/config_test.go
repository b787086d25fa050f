package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resuin/internal/scoring"
	"resuin/internal/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "json", cfg.App.DefaultFormat)
	assert.Equal(t, "generic", cfg.Analysis.DefaultCompany)
	assert.Equal(t, types.Mode(""), cfg.Analysis.Mode())
	assert.Equal(t, scoring.DefaultConfig(), cfg.Analysis.Scoring())
	assert.Equal(t, 4, cfg.Analysis.CompareConcurrency)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, time.Second, cfg.Server.TLS.AutoReload.DebounceDelay)
	assert.Equal(t, 5*time.Minute, cfg.Server.TLS.AutoReload.VaultPollInterval)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resuin.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  defaultFormat: text
analysis:
  defaultCompany: google
  defaultMode: smart
  maxEditDistance: 1
server:
  port: "9000"
`), 0o600))

	t.Setenv("RESUIN_SERVER_PORT", "9100")
	t.Setenv("RESUIN_SERVER_APIKEYS", "alpha, beta")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.App.DefaultFormat)
	assert.Equal(t, "google", cfg.Analysis.DefaultCompany)
	assert.Equal(t, types.ModeSmart, cfg.Analysis.Mode())
	assert.Equal(t, 1, cfg.Analysis.MaxEditDistance)
	assert.Equal(t, 5, cfg.Analysis.MinFuzzyLength)
	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.Server.APIKeys)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"unsupported format", func(c *Config) { c.App.DefaultFormat = "xml" }, "invalid default format"},
		{"zero file size", func(c *Config) { c.App.MaxFileSize = 0 }, "maxFileSize"},
		{"bad mode", func(c *Config) { c.Analysis.DefaultMode = "neural" }, "invalid mode \"neural\""},
		{"negative edit distance", func(c *Config) { c.Analysis.MaxEditDistance = -1 }, "edit distance"},
		{"zero section keywords", func(c *Config) { c.Analysis.MinSectionKeywords = 0 }, "section keywords"},
		{"zero concurrency", func(c *Config) { c.Analysis.CompareConcurrency = 0 }, "compareConcurrency"},
		{"bad tls mode", func(c *Config) { c.Server.TLS.Mode = "on" }, "invalid TLS mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.errorMsg)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a ,, b ,"))
	assert.Nil(t, splitList(" , "))
}
