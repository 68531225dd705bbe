package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadAppliesFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
llm:
  model: "gpt-test"
narrative:
  workers: 8
lottery:
  drawLimit: 50
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("NARRATIVE_WORKERS", "2")
	t.Setenv("LUCK_RESPONSE_TTL", "5m")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "gpt-test", cfg.LLM.Model)
	require.Equal(t, 2, cfg.Narrative.Workers)
	require.Equal(t, 50, cfg.Lottery.DrawLimit)
	require.Equal(t, 5*time.Minute, cfg.Luck.ResponseTTL)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, 24*time.Hour, cfg.Narrative.CacheTTL)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http: ["), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, defaultConfig().Validate())

	cases := map[string]func(*Config){
		"empty address":        func(c *Config) { c.HTTP.Address = "" },
		"bad rate limit":       func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 },
		"bad temperature":      func(c *Config) { c.LLM.Temperature = 3 },
		"unknown cache":        func(c *Config) { c.Cache.Driver = "memcached" },
		"valkey without addr":  func(c *Config) { c.Cache.Driver = "valkey" },
		"queue without valkey": func(c *Config) { c.Jobs.Driver = "valkey" },
		"hmac without secret":  func(c *Config) { c.Auth.Mode = "hmac" },
		"oidc without issuer":  func(c *Config) { c.Auth.Mode = "oidc"; c.Auth.Audience = "app" },
		"sqlite without path":  func(c *Config) { c.Lottery.StatsDriver = "sqlite"; c.Lottery.StatsPath = " " },
		"s3 without bucket":    func(c *Config) { c.Lottery.StatsDriver = "s3"; c.Lottery.ObjectStore.Endpoint = "localhost:9000" },
		"history window":       func(c *Config) { c.Luck.MaxHistoryDays = 7 },
		"telemetry endpoint":   func(c *Config) { c.Telemetry.Enabled = true },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
