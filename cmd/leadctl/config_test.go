package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 1500*time.Millisecond, cfg.Fetch.Delay)
}

func TestLoadConfigMergesFile(t *testing.T) {
	path := writeFile(t, "leadctl.yaml", `
server:
  addr: ":8080"
fetch:
  delay: 250ms
  error_message: "CRM unavailable"
sessions:
  idle_ttl: 10m
  max_sessions: 50
charts:
  theme: macarons
  cache_ttl: 1m
  height: 480px
log:
  level: debug
  format: json
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/admin", cfg.Server.BasePath)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.Delay)
	assert.Equal(t, "CRM unavailable", cfg.Fetch.ErrorMessage)
	assert.Equal(t, time.Minute, cfg.Charts.CacheTTL)
	assert.Equal(t, "480px", cfg.Charts.Height)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.IdleTTL)
	assert.Equal(t, 50, cfg.Sessions.MaxSessions)
	assert.Equal(t, 10*time.Minute, cfg.Sessions.StoreOptions().IdleTTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := writeFile(t, "leadctl.yaml", "server:\n  port: 80\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field port not found")
}

func TestLoadConfigEmptyFileUsesDefaults(t *testing.T) {
	path := writeFile(t, "leadctl.yaml", "")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"missing addr":   func(c *Config) { c.Server.Addr = "" },
		"shared addr":    func(c *Config) { c.Server.MetricsAddr = c.Server.Addr },
		"negative delay": func(c *Config) { c.Fetch.Delay = -time.Second },
		"bad level":      func(c *Config) { c.Log.Level = "verbose" },
		"bad format":     func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLogConfigHandler(t *testing.T) {
	var buf bytes.Buffer
	handler, err := LogConfig{Level: "warn", Format: "json"}.Handler(&buf)
	require.NoError(t, err)
	logger := slog.New(handler)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("lead", "LD-1"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), out)
	assert.Contains(t, out, `"lead":"LD-1"`)
}

func TestFetchConfigZeroDelayIsImmediate(t *testing.T) {
	assert.Equal(t, time.Duration(-1), FetchConfig{}.FetchOptions().Delay)
	assert.Equal(t, time.Second, FetchConfig{Delay: time.Second}.FetchOptions().Delay)
}

func TestDatasetConfigLoad(t *testing.T) {
	doc, err := DatasetConfig{}.Load()
	require.NoError(t, err)
	assert.Equal(t, "embedded", doc.Source)

	schema := writeFile(t, "schema.json", `{"type":"object","properties":{"leads":{"type":"array","maxItems":1}}}`)
	data := writeFile(t, "leads.yaml", `version: "1"
leads:
  - {id: LD-1, name: A, email: a@example.com, status: New, assigned_agent: X, value: 1, last_activity: 2025-03-01T00:00:00Z}
  - {id: LD-2, name: B, email: b@example.com, status: Lost, assigned_agent: X, value: 2, last_activity: 2025-03-02T00:00:00Z}
`)
	_, err = DatasetConfig{Path: data, Schema: schema}.Load()
	require.Error(t, err)

	doc, err = DatasetConfig{Path: data}.Load()
	require.NoError(t, err)
	assert.Len(t, doc.Leads, 2)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
