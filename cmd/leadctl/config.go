package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-leadboard/components/leads"
)

// Config is the leadctl configuration file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Sessions SessionsConfig `yaml:"sessions"`
	Charts   ChartsConfig   `yaml:"charts"`
	Log      LogConfig      `yaml:"log"`
	Activity ActivityConfig `yaml:"activity"`
}

// ServerConfig controls the HTTP listeners.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	BasePath    string `yaml:"base_path"`
	MetricsAddr string `yaml:"metrics_addr"` // empty disables /metrics
}

// DatasetConfig selects the lead dataset. An empty path uses the embedded one.
type DatasetConfig struct {
	Path   string `yaml:"path"`
	Schema string `yaml:"schema"`
}

// FetchConfig tunes the simulated fetch.
type FetchConfig struct {
	Delay        time.Duration `yaml:"delay"`
	ErrorMessage string        `yaml:"error_message"`
}

// SessionsConfig bounds the in-memory session store. Negative values
// disable a limit.
type SessionsConfig struct {
	IdleTTL     time.Duration `yaml:"idle_ttl"`
	MaxSessions int           `yaml:"max_sessions"`
}

// ChartsConfig tunes echarts output.
type ChartsConfig struct {
	Theme      string        `yaml:"theme"`
	AssetsHost string        `yaml:"assets_host"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	Height     string        `yaml:"height"`
}

// LogConfig builds the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// ActivityConfig controls bulk-action activity logging.
type ActivityConfig struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":9876",
			BasePath:    "/admin",
			MetricsAddr: ":9877",
		},
		Fetch: FetchConfig{
			Delay: 1500 * time.Millisecond,
		},
		Sessions: SessionsConfig{
			IdleTTL:     leads.DefaultSessionIdleTTL,
			MaxSessions: leads.DefaultMaxSessions,
		},
		Charts: ChartsConfig{
			CacheTTL: 5 * time.Minute,
			Height:   "320px",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Activity: ActivityConfig{
			Enabled: true,
			Channel: "leads",
		},
	}
}

// LoadConfig merges the YAML file at path over DefaultConfig. An empty path
// returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return Config{}, fmt.Errorf("leadctl: open config %s: %w", path, err)
	}
	defer f.Close()
	if err := decodeConfig(f, &cfg); err != nil {
		return Config{}, fmt.Errorf("leadctl: parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func decodeConfig(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks values the decoder cannot.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("leadctl: server.addr is required")
	}
	if c.Server.Addr == c.Server.MetricsAddr {
		return fmt.Errorf("leadctl: server.metrics_addr must differ from server.addr (%s)", c.Server.Addr)
	}
	if c.Fetch.Delay < 0 {
		return errors.New("leadctl: fetch.delay must not be negative")
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("leadctl: unknown log.format %q", c.Log.Format)
	}
	return nil
}

// Handler builds the slog handler described by the config.
func (c LogConfig) Handler(w io.Writer) (slog.Handler, error) {
	level, err := c.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.NewJSONHandler(w, opts), nil
	}
	return slog.NewTextHandler(w, opts), nil
}

func (c LogConfig) level() (slog.Level, error) {
	var level slog.Level
	raw := c.Level
	if raw == "" {
		raw = "info"
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("leadctl: unknown log.level %q", c.Level)
	}
	return level, nil
}

// FetchOptions maps the config onto the fetch simulator.
func (c FetchConfig) FetchOptions() leads.FetchOptions {
	delay := c.Delay
	if delay == 0 {
		// A zero delay in config loads immediately.
		delay = -1
	}
	return leads.FetchOptions{Delay: delay, ErrorMessage: c.ErrorMessage}
}

// StoreOptions maps the config onto the session store.
func (c SessionsConfig) StoreOptions() leads.SessionStoreOptions {
	return leads.SessionStoreOptions{IdleTTL: c.IdleTTL, MaxSessions: c.MaxSessions}
}

// Load reads the configured dataset.
func (c DatasetConfig) Load() (*leads.Dataset, error) {
	var validator leads.DatasetValidator
	if c.Schema != "" {
		schema, err := os.ReadFile(c.Schema)
		if err != nil {
			return nil, fmt.Errorf("leadctl: read schema %s: %w", c.Schema, err)
		}
		validator = leads.NewJSONSchemaValidator(schema)
	}
	if c.Path == "" {
		return leads.DefaultDataset()
	}
	return leads.ReadDataset(c.Path, validator)
}
