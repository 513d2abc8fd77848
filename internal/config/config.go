package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultVersion   = 1
	DefaultPrecision = -1

	// Default values for server configuration.
	DefaultServerAddr  = "127.0.0.1:8790"
	DefaultRateLimit   = 50.0
	DefaultBurst       = 20
	DefaultWatchDelay  = 100 * time.Millisecond
	DefaultMaxEntries  = 500
	DefaultHistoryFile = "history.json"

	// EnvConfig overrides the config file location.
	EnvConfig = "CALC_CONFIG"
)

// Config defines user configuration stored in ~/.calc/config.json.
type Config struct {
	Version   int            `json:"version"`
	Precision *int           `json:"precision,omitempty"`
	Server    *ServerConfig  `json:"server,omitempty"`
	Watch     *WatchConfig   `json:"watch,omitempty"`
	History   *HistoryConfig `json:"history,omitempty"`
}

// GetPrecision returns the number of decimal places for output (default -1 = shortest).
func (c Config) GetPrecision() int {
	if c.Precision == nil {
		return DefaultPrecision
	}
	return *c.Precision
}

// ServerConfig holds evaluation server settings.
type ServerConfig struct {
	// Addr is the listen address (default 127.0.0.1:8790).
	Addr *string `json:"addr,omitempty"`

	// RateLimit is the sustained requests per second allowed per connection (default 50).
	RateLimit *float64 `json:"rate_limit,omitempty"`

	// Burst is the token bucket size per connection (default 20).
	Burst *int `json:"burst,omitempty"`
}

// GetAddr returns the listen address.
func (c *ServerConfig) GetAddr() string {
	if c == nil || c.Addr == nil || *c.Addr == "" {
		return DefaultServerAddr
	}
	return *c.Addr
}

// GetRateLimit returns the per-connection rate limit.
func (c *ServerConfig) GetRateLimit() float64 {
	if c == nil || c.RateLimit == nil {
		return DefaultRateLimit
	}
	return *c.RateLimit
}

// GetBurst returns the per-connection burst size.
func (c *ServerConfig) GetBurst() int {
	if c == nil || c.Burst == nil {
		return DefaultBurst
	}
	return *c.Burst
}

// Validate checks that server config values are within sensible ranges.
func (c *ServerConfig) Validate() error {
	if c == nil {
		return nil
	}
	if c.RateLimit != nil && *c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %v", *c.RateLimit)
	}
	if c.Burst != nil && *c.Burst < 1 {
		return fmt.Errorf("burst must be at least 1, got %d", *c.Burst)
	}
	return nil
}

// WatchConfig holds file watcher settings.
type WatchConfig struct {
	// Debounce is how long to wait after the last change before re-evaluating (default "100ms").
	Debounce *string `json:"debounce,omitempty"`
}

// GetDebounce returns the debounce delay.
func (c *WatchConfig) GetDebounce() time.Duration {
	if c == nil || c.Debounce == nil {
		return DefaultWatchDelay
	}
	d, err := time.ParseDuration(*c.Debounce)
	if err != nil {
		return DefaultWatchDelay
	}
	return d
}

// Validate checks that watch config values are within sensible ranges.
func (c *WatchConfig) Validate() error {
	if c == nil || c.Debounce == nil {
		return nil
	}
	d, err := time.ParseDuration(*c.Debounce)
	if err != nil {
		return fmt.Errorf("invalid debounce: %w", err)
	}
	if d < 10*time.Millisecond {
		return fmt.Errorf("debounce must be at least 10ms, got %v", d)
	}
	if d > 10*time.Second {
		return fmt.Errorf("debounce must be at most 10s, got %v", d)
	}
	return nil
}

// HistoryConfig holds evaluation history settings.
type HistoryConfig struct {
	// Enabled controls whether evaluations are recorded (default true).
	Enabled *bool `json:"enabled,omitempty"`

	// MaxEntries caps the number of stored entries (default 500).
	MaxEntries *int `json:"max_entries,omitempty"`
}

// IsEnabled returns whether history is recorded (default true).
func (c *HistoryConfig) IsEnabled() bool {
	if c == nil || c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// GetMaxEntries returns the history size cap.
func (c *HistoryConfig) GetMaxEntries() int {
	if c == nil || c.MaxEntries == nil {
		return DefaultMaxEntries
	}
	return *c.MaxEntries
}

// Validate checks that history config values are within sensible ranges.
func (c *HistoryConfig) Validate() error {
	if c == nil || c.MaxEntries == nil {
		return nil
	}
	if *c.MaxEntries < 1 || *c.MaxEntries > 10000 {
		return fmt.Errorf("max_entries must be between 1 and 10000, got %d", *c.MaxEntries)
	}
	return nil
}

// Default returns the default config.
func Default() Config {
	return Config{
		Version: DefaultVersion,
	}
}

// Dir returns the directory holding the config and history files.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect home dir: %w", err)
	}
	return filepath.Join(home, ".calc"), nil
}

// Path returns the config file location, honouring CALC_CONFIG.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads config from disk and applies defaults for zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config not found: %w", err)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

// LoadOrDefault reads config from disk, returning defaults if file doesn't exist.
func LoadOrDefault(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes a config to disk, creating the parent directory.
func Save(path string, cfg Config) error {
	if cfg.Version == 0 {
		cfg.Version = DefaultVersion
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// Validate ensures config values are within supported ranges.
func (c Config) Validate() error {
	if c.Version != DefaultVersion {
		return fmt.Errorf("unsupported config version: %d", c.Version)
	}
	if c.Precision != nil && (*c.Precision < -1 || *c.Precision > 17) {
		return fmt.Errorf("precision must be between -1 and 17, got %d", *c.Precision)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := c.Watch.Validate(); err != nil {
		return fmt.Errorf("invalid watch config: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("invalid history config: %w", err)
	}
	return nil
}
