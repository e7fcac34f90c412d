// Package config loads the per-project settings file .syl/config.yaml.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file inside the project's .syl directory.
const FileName = "config.yaml"

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

const (
	defaultListen          = ":3000"
	defaultModel           = "gpt-4o"
	defaultMaxIterations   = 15
	defaultScanConcurrency = 4
	defaultWatchInterval   = 2 * time.Second
)

// Config holds user-overridable project settings. Unset fields fall back to
// defaults through the Effective* accessors.
type Config struct {
	Store           string   `yaml:"store"`
	Listen          string   `yaml:"listen"`
	Model           string   `yaml:"model"`
	MaxIterations   *int     `yaml:"max_iterations"`
	ScanConcurrency *int     `yaml:"scan_concurrency"`
	WatchInterval   string   `yaml:"watch_interval"`
	Ignore          []string `yaml:"ignore"`
	LogLevel        string   `yaml:"log_level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{}
}

// Load reads .syl/config.yaml below root. A missing or invalid file yields
// the defaults.
func Load(root string) *Config {
	return LoadFile(filepath.Join(root, ".syl", FileName))
}

// LoadFile reads a config file from an explicit path.
func LoadFile(path string) *Config {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("config.invalid", "path", path, "err", err)
		return Default()
	}
	return cfg
}

// EffectiveStore returns "json" or "sqlite".
func (c *Config) EffectiveStore() string {
	if strings.EqualFold(c.Store, StoreSQLite) {
		return StoreSQLite
	}
	return StoreJSON
}

// EffectiveListen returns the HTTP listen address, default ":3000".
func (c *Config) EffectiveListen() string {
	if c.Listen != "" {
		return c.Listen
	}
	return defaultListen
}

// EffectiveModel returns the chat model used for generation.
func (c *Config) EffectiveModel() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModel
}

// EffectiveMaxIterations returns the tool-loop round limit, default 15.
func (c *Config) EffectiveMaxIterations() int {
	if c.MaxIterations != nil && *c.MaxIterations > 0 {
		return *c.MaxIterations
	}
	return defaultMaxIterations
}

// EffectiveScanConcurrency returns how many files a project scan resolves at
// once, default 4.
func (c *Config) EffectiveScanConcurrency() int {
	if c.ScanConcurrency != nil && *c.ScanConcurrency > 0 {
		return *c.ScanConcurrency
	}
	return defaultScanConcurrency
}

// EffectiveWatchInterval returns the base polling interval of the watcher.
func (c *Config) EffectiveWatchInterval() time.Duration {
	if d, err := time.ParseDuration(c.WatchInterval); err == nil && d > 0 {
		return d
	}
	return defaultWatchInterval
}

// EffectiveLogLevel maps log_level to a slog level, default info.
func (c *Config) EffectiveLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
