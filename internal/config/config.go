package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DatasetConfig selects where the college records come from.
type DatasetConfig struct {
	Type  string   `yaml:"type"`
	Paths []string `yaml:"paths,omitempty"`
	DSN   string   `yaml:"dsn,omitempty"`
	Table string   `yaml:"table,omitempty"`
}

// RevealConfig controls the incremental reveal window.
type RevealConfig struct {
	Base           int    `yaml:"base"`
	Increment      int    `yaml:"increment"`
	SettleMs       *int   `yaml:"settle_ms"` // nil means the default; 0 reveals immediately
	Stale          string `yaml:"stale"`
	CancelOnChange bool   `yaml:"cancel_on_change"`
}

// SettleDelay is SettleMs as a duration, or the default delay when unset.
func (r RevealConfig) SettleDelay() time.Duration {
	ms := defaultSettleMs
	if r.SettleMs != nil {
		ms = *r.SettleMs
	}
	return time.Duration(ms) * time.Millisecond
}

// UIConfig configures the terminal browser.
type UIConfig struct {
	NearEndRows int  `yaml:"near_end_rows"`
	Inline      bool `yaml:"inline"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Reveal  RevealConfig  `yaml:"reveal"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

const (
	defaultBase        = 10
	defaultIncrement   = 10
	defaultSettleMs    = 1000
	defaultNearEndRows = 2
	defaultTable       = "colleges"
	defaultLogFile     = "collegeview.log"
)

// Load reads a config from a specified path. If the file does not exist,
// returns defaults. ${VAR} references in the file are expanded and
// COLLEGEVIEW_* variables override file values.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadDefault tries ./collegeview.yaml first, then
// ~/.config/collegeview/config.yaml. If neither exists, it writes defaults
// to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "collegeview.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, cfg.Validate()
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "collegeview", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Dataset: DatasetConfig{Type: "embedded"},
		Reveal:  RevealConfig{Stale: "apply"},
		Logging: LoggingConfig{Env: "local", File: defaultLogFile},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values.
func (c *AppConfig) ApplyDefaults() {
	if c.Dataset.Type == "" {
		c.Dataset.Type = "embedded"
	}
	if c.Dataset.Table == "" && (c.Dataset.Type == "sqlite" || c.Dataset.Type == "postgres") {
		c.Dataset.Table = defaultTable
	}
	if c.Reveal.Base == 0 {
		c.Reveal.Base = defaultBase
	}
	if c.Reveal.Increment == 0 {
		c.Reveal.Increment = defaultIncrement
	}
	if c.Reveal.SettleMs == nil {
		ms := defaultSettleMs
		c.Reveal.SettleMs = &ms
	}
	if c.Reveal.Stale == "" {
		c.Reveal.Stale = "apply"
	}
	if c.UI.NearEndRows == 0 {
		c.UI.NearEndRows = defaultNearEndRows
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate reports the first invalid field.
func (c *AppConfig) Validate() error {
	switch c.Dataset.Type {
	case "embedded":
	case "file":
		if len(c.Dataset.Paths) == 0 {
			return fmt.Errorf("dataset.paths is required for dataset.type %q", c.Dataset.Type)
		}
	case "sqlite", "postgres":
		if c.Dataset.DSN == "" {
			return fmt.Errorf("dataset.dsn is required for dataset.type %q", c.Dataset.Type)
		}
	default:
		return fmt.Errorf(`dataset.type must be "embedded", "file", "sqlite" or "postgres", got %q`, c.Dataset.Type)
	}
	if c.Reveal.Base < 1 {
		return fmt.Errorf("reveal.base must be positive, got %d", c.Reveal.Base)
	}
	if c.Reveal.Increment < 1 {
		return fmt.Errorf("reveal.increment must be positive, got %d", c.Reveal.Increment)
	}
	if c.Reveal.SettleMs != nil && *c.Reveal.SettleMs < 0 {
		return fmt.Errorf("reveal.settle_ms must not be negative, got %d", *c.Reveal.SettleMs)
	}
	if c.Reveal.Stale != "apply" && c.Reveal.Stale != "discard" {
		return fmt.Errorf(`reveal.stale must be "apply" or "discard", got %q`, c.Reveal.Stale)
	}
	if c.UI.NearEndRows < 0 {
		return fmt.Errorf("ui.near_end_rows must not be negative, got %d", c.UI.NearEndRows)
	}
	switch c.Logging.Env {
	case "local", "dev", "prod":
	default:
		return fmt.Errorf(`logging.env must be "local", "dev" or "prod", got %q`, c.Logging.Env)
	}
	return nil
}

// applyEnv overrides file values with COLLEGEVIEW_* environment variables.
func applyEnv(c *AppConfig) {
	c.Dataset.Type = getEnv("COLLEGEVIEW_DATASET_TYPE", c.Dataset.Type)
	if paths := getEnv("COLLEGEVIEW_DATASET_PATHS", ""); paths != "" {
		c.Dataset.Paths = strings.Split(paths, ",")
	}
	c.Dataset.DSN = getEnv("COLLEGEVIEW_DATASET_DSN", c.Dataset.DSN)
	c.Dataset.Table = getEnv("COLLEGEVIEW_DATASET_TABLE", c.Dataset.Table)

	c.Reveal.Base = getEnvInt("COLLEGEVIEW_REVEAL_BASE", c.Reveal.Base)
	c.Reveal.Increment = getEnvInt("COLLEGEVIEW_REVEAL_INCREMENT", c.Reveal.Increment)
	if val := os.Getenv("COLLEGEVIEW_REVEAL_SETTLE_MS"); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			c.Reveal.SettleMs = &ms
		}
	}
	c.Reveal.Stale = getEnv("COLLEGEVIEW_REVEAL_STALE", c.Reveal.Stale)
	c.Reveal.CancelOnChange = getEnvBool("COLLEGEVIEW_REVEAL_CANCEL_ON_CHANGE", c.Reveal.CancelOnChange)

	c.Logging.Env = getEnv("COLLEGEVIEW_LOG_ENV", c.Logging.Env)
	c.Logging.Level = getEnv("COLLEGEVIEW_LOG_LEVEL", c.Logging.Level)
	c.Logging.File = getEnv("COLLEGEVIEW_LOG_FILE", c.Logging.File)

	c.Metrics.Addr = getEnv("COLLEGEVIEW_METRICS_ADDR", c.Metrics.Addr)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
