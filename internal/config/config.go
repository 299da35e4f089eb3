// Package config loads the mediminder YAML configuration. Values are fixed
// for the lifetime of the process.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/example/mediminder/internal/app"
)

// Config represents the mediminder configuration file.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Engine   EngineConfig   `yaml:"engine"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type TelegramConfig struct {
	Token       string  `yaml:"token"`
	AdminChatID string  `yaml:"admin_chat_id,omitempty"`
	SendRate    float64 `yaml:"send_rate"`  // messages per second
	SendBurst   int     `yaml:"send_burst"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// EngineConfig holds the reminder engine timings.
type EngineConfig struct {
	DetectorInterval    time.Duration `yaml:"detector_interval"`
	TriggerWindow       time.Duration `yaml:"trigger_window"`
	EscalationInterval  time.Duration `yaml:"escalation_interval"`
	EscalationDelay     time.Duration `yaml:"escalation_delay"`
	Snooze              time.Duration `yaml:"snooze"`
	MaxSnoozes          int           `yaml:"max_snoozes"`
	MaxSendRetries      int           `yaml:"max_send_retries"`
	DeliveryConcurrency int           `yaml:"delivery_concurrency"`
	Timezone            string        `yaml:"timezone"` // IANA name, "Local" when empty
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Environment overrides.
const (
	EnvTelegramToken = "MEDIMINDER_TELEGRAM_TOKEN"
	EnvTelegramAlt   = "TELEGRAM_TOKEN"
	EnvDatabase      = "MEDIMINDER_DB"
	EnvAdminChatID   = "MEDIMINDER_ADMIN_CHAT_ID"
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	eng := app.DefaultEngineConfig()
	home := homeDir()
	return &Config{
		Telegram: TelegramConfig{
			SendRate:  25,
			SendBurst: 5,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(home, "mediminder.db"),
		},
		Engine: EngineConfig{
			DetectorInterval:    eng.DetectorInterval,
			TriggerWindow:       eng.TriggerWindow,
			EscalationInterval:  eng.EscalationInterval,
			EscalationDelay:     eng.EscalationDelay,
			Snooze:              eng.Snooze,
			MaxSnoozes:          eng.MaxSnoozes,
			MaxSendRetries:      eng.MaxSendRetries,
			DeliveryConcurrency: eng.DeliveryConcurrency,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join(home, "logs", "mediminder.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// HomeDir returns ~/.mediminder, falling back to the working directory.
func HomeDir() string {
	return homeDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mediminder"
	}
	return filepath.Join(home, ".mediminder")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(homeDir(), "config.yaml")
}

// LoadConfig reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv(os.Getenv)
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvTelegramToken); v != "" {
		c.Telegram.Token = v
	} else if v := getenv(EnvTelegramAlt); v != "" && c.Telegram.Token == "" {
		c.Telegram.Token = v
	}
	if v := getenv(EnvDatabase); v != "" {
		c.Database.Path = v
	}
	if v := getenv(EnvAdminChatID); v != "" {
		c.Telegram.AdminChatID = v
	}
}

// SaveConfig writes cfg to path, creating the directory.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The token is a secret.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ValidationError lists every configuration problem found.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks the engine settings. requireToken is set for commands that
// talk to Telegram.
func (c *Config) Validate(requireToken bool) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	e := c.Engine
	for _, d := range []struct {
		name string
		v    time.Duration
	}{
		{"engine.detector_interval", e.DetectorInterval},
		{"engine.trigger_window", e.TriggerWindow},
		{"engine.escalation_interval", e.EscalationInterval},
		{"engine.escalation_delay", e.EscalationDelay},
		{"engine.snooze", e.Snooze},
	} {
		if d.v <= 0 {
			add("%s must be positive", d.name)
		}
	}
	if e.DetectorInterval > 0 && e.TriggerWindow > 0 && e.DetectorInterval >= e.TriggerWindow {
		add("engine.detector_interval (%s) must be shorter than engine.trigger_window (%s)", e.DetectorInterval, e.TriggerWindow)
	}
	if e.MaxSnoozes < 0 {
		add("engine.max_snoozes must be >= 0")
	}
	if e.MaxSendRetries < 1 {
		add("engine.max_send_retries must be >= 1")
	}
	if e.DeliveryConcurrency < 1 {
		add("engine.delivery_concurrency must be >= 1")
	}
	if _, err := c.Location(); err != nil {
		add("engine.timezone: %v", err)
	}
	if c.Database.Path == "" {
		add("database.path is required")
	}
	if requireToken && c.Telegram.Token == "" {
		add("telegram.token is required (or set %s)", EnvTelegramToken)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Location resolves engine.timezone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Engine.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	return time.LoadLocation(c.Engine.Timezone)
}

// ToEngineConfig converts the file settings to the engine's configuration.
func (c *Config) ToEngineConfig() (app.EngineConfig, error) {
	loc, err := c.Location()
	if err != nil {
		return app.EngineConfig{}, fmt.Errorf("failed to load timezone: %w", err)
	}
	e := c.Engine
	return app.EngineConfig{
		DetectorInterval:    e.DetectorInterval,
		TriggerWindow:       e.TriggerWindow,
		EscalationInterval:  e.EscalationInterval,
		EscalationDelay:     e.EscalationDelay,
		Snooze:              e.Snooze,
		MaxSnoozes:          e.MaxSnoozes,
		MaxSendRetries:      e.MaxSendRetries,
		DeliveryConcurrency: e.DeliveryConcurrency,
		Location:            loc,
	}, nil
}
