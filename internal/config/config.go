package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	StateFile   string `yaml:"state_file" env:"SQ_STATE_FILE"`
	HistoryDB   string `yaml:"history_db" env:"SQ_HISTORY_DB"`
	OpenCommand string `yaml:"open_command" env:"SQ_OPEN_COMMAND"`
	LogLevel    string `yaml:"log_level" env:"SQ_LOG_LEVEL"`
	WatchCron   string `yaml:"watch_cron" env:"SQ_WATCH_CRON"`
}

// Dir returns ~/.config/sq.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sq"), nil
}

// DefaultPath is where Load looks when no path is given: $SQ_CONFIG or
// ~/.config/sq/config.yaml.
func DefaultPath() (string, error) {
	if v := os.Getenv("SQ_CONFIG"); v != "" {
		return v, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Defaults
	if cfg.StateFile == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		cfg.StateFile = filepath.Join(dir, "state.json")
	}
	if cfg.OpenCommand == "" {
		cfg.OpenCommand = defaultOpenCommand()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.WatchCron == "" {
		cfg.WatchCron = "@every 1m"
	}

	return cfg, nil
}

// Validate checks that the configured values are usable.
func (c *Config) Validate() error {
	if c.StateFile == "" {
		return fmt.Errorf("state_file is required")
	}
	if c.OpenCommand == "" {
		return fmt.Errorf("open_command is required")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := cron.ParseStandard(c.WatchCron); err != nil {
		return fmt.Errorf("watch_cron: %w", err)
	}
	return nil
}

// Level returns the configured log level, falling back to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func defaultOpenCommand() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "explorer"
	default:
		return "xdg-open"
	}
}
