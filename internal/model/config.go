package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variables that override config keys,
// e.g. TASKREMIND_LOG_LEVEL for log.level.
const EnvPrefix = "TASKREMIND"

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `mapstructure:"format" yaml:"format"`
}

// RemindersConfig holds task reminder defaults.
type RemindersConfig struct {
	// DefaultLead is how long before the due date a relative reminder
	// fires.
	DefaultLead time.Duration `mapstructure:"default_lead" yaml:"default_lead"`
}

// SummaryConfig holds the daily summary schedule.
type SummaryConfig struct {
	DailyEnabled bool `mapstructure:"daily_enabled" yaml:"daily_enabled"`

	// DailyTime is the local wall-clock time in HH:MM.
	DailyTime string `mapstructure:"daily_time" yaml:"daily_time"`
}

// PlatformConfig holds local notification platform settings.
type PlatformConfig struct {
	// Channels enables delivery channel declarations.
	Channels bool `mapstructure:"channels" yaml:"channels"`

	// PollIntervalSec is how often (in seconds) the dispatcher checks for
	// due notifications.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables it.
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database  string          `mapstructure:"database" yaml:"database"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Reminders RemindersConfig `mapstructure:"reminders" yaml:"reminders"`
	Summary   SummaryConfig   `mapstructure:"summary" yaml:"summary"`
	Platform  PlatformConfig  `mapstructure:"platform" yaml:"platform"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskremind/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDatabasePath returns ~/.config/taskremind/tasks.db.
func DefaultDatabasePath() string {
	return filepath.Join(configDir(), "tasks.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskremind")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", DefaultDatabasePath())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("reminders.default_lead", time.Hour)
	v.SetDefault("summary.daily_enabled", true)
	v.SetDefault("summary.daily_time", "20:00")
	v.SetDefault("platform.channels", true)
	v.SetDefault("platform.poll_interval_sec", 5)
	v.SetDefault("metrics.addr", "")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A missing file yields the defaults. Environment variables prefixed with
// EnvPrefix override both.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Reminders.DefaultLead <= 0 {
		return nil, fmt.Errorf("reminders.default_lead must be positive, got %s", cfg.Reminders.DefaultLead)
	}
	if cfg.Platform.PollIntervalSec <= 0 {
		cfg.Platform.PollIntervalSec = 5
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("reminders.default_lead", cfg.Reminders.DefaultLead.String())
	v.Set("summary.daily_enabled", cfg.Summary.DailyEnabled)
	v.Set("summary.daily_time", cfg.Summary.DailyTime)
	v.Set("platform.channels", cfg.Platform.Channels)
	v.Set("platform.poll_interval_sec", cfg.Platform.PollIntervalSec)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
