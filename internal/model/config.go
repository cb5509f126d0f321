package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StoreConfig controls where the shared store lives.
type StoreConfig struct {
	// SharedRoot is the container directory reachable by every process.
	// The store file is placed at SharedStorePath(SharedRoot).
	SharedRoot string `mapstructure:"shared_root" yaml:"shared_root"`

	// LocalDir is the fallback location when SharedRoot is unreachable.
	LocalDir string `mapstructure:"local_dir" yaml:"local_dir"`

	// StrictCategories rejects new tasks whose category does not resolve
	// instead of silently leaving the category unset.
	StrictCategories bool `mapstructure:"strict_categories" yaml:"strict_categories"`
}

// ReminderConfig holds reminder scheduling settings.
type ReminderConfig struct {
	// GraceSeconds is how far in the future an already-due reminder fires.
	GraceSeconds int `mapstructure:"grace_seconds" yaml:"grace_seconds"`
}

// Grace returns the grace period as a duration.
func (c ReminderConfig) Grace() time.Duration {
	return time.Duration(c.GraceSeconds) * time.Second
}

// WidgetConfig holds snapshot provider settings.
type WidgetConfig struct {
	Limit          int `mapstructure:"limit" yaml:"limit"`
	RefreshMinutes int `mapstructure:"refresh_minutes" yaml:"refresh_minutes"`
}

// NotifyConfig holds local notification dispatcher settings.
type NotifyConfig struct {
	PollSeconds int `mapstructure:"poll_seconds" yaml:"poll_seconds"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// AppConfig is the top-level configuration shared by all processes.
type AppConfig struct {
	Store     StoreConfig    `mapstructure:"store" yaml:"store"`
	Reminders ReminderConfig `mapstructure:"reminders" yaml:"reminders"`
	Widget    WidgetConfig   `mapstructure:"widget" yaml:"widget"`
	Notify    NotifyConfig   `mapstructure:"notify" yaml:"notify"`
	Log       LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskdock/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskdock", "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Store: StoreConfig{
			SharedRoot: "~/.local/share",
			LocalDir:   "~/.cache/taskdock",
		},
		Reminders: ReminderConfig{GraceSeconds: 30},
		Widget:    WidgetConfig{Limit: 5, RefreshMinutes: 60},
		Notify:    NotifyConfig{PollSeconds: 15},
		Log:       LogConfig{Level: "info"},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("store.shared_root", d.Store.SharedRoot)
	v.SetDefault("store.local_dir", d.Store.LocalDir)
	v.SetDefault("store.strict_categories", d.Store.StrictCategories)
	v.SetDefault("reminders.grace_seconds", d.Reminders.GraceSeconds)
	v.SetDefault("widget.limit", d.Widget.Limit)
	v.SetDefault("widget.refresh_minutes", d.Widget.RefreshMinutes)
	v.SetDefault("notify.poll_seconds", d.Notify.PollSeconds)
	v.SetDefault("log.level", d.Log.Level)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TASKDOCK_ override file values.
// If the file does not exist, defaults are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("taskdock")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Reminders.GraceSeconds <= 0 {
		cfg.Reminders.GraceSeconds = 30
	}
	if cfg.Widget.Limit < 1 || cfg.Widget.Limit > 10 {
		cfg.Widget.Limit = 5
	}
	if cfg.Widget.RefreshMinutes <= 0 {
		cfg.Widget.RefreshMinutes = 60
	}
	if cfg.Notify.PollSeconds <= 0 {
		cfg.Notify.PollSeconds = 15
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

	v.Set("store", cfg.Store)
	v.Set("reminders", cfg.Reminders)
	v.Set("widget", cfg.Widget)
	v.Set("notify", cfg.Notify)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
