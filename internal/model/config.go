package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// StoreConfig holds settings for the local key-value store.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in RAM.
	Path string `mapstructure:"path" yaml:"path"`
}

// NotificationConfig holds timing for the notification feed.
type NotificationConfig struct {
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	// ToastWindowSec is how recent an unread event must be to pop up as a toast.
	ToastWindowSec int `mapstructure:"toast_window_sec" yaml:"toast_window_sec"`

	// ToastTTLSec is how long a toast stays on screen.
	ToastTTLSec int `mapstructure:"toast_ttl_sec" yaml:"toast_ttl_sec"`
}

// PollInterval returns the poll interval as a duration.
func (c NotificationConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// ToastWindow returns the toast freshness window as a duration.
func (c NotificationConfig) ToastWindow() time.Duration {
	return time.Duration(c.ToastWindowSec) * time.Second
}

// ToastTTL returns the toast display time as a duration.
func (c NotificationConfig) ToastTTL() time.Duration {
	return time.Duration(c.ToastTTLSec) * time.Second
}

// AuthConfig holds the fixed login passwords, keyed by lowercase name.
type AuthConfig struct {
	Passwords map[string]string `mapstructure:"passwords" yaml:"passwords"`
}

// LogConfig controls where diagnostic logs go.
type LogConfig struct {
	// Path is the log file used by the terminal UI. Empty means stderr.
	Path    string `mapstructure:"path" yaml:"path"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Store         StoreConfig        `mapstructure:"store" yaml:"store"`
	Notifications NotificationConfig `mapstructure:"notifications" yaml:"notifications"`
	Auth          AuthConfig         `mapstructure:"auth" yaml:"auth"`
	Log           LogConfig          `mapstructure:"log" yaml:"log"`
	Display       DisplayConfig      `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/ourspace, or the working directory if the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ourspace")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/ourspace/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Store: StoreConfig{
			Path: filepath.Join(configDir(), "ourspace.db"),
		},
		Notifications: NotificationConfig{
			PollIntervalSec: 5,
			ToastWindowSec:  10,
			ToastTTLSec:     5,
		},
		Auth: AuthConfig{
			Passwords: map[string]string{
				"victor": "love2024",
				"mimi":   "sweetheart2024",
			},
		},
		Log: LogConfig{
			Path: filepath.Join(configDir(), "ourspace.log"),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return defaultAppConfig()
}

// newViper builds a viper instance with defaults and OURSPACE_* environment
// overrides applied.
func newViper(path string) *viper.Viper {
	def := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("OURSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("notifications.poll_interval_sec", def.Notifications.PollIntervalSec)
	v.SetDefault("notifications.toast_window_sec", def.Notifications.ToastWindowSec)
	v.SetDefault("notifications.toast_ttl_sec", def.Notifications.ToastTTLSec)
	v.SetDefault("auth.passwords", def.Auth.Passwords)
	v.SetDefault("log.path", def.Log.Path)
	v.SetDefault("log.verbose", false)
	v.SetDefault("display.theme", def.Display.Theme)

	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults and environment overrides are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return decodeConfig(v, path)
}

func decodeConfig(v *viper.Viper, path string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize replaces non-positive timings with their defaults.
func (c *AppConfig) normalize() {
	def := defaultAppConfig()
	if c.Notifications.PollIntervalSec <= 0 {
		c.Notifications.PollIntervalSec = def.Notifications.PollIntervalSec
	}
	if c.Notifications.ToastWindowSec <= 0 {
		c.Notifications.ToastWindowSec = def.Notifications.ToastWindowSec
	}
	if c.Notifications.ToastTTLSec <= 0 {
		c.Notifications.ToastTTLSec = def.Notifications.ToastTTLSec
	}
	if len(c.Auth.Passwords) == 0 {
		c.Auth.Passwords = def.Auth.Passwords
	}
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
	v.Set("notifications", cfg.Notifications)
	v.Set("auth", cfg.Auth)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// WatchConfig re-reads the file at path whenever it changes on disk and
// passes the decoded configuration to onChange. Decode failures are
// reported through onError and the previous configuration stays in effect.
func WatchConfig(path string, onChange func(*AppConfig), onError func(error)) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		// Nothing to watch until the file exists.
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decodeConfig(v, e.Name)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
