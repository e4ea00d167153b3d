// Package config handles the XDG configuration directory, file paths and settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "tasksync"

	// SettingsFile is the optional settings filename.
	SettingsFile = "config.yaml"

	// SessionFile is the stored session filename (token pair and profile).
	SessionFile = "session.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKSYNC_API_URL.
	EnvPrefix = "TASKSYNC"
)

// Settings holds values read from config.yaml and the environment.
type Settings struct {
	APIURL   string        `mapstructure:"api_url" validate:"required,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
	RetryMax int           `mapstructure:"retry_max" validate:"gte=0,lte=10"`
	LogLevel string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Locale   string        `mapstructure:"locale" validate:"required"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasksync or $HOME/.config/tasksync.
// Settings are loaded from the directory's config.yaml (optional) and TASKSYNC_* variables.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	settings, err := LoadSettings(dir)
	if err != nil {
		return nil, err
	}
	return &Config{Dir: dir, Settings: settings}, nil
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		APIURL:   "http://localhost:5000/api",
		Timeout:  15 * time.Second,
		RetryMax: 2,
		LogLevel: "info",
		Locale:   "en",
	}
}

// LoadSettings reads dir/config.yaml if present, then applies environment overrides.
func LoadSettings(dir string) (Settings, error) {
	def := DefaultSettings()

	v := viper.New()
	v.SetDefault("api_url", def.APIURL)
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("retry_max", def.RetryMax)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("locale", def.Locale)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(dir, SettingsFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("failed to read %s: %w", SettingsFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to stat %s: %w", SettingsFile, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	s.LogLevel = strings.ToLower(s.LogLevel)
	s.APIURL = strings.TrimRight(s.APIURL, "/")

	if err := validator.New().Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
