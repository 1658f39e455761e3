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

// APIConfig points the client at the remote task collection.
type APIConfig struct {
	// BaseURL is the root URL of the platform API (e.g., https://lms.example.com/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds a single HTTP round trip.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxRetries is how many times a rate-limited (429) call is retried.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// SessionConfig controls credential storage and session-change detection.
type SessionConfig struct {
	// PollIntervalMS is how often the watcher checks for login/logout.
	PollIntervalMS int `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`

	// KeyringService is the service name under which the token is stored.
	KeyringService string `mapstructure:"keyring_service" yaml:"keyring_service"`

	// KeyringDir is used by the file backend when no OS keyring is available.
	KeyringDir string `mapstructure:"keyring_dir" yaml:"keyring_dir"`

	// KeyringBackend forces a backend: "" picks the best available,
	// "file" always uses the encrypted file store (headless machines).
	KeyringBackend string `mapstructure:"keyring_backend" yaml:"keyring_backend"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`

	// File receives log output. Empty means stderr for CLI commands and
	// is discarded while the board owns the terminal.
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig configures the reference task API (`taskboard serve`).
type ServerConfig struct {
	Addr      string `mapstructure:"addr" yaml:"addr"`
	DBPath    string `mapstructure:"db_path" yaml:"db_path"`
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// Sort is the initial lane ordering: "updated" or "created".
	Sort string `mapstructure:"sort" yaml:"sort"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// PollInterval returns the session poll period.
func (c *AppConfig) PollInterval() time.Duration {
	return time.Duration(c.Session.PollIntervalMS) * time.Millisecond
}

// Timeout returns the HTTP timeout for remote calls.
func (c *AppConfig) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskboard", "config.yaml")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8080",
			TimeoutSec: 30,
			MaxRetries: 3,
		},
		Session: SessionConfig{
			PollIntervalMS: 1000,
			KeyringService: "taskboard",
			KeyringDir:     "~/.config/taskboard/credentials",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:   ":8080",
			DBPath: "taskboard.db",
		},
		Display: DisplayConfig{
			Theme: "default",
			Sort:  "updated",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := defaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.max_retries", d.API.MaxRetries)
	v.SetDefault("session.poll_interval_ms", d.Session.PollIntervalMS)
	v.SetDefault("session.keyring_service", d.Session.KeyringService)
	v.SetDefault("session.keyring_dir", d.Session.KeyringDir)
	v.SetDefault("session.keyring_backend", d.Session.KeyringBackend)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.db_path", d.Server.DBPath)
	v.SetDefault("server.jwt_secret", d.Server.JWTSecret)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.sort", d.Display.Sort)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Missing files yield the defaults. Every key can be overridden from the
// environment with the TASKBOARD_ prefix (api.base_url → TASKBOARD_API_BASE_URL).
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Session.PollIntervalMS <= 0 {
		cfg.Session.PollIntervalMS = 1000
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}
	if cfg.API.MaxRetries < 0 {
		cfg.API.MaxRetries = 0
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

	v.Set("api", cfg.API)
	v.Set("session", cfg.Session)
	v.Set("log", cfg.Log)
	v.Set("server", cfg.Server)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
