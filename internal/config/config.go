// Package config handles the XDG configuration directory, the config file and
// the persisted session token.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "tasksync"

	// ConfigFile is the settings filename.
	ConfigFile = "config.yaml"

	// TokenFile holds the bearer token of the task server session.
	TokenFile = "token"

	// TasksFile is the default local task list filename.
	TasksFile = "tasks.json"

	// GoogleClientFile is the Google OAuth client credentials filename.
	GoogleClientFile = "google_client.json"

	// GoogleTokenFile is the stored Google OAuth token filename.
	GoogleTokenFile = "google_token.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKSYNC_SERVER.
	EnvPrefix = "TASKSYNC"
)

// Settings are the values read from config.yaml and the environment.
type Settings struct {
	// Server is the task server URL.
	Server string `mapstructure:"server" yaml:"server"`

	// Verify enables TLS certificate verification.
	Verify bool `mapstructure:"verify" yaml:"verify"`

	// CAFile is a PEM file replacing the system roots.
	CAFile string `mapstructure:"ca_file" yaml:"ca_file,omitempty"`

	// MaxRetries is the number of merge/upload rounds after a conflict.
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`

	// EncryptionKey enables payload encryption when set.
	EncryptionKey string `mapstructure:"encryption_key" yaml:"encryption_key,omitempty"`

	// TasksFile overrides the local task list path.
	TasksFile string `mapstructure:"tasks_file" yaml:"tasks_file,omitempty"`

	// LogFile sends logs to a rotating file instead of stderr.
	LogFile string `mapstructure:"log_file" yaml:"log_file,omitempty"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Server: "http://localhost:3000",
		Verify: true,
	}
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Settings are loaded by Load.
	Settings Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasksync or $HOME/.config/tasksync.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir, Settings: DefaultSettings()}, nil
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

// Load reads config.yaml (if present) and TASKSYNC_* environment overrides.
func (c *Config) Load() error {
	v := viper.New()
	v.SetConfigFile(c.ConfigPath())
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("server", defaults.Server)
	v.SetDefault("verify", defaults.Verify)
	v.SetDefault("ca_file", "")
	v.SetDefault("max_retries", defaults.MaxRetries)
	v.SetDefault("encryption_key", "")
	v.SetDefault("tasks_file", "")
	v.SetDefault("log_file", "")

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("invalid %s: max_retries must not be negative", ConfigFile)
	}
	c.Settings = s
	return nil
}

// ConfigPath returns the path to config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored session token.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// TasksPath returns the local task list path.
// A relative tasks_file is resolved against the config directory.
func (c *Config) TasksPath() string {
	p := c.Settings.TasksFile
	if p == "" {
		return filepath.Join(c.Dir, TasksFile)
	}
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	if !filepath.IsAbs(p) {
		return filepath.Join(c.Dir, p)
	}
	return p
}

// GoogleClientPath returns the path to the Google OAuth client credentials.
func (c *Config) GoogleClientPath() string {
	return filepath.Join(c.Dir, GoogleClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasConfigFile checks if config.yaml exists.
func (c *Config) HasConfigFile() bool {
	_, err := os.Stat(c.ConfigPath())
	return err == nil
}

// WriteDefault writes settings to config.yaml.
// An existing file is kept unless force is set.
func (c *Config) WriteDefault(s Settings, force bool) error {
	if c.HasConfigFile() && !force {
		return fmt.Errorf("%s: %w", c.ConfigPath(), os.ErrExist)
	}
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", ConfigFile, err)
	}
	return nil
}

// ReadCA returns the PEM bytes of ca_file, or nil when unset.
func (c *Config) ReadCA() ([]byte, error) {
	if c.Settings.CAFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Settings.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ca_file: %w", err)
	}
	return data, nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// ReadToken returns the stored session token, empty when none.
func (c *Config) ReadToken() (string, error) {
	data, err := os.ReadFile(c.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// SaveToken stores the session token with mode 0600.
func (c *Config) SaveToken(token string) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.TokenPath(), []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// HasGoogleClient checks if the Google OAuth client credentials file exists.
func (c *Config) HasGoogleClient() bool {
	_, err := os.Stat(c.GoogleClientPath())
	return err == nil
}

// HasGoogleToken checks if the Google OAuth token file exists.
func (c *Config) HasGoogleToken() bool {
	_, err := os.Stat(c.GoogleTokenPath())
	return err == nil
}
