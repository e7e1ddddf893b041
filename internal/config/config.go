package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"rezepte/internal/logging"

	"gopkg.in/yaml.v3"
)

// Config holds all rezepte configuration.
type Config struct {
	// Backend API the client talks to
	API APIConfig `yaml:"api"`

	// Terminal UI
	UI UIConfig `yaml:"ui"`

	// Externally written session file
	Session SessionConfig `yaml:"session"`

	// Development backend (rezepte serve)
	Backend BackendConfig `yaml:"backend"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the recipe API client.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// UIConfig configures the interactive view.
type UIConfig struct {
	DarkMode bool `yaml:"dark_mode"`
	// Render instructions as markdown in the detail modal
	Markdown bool `yaml:"markdown"`
}

// SessionConfig locates the session file written by the login flow.
type SessionConfig struct {
	File  string `yaml:"file"`
	Watch bool   `yaml:"watch"`
}

// BackendConfig configures the development backend.
type BackendConfig struct {
	Address         string `yaml:"address"`
	Driver          string `yaml:"driver"` // sqlite, postgres
	DSN             string `yaml:"dsn"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`  // debug, info, warn, error
	Format     string          `yaml:"format"` // json, console
	File       string          `yaml:"file"`
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultDir returns ~/.rezepte, falling back to ./.rezepte.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".rezepte"
	}
	return filepath.Join(home, ".rezepte")
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "15s",
		},
		UI: UIConfig{
			DarkMode: true,
			Markdown: true,
		},
		Session: SessionConfig{
			File:  filepath.Join(dir, "session.yaml"),
			Watch: true,
		},
		Backend: BackendConfig{
			Address:         ":8080",
			Driver:          "sqlite",
			DSN:             filepath.Join(dir, "rezepte.db"),
			ShutdownTimeout: "5s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		logging.BootDebug("no config at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REZEPTE_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("REZEPTE_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("REZEPTE_DARK_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UI.DarkMode = b
		}
	}
	if v := os.Getenv("REZEPTE_SESSION_FILE"); v != "" {
		c.Session.File = v
	}
	if v := os.Getenv("REZEPTE_DB_DRIVER"); v != "" {
		c.Backend.Driver = v
	}
	if v := os.Getenv("REZEPTE_DB_DSN"); v != "" {
		c.Backend.DSN = v
	}
	if v := os.Getenv("REZEPTE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetAPITimeout returns the per-request timeout as a duration.
func (c *Config) GetAPITimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// GetShutdownTimeout returns the backend graceful shutdown timeout.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Backend.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// LoggingOptions converts the logging section for logging.Initialize.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		File:       c.Logging.File,
		Categories: c.Logging.Categories,
	}
}

// ValidDrivers lists the supported development backend drivers.
var ValidDrivers = []string{"sqlite", "postgres"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api base_url: %q", c.API.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api base_url scheme: %s (valid: http, https)", u.Scheme)
	}

	validDriver := false
	for _, d := range ValidDrivers {
		if c.Backend.Driver == d {
			validDriver = true
			break
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid backend driver: %s (valid: %v)", c.Backend.Driver, ValidDrivers)
	}

	return nil
}
