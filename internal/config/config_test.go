package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// CONFIG TESTS
// =============================================================================

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"REZEPTE_API_URL", "REZEPTE_TIMEOUT", "REZEPTE_DARK_MODE", "REZEPTE_SESSION_FILE",
		"REZEPTE_DB_DRIVER", "REZEPTE_DB_DSN", "REZEPTE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.API.BaseURL != "http://localhost:8080" {
		t.Errorf("expected BaseURL=http://localhost:8080, got %s", cfg.API.BaseURL)
	}
	if !cfg.UI.DarkMode {
		t.Errorf("expected dark mode to default to true")
	}
	if cfg.Backend.Driver != "sqlite" {
		t.Errorf("expected Driver=sqlite, got %s", cfg.Backend.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.BaseURL = "https://rezepte.example.com"
	cfg.UI.DarkMode = false
	cfg.Logging.Categories = map[string]bool{"ui": false}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.API.BaseURL != "https://rezepte.example.com" {
		t.Errorf("expected BaseURL to round-trip, got %s", loaded.API.BaseURL)
	}
	if loaded.UI.DarkMode {
		t.Errorf("expected DarkMode=false after load")
	}
	if loaded.Logging.Categories["ui"] {
		t.Errorf("expected ui category disabled")
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.Timeout != "15s" {
		t.Errorf("expected default timeout, got %s", cfg.API.Timeout)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: http://backend:9000\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.API.BaseURL != "http://backend:9000" {
		t.Errorf("unexpected BaseURL %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != "15s" || !cfg.UI.DarkMode {
		t.Errorf("fields absent from the file should keep defaults: %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetAPITimeout(); got != 15*time.Second {
		t.Errorf("GetAPITimeout = %v", got)
	}

	cfg.API.Timeout = "250ms"
	if got := cfg.GetAPITimeout(); got != 250*time.Millisecond {
		t.Errorf("GetAPITimeout = %v", got)
	}

	cfg.API.Timeout = "soon"
	if got := cfg.GetAPITimeout(); got != 15*time.Second {
		t.Errorf("invalid duration should fall back, got %v", got)
	}

	cfg.Backend.ShutdownTimeout = "-1s"
	if got := cfg.GetShutdownTimeout(); got != 5*time.Second {
		t.Errorf("negative duration should fall back, got %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "postgres driver", mutate: func(c *Config) { c.Backend.Driver = "postgres" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Backend.Driver = "mysql" }, wantErr: true},
		{name: "missing scheme", mutate: func(c *Config) { c.API.BaseURL = "localhost:8080" }, wantErr: true},
		{name: "ftp scheme", mutate: func(c *Config) { c.API.BaseURL = "ftp://host" }, wantErr: true},
		{name: "empty url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.File = "/tmp/rezepte.log"
	opts := cfg.LoggingOptions()
	if opts.Level != "info" || opts.Format != "console" || opts.File != "/tmp/rezepte.log" {
		t.Errorf("unexpected options: %+v", opts)
	}
}
