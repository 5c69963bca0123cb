package daemon

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8917 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8917)
	}
	if cfg.Ledger.Profile != "default" {
		t.Errorf("Ledger.Profile = %q, want %q", cfg.Ledger.Profile, "default")
	}
	if !cfg.Ledger.Leveling {
		t.Error("Ledger.Leveling should be true by default")
	}
	if cfg.Notify.Ticks != 180 {
		t.Errorf("Notify.Ticks = %d, want %d", cfg.Notify.Ticks, 180)
	}
	if cfg.Notify.MaxQueued != 50 {
		t.Errorf("Notify.MaxQueued = %d, want %d", cfg.Notify.MaxQueued, 50)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[api]
port = 9000

[ledger]
profile = "pilot"
leveling = false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, default should survive", cfg.API.Host)
	}
	if cfg.Ledger.Profile != "pilot" || cfg.Ledger.Leveling {
		t.Errorf("Ledger = %+v", cfg.Ledger)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != DefaultConfig().API.Port {
		t.Errorf("API.Port = %d, want default", cfg.API.Port)
	}
}

func TestLoadConfig_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[api\nport ="), 0o644)
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() should fail on malformed TOML")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("STARFRONT_API_PORT", "9100")
	t.Setenv("STARFRONT_LEDGER_PROFILE", "wing")
	t.Setenv("STARFRONT_NOTIFY_MAX_QUEUED", "7")
	t.Setenv("STARFRONT_METRICS_ENABLED", "false")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9100 {
		t.Errorf("API.Port = %d, want 9100", cfg.API.Port)
	}
	if cfg.Ledger.Profile != "wing" {
		t.Errorf("Ledger.Profile = %q, want wing", cfg.Ledger.Profile)
	}
	if cfg.Notify.MaxQueued != 7 {
		t.Errorf("Notify.MaxQueued = %d, want 7", cfg.Notify.MaxQueued)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be overridden to false")
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := DefaultConfig()
	if want := []string{"http://localhost", "http://127.0.0.1"}; !reflect.DeepEqual(cfg.API.AllowedOrigins, want) {
		t.Errorf("default AllowedOrigins = %v, want %v", cfg.API.AllowedOrigins, want)
	}

	t.Setenv("STARFRONT_API_ALLOWED_ORIGINS", "https://hud.example,http://localhost:3000")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if want := []string{"https://hud.example", "http://localhost:3000"}; !reflect.DeepEqual(cfg.API.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.API.AllowedOrigins, want)
	}
}

func TestParseEnv_Error(t *testing.T) {
	t.Setenv("STARFRONT_API_PORT", "not-an-int")
	cfg := DefaultConfig()
	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.API.Port = 0 }},
		{"port too high", func(c *Config) { c.API.Port = 70000 }},
		{"no storage dir", func(c *Config) { c.Storage.Dir = "" }},
		{"no profile", func(c *Config) { c.Ledger.Profile = "" }},
		{"zero ticks", func(c *Config) { c.Notify.Ticks = 0 }},
		{"negative tick rate", func(c *Config) { c.Notify.TickRateHz = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Addr(); got != "127.0.0.1:8917" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.toml")
	want := DefaultConfig()
	want.Ledger.Profile = "saved"
	if err := WriteConfig(path, want); err != nil {
		t.Fatalf("WriteConfig() error: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round-trip = %+v, want %+v", got, want)
	}
}
