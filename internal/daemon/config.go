// Package daemon holds the process-level configuration of the starfront
// service: a TOML file with STARFRONT_* environment overrides, plus an
// optional YAML tuning file for reward and progression tables.
package daemon

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STARFRONT_"

// Config is the full service configuration.
type Config struct {
	API     APIConfig     `toml:"api" envPrefix:"API_"`
	Storage StorageConfig `toml:"storage" envPrefix:"STORAGE_"`
	Ledger  LedgerConfig  `toml:"ledger" envPrefix:"LEDGER_"`
	Notify  NotifyConfig  `toml:"notify" envPrefix:"NOTIFY_"`
	Metrics MetricsConfig `toml:"metrics" envPrefix:"METRICS_"`
}

// APIConfig controls the HTTP listener.
type APIConfig struct {
	Host string `toml:"host" env:"HOST"`
	Port int    `toml:"port" env:"PORT"`

	// AllowedOrigins lists browser origins that may call the API. An entry
	// without a port matches any port on that host.
	AllowedOrigins []string `toml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

// StorageConfig locates persistent state.
type StorageConfig struct {
	Dir      string `toml:"dir" env:"DIR"`             // SQLite directory
	SaveFile string `toml:"save_file" env:"SAVE_FILE"` // optional zstd save written on shutdown
}

// LedgerConfig controls the hosted ledger.
type LedgerConfig struct {
	Profile  string `toml:"profile" env:"PROFILE"`
	Leveling bool   `toml:"leveling" env:"LEVELING"` // install the level tracker
	Tuning   string `toml:"tuning" env:"TUNING"`     // YAML tuning file, empty = built-in tables
}

// NotifyConfig controls the HUD notification queue.
type NotifyConfig struct {
	Ticks        int `toml:"ticks" env:"TICKS"` // reward notification duration
	LevelUpTicks int `toml:"level_up_ticks" env:"LEVEL_UP_TICKS"`
	MaxQueued    int `toml:"max_queued" env:"MAX_QUEUED"`
	TickRateHz   int `toml:"tick_rate_hz" env:"TICK_RATE_HZ"`
}

// MetricsConfig controls observability endpoints.
type MetricsConfig struct {
	Enabled       bool `toml:"enabled" env:"ENABLED"`
	RecordedEvent int  `toml:"recorded_events" env:"RECORDED_EVENTS"` // debug ring size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:           "127.0.0.1",
			Port:           8917,
			AllowedOrigins: []string{"http://localhost", "http://127.0.0.1"},
		},
		Storage: StorageConfig{
			Dir: defaultDataDir(),
		},
		Ledger: LedgerConfig{
			Profile:  "default",
			Leveling: true,
		},
		Notify: NotifyConfig{
			Ticks:        180,
			LevelUpTicks: 300,
			MaxQueued:    50,
			TickRateHz:   60,
		},
		Metrics: MetricsConfig{
			Enabled:       true,
			RecordedEvent: 1_000,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".starfront"
	}
	return filepath.Join(home, ".starfront")
}

// LoadConfig reads the TOML file at path over the defaults, then applies
// environment overrides. An empty path or a missing file yields defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ParseEnv applies STARFRONT_* environment variables to cfg.
func ParseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	if c.Storage.Dir == "" {
		return errors.New("storage.dir is required")
	}
	if c.Ledger.Profile == "" {
		return errors.New("ledger.profile is required")
	}
	if c.Notify.Ticks <= 0 || c.Notify.LevelUpTicks <= 0 {
		return errors.New("notify ticks must be positive")
	}
	if c.Notify.TickRateHz < 0 {
		return errors.New("notify.tick_rate_hz must not be negative")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.API.Host, strconv.Itoa(c.API.Port))
}

// WriteConfig stores cfg as TOML at path.
func WriteConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
