package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the full agent configuration, loaded from a YAML file with
// environment variable overrides.
type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"local"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH" env-default:"timesheets.db"`

	Log struct {
		Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
		Format string `yaml:"format" env:"LOG_FORMAT" env-default:"console"`
	} `yaml:"log"`

	Worker struct {
		ID     string `yaml:"id" env:"WORKER_ID"`
		TeamID string `yaml:"team_id" env:"WORKER_TEAM_ID"`
	} `yaml:"worker"`

	Shift struct {
		// TickInterval drives the local elapsed-time display, in seconds.
		TickInterval int `yaml:"tick_interval" env:"SHIFT_TICK_INTERVAL" env-default:"1"`
		// BreadcrumbInterval is the GPS sampling period, in seconds.
		BreadcrumbInterval int `yaml:"breadcrumb_interval" env:"SHIFT_BREADCRUMB_INTERVAL" env-default:"300"`
	} `yaml:"shift"`

	Position struct {
		// FixTTL is how long a pushed fix stays usable, in seconds. A fix
		// older than this counts as position-unavailable.
		FixTTL int `yaml:"fix_ttl" env:"POSITION_FIX_TTL" env-default:"120"`
	} `yaml:"position"`

	Server struct {
		Enabled bool `yaml:"enabled" env:"SERVER_ENABLED" env-default:"true"`
		Port    int  `yaml:"port" env:"SERVER_PORT" env-default:"8764"`
	} `yaml:"server"`
}

// LoadConfig reads the configuration file at path and applies environment
// overrides.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if cfg.Worker.ID == "" {
		return nil, fmt.Errorf("worker.id is required")
	}
	if cfg.Shift.TickInterval <= 0 {
		return nil, fmt.Errorf("shift.tick_interval must be positive")
	}
	if cfg.Shift.BreadcrumbInterval <= 0 {
		return nil, fmt.Errorf("shift.breadcrumb_interval must be positive")
	}

	return &cfg, nil
}
