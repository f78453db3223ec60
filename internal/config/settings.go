package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"golang.org/x/xerrors"
)

// Settings holds the optional, TOML-encoded overrides a deployment may
// place in sequencer.toml next to ip.config. Every field has a sensible
// default and the file itself may simply not exist.
type Settings struct {
	LogLevel      string `toml:"log_level"`
	LogJSON       bool   `toml:"log_json"`
	MetricsBind   string `toml:"metrics_bind"`
	Warmup        string `toml:"warmup"`
	RoundInterval string `toml:"round_interval"`
}

// DefaultSettings matches the original process's hard-coded constants:
// a 5-second warm-up and a 1-second round interval, no metrics server,
// info-level console logging.
func DefaultSettings() Settings {
	return Settings{
		LogLevel:      "info",
		LogJSON:       false,
		MetricsBind:   "",
		Warmup:        "5s",
		RoundInterval: "1s",
	}
}

// LoadSettings reads path as TOML, if it exists, and merges its fields
// over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if isNotExist(err) {
			return s, nil
		}
		return Settings{}, xerrors.Errorf("config: decode %s: %w", path, err)
	}
	return s, nil
}

// WarmupDuration parses Warmup, returning the default on a parse error.
func (s Settings) WarmupDuration() time.Duration {
	d, err := time.ParseDuration(s.Warmup)
	if err != nil {
		d, _ = time.ParseDuration(DefaultSettings().Warmup)
	}
	return d
}

// RoundIntervalDuration parses RoundInterval, returning the default on a
// parse error.
func (s Settings) RoundIntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.RoundInterval)
	if err != nil {
		d, _ = time.ParseDuration(DefaultSettings().RoundInterval)
	}
	return d
}

func isNotExist(err error) bool {
	type notExister interface{ IsNotExist() bool }
	if ne, ok := err.(notExister); ok {
		return ne.IsNotExist()
	}
	return os.IsNotExist(err)
}
