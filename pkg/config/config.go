// Package config loads optional TOML defaults for the transform command.
// Every field is optional; explicit command-line flags always win.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config mirrors the TOML defaults file. Pointer fields distinguish absent
// keys from explicit zero values.
type Config struct {
	Threshold  *float64 `toml:"threshold"`
	Privacy    *float64 `toml:"privacy"`
	PrivacyDir *string  `toml:"privacy-dir"`
	Singletons *bool    `toml:"singletons"`
}

// Load reads a TOML config file. Unknown keys are rejected so typos surface
// instead of silently falling back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}

	if cfg.PrivacyDir != nil && *cfg.PrivacyDir != "above" && *cfg.PrivacyDir != "below" {
		return nil, fmt.Errorf("config %s: privacy-dir must be \"above\" or \"below\"", path)
	}
	return &cfg, nil
}
