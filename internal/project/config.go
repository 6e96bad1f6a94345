// Package project handles everything around the engine: the zoop.toml
// project file, source unit discovery, and watch-mode regeneration.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the project file name looked up in the project root.
const ConfigFile = "zoop.toml"

// Config is the persistent project configuration.
type Config struct {
	// OutDir receives one generated .zig file per input unit.
	OutDir string `toml:"out_dir"`

	// Include and Exclude are glob patterns matched against paths relative
	// to the project root. Exclude wins over Include.
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`

	GetterPrefix  string `toml:"getter_prefix"`
	SetterPrefix  string `toml:"setter_prefix"`
	MaxFieldCount int    `toml:"max_field_count"`
}

// DefaultConfig returns the configuration used when no zoop.toml exists.
func DefaultConfig() Config {
	return Config{
		OutDir:  "zoop-out",
		Include: []string{"**.zoop"},
	}
}

// LoadConfig reads zoop.toml from the project root, falling back to the
// defaults when the file does not exist. Fields absent from the file keep
// their default values.
func LoadConfig(root string) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(root, ConfigFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = DefaultConfig().OutDir
	}
	if len(cfg.Include) == 0 {
		cfg.Include = DefaultConfig().Include
	}
	return cfg, nil
}
