// Package config loads parsevm.toml, the optional configuration file
// for the parsevm CLI (spec.md §6's environment-variable surface, plus
// the serve/repl subcommands added in SPEC_FULL.md §10).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every setting the parsevm CLI accepts from parsevm.toml.
// Unset fields keep their zero value; FillDefaults supplies the rest.
type Config struct {
	// Debug is the default PARSERDEBUG verbosity (0-5) used when the
	// environment variable itself is unset.
	Debug int `toml:"debug"`

	// MinMatch is the default minMatch passed to vm.Run by the run
	// subcommand when -min-match isn't given on the command line.
	MinMatch int `toml:"min_match"`

	Serve ServeConfig `toml:"serve"`
}

// ServeConfig configures the transport/httpapi HTTP server.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// FillDefaults returns a copy of cfg with unset fields replaced by their
// defaults.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.Serve.Addr == "" {
		out.Serve.Addr = ":8080"
	}
	return out
}

// Load reads and parses the TOML configuration file at path. A missing
// file is not an error: it returns the zero Config, letting the caller
// fall back to FillDefaults.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
