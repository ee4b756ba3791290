// Package config loads the CLI's checked-in defaults from a TOML file:
// a team checks in one file so everyone's invocations of sourcemap-cli
// agree on what "rewrite" means without repeating flags.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

// DefaultFileName is the config file sourcemap-cli looks for in the
// current directory when no --config flag is given.
const DefaultFileName = ".sourcemaprc.toml"

// RewriteConfig mirrors sourcemap.RewriteOptions in TOML-friendly form:
// lowercase snake_case keys, a plain string slice for strip_prefixes.
type RewriteConfig struct {
	WithNames               bool     `toml:"with_names"`
	WithSourceContents      bool     `toml:"with_source_contents"`
	LoadLocalSourceContents bool     `toml:"load_local_source_contents"`
	BasePath                string   `toml:"base_path"`
	StripPrefixes           []string `toml:"strip_prefixes"`
}

// ToOptions converts RewriteConfig to sourcemap.RewriteOptions.
func (c RewriteConfig) ToOptions() sourcemap.RewriteOptions {
	return sourcemap.RewriteOptions{
		WithNames:               c.WithNames,
		WithSourceContents:      c.WithSourceContents,
		LoadLocalSourceContents: c.LoadLocalSourceContents,
		BasePath:                c.BasePath,
		StripPrefixes:           c.StripPrefixes,
	}
}

// CacheConfig controls the CLI's decode cache.
type CacheConfig struct {
	Enabled bool `toml:"enabled"`
}

// Config is the root of .sourcemaprc.toml.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Rewrite  RewriteConfig `toml:"rewrite"`
	Cache    CacheConfig   `toml:"cache"`
}

// Default returns the configuration used when no config file is found:
// names and source contents kept, no local loading, no prefix stripping,
// info-level logging, caching on.
func Default() Config {
	return Config{
		LogLevel: "info",
		Rewrite: RewriteConfig{
			WithNames:          true,
			WithSourceContents: true,
		},
		Cache: CacheConfig{Enabled: true},
	}
}

// Load reads and parses the TOML config at path, returning Default() with
// no error if the file does not exist: a missing config is not a failure,
// it just means "use the defaults."
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LogLevelOrDefault returns cfg.LogLevel, falling back to "info" when
// empty, for callers constructing a logging.Logger from it.
func (c Config) LogLevelOrDefault() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}
