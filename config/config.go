// Package config loads and validates the nanobot configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load and the init command look for the config file.
const DefaultPath = "nanobot.yaml"

// LogLevel is a slog level name.
type LogLevel string

// IsValid reports whether the level names a known slog level.
func (l LogLevel) IsValid() bool {
	switch l {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}

// Level converts the name to a slog.Level, defaulting to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Config is the nanobot configuration. Values absent from the file keep
// their defaults, so a user file only needs the keys it overrides.
type Config struct {
	// Connection is the store DSN: a SQLite path, ":memory:", a libsql
	// URL, or a postgres URL.
	Connection string `yaml:"connection"`
	// Table is the LDTab statement table the tree engine reads.
	Table string `yaml:"table"`
	// Fixtures is the directory searched for *.tsv seed files by init.
	Fixtures string `yaml:"fixtures"`
	// PreferredRoots enables preferred-root trimming for the html (markup)
	// tree view; the json, labelled and text views are not trimmed.
	PreferredRoots bool `yaml:"preferred_roots"`

	LogLevel LogLevel     `yaml:"log_level"`
	Server   ServerConfig `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Connection: ".nanobot.db",
		Table:      "statement",
		Fixtures:   "src/data",
		LogLevel:   "info",
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 3000,
		},
	}
}

// Load reads the YAML configuration at path, merged over the defaults. A
// missing file is not an error: the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults and
// validates the result. Useful in tests where configs are constructed from
// string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Connection == "" {
		errs = append(errs, errors.New("connection is required"))
	}
	if cfg.Table == "" {
		errs = append(errs, errors.New("table is required"))
	}
	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range [0, 65535]", cfg.Server.Port))
	}

	return errors.Join(errs...)
}

// String renders the configuration as YAML, the shape `nanobot config`
// prints.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(out)
}
