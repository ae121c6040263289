// Package config loads arceval settings from a TOML or YAML file.
//
// Without an explicit path, [Load] looks for config.toml, config.yaml and
// config.yml (in that order) under [Dir]. A missing file is not an error;
// defaults apply. Values present in the file override [Default], and command
// line flags override both.
//
// Example config.toml:
//
//	duplicates = "keep"
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
//	ttl = "72h"
//
//	[server]
//	addr = "0.0.0.0:8080"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	apperr "github.com/matzehuels/arceval/pkg/errors"
)

const appName = "arceval"

// Config holds every file-configurable setting.
type Config struct {
	// Duplicates is the duplicate arc policy: "reject" or "keep".
	Duplicates string `toml:"duplicates" yaml:"duplicates" validate:"oneof=reject keep"`

	Cache  Cache  `toml:"cache" yaml:"cache"`
	Server Server `toml:"server" yaml:"server"`
}

// Cache configures the result cache.
type Cache struct {
	Backend    string        `toml:"backend" yaml:"backend" validate:"oneof=file memory redis mongo none"`
	Dir        string        `toml:"dir" yaml:"dir"`
	URL        string        `toml:"url" yaml:"url" validate:"required_if=Backend redis,required_if=Backend mongo,omitempty,url"`
	Database   string        `toml:"database" yaml:"database" validate:"required_if=Backend mongo"`
	Collection string        `toml:"collection" yaml:"collection" validate:"required_if=Backend mongo"`
	Prefix     string        `toml:"prefix" yaml:"prefix"`
	TTL        time.Duration `toml:"ttl" yaml:"ttl" validate:"gte=0s"`
}

// Server configures "arceval serve".
type Server struct {
	Addr            string        `toml:"addr" yaml:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `toml:"read_timeout" yaml:"read_timeout" validate:"gt=0s"`
	WriteTimeout    time.Duration `toml:"write_timeout" yaml:"write_timeout" validate:"gt=0s"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0s"`
	MaxBodyBytes    int64         `toml:"max_body_bytes" yaml:"max_body_bytes" validate:"gt=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Duplicates: "reject",
		Cache: Cache{
			Backend:    "file",
			Database:   appName,
			Collection: "cache",
			TTL:        30 * 24 * time.Hour,
		},
		Server: Server{
			Addr:            "localhost:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    8 << 20,
		},
	}
}

// Dir returns the arceval configuration directory, honouring
// XDG_CONFIG_HOME (~/.config/arceval on Linux).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appName), nil
}

// CacheDir returns the default file cache directory, honouring
// XDG_CACHE_HOME (~/.cache/arceval on Linux).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration at path, or searches [Dir] when path is
// empty. The result is validated; problems are [apperr.ErrCodeInvalidConfig]
// errors.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		found, err := find()
		if err != nil || found == "" {
			return cfg, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "config file %s not found", path)
		}
		return cfg, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "read %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return cfg, apperr.New(apperr.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "invalid config %s", path)
	}
	return cfg, nil
}

func find() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	for _, name := range []string{"config.toml", "config.yaml", "config.yml"} {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", nil
}
