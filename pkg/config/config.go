// Package config loads redline settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/redline/config.toml (falling back to
// ~/.config/redline/config.toml) unless --config names another path.
// Command-line flags override file values; file values override the
// defaults from [Default].
//
//	[placement]
//	orientation = "top"
//	text_clearance = 12
//	measurement_clearance = 6
//	margin = 4
//
//	[label]
//	font_size = 11
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "15s"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/redline/pkg/core/label"
	"github.com/matzehuels/redline/pkg/core/placement"
	"github.com/matzehuels/redline/pkg/errors"
)

const appName = "redline"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends.
const (
	StoreNone   = "none"
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the full settings file.
type Config struct {
	Placement PlacementConfig `toml:"placement"`
	Label     label.Style     `toml:"label"`
	Cache     CacheConfig     `toml:"cache"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
}

// PlacementConfig holds placement defaults.
type PlacementConfig struct {
	Orientation          string  `toml:"orientation"`
	TextClearance        float64 `toml:"text_clearance"`
	MeasurementClearance float64 `toml:"measurement_clearance"`
	Margin               float64 `toml:"margin"`
	Concurrency          int     `toml:"concurrency,omitempty"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir,omitempty"`
	TTL           Duration `toml:"ttl,omitempty"`
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db,omitempty"`
	RedisPrefix   string   `toml:"redis_prefix,omitempty"`
}

// StoreConfig selects and configures batch storage.
type StoreConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database,omitempty"`
}

// ServerConfig configures `redline serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration is a time.Duration written as a string such as "15s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Placement: PlacementConfig{
			Orientation:          "top",
			TextClearance:        placement.DefaultTextClearance,
			MeasurementClearance: placement.DefaultMeasurementClearance,
			Margin:               placement.DefaultMargin,
		},
		Label: label.DefaultStyle,
		Cache: CacheConfig{Backend: CacheFile},
		Store: StoreConfig{Backend: StoreMemory},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// Dir returns the redline config directory.
func Dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// DefaultPath returns the path of the default config file.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path on top of [Default]. An empty path
// loads the default file if it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := Decode(string(data), &cfg); err != nil {
		return cfg, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return cfg, nil
}

// Decode parses TOML text into cfg, keeping values not present in text, and
// validates the result. Unknown keys are an error.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks backend names and numeric ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheRedis, CacheNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
	}
	switch c.Store.Backend {
	case StoreNone, StoreMemory, StoreFile, StoreMongo:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid store backend %q (must be one of: none, memory, file, mongo)", c.Store.Backend)
	}
	if c.Store.Backend == StoreMongo && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
	}
	p := c.Placement
	if p.TextClearance < 0 || p.MeasurementClearance < 0 || p.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "placement clearances and margin cannot be negative")
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}
