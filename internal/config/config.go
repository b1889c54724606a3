// Package config loads the mermedit configuration file.
//
// The file is TOML. Every section is optional; missing values keep the
// defaults from [Default]. Command-line flags override file values.
//
//	[server]
//	addr = "127.0.0.1:8080"
//
//	[render]
//	theme = "forest"
//
//	[cache]
//	backend = "redis"
//	redis = { addr = "localhost:6379" }
package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mermedit/pkg/cache"
	merrors "github.com/matzehuels/mermedit/pkg/errors"
	"github.com/matzehuels/mermedit/pkg/layout"
	"github.com/matzehuels/mermedit/pkg/render"
	"github.com/matzehuels/mermedit/pkg/session"
)

const (
	appName = "mermedit"

	// FileName is the name of the configuration file.
	FileName = "mermedit.toml"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Server  Server         `toml:"server"`
	Layout  layout.Options `toml:"layout"`
	Render  render.Config  `toml:"render"`
	Cache   Cache          `toml:"cache"`
	Session Session        `toml:"session"`
}

// Server configures `mermedit serve`.
type Server struct {
	Addr            string        `toml:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `toml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" validate:"gte=0"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `toml:"metrics"`
}

// Cache selects where rendered artifacts and layouts are cached.
type Cache struct {
	Backend string        `toml:"backend" validate:"oneof=file redis none"`
	Dir     string        `toml:"dir"`
	TTL     time.Duration `toml:"ttl" validate:"gte=0"`

	// Prefix scopes keys when several instances share one backend.
	Prefix string `toml:"prefix"`

	Redis *cache.RedisConfig `toml:"redis" validate:"required_if=Backend redis,omitempty"`
}

// Session configures editing sessions held by the server.
type Session struct {
	TTL             time.Duration `toml:"ttl" validate:"gte=0"`
	MaxSessions     int           `toml:"max_sessions" validate:"gte=0"`
	JanitorInterval time.Duration `toml:"janitor_interval" validate:"gte=0"`
	PreservePinned  bool          `toml:"preserve_pinned"`
}

// Default returns the built-in configuration. The layout direction is left
// empty so the document header decides.
func Default() Config {
	lo := layout.DefaultOptions()
	lo.Direction = ""
	return Config{
		Server: Server{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Metrics:         true,
		},
		Layout: lo,
		Render: render.Config{Format: render.FormatSVG, FontSize: render.DefaultFontSize, Theme: "default"},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     render.DefaultCacheTTL,
		},
		Session: Session{
			TTL:             session.DefaultTTL,
			MaxSessions:     session.DefaultMaxSessions,
			JanitorInterval: time.Minute,
			PreservePinned:  true,
		},
	}
}

// Load reads the configuration at path over the defaults. An empty path
// looks for [FileName] in the working directory, then in the user config
// directory; finding neither is not an error.
func Load(path string) (Config, string, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = findFile()
		if path == "" {
			return cfg, "", nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, "", nil
		}
		return cfg, path, merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "open config")
	}
	defer f.Close()

	if err := Decode(f, &cfg); err != nil {
		return cfg, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}

// Decode reads TOML from r into cfg and validates the result. Keys that
// do not map to a field are rejected.
func Decode(r io.Reader, cfg *Config) error {
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return merrors.New(merrors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
	}
	return cfg.Validate()
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return merrors.ValidateStruct(merrors.ErrCodeInvalidConfig, c)
}

// Encode writes cfg as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Open creates the configured cache backend. The file backend falls back
// to the user cache directory when Dir is empty.
func (c Cache) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		if c.Redis == nil {
			return nil, merrors.New(merrors.ErrCodeInvalidConfig, "cache.redis is required for the redis backend")
		}
		return cache.NewRedisCache(ctx, *c.Redis)
	default:
		dir := c.Dir
		if dir == "" {
			d, err := CacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}

// Keyer returns the key scheme for the cache, scoped by Prefix when set.
func (c Cache) Keyer() cache.Keyer {
	if c.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Prefix)
}

// =============================================================================
// Paths
// =============================================================================

// CacheDir returns the cache directory using the XDG standard
// (~/.cache/mermedit/).
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

// ConfigDir returns the configuration directory using the XDG standard
// (~/.config/mermedit/).
func ConfigDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

func findFile() string {
	if _, err := os.Stat(FileName); err == nil {
		return FileName
	}
	dir, err := ConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
