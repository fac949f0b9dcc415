// Package config loads the gitupdater configuration: cache and option store
// settings, logging, the host environment used for update gating, extra header
// labels, and the list of installed repositories.
//
// Precedence is CLI flags > environment variables > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/rshade/gitupdater/internal/repocache"
	"github.com/rshade/gitupdater/internal/store"
)

// Environment variables read by ApplyEnv and ResolvePath.
const (
	EnvConfigPath   = "GITUPDATER_CONFIG"
	EnvHome         = "GITUPDATER_HOME"
	EnvCacheBackend = "GITUPDATER_CACHE_BACKEND"
	EnvCacheEnabled = "GITUPDATER_CACHE_ENABLED"
	EnvLogLevel     = "GITUPDATER_LOG_LEVEL"
	EnvLogFormat    = "GITUPDATER_LOG_FORMAT"
)

const (
	defaultDirName    = ".gitupdater"
	defaultConfigFile = "config.yaml"
)

// Configuration errors.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrDuplicateSlug = errors.New("duplicate repository slug")
)

// Config is the root configuration document.
type Config struct {
	Cache        CacheConfig       `yaml:"cache"`
	Logging      LoggingConfig     `yaml:"logging"`
	Host         HostConfig        `yaml:"host"`
	ExtraHeaders map[string]string `yaml:"extra_headers,omitempty"`
	SkipUpdates  []string          `yaml:"skip_updates,omitempty"`
	Repos        []Repo            `yaml:"repos"`

	// path is the file the config was loaded from, empty for defaults.
	path string
}

// CacheConfig controls the repo cache and its option store.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	// Hours is the default lifetime of a cache row.
	Hours int `yaml:"hours"`

	store.Config `yaml:",inline"`
}

// HostConfig describes the environment updates are installed into.
type HostConfig struct {
	// Version is the host application version compared against "Requires at least".
	Version string `yaml:"version"`
	// RuntimeVersion is compared against "Requires PHP".
	RuntimeVersion string `yaml:"runtime_version"`
}

// HomeDir returns the gitupdater state directory: $GITUPDATER_HOME or ~/.gitupdater.
func HomeDir() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDirName
	}
	return filepath.Join(home, defaultDirName)
}

// New returns the default configuration.
func New() *Config {
	home := HomeDir()
	return &Config{
		Cache: CacheConfig{
			Enabled: true,
			Hours:   repocache.DefaultHours,
			Config: store.Config{
				Backend: store.BackendFile,
				Dir:     filepath.Join(home, "options"),
				DSN:     filepath.Join(home, "options.db"),
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ResolvePath picks the config file: flagValue, then $GITUPDATER_CONFIG,
// then ~/.gitupdater/config.yaml.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return filepath.Join(HomeDir(), defaultConfigFile)
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := New()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	c.path = path
	return nil
}

// ApplyEnv overrides file values with environment variables. Invalid values
// are ignored.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if hours, ok := repocache.HoursFromEnv(lookupEnv); ok {
		c.Cache.Hours = hours
	}
	if v, ok := lookupEnv(EnvCacheBackend); ok && v != "" {
		c.Cache.Backend = v
	}
	if v, ok := lookupEnv(EnvCacheEnabled); ok {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.Cache.Enabled = enabled
		}
	}
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvLogFormat); ok && v != "" {
		c.Logging.Format = v
	}
}

// Validate checks the configuration for values the rest of the program cannot use.
func (c *Config) Validate() error {
	if c.Cache.Hours <= 0 {
		return fmt.Errorf("%w: cache.hours must be positive, got %d", ErrInvalidConfig, c.Cache.Hours)
	}
	switch c.Cache.Backend {
	case store.BackendMemory, store.BackendFile, store.BackendSQLite, store.BackendRedis:
	default:
		return fmt.Errorf("%w: unknown cache.backend %q", ErrInvalidConfig, c.Cache.Backend)
	}

	seen := make(map[string]bool, len(c.Repos))
	for i, r := range c.Repos {
		if r.Slug == "" {
			return fmt.Errorf("%w: repos[%d] has no slug", ErrInvalidConfig, i)
		}
		if seen[r.Slug] {
			return fmt.Errorf("%w: %s", ErrDuplicateSlug, r.Slug)
		}
		seen[r.Slug] = true
	}
	return nil
}

// StoreConfig returns the option store settings, falling back to the
// in-memory backend when caching is disabled.
func (c *Config) StoreConfig() store.Config {
	if !c.Cache.Enabled {
		return store.Config{Backend: store.BackendMemory}
	}
	return c.Cache.Config
}
