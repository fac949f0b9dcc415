package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/logging"
	"github.com/rshade/gitupdater/internal/repocache"
	"github.com/rshade/gitupdater/internal/store"
)

const sampleConfig = `
cache:
  enabled: true
  hours: 6
  backend: sqlite
  dsn: /tmp/options.db
logging:
  level: debug
  format: json
host:
  version: "6.4.2"
  runtime_version: "8.1.0"
extra_headers:
  GitLabPluginURI: GitLab Plugin URI
repos:
  - slug: my-plugin
    file: my-plugin/my-plugin.php
    type: plugin
    git: github
    uri: https://github.com/owner/my-plugin
    branches: [master, develop]
  - slug: my-theme
    file: my-theme
    type: theme
    git: gitlab
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	path := writeConfig(t, sampleConfig)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, 6, cfg.Cache.Hours)
	assert.Equal(t, store.BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, "/tmp/options.db", cfg.Cache.DSN)
	assert.Equal(t, "6.4.2", cfg.Host.Version)
	assert.Equal(t, "GitLab Plugin URI", cfg.ExtraHeaders["GitLabPluginURI"])
	require.Len(t, cfg.Repos, 2)
	assert.Equal(t, []string{"my-plugin", "my-theme"}, cfg.Slugs())
	assert.Len(t, cfg.Plugins(), 1)
	assert.Len(t, cfg.Themes(), 1)

	r, ok := cfg.FindRepo("my-plugin")
	require.True(t, ok)
	assert.Equal(t, "my-plugin", r.Dir())
	assert.True(t, r.HasBranch("develop"))
	assert.False(t, r.HasBranch("main"))

	_, ok = cfg.FindRepo("nope")
	assert.False(t, ok)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)

	cfg, err := config.Load(filepath.Join(home, "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Path())
	assert.Equal(t, 12, cfg.Cache.Hours)
	assert.Equal(t, store.BackendFile, cfg.Cache.Backend)
	assert.Equal(t, filepath.Join(home, "options"), cfg.Cache.Dir)
	require.NoError(t, cfg.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "cache: [unclosed")
	_, err := config.Load(path)
	require.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvConfigPath, "")

	assert.Equal(t, "/flag.yaml", config.ResolvePath("/flag.yaml"))
	assert.Equal(t, filepath.Join(home, "config.yaml"), config.ResolvePath(""))

	t.Setenv(config.EnvConfigPath, "/env.yaml")
	assert.Equal(t, "/env.yaml", config.ResolvePath(""))
}

func TestApplyEnv(t *testing.T) {
	cfg := config.New()
	env := map[string]string{
		repocache.EnvCacheHours: "3",
		config.EnvCacheBackend:  store.BackendRedis,
		config.EnvCacheEnabled:  "false",
		config.EnvLogLevel:      "trace",
		config.EnvLogFormat:     "console",
	}
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, 3, cfg.Cache.Hours)
	assert.Equal(t, store.BackendRedis, cfg.Cache.Backend)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "trace", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, store.BackendMemory, cfg.StoreConfig().Backend, "disabled cache falls back to memory")

	cfg.ApplyEnv(func(k string) (string, bool) {
		if k == repocache.EnvCacheHours {
			return "-4", true
		}
		return "", false
	})
	assert.Equal(t, 3, cfg.Cache.Hours, "invalid hours are ignored")

	cfg.ApplyEnv(func(k string) (string, bool) {
		if k == repocache.EnvCacheHours {
			return "48h", true
		}
		return "", false
	})
	assert.Equal(t, 48, cfg.Cache.Hours, "duration strings are accepted")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"defaults", func(*config.Config) {}, nil},
		{"zero hours", func(c *config.Config) { c.Cache.Hours = 0 }, config.ErrInvalidConfig},
		{"bad backend", func(c *config.Config) { c.Cache.Backend = "etcd" }, config.ErrInvalidConfig},
		{"empty slug", func(c *config.Config) { c.Repos = []config.Repo{{File: "x/x.php"}} }, config.ErrInvalidConfig},
		{"duplicate slug", func(c *config.Config) {
			c.Repos = []config.Repo{{Slug: "a"}, {Slug: "a"}}
		}, config.ErrDuplicateSlug},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	cfg := config.New()
	cfg.Repos = []config.Repo{{Slug: "a", File: "a/a.php", Type: config.TypePlugin, Git: "github"}}

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.Save(path))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Repos, loaded.Repos)
	assert.Equal(t, cfg.Cache, loaded.Cache)
}

func TestToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, got.Output)
	assert.Equal(t, "debug", got.Level)

	lc.File = "/var/log/gitupdater.log"
	got = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, "/var/log/gitupdater.log", got.File)
}
