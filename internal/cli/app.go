package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/gitupdater/internal/config"
	"github.com/rshade/gitupdater/internal/header"
	"github.com/rshade/gitupdater/internal/hooks"
	"github.com/rshade/gitupdater/internal/messages"
	"github.com/rshade/gitupdater/internal/repo"
	"github.com/rshade/gitupdater/internal/repocache"
	"github.com/rshade/gitupdater/internal/settings"
	"github.com/rshade/gitupdater/internal/store"
	"github.com/rshade/gitupdater/internal/updater"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFrom returns the config resolved by the root command, or the
// defaults when a command runs outside the root (tests).
func configFrom(cmd *cobra.Command) *config.Config {
	if ctx := cmd.Context(); ctx != nil {
		if cfg, ok := ctx.Value(configKey{}).(*config.Config); ok && cfg != nil {
			return cfg
		}
	}
	return config.New()
}

// app wires the components of one command invocation. Every extension
// point is registered in hooks so it can be listed and extended by name.
type app struct {
	cfg      *config.Config
	store    store.Store
	cache    *repocache.Cache
	hooks    *hooks.Registry
	parser   *header.Parser
	parts    *repo.PartsBuilder
	policy   *updater.Policy
	settings *settings.Loader
	messages *messages.Collector
}

// openApp validates the config and opens the option store.
// Callers must Close the returned app.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg := configFrom(cmd)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s, err := store.Open(cmd.Context(), cfg.StoreConfig())
	if err != nil {
		return nil, fmt.Errorf("opening option store: %w", err)
	}
	return newApp(cfg, s), nil
}

func newApp(cfg *config.Config, s store.Store) *app {
	reg := hooks.NewRegistry()

	parser := header.NewParser(cfg.ExtraHeaders)
	parser.Enterprise = hooks.Lookup[header.Header, string](reg, header.EnterpriseHook)

	parts := repo.NewPartsBuilder()
	parts.Filter = hooks.Lookup[repo.ProviderTable, string](reg, repo.PartsHook)

	policy := updater.NewPolicy(cfg.SkipUpdates)
	policy.RemoteIsNewer = hooks.Lookup[bool, config.Repo](reg, updater.RemoteIsNewerHook)
	policy.OverrideDotOrg = hooks.Lookup[[]string, string](reg, updater.OverrideDotOrgHook)
	policy.RunningGitServers = hooks.Lookup[[]string, []config.Repo](reg, updater.RunningGitServersHook)

	loader := settings.NewLoader()
	loader.DisableBackground = hooks.Lookup[bool, struct{}](reg, settings.DisableBackgroundHook)

	cache := repocache.New(s,
		repocache.WithTTL(time.Duration(cfg.Cache.Hours)*time.Hour),
		repocache.WithTimeoutHook(hooks.Lookup[time.Duration, repocache.TimeoutArgs](reg, repocache.TimeoutHook)),
	)

	return &app{
		cfg:      cfg,
		store:    s,
		cache:    cache,
		hooks:    reg,
		parser:   parser,
		parts:    parts,
		policy:   policy,
		settings: loader,
		messages: messages.NewCollector(),
	}
}

// Close releases the option store.
func (a *app) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}

// closeApp closes a and joins any failure into err.
func closeApp(a *app, err *error) {
	if cerr := a.Close(); cerr != nil {
		*err = errors.Join(*err, fmt.Errorf("closing option store: %w", cerr))
	}
}
