// Package settings loads and saves the site-wide gitupdater options row:
// access tokens keyed by repository slug plus feature toggles.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"

	"github.com/rshade/gitupdater/internal/hooks"
	"github.com/rshade/gitupdater/internal/logging"
	"github.com/rshade/gitupdater/internal/repo"
	"github.com/rshade/gitupdater/internal/store"
)

const (
	// OptionKey is the store key holding the options row.
	OptionKey = "github_updater"
	// BypassBackgroundProcessing toggles inline refreshes instead of scheduled ones.
	BypassBackgroundProcessing = "bypass_background_processing"
	// Locked marks an option that is forced by code rather than saved by a user.
	Locked = "-1"
	// DisableBackgroundHook lets code force BypassBackgroundProcessing on.
	DisableBackgroundHook = "disable_background_processing"
)

// Options maps option names to values.
type Options map[string]string

// Loader reads the options row.
type Loader struct {
	// DisableBackground returns true to lock background processing off.
	DisableBackground *hooks.Chain[bool, struct{}]
}

// NewLoader returns a loader with an empty disable_background_processing chain.
func NewLoader() *Loader {
	return &Loader{DisableBackground: hooks.NewChain[bool, struct{}](DisableBackgroundHook)}
}

// Load reads the options row from s. Values equal to "-1" that were saved by
// mistake are dropped, then BypassBackgroundProcessing is locked on when it
// is unset and the DisableBackground chain returns true. A missing or
// undecodable row yields empty options.
func (l *Loader) Load(ctx context.Context, s store.Store) (Options, error) {
	logger := logging.FromContext(ctx)

	raw := make(map[string]any)
	data, ok, err := s.Get(ctx, OptionKey)
	if err != nil {
		return nil, fmt.Errorf("loading options: %w", err)
	}
	if ok {
		if err = json.Unmarshal(data, &raw); err != nil {
			logger.Warn().
				Str("component", "settings").
				Str("operation", "load").
				Err(err).
				Msg("ignoring undecodable options row")
			raw = map[string]any{}
		}
	}

	opts := make(Options, len(raw))
	for k, v := range raw {
		val := stringify(v)
		if val == Locked {
			continue
		}
		opts[k] = val
	}

	if _, set := opts[BypassBackgroundProcessing]; !set && l != nil && l.DisableBackground.Apply(false, struct{}{}) {
		opts[BypassBackgroundProcessing] = Locked
	}
	return opts, nil
}

// stringify renders scalar option values the way they were entered.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return fmt.Sprintf("%v", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Save writes the sanitized options to s. Locked values are never persisted.
func Save(ctx context.Context, s store.Store, opts Options) error {
	clean := Sanitize(opts)
	maps.DeleteFunc(clean, func(_, v string) bool { return v == Locked })

	data, err := json.Marshal(clean)
	if err != nil {
		return fmt.Errorf("encoding options: %w", err)
	}
	if err = s.Set(ctx, OptionKey, data); err != nil {
		return fmt.Errorf("saving options: %w", err)
	}
	return nil
}

// Sanitize cleans keys as file names and values as single-line text.
// Keys that sanitize to nothing are dropped.
func Sanitize(in Options) Options {
	out := make(Options, len(in))
	for k, v := range in {
		key := repo.SanitizeFileName(k)
		if key == "" {
			continue
		}
		out[key] = repo.SanitizeText(v)
	}
	return out
}
