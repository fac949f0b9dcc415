package repocache

import (
	"context"
	"crypto/md5" //nolint:gosec // key derivation only, must match existing "ghu-" rows
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rshade/gitupdater/internal/hooks"
	"github.com/rshade/gitupdater/internal/logging"
	"github.com/rshade/gitupdater/internal/store"
)

const (
	// KeyPrefix prefixes every cache row key.
	KeyPrefix = "ghu-"

	// DefaultSlug is the repo key used when a call names no repository.
	DefaultSlug = "ghu"

	// PurgePattern matches every cache row.
	PurgePattern = "%" + KeyPrefix + "%"

	// PurgeLimit bounds the rows removed by one Purge call.
	PurgeLimit = 1000

	// TimeoutHook names the extension point that adjusts a row's lifetime.
	TimeoutHook = "repo_cache_timeout"
)

// Cache errors.
var (
	ErrFieldNotFound = errors.New("cache field not found")
	ErrNotStored     = errors.New("value was not stored in cache")

	errUpstreamResponse = errors.New("upstream error response")
)

// UpstreamError is implemented by fetched values that can carry a failed
// upstream response, such as an API payload with an error flag.
type UpstreamError interface {
	UpstreamError() bool
}

// upstreamError returns the failure carried by value, or nil when value can
// be cached.
func upstreamError(value any) error {
	switch v := value.(type) {
	case error:
		return v
	case UpstreamError:
		if v.UpstreamError() {
			return errUpstreamResponse
		}
	}
	return nil
}

// TimeoutArgs is passed to the repo_cache_timeout extension point.
type TimeoutArgs struct {
	ID    string
	Value any
	Repo  string
}

// Cache reads and writes repo cache rows in an option store.
type Cache struct {
	store       store.Store
	ttl         time.Duration
	defaultSlug string
	now         func() time.Time
	timeout     *hooks.Chain[time.Duration, TimeoutArgs]
	group       singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the default lifetime of rows written by Put.
func WithTTL(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithClock replaces time.Now, for tests and replay.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithDefaultSlug sets the repo used when a call names none.
func WithDefaultSlug(slug string) Option {
	return func(c *Cache) {
		if slug != "" {
			c.defaultSlug = slug
		}
	}
}

// WithTimeoutHook installs the repo_cache_timeout extension point.
func WithTimeoutHook(chain *hooks.Chain[time.Duration, TimeoutArgs]) Option {
	return func(c *Cache) { c.timeout = chain }
}

// New returns a Cache over s with a DefaultTTL lifetime.
func New(s store.Store, opts ...Option) *Cache {
	c := &Cache{
		store:       s,
		ttl:         DefaultTTL,
		defaultSlug: DefaultSlug,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the option key of the row for repo.
func Key(repo string) string {
	sum := md5.Sum([]byte(repo)) //nolint:gosec // see import
	return KeyPrefix + hex.EncodeToString(sum[:])
}

// TTL returns the default lifetime of rows written by Put.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) repoOrDefault(repo string) string {
	if repo == "" {
		return c.defaultSlug
	}
	return repo
}

// Get returns the fresh row for repo. It reports false when the row is
// absent, unreadable, has no timeout, or has expired. Get never writes.
func (c *Cache) Get(ctx context.Context, repo string) (*Record, bool) {
	repo = c.repoOrDefault(repo)
	key := Key(repo)
	log := logging.FromContext(ctx)

	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "repocache").
			Str("operation", "get").
			Str("repo", repo).
			Err(err).
			Msg("cache read failed, treating as miss")
		return nil, false
	}
	if !ok {
		return nil, false
	}

	r := decodeRow(data)
	if !r.hasTTL || c.now().Unix() > r.timeout {
		log.Debug().
			Ctx(ctx).
			Str("component", "repocache").
			Str("repo", repo).
			Bool("has_timeout", r.hasTTL).
			Msg("cache row stale")
		return nil, false
	}

	return &Record{
		Key:       key,
		Fields:    r.fields,
		ExpiresAt: time.Unix(r.timeout, 0),
	}, true
}

type putOptions struct {
	repo string
	ttl  time.Duration
}

// PutOption adjusts a single Put call.
type PutOption func(*putOptions)

// WithRepo writes to the row of repo instead of the default slug.
func WithRepo(repo string) PutOption {
	return func(o *putOptions) { o.repo = repo }
}

// WithTimeout overrides the lifetime for this write.
func WithTimeout(d time.Duration) PutOption {
	return func(o *putOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}

// Put stores value as field id of the repo's row and pushes the row's expiry
// to now plus the lifetime. It returns false without writing when value is an
// upstream error, when id is empty or reserved, or when the store fails.
func (c *Cache) Put(ctx context.Context, id string, value any, opts ...PutOption) bool {
	log := logging.FromContext(ctx)

	if err := upstreamError(value); err != nil {
		log.Debug().
			Ctx(ctx).
			Str("component", "repocache").
			Str("operation", "put").
			Str("id", id).
			Err(err).
			Msg("refusing to cache upstream error")
		return false
	}
	if id == "" || id == timeoutField {
		log.Warn().
			Ctx(ctx).
			Str("component", "repocache").
			Str("id", id).
			Msg("invalid cache field id")
		return false
	}

	o := putOptions{repo: c.defaultSlug, ttl: c.ttl}
	for _, opt := range opts {
		opt(&o)
	}
	o.repo = c.repoOrDefault(o.repo)

	ttl := c.timeout.Apply(o.ttl, TimeoutArgs{ID: id, Value: value, Repo: o.repo})

	encoded, err := json.Marshal(value)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "repocache").
			Str("id", id).
			Err(err).
			Msg("cache value is not serialisable")
		return false
	}

	key := Key(o.repo)
	existing, _, err := c.store.Get(ctx, key)
	if err != nil {
		// Merge onto an empty row; the write below decides success.
		existing = nil
	}
	r := decodeRow(existing)
	r.fields[id] = encoded
	r.timeout = c.now().Add(ttl).Unix()

	data, err := r.encode()
	if err == nil {
		err = c.store.Set(ctx, key, data)
	}
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "repocache").
			Str("operation", "put").
			Str("repo", o.repo).
			Err(err).
			Msg("cache write failed")
		return false
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "repocache").
		Str("operation", "put").
		Str("repo", o.repo).
		Str("id", id).
		Str("ttl", FormatDuration(ttl)).
		Msg("cache row updated")
	return true
}

// Delete removes the row of repo.
func (c *Cache) Delete(ctx context.Context, repo string) error {
	return c.store.Delete(ctx, Key(c.repoOrDefault(repo)))
}

// Purge removes up to PurgeLimit cache rows and returns how many went.
// Failures are logged, not returned.
func (c *Cache) Purge(ctx context.Context) int {
	n, err := c.store.DeleteMatching(ctx, PurgePattern, PurgeLimit)
	log := logging.FromContext(ctx)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "repocache").
			Str("operation", "purge").
			Err(err).
			Msg("cache purge incomplete")
	}
	log.Info().
		Ctx(ctx).
		Str("component", "repocache").
		Str("operation", "purge").
		Int("deleted", n).
		Msg("cache purged")
	return n
}

// Waiting reports whether any of the named repositories has no fresh row,
// meaning a background refresh has not finished for it yet.
func (c *Cache) Waiting(ctx context.Context, repos ...string) bool {
	for _, repo := range repos {
		if _, ok := c.Get(ctx, repo); !ok {
			return true
		}
	}
	return false
}

// FetchFunc loads a value from upstream for Remember.
type FetchFunc func(ctx context.Context) (any, error)

// Remember returns field id of repo's fresh row, calling fetch and caching
// its result on a miss. Concurrent misses for the same field share one fetch.
func (c *Cache) Remember(ctx context.Context, repo, id string, fetch FetchFunc) (json.RawMessage, error) {
	repo = c.repoOrDefault(repo)
	if rec, ok := c.Get(ctx, repo); ok {
		if v, found := rec.Field(id); found {
			return v, nil
		}
	}

	v, err, _ := c.group.Do(Key(repo)+"/"+id, func() (any, error) {
		value, fetchErr := fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}
		encoded, marshalErr := json.Marshal(value)
		if marshalErr != nil {
			return nil, marshalErr
		}
		if !c.Put(ctx, id, value, WithRepo(repo)) {
			return nil, ErrNotStored
		}
		return json.RawMessage(encoded), nil
	})
	if err != nil {
		return nil, err
	}
	raw, _ := v.(json.RawMessage)
	return raw, nil
}
