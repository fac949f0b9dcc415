package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/redis/go-redis/v9"
)

// redisScanCount is the COUNT hint passed to SCAN.
const redisScanCount = 200

// Redis stores options as plain string keys, optionally namespaced by a prefix.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects to addr (a redis:// URL or host:port) and pings it.
func OpenRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", opts.Addr, err)
	}
	return NewRedis(client, prefix), nil
}

// Get returns the value stored under key.
func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, ErrInvalidKey
	}
	v, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading option %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key without expiry; freshness lives in the value.
func (s *Redis) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing option %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (s *Redis) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("deleting option %s: %w", key, err)
	}
	return nil
}

// DeleteMatching scans for keys matching pattern and deletes up to limit of them.
func (s *Redis) DeleteMatching(ctx context.Context, pattern string, limit int) (int, error) {
	re := likeRegexp(pattern)
	match := s.prefix + likeToGlob(pattern)

	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, redisScanCount).Result()
		if err != nil {
			return 0, fmt.Errorf("scanning options like %s: %w", pattern, err)
		}
		for _, k := range batch {
			if re.MatchString(strings.TrimPrefix(k, s.prefix)) {
				keys = append(keys, k)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	sort.Strings(keys)
	keys = dedupeSorted(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("deleting options like %s: %w", pattern, err)
	}
	return int(n), nil
}

// Close closes the client.
func (s *Redis) Close() error {
	return s.client.Close()
}

// likeToGlob converts a LIKE pattern to a redis glob. ASCII letters become
// character classes so SCAN matches case-insensitively like the other backends.
func likeToGlob(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch {
		case r == '%':
			b.WriteByte('*')
		case r == '_':
			b.WriteByte('?')
		case strings.ContainsRune(`*?[]\`, r):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			b.WriteByte('[')
			b.WriteRune(unicode.ToLower(r))
			b.WriteRune(unicode.ToUpper(r))
			b.WriteByte(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dedupeSorted drops adjacent duplicates; SCAN may return a key more than once.
func dedupeSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if len(out) > 0 && out[len(out)-1] == k {
			continue
		}
		out = append(out, k)
	}
	return out
}

var _ Store = (*Redis)(nil)
