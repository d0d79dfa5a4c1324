// Package cache stores rendered artifacts keyed by the content they were
// rendered from.
//
// Rendering DOT through Graphviz dominates the cost of an allocation run, and
// the same graph is often rendered again: a CLI user re-running alloc on an
// unchanged problem, or an API client retrying a request. Keys are derived
// from a hash of the source, so entries never go stale; a TTL only bounds
// disk or memory use.
//
// Three implementations are provided:
//   - [FileCache] for the CLI, under the user's cache directory
//   - [MemoryCache] for the API server
//   - [NullCache] when caching is disabled
//
// [Scoped] namespaces another cache, which the pipeline uses to keep entries
// from different builds apart.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry. Get reports a miss as
// (nil, false, nil); errors are reserved for storage failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// scoped prefixes every key of an inner cache.
type scoped struct {
	Cache
	prefix string
}

// Scoped returns a view of c whose keys are prefixed with prefix.
func Scoped(c Cache, prefix string) Cache {
	return &scoped{Cache: c, prefix: prefix}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.Cache.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.Cache.Set(ctx, s.prefix+key, data, ttl)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.Cache.Delete(ctx, s.prefix+key)
}
