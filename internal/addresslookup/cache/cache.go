// Package cache provides the lookup cache capability. The default is a
// passthrough that never stores anything.
package cache

import (
	"context"
	"fmt"

	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/platform/config"
	"postcode_lookup/platform/logger"
)

// Cache maps a canonical postcode to its candidate list. Implementations
// must be safe for concurrent use and must never fail a lookup: backend
// errors are reported as misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]transport.Candidate, bool)
	Set(ctx context.Context, key string, candidates []transport.Candidate)
}

// Pinger is implemented by caches backed by a remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Nop is the default cache: every Get misses and Set discards.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]transport.Candidate, bool) { return nil, false }
func (Nop) Set(context.Context, string, []transport.Candidate)        {}

// New builds the cache selected by configuration.
func New(cfg config.CacheConfig, log *logger.Logger) (Cache, error) {
	switch cfg.GetCacheDriver() {
	case config.CacheDriverNone, "":
		return Nop{}, nil
	case config.CacheDriverMemory:
		return NewMemory(cfg.GetCacheTTL()), nil
	case config.CacheDriverRedis:
		return NewRedisFromURL(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure(), cfg.GetCacheTTL(), log)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.GetCacheDriver())
	}
}
