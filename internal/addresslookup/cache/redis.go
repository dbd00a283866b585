package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"time"

	"postcode_lookup/internal/addresslookup/transport"
	"postcode_lookup/platform/logger"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "postcode-lookup:"

// Redis stores candidate lists as JSON with a per-key expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, log: log}
}

// NewRedisFromURL parses a redis:// or rediss:// URL and connects lazily.
func NewRedisFromURL(redisURL string, tlsInsecure bool, ttl time.Duration, log *logger.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed dev setups
	}

	return NewRedis(redis.NewClient(opt), ttl, log), nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]transport.Candidate, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.CacheError("get", err)
		}
		return nil, false
	}

	var candidates []transport.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		r.log.CacheError("decode", err)
		return nil, false
	}
	return candidates, true
}

func (r *Redis) Set(ctx context.Context, key string, candidates []transport.Candidate) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		r.log.CacheError("encode", err)
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, r.ttl).Err(); err != nil {
		r.log.CacheError("set", err)
	}
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
