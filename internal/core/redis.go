// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mailsfinder/admin-console/internal/config"
)

const defaultRedisPingTimeout = 5 * time.Second

// Redis holds only revoked token ids and rate limit counters. The ledger
// never lives here, so a flush costs revocations and limits, not data.
type Redis struct {
	Client      *redis.Client
	namespace   string
	pingTimeout time.Duration
}

func NewRedis(ctx context.Context, cfg config.RedisConfig) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.ClientName = cfg.Namespace
	opts.ConnMaxIdleTime = 5 * time.Minute

	r := newRedis(redis.NewClient(opts), cfg)
	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("connect redis %s: %w", opts.Addr, err)
	}

	return r, nil
}

func newRedis(client *redis.Client, cfg config.RedisConfig) *Redis {
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = defaultRedisPingTimeout
	}

	return &Redis{
		Client:      client,
		namespace:   strings.Trim(cfg.Namespace, ":"),
		pingTimeout: timeout,
	}
}

// Key joins parts under the console's namespace, e.g. "admin-console:blacklist".
// Several consoles can then share one redis database.
func (r *Redis) Key(parts ...string) string {
	if r.namespace == "" {
		return strings.Join(parts, ":")
	}
	return r.namespace + ":" + strings.Join(parts, ":")
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, r.pingTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}

func (r *Redis) Close() error {
	if r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
