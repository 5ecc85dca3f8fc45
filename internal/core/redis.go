// AngelaMos | 2026
// redis.go

package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/membership/internal/config"
)

const (
	redisPingTimeout  = 5 * time.Second
	redisPoolTimeout  = 30 * time.Second
	redisConnIdleTime = 5 * time.Minute
)

// Redis wraps the shared client used by the webhook ledger and the rate
// limiters. Keys go through Key so deployments sharing one server do not
// collide.
type Redis struct {
	Client *redis.Client
	prefix string
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
	opts.PoolTimeout = redisPoolTimeout
	opts.ConnMaxIdleTime = redisConnIdleTime

	r := NewRedisFromClient(redis.NewClient(opts), cfg.KeyPrefix)

	if err := r.Ping(ctx); err != nil {
		_ = r.Client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return r, nil
}

func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	return &Redis{
		Client: client,
		prefix: strings.TrimSuffix(prefix, ":"),
	}
}

// Key joins parts with ':' under the configured prefix.
func (r *Redis) Key(parts ...string) string {
	key := strings.Join(parts, ":")
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

func (r *Redis) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := r.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (r *Redis) PoolStats() *redis.PoolStats {
	return r.Client.PoolStats()
}
