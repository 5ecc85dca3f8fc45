// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/membership/internal/config"
)

func TestNewRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedis(context.Background(), config.RedisConfig{
		URL:       "redis://" + mr.Addr(),
		KeyPrefix: "membership:",
		PoolSize:  2,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	assert.NoError(t, rdb.Ping(context.Background()))
	assert.Equal(t, "membership:webhook:event:evt_1", rdb.Key("webhook", "event", "evt_1"))
	assert.Equal(t, 2, rdb.Client.Options().PoolSize)
}

func TestNewRedis_Errors(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{URL: "not a url"})
	assert.ErrorContains(t, err, "parse redis url")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedis(context.Background(), config.RedisConfig{URL: "redis://" + addr})
	assert.ErrorContains(t, err, "connect redis")
}

func TestRedisKey_WithoutPrefix(t *testing.T) {
	rdb := NewRedisFromClient(redis.NewClient(&redis.Options{}), "")
	t.Cleanup(func() { _ = rdb.Close() })

	assert.Equal(t, "ratelimit:email:a@example.com", rdb.Key("ratelimit", "email", "a@example.com"))
}
