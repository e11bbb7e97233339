// AngelaMos | 2026
// redis_test.go

package core

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/mailsfinder/admin-console/internal/config"
)

func deadClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestRedisKeyNamespace(t *testing.T) {
	r := newRedis(deadClient(t), config.RedisConfig{Namespace: "admin-console:"})
	assert.Equal(t, "admin-console:blacklist", r.Key("blacklist"))
	assert.Equal(t, "admin-console:", r.Key(""))
	assert.Equal(t, "admin-console:a:b", r.Key("a", "b"))

	bare := newRedis(deadClient(t), config.RedisConfig{})
	assert.Equal(t, "blacklist", bare.Key("blacklist"))
	assert.Empty(t, bare.Key(""))
	assert.Equal(t, defaultRedisPingTimeout, bare.pingTimeout)
}

func TestRedisPingFails(t *testing.T) {
	r := newRedis(deadClient(t), config.RedisConfig{PingTimeout: 100 * time.Millisecond})
	assert.Error(t, r.Ping(context.Background()))
	assert.NotNil(t, r.PoolStats())
}

func TestNewRedisRejectsBadURL(t *testing.T) {
	_, err := NewRedis(context.Background(), config.RedisConfig{URL: "not-a-url"})
	assert.Error(t, err)
}
