package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/pkg/config"
)

func disabledClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	return client
}

func TestNewClient_Disabled(t *testing.T) {
	client := disabledClient(t)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(disabledClient(t), "test")
	cfg := YahooRateLimit(5)

	allowed, remaining, err := limiter.Allow(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 5, remaining)

	assert.NoError(t, limiter.For(cfg).Wait(context.Background()))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", TTLShort))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabledCallsLoader(t *testing.T) {
	cache := NewCache(disabledClient(t), "test")

	calls := 0
	var out map[string]int
	for i := 0; i < 2; i++ {
		err := cache.GetOrSet(context.Background(), "k", &out, TTLShort, func() (interface{}, error) {
			calls++
			return map[string]int{"articles": 3}, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, calls, "no cache means the loader runs every time")
	assert.Equal(t, 3, out["articles"])

	loadErr := errors.New("upstream down")
	err := cache.GetOrSet(context.Background(), "k", &out, TTLShort, func() (interface{}, error) {
		return nil, loadErr
	})
	assert.ErrorIs(t, err, loadErr)
}

func TestNewsKey(t *testing.T) {
	assert.Equal(t, "news:webhook:INFY", NewsKey("webhook", "infy"))
}

func TestCache_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping integration test")
	}

	client := NewFromRedis(goredis.NewClient(&goredis.Options{Addr: addr}))
	defer client.Close()

	cache := NewCache(client, "stocklens-test")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "payload", map[string]string{"symbol": "INFY"}, time.Minute))

	var got map[string]string
	found, err := cache.Get(ctx, "payload", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "INFY", got["symbol"])

	require.NoError(t, cache.Delete(ctx, "payload"))
	found, err = cache.Get(ctx, "payload", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
