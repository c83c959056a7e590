package cache

import (
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis-backed cache tests")
	}
	db := 0
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			db = parsed
		}
	}
	c, err := NewRedis(context.Background(), Options{Addr: addr, DB: db})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_SetGetDel(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	key := "healthylinkx:test:" + strconv.FormatInt(time.Now().UnixNano(), 10)

	require.NoError(t, c.Set(ctx, key, []byte(`[{"Doctor_Full_Name":"X"}]`), time.Minute))
	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"Doctor_Full_Name":"X"}]`, string(got))

	require.NoError(t, c.Del(ctx, key))
	_, err = c.Get(ctx, key)
	assert.True(t, errors.Is(err, ErrCacheMiss))
}

func TestClient_NilIsNotInitialized(t *testing.T) {
	t.Parallel()

	var c *Client
	_, err := c.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, c.Set(context.Background(), "k", nil, time.Second))
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	t.Parallel()

	_, err := NewRedis(context.Background(), Options{})
	assert.Error(t, err)
}

func TestNewFromClient_SurfacesUnreachableServer(t *testing.T) {
	t.Parallel()

	c := NewFromClient(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, c.Ping(ctx))
	_, err := c.Get(ctx, "healthylinkx:doctors:missing")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss))
}
