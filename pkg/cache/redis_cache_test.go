package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ fiber.Storage = (*Storage)(nil)

func TestRedisCache_NilIsAlwaysAMiss(t *testing.T) {
	var c *RedisCache
	var out map[string]any

	assert.False(t, c.Get(context.Background(), "k", &out))
	assert.False(t, c.Set(context.Background(), "k", 1, 0))
	assert.False(t, c.Delete(context.Background(), "k"))
}

func TestRedisCache_RoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	rdb, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer rdb.Close()

	c := NewRedisCache(rdb, "test:cache:")
	type item struct {
		Reply string `json:"reply"`
	}

	require.True(t, c.Set(ctx, "greeting", item{Reply: "hi"}, time.Minute))

	var got item
	require.True(t, c.Get(ctx, "greeting", &got))
	assert.Equal(t, "hi", got.Reply)

	require.True(t, c.Delete(ctx, "greeting"))
	assert.False(t, c.Get(ctx, "greeting", &got))
}

func TestStorage_MissingKeyIsNil(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	rdb, err := NewRedisClient(context.Background(), url)
	require.NoError(t, err)
	defer rdb.Close()

	s := NewStorage(rdb, "test:limiter:")
	val, err := s.Get("absent")
	require.NoError(t, err)
	assert.Nil(t, val)

	require.NoError(t, s.Set("present", []byte("1"), time.Minute))
	val, err = s.Get("present")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), val)
	require.NoError(t, s.Reset())
}
