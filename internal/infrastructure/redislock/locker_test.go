package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), "http://not-redis", zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse url")
}

func TestTryLock_UnreachableServerReturnsError(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	l := NewWithClient(client, zerolog.Nop())

	release, acquired, err := l.TryLock(context.Background(), "billing:sweep", time.Minute)
	require.Error(t, err)
	assert.False(t, acquired)
	assert.Nil(t, release)
}
