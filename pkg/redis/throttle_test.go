package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis not available in this environment: %v", err)
	}
	t.Cleanup(srv.Close)

	prev := GetClient()
	cli := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	SetClient(cli)
	t.Cleanup(func() {
		_ = cli.Close()
		SetClient(prev)
	})
	return srv
}

func TestThrottle_OncePerWindow(t *testing.T) {
	srv := withMiniredis(t)
	th := NewThrottle("verify-resend")
	ctx := context.Background()

	ok, err := th.Allow(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, srv.Exists("verify-resend:user-1"))

	ok, err = th.Allow(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = th.Allow(ctx, "user-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "keys are independent")

	srv.FastForward(time.Minute + time.Second)
	ok, err = th.Allow(ctx, "user-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "window elapsed")
}

func TestThrottle_ZeroWindowAlwaysAllows(t *testing.T) {
	orig := throttleSetNX
	t.Cleanup(func() { throttleSetNX = orig })
	throttleSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) {
		t.Fatal("redis must not be touched for a zero window")
		return false, nil
	}

	ok, err := NewThrottle("p").Allow(context.Background(), "k", 0)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestThrottle_PropagatesRedisError(t *testing.T) {
	orig := throttleSetNX
	t.Cleanup(func() { throttleSetNX = orig })
	throttleSetNX = func(context.Context, string, interface{}, time.Duration) (bool, error) {
		return false, errors.New("redis down")
	}

	_, err := NewThrottle("p").Allow(context.Background(), "k", time.Second)
	assert.EqualError(t, err, "redis down")
}
