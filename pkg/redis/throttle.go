package redis

import (
	"context"
	"time"
)

// Throttle allows one action per key per window using SET NX with a TTL.
// The first caller inside a window wins; later callers are refused until
// the key expires.
type Throttle struct {
	prefix string
}

var throttleSetNX = SetNX

// NewThrottle creates a throttle whose keys live under prefix
func NewThrottle(prefix string) *Throttle {
	return &Throttle{prefix: prefix}
}

// Allow reports whether the action for key may run now
func (t *Throttle) Allow(ctx context.Context, key string, window time.Duration) (bool, error) {
	if window <= 0 {
		return true, nil
	}
	return throttleSetNX(ctx, t.prefix+":"+key, time.Now().Unix(), window)
}
