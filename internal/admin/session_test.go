package admin

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, idle time.Duration, maxIPs int) (*SessionTracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewSessionTracker(rdb, idle, maxIPs), mr
}

func TestSessionStartAndTouch(t *testing.T) {
	tracker, _ := newTestTracker(t, 30*time.Minute, 3)
	ctx := context.Background()

	require.NoError(t, tracker.Start(ctx, "sid-1", "10.0.0.1"))
	require.NoError(t, tracker.Touch(ctx, "sid-1", "10.0.0.1"))

	loginAt, lastSeen, ips, err := tracker.Info(ctx, "sid-1")
	require.NoError(t, err)
	assert.False(t, loginAt.IsZero())
	assert.False(t, lastSeen.Before(loginAt))
	assert.Equal(t, []string{"10.0.0.1"}, ips)
}

func TestSessionUnknownIsExpired(t *testing.T) {
	tracker, _ := newTestTracker(t, 30*time.Minute, 3)
	err := tracker.Touch(context.Background(), "nope", "10.0.0.1")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionIdleTimeout(t *testing.T) {
	tracker, mr := newTestTracker(t, time.Minute, 3)
	ctx := context.Background()

	require.NoError(t, tracker.Start(ctx, "sid-1", "10.0.0.1"))

	// backdate last_seen beyond the idle window
	stale := time.Now().Add(-2 * time.Minute).Unix()
	mr.HSet("admin:session:sid-1", "last_seen", strconv.FormatInt(stale, 10))

	err := tracker.Touch(ctx, "sid-1", "10.0.0.1")
	assert.ErrorIs(t, err, ErrSessionIdle)
}

func TestSessionTooManyIPs(t *testing.T) {
	tracker, _ := newTestTracker(t, 30*time.Minute, 2)
	ctx := context.Background()

	require.NoError(t, tracker.Start(ctx, "sid-1", "10.0.0.1"))
	require.NoError(t, tracker.Touch(ctx, "sid-1", "10.0.0.2"))

	err := tracker.Touch(ctx, "sid-1", "10.0.0.3")
	assert.ErrorIs(t, err, ErrTooManyIPs)
}

func TestSessionEnd(t *testing.T) {
	tracker, _ := newTestTracker(t, 30*time.Minute, 3)
	ctx := context.Background()

	require.NoError(t, tracker.Start(ctx, "sid-1", "10.0.0.1"))
	require.NoError(t, tracker.End(ctx, "sid-1"))

	err := tracker.Touch(ctx, "sid-1", "10.0.0.1")
	assert.ErrorIs(t, err, ErrSessionExpired)
}
