package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session violations. The guard middleware turns these into a forced
// re-login.
var (
	ErrSessionExpired = errors.New("admin session expired")
	ErrSessionIdle    = errors.New("admin session idle too long")
	ErrTooManyIPs     = errors.New("admin session used from too many addresses")
)

// SessionTracker keeps per-session login time, last-seen time and IP
// history in redis. It backs the admin panel's timeout/IP-change heuristic.
type SessionTracker struct {
	rdb         *redis.Client
	idleTimeout time.Duration
	maxIPs      int
	ttl         time.Duration
}

func NewSessionTracker(rdb *redis.Client, idleTimeout time.Duration, maxIPs int) *SessionTracker {
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}
	if maxIPs <= 0 {
		maxIPs = 3
	}
	return &SessionTracker{
		rdb:         rdb,
		idleTimeout: idleTimeout,
		maxIPs:      maxIPs,
		// hard upper bound, a session cannot outlive a work day
		ttl: 12 * time.Hour,
	}
}

func (t *SessionTracker) metaKey(sid string) string { return fmt.Sprintf("admin:session:%s", sid) }
func (t *SessionTracker) ipsKey(sid string) string  { return fmt.Sprintf("admin:session:%s:ips", sid) }

// Start registers a fresh session.
func (t *SessionTracker) Start(ctx context.Context, sid, ip string) error {
	now := time.Now().Unix()
	pipe := t.rdb.TxPipeline()
	pipe.HSet(ctx, t.metaKey(sid), "login_at", now, "last_seen", now)
	pipe.Expire(ctx, t.metaKey(sid), t.ttl)
	pipe.SAdd(ctx, t.ipsKey(sid), ip)
	pipe.Expire(ctx, t.ipsKey(sid), t.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// Touch validates a session on each request and refreshes last_seen. It
// returns a violation error when the session went idle past the timeout or
// has been used from too many distinct addresses.
func (t *SessionTracker) Touch(ctx context.Context, sid, ip string) error {
	vals, err := t.rdb.HGetAll(ctx, t.metaKey(sid)).Result()
	if err != nil {
		return err
	}
	if len(vals) == 0 {
		return ErrSessionExpired
	}

	var lastSeen int64
	if _, err := fmt.Sscanf(vals["last_seen"], "%d", &lastSeen); err != nil {
		return ErrSessionExpired
	}
	if time.Since(time.Unix(lastSeen, 0)) > t.idleTimeout {
		return ErrSessionIdle
	}

	if err := t.rdb.SAdd(ctx, t.ipsKey(sid), ip).Err(); err != nil {
		return err
	}
	n, err := t.rdb.SCard(ctx, t.ipsKey(sid)).Result()
	if err != nil {
		return err
	}
	if int(n) > t.maxIPs {
		return ErrTooManyIPs
	}

	return t.rdb.HSet(ctx, t.metaKey(sid), "last_seen", time.Now().Unix()).Err()
}

// End drops the session state.
func (t *SessionTracker) End(ctx context.Context, sid string) error {
	return t.rdb.Del(ctx, t.metaKey(sid), t.ipsKey(sid)).Err()
}

// Info returns login time, last-seen time and the IP history of a session.
func (t *SessionTracker) Info(ctx context.Context, sid string) (loginAt, lastSeen time.Time, ips []string, err error) {
	vals, err := t.rdb.HGetAll(ctx, t.metaKey(sid)).Result()
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	if len(vals) == 0 {
		return time.Time{}, time.Time{}, nil, ErrSessionExpired
	}
	var login, seen int64
	fmt.Sscanf(vals["login_at"], "%d", &login)
	fmt.Sscanf(vals["last_seen"], "%d", &seen)
	ips, err = t.rdb.SMembers(ctx, t.ipsKey(sid)).Result()
	if err != nil {
		return time.Time{}, time.Time{}, nil, err
	}
	return time.Unix(login, 0), time.Unix(seen, 0), ips, nil
}
