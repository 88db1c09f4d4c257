package middleware

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCircuitBreakerTripsAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("mail", 2, 20*time.Millisecond)
	ctx := context.Background()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		if err := cb.Call(ctx, func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected boom, got %v", i, err)
		}
	}
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after %d failures, got %v", 2, cb.GetState())
	}

	if err := cb.Call(ctx, func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen while tripped, got %v", err)
	}

	time.Sleep(25 * time.Millisecond)

	// first probe succeeds, breaker closes again
	if err := cb.Call(ctx, func() error { return nil }); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %v", cb.GetState())
	}
}

func TestCircuitBreakerReopensOnProbeFailure(t *testing.T) {
	cb := NewCircuitBreaker("mail", 1, 10*time.Millisecond)
	ctx := context.Background()

	_ = cb.Call(ctx, func() error { return errors.New("x") })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open, got %v", cb.GetState())
	}

	time.Sleep(15 * time.Millisecond)
	_ = cb.Call(ctx, func() error { return errors.New("still down") })
	if cb.GetState() != StateOpen {
		t.Fatalf("expected reopened after failed probe, got %v", cb.GetState())
	}
}

func TestTokenBucketExhaustsAndRefills(t *testing.T) {
	tb := NewTokenBucket(2, 100)
	ctx := context.Background()

	if !tb.Allow(ctx) || !tb.Allow(ctx) {
		t.Fatalf("expected first two requests allowed")
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected bucket exhausted")
	}

	time.Sleep(30 * time.Millisecond) // 100/s refill
	if !tb.Allow(ctx) {
		t.Fatalf("expected refill to allow again")
	}
}

func TestSlidingWindowLimit(t *testing.T) {
	sw := NewSlidingWindow(50*time.Millisecond, 2)
	ctx := context.Background()

	if !sw.Allow(ctx) || !sw.Allow(ctx) {
		t.Fatalf("expected two requests in window")
	}
	if sw.Allow(ctx) {
		t.Fatalf("expected third request rejected")
	}

	time.Sleep(60 * time.Millisecond)
	if !sw.Allow(ctx) {
		t.Fatalf("expected new window to allow")
	}
}

func TestPerKeyLimiterIsolatesKeys(t *testing.T) {
	p := NewPerKeyLimiter(1, 1)
	ctx := context.Background()

	if !p.Allow(ctx, "a") {
		t.Fatalf("expected key a allowed")
	}
	if p.Allow(ctx, "a") {
		t.Fatalf("expected key a exhausted")
	}
	if !p.Allow(ctx, "b") {
		t.Fatalf("expected key b unaffected")
	}
}
