package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWindowLimiterAdmitsUpToMax(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiterWithClock(3, time.Minute, func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("request %d should be admitted", i+1)
		}
		if d.Remaining != 3-(i+1) {
			t.Fatalf("request %d: remaining = %d, want %d", i+1, d.Remaining, 3-(i+1))
		}
	}

	d, err := limiter.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatalf("fourth request should be rejected")
	}
	if !d.ResetAt.Equal(now.Add(time.Minute)) {
		t.Fatalf("resetAt = %v, want %v", d.ResetAt, now.Add(time.Minute))
	}
}

func TestWindowLimiterSlidesForward(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	limiter := NewWindowLimiterWithClock(2, time.Minute, func() time.Time { return now })
	ctx := context.Background()

	limiter.Allow(ctx, "client")
	limiter.Allow(ctx, "client")
	if d, _ := limiter.Allow(ctx, "client"); d.Allowed {
		t.Fatalf("expected rejection inside window")
	}

	now = now.Add(61 * time.Second)
	if d, _ := limiter.Allow(ctx, "client"); !d.Allowed {
		t.Fatalf("expected admission after window passed")
	}
}

func TestWindowLimiterIsolatesClients(t *testing.T) {
	limiter := NewWindowLimiter(1, time.Minute)
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "a"); !d.Allowed {
		t.Fatalf("client a should be admitted")
	}
	if d, _ := limiter.Allow(ctx, "b"); !d.Allowed {
		t.Fatalf("client b has its own budget")
	}
	if d, _ := limiter.Allow(ctx, "a"); d.Allowed {
		t.Fatalf("client a exhausted its budget")
	}
}
