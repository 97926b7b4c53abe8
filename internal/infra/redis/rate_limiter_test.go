package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func TestRateLimiterEnforcesWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRateLimiter(client, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "user-1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
		if d.Remaining != 3-(i+1) {
			t.Fatalf("request %d: expected remaining %d, got %d", i, 3-(i+1), d.Remaining)
		}
	}

	d, err := limiter.Allow(ctx, "user-1")
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if d.Allowed {
		t.Fatal("fourth request should be denied")
	}

	mr.FastForward(2 * time.Minute)

	d, err = limiter.Allow(ctx, "user-1")
	if err != nil {
		t.Fatalf("allow after window: %v", err)
	}
	if !d.Allowed {
		t.Fatal("request after window expiry should be allowed")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRateLimiter(client, 1, time.Minute)
	ctx := context.Background()

	if d, _ := limiter.Allow(ctx, "user-1"); !d.Allowed {
		t.Fatal("first request for user-1 should pass")
	}
	if d, _ := limiter.Allow(ctx, "user-1"); d.Allowed {
		t.Fatal("second request for user-1 should be denied")
	}
	if d, _ := limiter.Allow(ctx, "user-2"); !d.Allowed {
		t.Fatal("user-2 should have an independent budget")
	}
}
