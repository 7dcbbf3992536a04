package scheduler

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestSweepLock_AcquireIsExclusive(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	first := NewSweepLock(client, "holder-a")
	second := NewSweepLock(client, "holder-b")

	ok, err := first.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected free lock to be acquired")
	}

	ok, err = second.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected held lock to refuse a second holder")
	}
}

func TestSweepLock_ReleaseFreesForReacquire(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	first := NewSweepLock(client, "holder-a")
	second := NewSweepLock(client, "holder-b")

	if ok, _ := first.Acquire(ctx); !ok {
		t.Fatal("setup: expected to acquire")
	}
	if err := first.Release(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := second.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected released lock to be acquirable")
	}
}

func TestSweepLock_ReleaseOnlyFreesOwnToken(t *testing.T) {
	client := newTestRedis(t)
	ctx := context.Background()

	holder := NewSweepLock(client, "holder-a")
	stale := NewSweepLock(client, "holder-stale")

	if ok, _ := holder.Acquire(ctx); !ok {
		t.Fatal("setup: expected to acquire")
	}

	// A holder whose TTL expired must not free the current holder's lock.
	if err := stale.Release(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := stale.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected lock to still be held by the original owner")
	}
}
