package scheduler

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sweepLockKey = "ingest:sweep:lock"
	sweepLockTTL = 10 * time.Minute
)

// SweepLock serializes ingestion sweeps across processes. Two overlapping
// sweeps would both see the same unlinked messages and race the
// deduplication lookups, so a sweep that cannot take the lock skips its
// turn instead.
type SweepLock struct {
	client *redis.Client
	token  string
}

func NewSweepLock(client *redis.Client, token string) *SweepLock {
	return &SweepLock{client: client, token: token}
}

// Acquire takes the lock if it is free. The TTL covers a crashed holder.
func (l *SweepLock) Acquire(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, sweepLockKey, l.token, sweepLockTTL).Result()
}

// Release frees the lock only if this holder still owns it.
func (l *SweepLock) Release(ctx context.Context) error {
	const script = `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`
	return l.client.Eval(ctx, script, []string{sweepLockKey}, l.token).Err()
}
