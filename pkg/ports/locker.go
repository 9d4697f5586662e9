package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes access to a session across processes.
// The session manager takes it on top of its in-process locks when replicas share a store.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lock expires after ttl even if the returned UnlockFunc is never called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
