// Package lock serialises work on a single auction item.  Request paths
// wait for the lock with Acquire; sweeps use TryAcquire and skip busy
// items until their next run.
package lock

import (
	"context"
	"errors"
	"strconv"
)

// ErrNotAcquired is returned when the lock is held elsewhere.
var ErrNotAcquired = errors.New("lock: not acquired")

// Release gives the lock back.  It is safe to call once.
type Release func()

// Locker hands out exclusive, named locks.
type Locker interface {
	// TryAcquire takes the lock or returns ErrNotAcquired at once.
	TryAcquire(ctx context.Context, key string) (Release, error)
	// Acquire waits until the lock is free or ctx is done.
	Acquire(ctx context.Context, key string) (Release, error)
}

// ItemKey names the lock guarding one auction item.
func ItemKey(itemID uint64) string {
	return "lock:item:" + strconv.FormatUint(itemID, 10)
}

// PlayerKey names the lock taken while a player is being nominated.
func PlayerKey(playerID uint64) string {
	return "lock:player:" + strconv.FormatUint(playerID, 10)
}

// MainAuctionKey guards lazy creation of the main auction.
const MainAuctionKey = "lock:auction:main"
