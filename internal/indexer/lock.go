package indexer

import "sync/atomic"

// rebuildLock provides non-blocking single-flight semantics for rebuilds
// using atomic operations: a second Start observes the held lock and is
// rejected instead of queued.
type rebuildLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking.
// Returns true if the lock was successfully acquired, false otherwise.
func (l *rebuildLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock.
// Must only be called by the goroutine that successfully acquired it.
func (l *rebuildLock) Release() {
	l.state.Store(0)
}
