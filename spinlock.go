package pram

import (
	"runtime"
	"sync/atomic"
)

// TATASLock is a test-and-test-and-set spin lock: waiters spin on a plain
// read of the flag and only attempt the atomic compare-and-swap once that
// read suggests the lock is free, avoiding the cache-line ping-pong of a
// naive test-and-set spin lock under contention. It implements
// sync.Locker, so it is a drop-in substitute for sync.Mutex wherever a
// node-level lock benefits from not parking the goroutine.
type TATASLock struct {
	locked atomic.Bool
}

// Lock blocks until the lock is acquired.
func (l *TATASLock) Lock() {
	for {
		for l.locked.Load() {
			runtime.Gosched()
		}
		if l.locked.CompareAndSwap(false, true) {
			return
		}
	}
}

// TryLock attempts to acquire the lock without blocking.
func (l *TATASLock) TryLock() bool {
	return !l.locked.Load() && l.locked.CompareAndSwap(false, true)
}

// Unlock releases the lock. Unlocking an already-unlocked TATASLock is a
// programmer error and is not detected.
func (l *TATASLock) Unlock() {
	l.locked.Store(false)
}
