// Package concurrency provides the per-player serialization the
// crafting pipeline relies on.
package concurrency

import (
	"sync"
)

// LockManager hands out one mutex per player so all of a player's craft
// attempts serialize while different players proceed fully in parallel.
// Locks are created on first use and never evicted; each entry is a
// bare mutex.
type LockManager struct {
	players sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// PlayerLock returns the mutex serializing the given player's attempts.
// Every call with the same player id returns the same mutex.
func (lm *LockManager) PlayerLock(playerID string) *sync.Mutex {
	lock, _ := lm.players.LoadOrStore(playerID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
