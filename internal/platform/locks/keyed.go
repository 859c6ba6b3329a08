// Package locks provides per-key mutual exclusion.
//
// Mint, accrual, and withdrawal against a single drop must observe a
// linearized view of supply and bucket state. A process-wide lock would
// wrongly serialize unrelated drops, so each drop gets its own mutex,
// allocated lazily and never released (drop IDs are small monotonic integers;
// the map only grows with the drop table itself).
package locks

import "sync"

// Keyed hands out one mutex per key.
type Keyed[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*sync.Mutex
}

func NewKeyed[K comparable]() *Keyed[K] {
	return &Keyed[K]{locks: make(map[K]*sync.Mutex)}
}

// Lock acquires the mutex for key, blocking until it is free.
func (k *Keyed[K]) Lock(key K) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key.
func (k *Keyed[K]) Unlock(key K) {
	k.get(key).Unlock()
}

func (k *Keyed[K]) get(key K) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
