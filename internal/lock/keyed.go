// Package lock provides in-process mutual exclusion keyed by string.
// The booking flow serializes create/lock attempts per parking bay
// with it, closing the check-then-act window between the availability
// check and the reservation insert.
package lock

import (
	"context"
	"sync"
)

// Keyed is a queued mutex per key.  A caller acquiring a key that is
// already held waits until the in-flight holder releases, then
// proceeds with its own attempt – results are not shared between
// waiters.  Keys are removed once their queue drains, so a past
// failure on a key never affects later independent operations.
type Keyed struct {
	mu    sync.Mutex
	entry map[string]*keyEntry
}

type keyEntry struct {
	sem  chan struct{} // capacity 1; holding a token = holding the key
	refs int           // holders + waiters, for map cleanup
}

// NewKeyed returns an empty lock table.
func NewKeyed() *Keyed {
	return &Keyed{entry: make(map[string]*keyEntry)}
}

// Acquire blocks until the key is free or ctx is done.  On success
// it returns a release function that must be called on every exit
// path; releasing more than once is a no-op.
func (k *Keyed) Acquire(ctx context.Context, key string) (release func(), err error) {
	k.mu.Lock()
	e, ok := k.entry[key]
	if !ok {
		e = &keyEntry{sem: make(chan struct{}, 1)}
		k.entry[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.unref(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.unref(key, e)
		})
	}, nil
}

func (k *Keyed) unref(key string, e *keyEntry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.entry, key)
	}
	k.mu.Unlock()
}
