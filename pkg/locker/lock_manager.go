package locker

import (
	"fmt"
	"sort"
	"spacecore/pkg/logger"
	"sync"
)

// LockManager :
// Provides a keyed async mutex registry (§4.2 of the specification).
// Generalizes the teacher's `ConcurrentLocker`: instead of a small
// fixed-size pool of anonymous lockers reused across resources, this
// registry grows named mutexes on demand (`credit:<character_id>`,
// `combat:<sector_id>`, `port:<sector_id>`, `knowledge:<character_id>`)
// and garbage-collects them once nobody references the key anymore.
// The exclusivity mechanism itself (a buffered channel used as a
// binary semaphore, acquired/released explicitly rather than via
// `sync.Mutex`) is kept verbatim from the teacher, since it is what
// allows `Acquire` to hand back a lock whose actual critical section
// can be entered/exited independently of the registry's bookkeeping
// lock.
//
// The `registryLock` protects the bookkeeping maps below it from
// concurrent access; it is never held while waiting on a `namedLock`'s
// semaphore.
//
// The `locks` maps a resource key to the `namedLock` currently serving
// it.
//
// The `poolSize` bounds how many distinct keys may be registered at
// once; once saturated, `Acquire` for a brand new key blocks until an
// existing one is released and garbage-collected. This mirrors the
// teacher's configurable `Concurrent.LockCount`.
//
// The `cout` notifies acquire/release activity for debugging.
type LockManager struct {
	registryLock sync.Mutex
	locks        map[string]*namedLock
	poolSize     int
	inUse        int
	freed        chan struct{}
	cout         logger.Logger
}

// namedLock :
// A single entry in the registry: the resource it currently serves,
// how many callers currently hold a reference to it and the binary
// semaphore providing the actual mutual exclusion.
type namedLock struct {
	key    string
	use    int
	waiter chan struct{}
}

// Guard :
// A scoped handle on an acquired lock. Call `Release` exactly once
// to hand the resource back; releasing twice or never acquiring is a
// programming error the same way double-`Release` is in the teacher's
// `Lock.Release`.
type Guard struct {
	manager *LockManager
	lock    *namedLock
	key     string
}

// NewLockManager :
// Builds a lock manager with room for `poolSize` concurrently
// registered keys. A `poolSize` of 0 or less is treated as unbounded.
//
// Returns the created manager.
func NewLockManager(poolSize int, log logger.Logger) *LockManager {
	return &LockManager{
		locks:    make(map[string]*namedLock),
		poolSize: poolSize,
		freed:    make(chan struct{}, 1),
		cout:     log,
	}
}

// Acquire :
// Waits until the named resource is free and returns a scoped guard
// over it. Re-entering with the same key from the same goroutine
// without releasing first will deadlock (no reentrance, per §4.2) —
// this is a caller bug, not a condition this type detects.
//
// The `key` names the resource to lock, e.g. `credit:char-42`.
//
// Returns the acquired guard.
func (lm *LockManager) Acquire(key string) *Guard {
	for {
		lm.registryLock.Lock()
		l, ok := lm.locks[key]
		if ok {
			l.use++
			lm.registryLock.Unlock()
			l.waiter <- struct{}{}
			lm.cout.Trace(logger.Debug, "locker", fmt.Sprintf("acquired shared lock on %q (refs: %d)", key, l.use))
			return &Guard{manager: lm, lock: l, key: key}
		}

		if lm.poolSize > 0 && lm.inUse >= lm.poolSize {
			lm.registryLock.Unlock()
			<-lm.freed
			continue
		}

		l = &namedLock{key: key, use: 1, waiter: make(chan struct{}, 1)}
		lm.locks[key] = l
		lm.inUse++
		lm.registryLock.Unlock()

		l.waiter <- struct{}{}
		lm.cout.Trace(logger.Debug, "locker", fmt.Sprintf("created lock on %q (in use: %d)", key, lm.inUse))
		return &Guard{manager: lm, lock: l, key: key}
	}
}

// WithKeys :
// Acquires a set of locks in canonical (lexicographic) sort order so
// that concurrent multi-key acquisitions (e.g. a credit transfer
// between two characters) can never deadlock against each other.
//
// The `keys` defines the resources to acquire; duplicates are
// collapsed to a single acquisition.
//
// Returns the guards, in the same sorted order they were acquired
// in. Release them in reverse order (or in any order — release does
// not need to mirror acquire order for correctness, only the sort
// at acquire time matters for deadlock avoidance).
func (lm *LockManager) WithKeys(keys []string) []*Guard {
	unique := make(map[string]struct{}, len(keys))
	sorted := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, seen := unique[k]; seen {
			continue
		}
		unique[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	guards := make([]*Guard, 0, len(sorted))
	for _, k := range sorted {
		guards = append(guards, lm.Acquire(k))
	}
	return guards
}

// Release :
// Hands the resource back, allowing other waiters (or the lazily
// created lock itself) to proceed. Once no reference to the key
// remains, the entry is garbage-collected from the registry.
func (g *Guard) Release() {
	if g == nil || g.lock == nil {
		return
	}

	l := g.lock
	<-l.waiter

	lm := g.manager
	lm.registryLock.Lock()
	l.use--
	if l.use <= 0 {
		delete(lm.locks, g.key)
		lm.inUse--
		lm.registryLock.Unlock()

		select {
		case lm.freed <- struct{}{}:
		default:
		}
	} else {
		lm.registryLock.Unlock()
	}

	lm.cout.Trace(logger.Debug, "locker", fmt.Sprintf("released lock on %q", g.key))
	g.lock = nil
}

// ReleaseAll :
// Convenience helper releasing every guard returned by `WithKeys` in
// one call.
func ReleaseAll(guards []*Guard) {
	for _, g := range guards {
		g.Release()
	}
}
