// Package world implements the authoritative store for every entity
// named in the data model: characters, ships, sectors, ports,
// garrisons, salvage containers and corporations (§4.1).
//
// The repository itself never synthesizes events and never acquires
// `pkg/locker` keys — callers (CommandDispatcher, CombatManager,
// RoundResolver) are responsible for holding the relevant lock for
// the duration of a read-modify-write sequence. What the repository
// DOES guarantee on its own is read-your-writes and per-entity serial
// order for the storage operations themselves, via one `sync.RWMutex`
// per entity table, mirroring the way the teacher's `Proxy` types each
// wrap a single table behind their own synchronization rather than a
// single database-wide lock.
package world

import (
	"fmt"
	"sync"

	"spacecore/internal/model"
)

// NotFoundError :
// Returned by `load`/`update` style calls when the requested primary
// key does not exist, letting CommandDispatcher translate it to the
// normative 404 (§6).
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ConflictError :
// Returned when a mutation would violate a §3 uniqueness invariant,
// e.g. two garrisons of different owners in one sector.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// Repository :
// The in-memory world store. Every table is guarded by its own
// mutex so that unrelated entities never contend, while reads and
// writes against the same table observe a consistent, serialized
// order (§4.1's "per-entity serial order" requirement).
type Repository struct {
	charactersLock sync.RWMutex
	characters     map[string]model.Character

	knowledgeLock sync.RWMutex
	knowledge     map[string]*model.Knowledge

	shipsLock sync.RWMutex
	ships     map[string]model.Ship

	sectorsLock sync.RWMutex
	sectors     map[string]model.Sector

	portsLock sync.RWMutex
	ports     map[string]model.Port

	garrisonsLock sync.RWMutex
	garrisons     map[string]model.Garrison // keyed by sector_id

	salvageLock sync.RWMutex
	salvage     map[string]model.SalvageContainer

	corpsLock sync.RWMutex
	corps     map[string]model.Corporation
}

// New :
// Builds an empty repository. Sector topology is expected to be
// seeded once at startup from the external universe generator named
// out of scope in §1.
func New() *Repository {
	return &Repository{
		characters: make(map[string]model.Character),
		knowledge:  make(map[string]*model.Knowledge),
		ships:      make(map[string]model.Ship),
		sectors:    make(map[string]model.Sector),
		ports:      make(map[string]model.Port),
		garrisons:  make(map[string]model.Garrison),
		salvage:    make(map[string]model.SalvageContainer),
		corps:      make(map[string]model.Corporation),
	}
}

// Reset :
// Clears every table. Backs the admin `test_reset` command (§4.8),
// which is only reachable under a test feature flag.
func (r *Repository) Reset() {
	r.charactersLock.Lock()
	r.characters = make(map[string]model.Character)
	r.charactersLock.Unlock()

	r.knowledgeLock.Lock()
	r.knowledge = make(map[string]*model.Knowledge)
	r.knowledgeLock.Unlock()

	r.shipsLock.Lock()
	r.ships = make(map[string]model.Ship)
	r.shipsLock.Unlock()

	r.portsLock.Lock()
	r.ports = make(map[string]model.Port)
	r.portsLock.Unlock()

	r.garrisonsLock.Lock()
	r.garrisons = make(map[string]model.Garrison)
	r.garrisonsLock.Unlock()

	r.salvageLock.Lock()
	r.salvage = make(map[string]model.SalvageContainer)
	r.salvageLock.Unlock()

	r.corpsLock.Lock()
	r.corps = make(map[string]model.Corporation)
	r.corpsLock.Unlock()

	// Sector topology survives reset: it is read-only reference data
	// seeded from the external universe generator, not gameplay state.
}
