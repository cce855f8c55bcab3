// Package sectorindex maintains the live view of who/what occupies
// each sector (§4.5): a cached `sector_id -> record` map updated
// synchronously by CommandDispatcher/CombatManager whenever a
// character moves, joins, disconnects, or a garrison/salvage
// mutates. Each sector's record is swapped wholesale (copy-on-write)
// rather than mutated in place, so a reader holding a reference to an
// old record never observes a half-written one; only the top-level
// registry of sectors needs an ordinary mutex, and only on a given
// sector's first touch.
package sectorindex

import (
	"sync"
	"sync/atomic"

	"spacecore/internal/model"
)

// Record :
// The occupancy snapshot for a single sector. Treated as immutable
// once published; every update builds a new Record and swaps it in.
type Record struct {
	SectorID     string
	Characters   map[string]struct{}
	Garrison     *model.Garrison
	SalvageIDs   map[string]struct{}
	PortSnapshot *model.Port
}

func emptyRecord(sectorID string) *Record {
	return &Record{
		SectorID:   sectorID,
		Characters: make(map[string]struct{}),
		SalvageIDs: make(map[string]struct{}),
	}
}

func (r *Record) clone() *Record {
	clone := &Record{
		SectorID:     r.SectorID,
		Characters:   make(map[string]struct{}, len(r.Characters)),
		SalvageIDs:   make(map[string]struct{}, len(r.SalvageIDs)),
		Garrison:     r.Garrison,
		PortSnapshot: r.PortSnapshot,
	}
	for id := range r.Characters {
		clone.Characters[id] = struct{}{}
	}
	for id := range r.SalvageIDs {
		clone.SalvageIDs[id] = struct{}{}
	}
	return clone
}

// Index :
// A registry of per-sector record slots. `registryLock` only guards
// the act of registering a brand new sector; reading or publishing a
// sector's current record never takes it.
type Index struct {
	registryLock sync.Mutex
	sectors      sync.Map // sector_id -> *atomic.Pointer[Record]
}

// New :
func New() *Index {
	return &Index{}
}

func (idx *Index) slot(sectorID string) *atomic.Pointer[Record] {
	if slot, ok := idx.sectors.Load(sectorID); ok {
		return slot.(*atomic.Pointer[Record])
	}
	idx.registryLock.Lock()
	defer idx.registryLock.Unlock()
	if slot, ok := idx.sectors.Load(sectorID); ok {
		return slot.(*atomic.Pointer[Record])
	}
	slot := &atomic.Pointer[Record]{}
	slot.Store(emptyRecord(sectorID))
	idx.sectors.Store(sectorID, slot)
	return slot
}

// Get :
// Returns the current snapshot for a sector. Never returns nil; an
// unseen sector reports an empty record.
func (idx *Index) Get(sectorID string) *Record {
	return idx.slot(sectorID).Load()
}

// update applies `fn` to a clone of the current record and publishes
// the result, retrying if a concurrent writer raced it (optimistic
// copy-on-write). In practice callers already hold the sector's
// dispatch-level lock, so the retry loop never spins more than once.
func (idx *Index) update(sectorID string, fn func(*Record)) {
	slot := idx.slot(sectorID)
	for {
		current := slot.Load()
		next := current.clone()
		fn(next)
		if slot.CompareAndSwap(current, next) {
			return
		}
	}
}

// AddCharacter :
func (idx *Index) AddCharacter(sectorID, characterID string) {
	idx.update(sectorID, func(r *Record) {
		r.Characters[characterID] = struct{}{}
	})
}

// RemoveCharacter :
func (idx *Index) RemoveCharacter(sectorID, characterID string) {
	idx.update(sectorID, func(r *Record) {
		delete(r.Characters, characterID)
	})
}

// SetGarrison :
// Pass nil to clear the sector's garrison (removed on defeat, or
// pulled out for the duration of a live encounter per §9).
func (idx *Index) SetGarrison(sectorID string, g *model.Garrison) {
	idx.update(sectorID, func(r *Record) {
		r.Garrison = g
	})
}

// AddSalvage :
func (idx *Index) AddSalvage(sectorID, salvageID string) {
	idx.update(sectorID, func(r *Record) {
		r.SalvageIDs[salvageID] = struct{}{}
	})
}

// RemoveSalvage :
func (idx *Index) RemoveSalvage(sectorID, salvageID string) {
	idx.update(sectorID, func(r *Record) {
		delete(r.SalvageIDs, salvageID)
	})
}

// SetPortSnapshot :
func (idx *Index) SetPortSnapshot(sectorID string, p *model.Port) {
	idx.update(sectorID, func(r *Record) {
		r.PortSnapshot = p
	})
}

// CharacterIDs :
// Returns the sector's current occupant list, used to resolve the
// `SectorOccupants` event filter (§3).
func (r *Record) CharacterIDs(exclude string) []string {
	out := make([]string, 0, len(r.Characters))
	for id := range r.Characters {
		if id == exclude {
			continue
		}
		out = append(out, id)
	}
	return out
}

// SalvageIDList :
// Returns the sector's current salvage container IDs, used to
// populate `sector.update` payloads.
func (r *Record) SalvageIDList() []string {
	out := make([]string, 0, len(r.SalvageIDs))
	for id := range r.SalvageIDs {
		out = append(out, id)
	}
	return out
}
