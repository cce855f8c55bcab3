package world

import "spacecore/internal/model"

// SaveSalvage :
func (r *Repository) SaveSalvage(s model.SalvageContainer) {
	r.salvageLock.Lock()
	defer r.salvageLock.Unlock()
	r.salvage[s.SalvageID] = s
}

// LoadSalvage :
func (r *Repository) LoadSalvage(salvageID string) (model.SalvageContainer, error) {
	r.salvageLock.RLock()
	defer r.salvageLock.RUnlock()
	s, ok := r.salvage[salvageID]
	if !ok {
		return model.SalvageContainer{}, &NotFoundError{Entity: "salvage", ID: salvageID}
	}
	return s, nil
}

// ExistsSalvage :
func (r *Repository) ExistsSalvage(salvageID string) bool {
	r.salvageLock.RLock()
	defer r.salvageLock.RUnlock()
	_, ok := r.salvage[salvageID]
	return ok
}

// DeleteSalvage :
// Removed on collection, or swept on expiry by whatever periodic
// task owns that sweep (outside the core's combat deadline
// scheduler, per §3 lifecycle).
func (r *Repository) DeleteSalvage(salvageID string) {
	r.salvageLock.Lock()
	defer r.salvageLock.Unlock()
	delete(r.salvage, salvageID)
}

// ListSalvageBySector :
func (r *Repository) ListSalvageBySector(sectorID string) []model.SalvageContainer {
	r.salvageLock.RLock()
	defer r.salvageLock.RUnlock()
	var out []model.SalvageContainer
	for _, s := range r.salvage {
		if s.SectorID == sectorID {
			out = append(out, s)
		}
	}
	return out
}

// SweepExpiredSalvage :
// Deletes every salvage container for which `expired` reports true
// and returns them, so the caller can emit the corresponding
// `sector.update` events.
func (r *Repository) SweepExpiredSalvage(expired func(model.SalvageContainer) bool) []model.SalvageContainer {
	r.salvageLock.Lock()
	defer r.salvageLock.Unlock()
	var out []model.SalvageContainer
	for id, s := range r.salvage {
		if expired(s) {
			out = append(out, s)
			delete(r.salvage, id)
		}
	}
	return out
}
