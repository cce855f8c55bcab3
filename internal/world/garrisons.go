package world

import "spacecore/internal/model"

// SaveGarrison :
// Deploys or overwrites the garrison of `g.SectorID`. Enforces the
// §3 sector rule: a sector holds at most one garrison, belonging to a
// single owner. Deploying while a different owner's garrison already
// stands in that sector is rejected with `ConflictError`.
func (r *Repository) SaveGarrison(g model.Garrison) error {
	r.garrisonsLock.Lock()
	defer r.garrisonsLock.Unlock()
	if existing, ok := r.garrisons[g.SectorID]; ok && existing.OwnerID != g.OwnerID {
		return &ConflictError{Reason: "sector already holds a garrison belonging to another owner"}
	}
	r.garrisons[g.SectorID] = g
	return nil
}

// LoadGarrison :
func (r *Repository) LoadGarrison(sectorID string) (model.Garrison, error) {
	r.garrisonsLock.RLock()
	defer r.garrisonsLock.RUnlock()
	g, ok := r.garrisons[sectorID]
	if !ok {
		return model.Garrison{}, &NotFoundError{Entity: "garrison", ID: sectorID}
	}
	return g, nil
}

// ExistsGarrison :
func (r *Repository) ExistsGarrison(sectorID string) bool {
	r.garrisonsLock.RLock()
	defer r.garrisonsLock.RUnlock()
	_, ok := r.garrisons[sectorID]
	return ok
}

// UpdateGarrison :
func (r *Repository) UpdateGarrison(sectorID string, mutate func(*model.Garrison)) error {
	r.garrisonsLock.Lock()
	defer r.garrisonsLock.Unlock()
	g, ok := r.garrisons[sectorID]
	if !ok {
		return &NotFoundError{Entity: "garrison", ID: sectorID}
	}
	mutate(&g)
	r.garrisons[sectorID] = g
	return nil
}

// DeleteGarrison :
// Removed when fighters reach 0 or the owner collects every fighter
// (§3 lifecycle), and while a garrison is a live combat participant
// (§9 design note: the reference implementation pulls garrisons out
// of the sector map for the duration of an encounter).
func (r *Repository) DeleteGarrison(sectorID string) {
	r.garrisonsLock.Lock()
	defer r.garrisonsLock.Unlock()
	delete(r.garrisons, sectorID)
}

// ListGarrisonsByOwner :
func (r *Repository) ListGarrisonsByOwner(ownerID string) []model.Garrison {
	r.garrisonsLock.RLock()
	defer r.garrisonsLock.RUnlock()
	var out []model.Garrison
	for _, g := range r.garrisons {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	return out
}
