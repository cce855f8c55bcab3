package world

import "spacecore/internal/model"

// SeedSector :
// Loads read-only topology for one sector. Called once at startup
// per sector by the external universe generator's adapter; the core
// never mutates `Adjacent`/`Planets` afterwards.
func (r *Repository) SeedSector(s model.Sector) {
	r.sectorsLock.Lock()
	defer r.sectorsLock.Unlock()
	r.sectors[s.SectorID] = s
}

// LoadSector :
func (r *Repository) LoadSector(sectorID string) (model.Sector, error) {
	r.sectorsLock.RLock()
	defer r.sectorsLock.RUnlock()
	s, ok := r.sectors[sectorID]
	if !ok {
		return model.Sector{}, &NotFoundError{Entity: "sector", ID: sectorID}
	}
	return s, nil
}

// ExistsSector :
func (r *Repository) ExistsSector(sectorID string) bool {
	r.sectorsLock.RLock()
	defer r.sectorsLock.RUnlock()
	_, ok := r.sectors[sectorID]
	return ok
}

// ListSectors :
// Returns every seeded sector, used by `plot_course`'s BFS since the
// core has no other view onto the external universe graph's topology.
func (r *Repository) ListSectors() []model.Sector {
	r.sectorsLock.RLock()
	defer r.sectorsLock.RUnlock()
	out := make([]model.Sector, 0, len(r.sectors))
	for _, s := range r.sectors {
		out = append(out, s)
	}
	return out
}

// SavePort :
func (r *Repository) SavePort(p model.Port) {
	r.portsLock.Lock()
	defer r.portsLock.Unlock()
	r.ports[p.SectorID] = p
}

// LoadPort :
func (r *Repository) LoadPort(sectorID string) (model.Port, error) {
	r.portsLock.RLock()
	defer r.portsLock.RUnlock()
	p, ok := r.ports[sectorID]
	if !ok {
		return model.Port{}, &NotFoundError{Entity: "port", ID: sectorID}
	}
	return p, nil
}

// ExistsPort :
func (r *Repository) ExistsPort(sectorID string) bool {
	r.portsLock.RLock()
	defer r.portsLock.RUnlock()
	_, ok := r.ports[sectorID]
	return ok
}

// UpdatePort :
// Applied under the port's own storage mutex; callers are still
// expected to hold `port:<sector_id>` from `pkg/locker` for the
// duration of a trade so that the price computed against `Stock`
// stays consistent with the write (§5).
func (r *Repository) UpdatePort(sectorID string, mutate func(*model.Port)) error {
	r.portsLock.Lock()
	defer r.portsLock.Unlock()
	p, ok := r.ports[sectorID]
	if !ok {
		return &NotFoundError{Entity: "port", ID: sectorID}
	}
	mutate(&p)
	r.ports[sectorID] = p
	return nil
}
