package world

import "spacecore/internal/model"

// SaveShip :
func (r *Repository) SaveShip(s model.Ship) {
	r.shipsLock.Lock()
	defer r.shipsLock.Unlock()
	r.ships[s.ShipID] = s
}

// LoadShip :
func (r *Repository) LoadShip(shipID string) (model.Ship, error) {
	r.shipsLock.RLock()
	defer r.shipsLock.RUnlock()
	s, ok := r.ships[shipID]
	if !ok {
		return model.Ship{}, &NotFoundError{Entity: "ship", ID: shipID}
	}
	return s, nil
}

// ExistsShip :
func (r *Repository) ExistsShip(shipID string) bool {
	r.shipsLock.RLock()
	defer r.shipsLock.RUnlock()
	_, ok := r.ships[shipID]
	return ok
}

// UpdateShip :
func (r *Repository) UpdateShip(shipID string, mutate func(*model.Ship)) error {
	r.shipsLock.Lock()
	defer r.shipsLock.Unlock()
	s, ok := r.ships[shipID]
	if !ok {
		return &NotFoundError{Entity: "ship", ID: shipID}
	}
	mutate(&s)
	r.ships[shipID] = s
	return nil
}

// ListShipsByOwner :
// `ownerID` is a character_id or a corp_id depending on `kind`.
func (r *Repository) ListShipsByOwner(ownerKind model.OwnerKind, ownerID string) []model.Ship {
	r.shipsLock.RLock()
	defer r.shipsLock.RUnlock()
	var out []model.Ship
	for _, s := range r.ships {
		if s.OwnerKind == ownerKind && s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	return out
}
