package world

import "spacecore/internal/model"

// SaveCorporation :
func (r *Repository) SaveCorporation(c *model.Corporation) {
	r.corpsLock.Lock()
	defer r.corpsLock.Unlock()
	r.corps[c.CorpID] = *c
}

// LoadCorporation :
func (r *Repository) LoadCorporation(corpID string) (model.Corporation, error) {
	r.corpsLock.RLock()
	defer r.corpsLock.RUnlock()
	c, ok := r.corps[corpID]
	if !ok {
		return model.Corporation{}, &NotFoundError{Entity: "corporation", ID: corpID}
	}
	return c, nil
}

// ExistsCorporation :
func (r *Repository) ExistsCorporation(corpID string) bool {
	r.corpsLock.RLock()
	defer r.corpsLock.RUnlock()
	_, ok := r.corps[corpID]
	return ok
}

// FindCorporationByInviteCode :
func (r *Repository) FindCorporationByInviteCode(code string) (model.Corporation, bool) {
	r.corpsLock.RLock()
	defer r.corpsLock.RUnlock()
	for _, c := range r.corps {
		if c.InviteCode == code {
			return c, true
		}
	}
	return model.Corporation{}, false
}

// UpdateCorporation :
func (r *Repository) UpdateCorporation(corpID string, mutate func(*model.Corporation)) error {
	r.corpsLock.Lock()
	defer r.corpsLock.Unlock()
	c, ok := r.corps[corpID]
	if !ok {
		return &NotFoundError{Entity: "corporation", ID: corpID}
	}
	mutate(&c)
	r.corps[corpID] = c
	return nil
}

// DeleteCorporation :
// Used by `corporation_disband` (§4.8); callers are responsible for
// abandoning the corporation's ships and clearing members' dangling
// `corporation_id` beforehand.
func (r *Repository) DeleteCorporation(corpID string) {
	r.corpsLock.Lock()
	defer r.corpsLock.Unlock()
	delete(r.corps, corpID)
}

// ListCorporations :
func (r *Repository) ListCorporations() []model.Corporation {
	r.corpsLock.RLock()
	defer r.corpsLock.RUnlock()
	out := make([]model.Corporation, 0, len(r.corps))
	for _, c := range r.corps {
		out = append(out, c)
	}
	return out
}
