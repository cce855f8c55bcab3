package world

import "spacecore/internal/model"

// SaveCharacter :
// Inserts or overwrites a character record. Idempotent by
// `character_id` (§4.1).
func (r *Repository) SaveCharacter(c model.Character) {
	r.charactersLock.Lock()
	defer r.charactersLock.Unlock()
	r.characters[c.CharacterID] = c
}

// LoadCharacter :
// Fetches a character by id.
func (r *Repository) LoadCharacter(characterID string) (model.Character, error) {
	r.charactersLock.RLock()
	defer r.charactersLock.RUnlock()
	c, ok := r.characters[characterID]
	if !ok {
		return model.Character{}, &NotFoundError{Entity: "character", ID: characterID}
	}
	return c, nil
}

// ExistsCharacter :
func (r *Repository) ExistsCharacter(characterID string) bool {
	r.charactersLock.RLock()
	defer r.charactersLock.RUnlock()
	_, ok := r.characters[characterID]
	return ok
}

// UpdateCharacter :
// Reads the current record, applies `mutate`, and writes the result
// back under the same critical section, giving callers an
// update_field(s) primitive without exposing the storage mutex.
func (r *Repository) UpdateCharacter(characterID string, mutate func(*model.Character)) error {
	r.charactersLock.Lock()
	defer r.charactersLock.Unlock()
	c, ok := r.characters[characterID]
	if !ok {
		return &NotFoundError{Entity: "character", ID: characterID}
	}
	mutate(&c)
	r.characters[characterID] = c
	return nil
}

// ListCharactersBySector :
// Returns every non-hyperspace-excluded character currently recorded
// in `sectorID`. Used to seed SectorIndex and to resolve
// `SectorOccupants` filters.
func (r *Repository) ListCharactersBySector(sectorID string) []model.Character {
	r.charactersLock.RLock()
	defer r.charactersLock.RUnlock()
	var out []model.Character
	for _, c := range r.characters {
		if c.SectorID == sectorID {
			out = append(out, c)
		}
	}
	return out
}

// ListCharactersByCorporation :
func (r *Repository) ListCharactersByCorporation(corpID string) []model.Character {
	r.charactersLock.RLock()
	defer r.charactersLock.RUnlock()
	var out []model.Character
	for _, c := range r.characters {
		if c.CorporationID == corpID {
			out = append(out, c)
		}
	}
	return out
}

// SaveKnowledge :
func (r *Repository) SaveKnowledge(k *model.Knowledge) {
	r.knowledgeLock.Lock()
	defer r.knowledgeLock.Unlock()
	r.knowledge[k.CharacterID] = k
}

// LoadKnowledge :
// Returns the character's knowledge record, creating an empty one on
// first access so callers never have to special-case a brand new
// character (mirrors `NewKnowledge` being called at `join` time).
func (r *Repository) LoadKnowledge(characterID string) *model.Knowledge {
	r.knowledgeLock.Lock()
	defer r.knowledgeLock.Unlock()
	k, ok := r.knowledge[characterID]
	if !ok {
		k = model.NewKnowledge(characterID)
		r.knowledge[characterID] = k
	}
	return k
}
