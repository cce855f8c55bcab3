package dispatch

import "spacecore/internal/model"

// authorizeControl :
// Implements §4.8's authorization step for commands issued "as"
// `characterID`: either `actorID` is that character itself, or
// `characterID` names a corporation-owned ship puppet and `actorID`
// is a member of the owning corporation (corp-ship control).
func (d *Dispatcher) authorizeControl(actorID, characterID string) error {
	if actorID == characterID {
		return nil
	}

	target, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return translate(err)
	}
	if target.Kind != model.KindCorporationShip || target.CorporationID == "" {
		return newFault(403, "forbidden", "actor does not control this character")
	}

	actor, err := d.world.LoadCharacter(actorID)
	if err != nil {
		return translate(err)
	}
	if actor.CorporationID == "" || actor.CorporationID != target.CorporationID {
		return newFault(403, "forbidden", "actor is not a member of the corporation owning this ship")
	}
	return nil
}

// authorizeAdmin :
// Validates an admin secret against the configured password (§4.8
// admin-only commands). An empty configured password refuses every
// admin request rather than treating it as "no password required".
func (d *Dispatcher) authorizeAdmin(secret string) error {
	if d.cfg.AdminPassword == "" || secret != d.cfg.AdminPassword {
		return newFault(403, "forbidden", "invalid admin credentials")
	}
	return nil
}
