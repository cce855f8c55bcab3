package combat

import "spacecore/internal/model"

// garrisonDecision :
// Synthesizes the action a garrison takes when nobody submits one on
// its behalf, per the mode rules in §4.7 step 1. Mode and owner travel
// on the combatant itself (its WorldRepository record was deleted at
// capture time).
func garrisonDecision(enc *model.Encounter, garrisonID string) model.Action {
	self := enc.Participants[garrisonID]
	mode, ownerID := self.GarrisonMode, self.GarrisonOwnerID
	switch mode {
	case model.GarrisonOffensive:
		target := mostFightersNotOwnedBy(enc, ownerID)
		if target == "" {
			return model.Action{Kind: model.ActionBrace}
		}
		commit := int(float64(self.Fighters) * GarrisonBurst)
		if commit <= 0 {
			commit = self.Fighters
		}
		if commit > self.Fighters {
			commit = self.Fighters
		}
		return model.Action{Kind: model.ActionAttack, TargetID: target, Commit: commit}

	case model.GarrisonDefensive:
		if attacker := attackerAgainst(enc, garrisonID, ownerID); attacker != "" {
			return model.Action{Kind: model.ActionAttack, TargetID: attacker, Commit: self.Fighters}
		}
		return model.Action{Kind: model.ActionBrace}

	case model.GarrisonToll:
		// `pay` is handled as a fast-path before normalization ever
		// runs (§4.6); by the time we get here the sole non-owner
		// either didn't pay or there is more than one non-owner
		// present, so the garrison behaves as offensive against them.
		target := mostFightersNotOwnedBy(enc, ownerID)
		if target == "" {
			return model.Action{Kind: model.ActionBrace}
		}
		commit := int(float64(self.Fighters) * GarrisonBurst)
		if commit <= 0 {
			commit = self.Fighters
		}
		return model.Action{Kind: model.ActionAttack, TargetID: target, Commit: commit}
	}
	return model.Action{Kind: model.ActionBrace}
}

func mostFightersNotOwnedBy(enc *model.Encounter, ownerID string) string {
	best := ""
	bestFighters := -1
	for id, c := range enc.Participants {
		if c.Defeated() || c.OwnerCharacterID == ownerID || c.OwnerCharacterID == "" {
			continue
		}
		if c.Fighters > bestFighters {
			bestFighters = c.Fighters
			best = id
		}
	}
	return best
}

func attackerAgainst(enc *model.Encounter, garrisonID, ownerID string) string {
	for actorID, action := range enc.PendingActions {
		if action.Kind != model.ActionAttack || action.TargetID != garrisonID {
			continue
		}
		if actor, ok := enc.Participants[actorID]; ok && actor.OwnerCharacterID != ownerID {
			return actorID
		}
	}
	return ""
}
