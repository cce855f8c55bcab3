package dispatch

import (
	"spacecore/internal/events"
	"spacecore/internal/model"
)

// CombatInitiate :
// Implements §4.8 `combat_initiate`: starts (or merges the actor
// into) an encounter in the actor's current sector, capturing any
// garrison already stationed there.
func (d *Dispatcher) CombatInitiate(actorID, characterID string) (*model.Encounter, error) {
	if err := d.allow(actorID); err != nil {
		return nil, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return nil, err
	}

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return nil, translate(err)
	}
	var garrisonsToCapture []string
	if d.world.ExistsGarrison(character.SectorID) {
		garrisonsToCapture = []string{character.SectorID}
	}

	enc, err := d.combat.StartEncounter(character.SectorID, characterID, garrisonsToCapture, "manual")
	if err != nil {
		return nil, translate(err)
	}
	return enc, nil
}

// CombatAction :
// Implements §4.8 `combat_action`: submits one round's action for the
// acting character's own combatant.
func (d *Dispatcher) CombatAction(actorID, characterID string, round int, action model.Action) error {
	if err := d.allow(actorID); err != nil {
		return err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return err
	}

	enc, ok := d.combat.FindEncounterFor(characterID)
	if !ok {
		return newFault(404, "not_in_combat", "character is not a participant in any encounter")
	}
	if err := d.combat.SubmitAction(enc.CombatID, characterID, action, round); err != nil {
		return translate(err)
	}
	return nil
}

// CombatLeaveFighters :
// Implements §4.8 `combat_leave_fighters`: deploys (or reinforces) a
// garrison owned by the character in its current sector. Deploying in
// offensive mode with other characters present auto-engages them
// (§9 grounding: the reference implementation's
// `combat_leave_fighters` auto-attack-on-deploy).
func (d *Dispatcher) CombatLeaveFighters(actorID, characterID string, quantity int, mode model.GarrisonMode, tollAmount int) (events.GarrisonModePayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.GarrisonModePayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.GarrisonModePayload{}, err
	}
	if quantity <= 0 {
		return events.GarrisonModePayload{}, newFault(400, "invalid_quantity", "quantity must be positive")
	}
	if mode != model.GarrisonOffensive && mode != model.GarrisonDefensive && mode != model.GarrisonToll {
		return events.GarrisonModePayload{}, newFault(400, "invalid_mode", "unrecognized garrison mode")
	}
	if mode != model.GarrisonToll {
		tollAmount = 0
	}

	guard := d.locks.Acquire("character:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	if character.InHyperspace {
		return events.GarrisonModePayload{}, newFault(409, "in_hyperspace", "character is in hyperspace")
	}
	sectorID := character.SectorID

	existing, hadExisting := model.Garrison{}, false
	if g, err := d.world.LoadGarrison(sectorID); err == nil {
		if g.OwnerID != characterID {
			return events.GarrisonModePayload{}, newFault(409, "garrison_conflict", "sector already holds another player's garrison")
		}
		existing, hadExisting = g, true
	}

	ship, err := d.world.LoadShip(character.ShipID)
	if err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	if quantity > ship.State.Fighters {
		return events.GarrisonModePayload{}, newFault(400, "insufficient_fighters", "not enough fighters aboard to deploy")
	}

	newTotal := quantity
	tollBalance := 0
	if hadExisting {
		newTotal += existing.Fighters
		tollBalance = existing.TollBalance
	}

	if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) { s.State.Fighters -= quantity }); err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	garrison := model.Garrison{SectorID: sectorID, OwnerID: characterID, Fighters: newTotal, Mode: mode, TollAmount: tollAmount, TollBalance: tollBalance}
	if err := d.world.SaveGarrison(garrison); err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	d.index.SetGarrison(sectorID, &garrison)

	view := events.GarrisonView{OwnerID: garrison.OwnerID, Fighters: garrison.Fighters, Mode: string(garrison.Mode), TollAmount: garrison.TollAmount}
	payload := events.GarrisonModePayload{SectorID: sectorID, Garrison: view}
	d.bus.Emit(events.EventGarrisonDeployed, payload, "", events.CharacterList(characterID))
	d.emitSectorUpdate(sectorID, characterID)

	if mode == model.GarrisonOffensive && len(d.sectorOccupantIDs(sectorID, characterID)) > 0 {
		_, _ = d.combat.StartEncounter(sectorID, characterID, []string{sectorID}, "garrison_deploy_auto")
	}

	return payload, nil
}

// CombatCollectFighters :
// Implements §4.8 `combat_collect_fighters`: withdraws fighters (and
// any accrued toll balance) from the character's own garrison.
func (d *Dispatcher) CombatCollectFighters(actorID, characterID string, quantity int) (events.GarrisonModePayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.GarrisonModePayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.GarrisonModePayload{}, err
	}
	if quantity <= 0 {
		return events.GarrisonModePayload{}, newFault(400, "invalid_quantity", "quantity must be positive")
	}

	guard := d.locks.Acquire("character:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	if character.InHyperspace {
		return events.GarrisonModePayload{}, newFault(409, "in_hyperspace", "character is in hyperspace")
	}
	sectorID := character.SectorID

	garrison, err := d.world.LoadGarrison(sectorID)
	if err != nil || garrison.OwnerID != characterID {
		return events.GarrisonModePayload{}, newFault(404, "no_garrison", "no garrison found for character in this sector")
	}
	if quantity > garrison.Fighters {
		return events.GarrisonModePayload{}, newFault(400, "invalid_quantity", "cannot collect more fighters than stationed")
	}

	tollPayout := 0
	if garrison.Mode == model.GarrisonToll {
		tollPayout = garrison.TollBalance
	}
	remaining := garrison.Fighters - quantity

	var view events.GarrisonView
	if remaining > 0 {
		updated := model.Garrison{SectorID: sectorID, OwnerID: characterID, Fighters: remaining, Mode: garrison.Mode, TollAmount: garrison.TollAmount, TollBalance: 0}
		if err := d.world.SaveGarrison(updated); err != nil {
			return events.GarrisonModePayload{}, translate(err)
		}
		d.index.SetGarrison(sectorID, &updated)
		view = events.GarrisonView{OwnerID: updated.OwnerID, Fighters: updated.Fighters, Mode: string(updated.Mode), TollAmount: updated.TollAmount}
	} else {
		d.world.DeleteGarrison(sectorID)
		d.index.SetGarrison(sectorID, nil)
	}

	ship, err := d.world.LoadShip(character.ShipID)
	if err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	room := ship.State.MaxFighters - ship.State.Fighters
	credited := quantity
	if credited > room {
		credited = room
	}
	if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) { s.State.Fighters += credited }); err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	if tollPayout > 0 {
		if err := d.world.UpdateCharacter(characterID, func(c *model.Character) { c.CreditsOnHand += tollPayout }); err != nil {
			return events.GarrisonModePayload{}, translate(err)
		}
	}

	payload := events.GarrisonModePayload{SectorID: sectorID, Garrison: view}
	d.bus.Emit(events.EventGarrisonCollected, payload, "", events.CharacterList(characterID))
	d.emitSectorUpdate(sectorID, characterID)
	return payload, nil
}

// CombatSetGarrisonMode :
// Implements §4.8 `combat_set_garrison_mode`: changes the behavior
// policy of the character's own garrison. Switching into offensive or
// toll mode while other characters already occupy the sector raises a
// `garrison.combat_alert` to warn them, distinct from actually
// engaging combat.
func (d *Dispatcher) CombatSetGarrisonMode(actorID, characterID string, mode model.GarrisonMode, tollAmount int) (events.GarrisonModePayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.GarrisonModePayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.GarrisonModePayload{}, err
	}
	if mode != model.GarrisonOffensive && mode != model.GarrisonDefensive && mode != model.GarrisonToll {
		return events.GarrisonModePayload{}, newFault(400, "invalid_mode", "unrecognized garrison mode")
	}
	if mode != model.GarrisonToll {
		tollAmount = 0
	}

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	sectorID := character.SectorID

	guard := d.locks.Acquire("combat:" + sectorID)
	defer guard.Release()

	garrison, err := d.world.LoadGarrison(sectorID)
	if err != nil || garrison.OwnerID != characterID {
		return events.GarrisonModePayload{}, newFault(404, "no_garrison", "no garrison found for character in this sector")
	}
	if err := d.world.UpdateGarrison(sectorID, func(g *model.Garrison) {
		g.Mode = mode
		g.TollAmount = tollAmount
	}); err != nil {
		return events.GarrisonModePayload{}, translate(err)
	}
	updated, _ := d.world.LoadGarrison(sectorID)
	d.index.SetGarrison(sectorID, &updated)

	view := events.GarrisonView{OwnerID: updated.OwnerID, Fighters: updated.Fighters, Mode: string(updated.Mode), TollAmount: updated.TollAmount}
	payload := events.GarrisonModePayload{SectorID: sectorID, Garrison: view}
	d.bus.Emit(events.EventGarrisonModeChanged, payload, "", events.CharacterList(characterID))

	if mode != model.GarrisonDefensive {
		others := d.sectorOccupantIDs(sectorID, characterID)
		if len(others) > 0 {
			alert := events.GarrisonCombatAlertPayload{SectorID: sectorID, OwnerID: characterID, Mode: string(mode)}
			d.bus.Emit(events.EventGarrisonCombatAlert, alert, "", events.SectorOccupants(others))
		}
	}

	return payload, nil
}
