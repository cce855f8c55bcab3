package dispatch

import (
	"time"

	"github.com/google/uuid"

	"spacecore/internal/events"
	"spacecore/internal/model"
)

// DumpCargo :
// Implements §4.8 `dump_cargo`: voluntarily jettisons cargo from a
// character's ship into a fresh salvage container in the current
// sector (§9 grounding: the reference implementation's `dump_cargo`).
func (d *Dispatcher) DumpCargo(actorID, characterID string, cargo map[string]int) (events.SalvageCreatedPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.SalvageCreatedPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.SalvageCreatedPayload{}, err
	}
	if len(cargo) == 0 {
		return events.SalvageCreatedPayload{}, newFault(400, "empty_manifest", "no cargo named to dump")
	}

	guard := d.locks.Acquire("character:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.SalvageCreatedPayload{}, translate(err)
	}
	if character.InHyperspace {
		return events.SalvageCreatedPayload{}, newFault(409, "in_hyperspace", "character is in hyperspace")
	}
	ship, err := d.world.LoadShip(character.ShipID)
	if err != nil {
		return events.SalvageCreatedPayload{}, translate(err)
	}
	for commodity, units := range cargo {
		if units <= 0 || ship.State.Cargo[commodity] < units {
			return events.SalvageCreatedPayload{}, newFault(400, "invalid_manifest", "requested more cargo than the ship holds")
		}
	}

	dumped := make(map[string]int, len(cargo))
	if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) {
		for commodity, units := range cargo {
			s.State.Cargo[commodity] -= units
			dumped[commodity] = units
		}
	}); err != nil {
		return events.SalvageCreatedPayload{}, translate(err)
	}

	source := model.SalvageSource{ShipName: ship.Name, ShipType: ship.ShipType}
	salvage := model.SalvageContainer{
		SalvageID: uuid.NewString(),
		SectorID:  character.SectorID,
		Cargo:     dumped,
		ExpiresAt: time.Now().Add(d.cfg.SalvageTTL),
		Source:    source,
	}
	d.world.SaveSalvage(salvage)
	d.index.AddSalvage(character.SectorID, salvage.SalvageID)

	payload := events.SalvageCreatedPayload{
		SalvageID: salvage.SalvageID,
		SectorID:  salvage.SectorID,
		Source:    events.SalvageSourceView{ShipName: source.ShipName, ShipType: source.ShipType},
	}
	d.bus.Emit(events.EventSalvageCreated, payload, "", events.CharacterList(characterID))
	d.emitSectorUpdate(character.SectorID, characterID)
	return payload, nil
}

// SalvageCollect :
// Implements §4.8 `salvage_collect`: pulls a salvage container's
// cargo and credits aboard the collector's ship. The container's
// scrap is reported in the `salvage.collected` payload but is not
// stored on the ship.
func (d *Dispatcher) SalvageCollect(actorID, characterID, salvageID string) (events.SalvageCollectedPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.SalvageCollectedPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.SalvageCollectedPayload{}, err
	}

	guard := d.locks.Acquire("character:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.SalvageCollectedPayload{}, translate(err)
	}
	if character.InHyperspace {
		return events.SalvageCollectedPayload{}, newFault(409, "in_hyperspace", "character is in hyperspace")
	}
	salvage, err := d.world.LoadSalvage(salvageID)
	if err != nil {
		return events.SalvageCollectedPayload{}, translate(err)
	}
	if salvage.SectorID != character.SectorID {
		return events.SalvageCollectedPayload{}, newFault(409, "sector_mismatch", "salvage is not present in the current sector")
	}

	if err := d.world.UpdateShip(character.ShipID, func(s *model.Ship) {
		if s.State.Cargo == nil {
			s.State.Cargo = make(map[string]int)
		}
		for commodity, units := range salvage.Cargo {
			s.State.Cargo[commodity] += units
		}
		s.State.Credits += salvage.Credits
	}); err != nil {
		return events.SalvageCollectedPayload{}, translate(err)
	}

	d.world.DeleteSalvage(salvageID)
	d.index.RemoveSalvage(character.SectorID, salvageID)

	payload := events.SalvageCollectedPayload{
		SalvageID:   salvageID,
		CharacterID: characterID,
		Cargo:       salvage.Cargo,
		Scrap:       salvage.Scrap,
		Credits:     salvage.Credits,
	}
	d.bus.Emit(events.EventSalvageCollected, payload, "", events.CharacterList(characterID))
	d.emitSectorUpdate(character.SectorID, characterID)
	return payload, nil
}
