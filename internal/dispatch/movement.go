package dispatch

import (
	"time"

	"spacecore/internal/events"
	"spacecore/internal/model"
)

// Move :
// Implements §4.8 `move`: a single warp jump to an adjacent sector,
// consuming `ship_stats.turns_per_warp` warp power (§9 ambient
// grounding). Auto-engages combat if the destination hosts a hostile
// garrison, mirroring `join`'s arrival behavior.
func (d *Dispatcher) Move(actorID, characterID, destinationSector string) (events.MovementPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.MovementPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.MovementPayload{}, err
	}

	guard := d.locks.Acquire("character:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.MovementPayload{}, translate(err)
	}
	if character.InHyperspace {
		return events.MovementPayload{}, newFault(409, "in_hyperspace", "character is already in hyperspace")
	}
	if _, inCombat := d.combat.FindEncounterFor(characterID); inCombat {
		return events.MovementPayload{}, newFault(409, "in_combat", "character cannot move while in combat")
	}

	origin, err := d.world.LoadSector(character.SectorID)
	if err != nil {
		return events.MovementPayload{}, translate(err)
	}
	if !origin.IsAdjacent(destinationSector) {
		return events.MovementPayload{}, newFault(400, "not_adjacent", "destination sector is not adjacent to the current sector")
	}

	ship, err := d.world.LoadShip(character.ShipID)
	if err != nil {
		return events.MovementPayload{}, translate(err)
	}
	cost := 0
	if spec, ok := d.catalog.Spec(ship.ShipType); ok {
		cost = spec.TurnsPerWarp
	}
	if ship.State.WarpPower < cost {
		return events.MovementPayload{}, newFault(400, "insufficient_warp_power", "not enough warp power to make this jump")
	}

	if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) {
		s.State.WarpPower -= cost
	}); err != nil {
		return events.MovementPayload{}, translate(err)
	}
	if err := d.world.UpdateCharacter(characterID, func(c *model.Character) {
		c.SectorID = destinationSector
		c.LastActive = time.Now().UTC()
	}); err != nil {
		return events.MovementPayload{}, translate(err)
	}

	knowledgeGuard := d.locks.Acquire("knowledge:" + characterID)
	knowledge := d.world.LoadKnowledge(characterID)
	knowledge.VisitedSectors[destinationSector] = time.Now().UTC()
	knowledgeGuard.Release()

	d.index.RemoveCharacter(origin.SectorID, characterID)
	d.index.AddCharacter(destinationSector, characterID)

	payload := events.MovementPayload{CharacterID: characterID, FromSector: origin.SectorID, ToSector: destinationSector}
	d.bus.Emit(events.EventMovementComplete, payload, "", events.CharacterList(characterID))
	d.emitSectorUpdate(origin.SectorID, "")
	d.emitSectorUpdate(destinationSector, "")

	d.autoEngageOnArrival(destinationSector, characterID)
	return payload, nil
}

// emitSectorUpdate :
// Broadcasts `sector.update` to every current occupant (minus
// `exclude`) with the sector's live garrison/salvage snapshot (§4.7
// step 7's catch-all occupant notification, reused outside combat).
func (d *Dispatcher) emitSectorUpdate(sectorID, exclude string) {
	record := d.index.Get(sectorID)
	payload := events.SectorUpdatePayload{SectorID: sectorID}
	if record.Garrison != nil {
		payload.Garrison = &events.GarrisonView{
			OwnerID:    record.Garrison.OwnerID,
			Fighters:   record.Garrison.Fighters,
			Mode:       string(record.Garrison.Mode),
			TollAmount: record.Garrison.TollAmount,
		}
	}
	for salvageID := range record.SalvageIDs {
		payload.SalvageIDs = append(payload.SalvageIDs, salvageID)
	}
	recipients := record.CharacterIDs(exclude)
	if len(recipients) == 0 {
		return
	}
	d.bus.Emit(events.EventSectorUpdate, payload, "", events.SectorOccupants(recipients))
}

// PlotCourse :
// Implements §4.8 `plot_course`: a pure read-only breadth-first search
// over sector adjacency, with no world mutation (§9 grounding from the
// reference implementation's `universe_graph.find_path`).
func (d *Dispatcher) PlotCourse(actorID, characterID, from, to string) (events.CoursePlotPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.CoursePlotPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.CoursePlotPayload{}, err
	}

	path, err := d.findPath(from, to)
	if err != nil {
		return events.CoursePlotPayload{}, err
	}

	payload := events.CoursePlotPayload{CharacterID: characterID, From: from, To: to, Path: path}
	d.bus.Emit(events.EventCoursePlot, payload, "", events.CharacterList(characterID))
	return payload, nil
}

// findPath :
// Breadth-first search over every seeded sector's adjacency list.
func (d *Dispatcher) findPath(from, to string) ([]string, error) {
	if !d.world.ExistsSector(from) {
		return nil, newFault(404, "not_found", "origin sector not found")
	}
	if !d.world.ExistsSector(to) {
		return nil, newFault(404, "not_found", "destination sector not found")
	}
	if from == to {
		return []string{from}, nil
	}

	adjacency := make(map[string][]string)
	for _, s := range d.world.ListSectors() {
		adjacency[s.SectorID] = s.Adjacent
	}

	visited := map[string]bool{from: true}
	prev := map[string]string{}
	queue := []string{from}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == to {
			path := []string{to}
			for path[len(path)-1] != from {
				path = append(path, prev[path[len(path)-1]])
			}
			reversed := make([]string, len(path))
			for i, id := range path {
				reversed[len(path)-1-i] = id
			}
			return reversed, nil
		}
		for _, next := range adjacency[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = current
			queue = append(queue, next)
		}
	}
	return nil, newFault(404, "no_path", "no route exists between the given sectors")
}
