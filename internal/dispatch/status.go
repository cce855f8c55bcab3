package dispatch

import (
	"time"

	"github.com/google/uuid"

	"spacecore/internal/events"
	"spacecore/internal/model"
)

// starterShipType :
// The ship type assigned to a character on its very first `join`,
// when the catalog carries no deployment-specific default. A real
// deployment is expected to seed the catalog with its own starter
// entry; this is only a fallback so a fresh world is never unable to
// onboard anyone.
const starterShipType = "starter_scout"

var starterShipFallback = model.ShipTypeSpec{
	Name:              starterShipType,
	MaxFighters:       20,
	MaxShields:        20,
	CargoCapacity:     50,
	WarpPowerCapacity: 100,
	TurnsPerWarp:      5,
}

// Join :
// Implements §4.8 `join`: places a character into the world on its
// first call (assigning a starting sector and ship) and, on every
// call, returns a status snapshot. If the destination sector already
// hosts a hostile (non-defensive) garrison belonging to someone else,
// combat is engaged automatically.
func (d *Dispatcher) Join(actorID, characterID string) (events.StatusSnapshotPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.StatusSnapshotPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.StatusSnapshotPayload{}, err
	}

	guard := d.locks.Acquire("character:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.StatusSnapshotPayload{}, translate(err)
	}

	firstJoin := character.ShipID == ""
	if firstJoin {
		spec, ok := d.catalog.Spec(starterShipType)
		if !ok {
			spec = starterShipFallback
		}
		ship := model.Ship{
			ShipID:    uuid.NewString(),
			Name:      character.Name + "'s ship",
			ShipType:  spec.Name,
			OwnerKind: model.OwnerCharacter,
			OwnerID:   characterID,
			State: model.ShipState{
				Fighters:    spec.MaxFighters,
				Shields:     spec.MaxShields,
				MaxFighters: spec.MaxFighters,
				MaxShields:  spec.MaxShields,
				WarpPower:   spec.WarpPowerCapacity,
				Cargo:       make(map[string]int),
			},
		}
		d.world.SaveShip(ship)

		sectorID := d.cfg.BankingSectorID
		if err := d.world.UpdateCharacter(characterID, func(c *model.Character) {
			c.ShipID = ship.ShipID
			c.SectorID = sectorID
			c.InHyperspace = false
			c.LastActive = time.Now().UTC()
		}); err != nil {
			return events.StatusSnapshotPayload{}, translate(err)
		}
		d.world.LoadKnowledge(characterID)
		d.index.AddCharacter(sectorID, characterID)
		character, _ = d.world.LoadCharacter(characterID)

		d.autoEngageOnArrival(sectorID, characterID)
	} else {
		_ = d.world.UpdateCharacter(characterID, func(c *model.Character) {
			c.LastActive = time.Now().UTC()
		})
		character, _ = d.world.LoadCharacter(characterID)
	}

	payload := d.buildStatusSnapshot(character)
	d.bus.Emit(events.EventStatusSnapshot, payload, "", events.CharacterList(characterID))
	return payload, nil
}

// MyStatus :
// Implements §4.8 `my_status`: a read path requiring the character
// not currently be in hyperspace transit.
func (d *Dispatcher) MyStatus(actorID, characterID string) (events.StatusSnapshotPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.StatusSnapshotPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.StatusSnapshotPayload{}, err
	}

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.StatusSnapshotPayload{}, translate(err)
	}
	if character.InHyperspace {
		return events.StatusSnapshotPayload{}, newFault(409, "in_hyperspace", "character is in hyperspace")
	}
	return d.buildStatusSnapshot(character), nil
}

// buildStatusSnapshot :
func (d *Dispatcher) buildStatusSnapshot(character model.Character) events.StatusSnapshotPayload {
	payload := events.StatusSnapshotPayload{
		CharacterID:   character.CharacterID,
		SectorID:      character.SectorID,
		InHyperspace:  character.InHyperspace,
		CreditsOnHand: character.CreditsOnHand,
		CreditsInBank: character.CreditsInBank,
		CorporationID: character.CorporationID,
	}
	if ship, err := d.world.LoadShip(character.ShipID); err == nil {
		payload.Ship = events.ShipSnapshot{
			ShipID:      ship.ShipID,
			Name:        ship.Name,
			ShipType:    ship.ShipType,
			Fighters:    ship.State.Fighters,
			Shields:     ship.State.Shields,
			MaxFighters: ship.State.MaxFighters,
			MaxShields:  ship.State.MaxShields,
			WarpPower:   ship.State.WarpPower,
			Cargo:       ship.State.Cargo,
			Credits:     ship.State.Credits,
		}
	}
	return payload
}

// MyMap :
// Implements §4.8 `my_map`: reads persisted knowledge and overlays the
// character's current sector (since it is necessarily just-visited).
func (d *Dispatcher) MyMap(actorID, characterID string) (events.MapKnowledgePayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.MapKnowledgePayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.MapKnowledgePayload{}, err
	}

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.MapKnowledgePayload{}, translate(err)
	}

	knowledge := d.world.LoadKnowledge(characterID)
	payload := events.MapKnowledgePayload{
		CharacterID: characterID,
		KnownPorts:  make(map[string]events.PortSnapshotView, len(knowledge.KnownPorts)),
	}
	for sectorID := range knowledge.VisitedSectors {
		payload.VisitedSectors = append(payload.VisitedSectors, sectorID)
	}
	for sectorID, snap := range knowledge.KnownPorts {
		payload.KnownPorts[sectorID] = events.PortSnapshotView{
			SectorID:   snap.SectorID,
			Code:       snap.Code,
			Stock:      snap.Stock,
			ObservedAt: snap.ObservedAt,
		}
	}

	if !character.InHyperspace && character.SectorID != "" {
		if port, err := d.world.LoadPort(character.SectorID); err == nil {
			payload.KnownPorts[character.SectorID] = events.PortSnapshotView{
				SectorID:   port.SectorID,
				Code:       port.Code,
				Stock:      port.Stock,
				ObservedAt: time.Now().UTC(),
			}
		}
	}

	d.bus.Emit(events.EventMapKnowledge, payload, "", events.CharacterList(characterID))
	return payload, nil
}

// LocalMapRegion :
// Implements §4.8 `local_map_region`: the subset of a character's
// known sectors within `maxHops` of `centerSector`, grounded on
// `original_source/game-server/api/local_map_region.py`'s hop-limited
// BFS over the universe graph, restricted here (as the original does)
// to sectors already present in the character's own knowledge.
func (d *Dispatcher) LocalMapRegion(actorID, characterID, centerSector string, maxHops int) (events.MapRegionPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.MapRegionPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.MapRegionPayload{}, err
	}
	if maxHops < 0 || maxHops > 10 {
		return events.MapRegionPayload{}, newFault(422, "invalid_max_hops", "max_hops must be between 0 and 10")
	}

	knowledge := d.world.LoadKnowledge(characterID)
	if centerSector == "" {
		character, err := d.world.LoadCharacter(characterID)
		if err != nil {
			return events.MapRegionPayload{}, translate(err)
		}
		centerSector = character.SectorID
	}
	if _, visited := knowledge.VisitedSectors[centerSector]; !visited {
		return events.MapRegionPayload{}, newFault(400, "not_visited", "center sector must already be visited")
	}

	adjacency := make(map[string][]string)
	for _, s := range d.world.ListSectors() {
		adjacency[s.SectorID] = s.Adjacent
	}

	hops := map[string]int{centerSector: 0}
	queue := []string{centerSector}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if hops[current] >= maxHops {
			continue
		}
		for _, next := range adjacency[current] {
			if _, seen := hops[next]; seen {
				continue
			}
			hops[next] = hops[current] + 1
			queue = append(queue, next)
		}
	}

	payload := events.MapRegionPayload{
		CharacterID:  characterID,
		CenterSector: centerSector,
		MaxHops:      maxHops,
		KnownPorts:   make(map[string]events.PortSnapshotView),
	}
	for sectorID := range hops {
		if _, visited := knowledge.VisitedSectors[sectorID]; !visited {
			continue
		}
		payload.VisitedSectors = append(payload.VisitedSectors, sectorID)
		if snap, ok := knowledge.KnownPorts[sectorID]; ok {
			payload.KnownPorts[sectorID] = events.PortSnapshotView{
				SectorID:   snap.SectorID,
				Code:       snap.Code,
				Stock:      snap.Stock,
				ObservedAt: snap.ObservedAt,
			}
		}
	}

	d.bus.Emit(events.EventMapRegion, payload, "", events.CharacterList(characterID))
	return payload, nil
}

// autoEngageOnArrival :
// Delegates to `combat.Manager.AutoEngageOnArrival`, which also backs
// a successful flee's relocation so all three arrival paths (join,
// move, flee) apply the same rule (§9 open question).
func (d *Dispatcher) autoEngageOnArrival(sectorID, characterID string) {
	d.combat.AutoEngageOnArrival(sectorID, characterID)
}
