package dispatch

import (
	"time"

	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/pkg/locker"
)

// portBasePrice :
// The external price formula is explicitly out of scope (§1
// Non-goals); this is the simplest deterministic stand-in that
// satisfies the one concrete figure the spec does give (§8 S1:
// `price_fn(stock=100, cap=1000) == 10`). A full deployment would
// replace it with the real market-pricing collaborator.
const portBasePrice = 100

func priceForCommodity(port model.Port, commodity string) int {
	capacity := port.MaxCapacity[commodity]
	if capacity <= 0 {
		return portBasePrice
	}
	return portBasePrice * port.Stock[commodity] / capacity
}

// Trade :
// Implements §4.8 `trade`: buys or sells `units` of `commodity` at the
// character's current sector's port. `kind` is "buy" or "sell".
func (d *Dispatcher) Trade(actorID, characterID, commodity, kind string, units int) (events.TradeExecutedPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.TradeExecutedPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.TradeExecutedPayload{}, err
	}
	if units <= 0 {
		return events.TradeExecutedPayload{}, newFault(400, "invalid_units", "units must be positive")
	}
	if kind != "buy" && kind != "sell" {
		return events.TradeExecutedPayload{}, newFault(400, "invalid_kind", `kind must be "buy" or "sell"`)
	}

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.TradeExecutedPayload{}, translate(err)
	}
	if character.InHyperspace {
		return events.TradeExecutedPayload{}, newFault(409, "in_hyperspace", "character is in hyperspace")
	}
	sectorID := character.SectorID
	if !d.world.ExistsPort(sectorID) {
		return events.TradeExecutedPayload{}, newFault(404, "no_port", "current sector has no port")
	}

	guards := d.locks.WithKeys([]string{"character:" + characterID, "knowledge:" + characterID, "port:" + sectorID})
	defer locker.ReleaseAll(guards)

	port, err := d.world.LoadPort(sectorID)
	if err != nil {
		return events.TradeExecutedPayload{}, translate(err)
	}
	ship, err := d.world.LoadShip(character.ShipID)
	if err != nil {
		return events.TradeExecutedPayload{}, translate(err)
	}

	price := priceForCommodity(port, commodity)
	totalPrice := price * units

	switch kind {
	case "buy":
		if port.Stock[commodity] < units {
			return events.TradeExecutedPayload{}, newFault(409, "insufficient_stock", "port does not hold enough stock")
		}
		if character.CreditsOnHand < totalPrice {
			return events.TradeExecutedPayload{}, newFault(400, "insufficient_funds", "not enough credits on hand")
		}
		if spec, ok := d.catalog.Spec(ship.ShipType); ok && ship.State.CargoUsed()+units > spec.CargoCapacity {
			return events.TradeExecutedPayload{}, newFault(400, "cargo_full", "not enough cargo capacity")
		}
		if err := d.world.UpdateCharacter(characterID, func(c *model.Character) { c.CreditsOnHand -= totalPrice }); err != nil {
			return events.TradeExecutedPayload{}, translate(err)
		}
		if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) {
			if s.State.Cargo == nil {
				s.State.Cargo = make(map[string]int)
			}
			s.State.Cargo[commodity] += units
		}); err != nil {
			return events.TradeExecutedPayload{}, translate(err)
		}
		if err := d.world.UpdatePort(sectorID, func(p *model.Port) { p.Stock[commodity] -= units }); err != nil {
			return events.TradeExecutedPayload{}, translate(err)
		}
	case "sell":
		if ship.State.Cargo[commodity] < units {
			return events.TradeExecutedPayload{}, newFault(400, "insufficient_cargo", "not enough cargo to sell")
		}
		if err := d.world.UpdateCharacter(characterID, func(c *model.Character) { c.CreditsOnHand += totalPrice }); err != nil {
			return events.TradeExecutedPayload{}, translate(err)
		}
		if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) { s.State.Cargo[commodity] -= units }); err != nil {
			return events.TradeExecutedPayload{}, translate(err)
		}
		if err := d.world.UpdatePort(sectorID, func(p *model.Port) {
			p.Stock[commodity] += units
			if capacity := p.MaxCapacity[commodity]; capacity > 0 && p.Stock[commodity] > capacity {
				p.Stock[commodity] = capacity
			}
		}); err != nil {
			return events.TradeExecutedPayload{}, translate(err)
		}
	}

	knowledge := d.world.LoadKnowledge(characterID)
	updatedPort, _ := d.world.LoadPort(sectorID)
	knowledge.KnownPorts[sectorID] = model.PortSnapshot{
		SectorID:   sectorID,
		Code:       updatedPort.Code,
		Stock:      updatedPort.Stock,
		ObservedAt: time.Now().UTC(),
	}
	d.index.SetPortSnapshot(sectorID, &updatedPort)

	payload := events.TradeExecutedPayload{
		CharacterID: characterID,
		SectorID:    sectorID,
		Commodity:   commodity,
		Kind:        kind,
		Units:       units,
		TotalPrice:  totalPrice,
	}
	d.bus.Emit(events.EventTradeExecuted, payload, "", events.CharacterList(characterID))

	portPayload := events.PortUpdatePayload{SectorID: sectorID, Code: updatedPort.Code, Stock: updatedPort.Stock}
	recipients := d.sectorOccupantIDs(sectorID, "")
	d.bus.Emit(events.EventPortUpdate, portPayload, "", events.SectorOccupants(recipients))

	return payload, nil
}
