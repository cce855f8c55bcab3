package combat

import "spacecore/internal/model"

// Flee tuning constants. The spec leaves the exact cost table and
// probability weights to implementation (§9); these are the external
// constants referenced by §4.7 step 4's formula.
const (
	FleeBaseChance             = 0.5
	FleeWarpPowerFactorPerUnit = 0.05
	FleeWarpPowerFactorCap     = 0.4
	FleeThreatFactorPerHostile = 0.1
	FleeWarpPowerCost          = 5
)

// isFleeing :
// Reports whether a combatant submitted a flee action this round,
// used by damage computation to apply the reduced-efficacy rule
// against fleeing targets (§4.7 step 3). Damage is computed before
// the flee rolls, so every submitted flee counts here.
func isFleeing(enc *model.Encounter, combatantID string) bool {
	action, ok := enc.PendingActions[combatantID]
	return ok && action.Kind == model.ActionFlee
}

// hostileCount :
// Counts live combatants not sharing the fleeing combatant's owner,
// used as the threat term of the flee-success formula.
func hostileCount(enc *model.Encounter, combatantID string) int {
	self, ok := enc.Participants[combatantID]
	if !ok {
		return 0
	}
	count := 0
	for id, c := range enc.Participants {
		if id == combatantID || c.Defeated() {
			continue
		}
		if sideKey(c) != sideKey(self) {
			count++
		}
	}
	return count
}

// fleeChance :
// `p = min(1, base + warp_power_factor - threat_factor)` per §4.7
// step 4, with the warp-power term capped so a deep reserve can't make
// escape a certainty on its own.
func fleeChance(warpPower, hostiles int) float64 {
	warpFactor := float64(warpPower) * FleeWarpPowerFactorPerUnit
	if warpFactor > FleeWarpPowerFactorCap {
		warpFactor = FleeWarpPowerFactorCap
	}
	threatFactor := float64(hostiles) * FleeThreatFactorPerHostile
	p := FleeBaseChance + warpFactor - threatFactor
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}

// resolveFlee :
// Rolls the seeded outcome of a single combatant's flee action
// (§4.7 step 4). On success the combatant is removed from the
// encounter, relocated to the destination sector (SectorIndex
// occupancy included), charged its warp-power cost, and auto-engaged
// on arrival; the caller is responsible for emitting `flee_results`.
// On failure the combatant stays put and the caller downgrades its
// pending action to brace; the round's damage has already been
// computed by then.
func (m *Manager) resolveFlee(enc *model.Encounter, combatantID string, action model.Action) (succeeded bool, err error) {
	combatant, ok := enc.Participants[combatantID]
	if !ok || combatant.Kind != model.CombatantCharacter {
		return false, nil
	}

	character, err := m.world.LoadCharacter(combatant.OwnerCharacterID)
	if err != nil {
		return false, err
	}
	ship, err := m.world.LoadShip(character.ShipID)
	if err != nil {
		return false, err
	}

	hostiles := hostileCount(enc, combatantID)
	p := fleeChance(ship.State.WarpPower, hostiles)

	rng := seededRNG(enc.CombatID, enc.Round, combatantID, action.DestinationSector)
	if rng.Float64() >= p {
		return false, nil
	}

	cost := FleeWarpPowerCost
	if err := m.world.UpdateShip(character.ShipID, func(s *model.Ship) {
		s.State.WarpPower -= cost
		if s.State.WarpPower < 0 {
			s.State.WarpPower = 0
		}
	}); err != nil {
		return false, err
	}
	if err := m.world.UpdateCharacter(combatant.OwnerCharacterID, func(c *model.Character) {
		c.SectorID = action.DestinationSector
	}); err != nil {
		return false, err
	}

	m.index.RemoveCharacter(enc.SectorID, combatant.OwnerCharacterID)
	m.index.AddCharacter(action.DestinationSector, combatant.OwnerCharacterID)

	delete(enc.Participants, combatantID)
	delete(enc.PendingActions, combatantID)

	m.AutoEngageOnArrival(action.DestinationSector, combatant.OwnerCharacterID)
	return true, nil
}
