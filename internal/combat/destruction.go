package combat

import (
	"time"

	"github.com/google/uuid"

	"spacecore/internal/model"
)

// applyDestruction :
// Implements §4.7 step 5 for every combatant reduced to zero fighters
// and zero shields this round. Characters are converted to escape
// pods and their cargo dumped into a fresh salvage container;
// defeated garrisons are left for `endEncounter` to simply not
// reinstate. Returns the salvage containers created this round, which
// the caller records on `enc.Salvage` and reports in
// `combat.round_resolved`.
func (m *Manager) applyDestruction(enc *model.Encounter) []model.SalvageContainer {
	var created []model.SalvageContainer
	for _, c := range enc.Participants {
		if c.Kind != model.CombatantCharacter || !c.Defeated() {
			continue
		}
		salvage, err := m.convertToEscapePod(enc, c)
		if err != nil {
			continue
		}
		created = append(created, salvage)
		enc.Salvage = append(enc.Salvage, salvage.SalvageID)
		// The escape pod is still a live-enough combatant to appear in
		// the round's participant snapshot, but it can neither be
		// targeted (validateAction) nor act again.
		c.Kind = model.CombatantEscapePod
	}
	return created
}

func (m *Manager) convertToEscapePod(enc *model.Encounter, c *model.Combatant) (model.SalvageContainer, error) {
	character, err := m.world.LoadCharacter(c.OwnerCharacterID)
	if err != nil {
		return model.SalvageContainer{}, err
	}
	ship, err := m.world.LoadShip(character.ShipID)
	if err != nil {
		return model.SalvageContainer{}, err
	}

	source := model.SalvageSource{ShipName: ship.Name, ShipType: ship.ShipType}
	cargo := ship.State.Cargo
	credits := ship.State.Credits

	if err := m.world.UpdateShip(ship.ShipID, func(s *model.Ship) {
		s.ShipType = model.EscapePodType
		s.State.Fighters = 0
		s.State.Shields = 0
		s.State.Cargo = make(map[string]int)
		s.State.Credits = 0
	}); err != nil {
		return model.SalvageContainer{}, err
	}

	salvage := model.SalvageContainer{
		SalvageID: uuid.NewString(),
		SectorID:  enc.SectorID,
		Cargo:     cargo,
		Credits:   credits,
		ExpiresAt: time.Now().Add(m.cfg.SalvageTTL),
		Source:    source,
	}
	m.world.SaveSalvage(salvage)
	m.index.AddSalvage(enc.SectorID, salvage.SalvageID)
	return salvage, nil
}
