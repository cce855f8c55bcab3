package combat

import (
	"math/rand"
	"sort"
	"time"

	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/pkg/logger"
)

// Damage tuning constants. §9 leaves the exact formula to
// implementation; these bound the random roll so outcomes stay
// reproducible from the seeded RNG alone.
const (
	ShieldDeflectionPerPoint  = 0.01
	MaxDeflectionFraction     = 0.6
	BraceShieldDamageFactor   = 0.5
	BraceFighterLossFactor    = 0.5
	FleeingTargetDamageFactor = 0.5
)

// RoundResolver :
// Closes a round once every live participant has submitted (or the
// deadline expired), implementing the seven-step algorithm of §4.7.
// Callers (CombatManager.SubmitAction, the deadline scheduler) hold
// the encounter's `combat:<sector_id>` lock for the duration of the
// call.
type RoundResolver struct {
	manager *Manager
}

// resolve :
// Runs normalize -> recharge -> damage -> flee -> destruction ->
// end-state -> emit, mutating enc in place.
func (r *RoundResolver) resolve(enc *model.Encounter) {
	pre := snapshotParticipants(enc)

	r.normalizeActions(enc)
	actionsTaken := copyActions(enc.PendingActions)

	if !enc.FirstRound {
		rechargeShields(enc)
	}

	r.computeDamage(enc)

	fleeResults := r.resolveFlees(enc)

	salvage := r.manager.applyDestruction(enc)
	enc.FirstRound = false

	ended, result := detectEndState(enc)

	r.emitRoundResolved(enc, pre, actionsTaken, fleeResults, salvage)

	if ended {
		enc.Result = result
		enc.Ended = true
		r.manager.endEncounter(enc)
		r.manager.emitEnded(enc, salvage)
		return
	}

	enc.Round++
	enc.Deadline = time.Now().Add(r.manager.cfg.RoundWindow)
	enc.PendingActions = make(map[string]model.Action)
	r.manager.emitRoundWaiting(enc)
}

// normalizeActions :
// §4.7 step 1: fills in brace for silent characters and synthesizes
// garrison behavior for garrisons with no submitted action.
func (r *RoundResolver) normalizeActions(enc *model.Encounter) {
	for _, id := range enc.LiveParticipants() {
		if _, ok := enc.PendingActions[id]; ok {
			continue
		}
		c := enc.Participants[id]
		if c.Kind == model.CombatantGarrison {
			enc.PendingActions[id] = garrisonDecision(enc, id)
		} else {
			enc.PendingActions[id] = model.Action{Kind: model.ActionBrace}
		}
	}
}

// rechargeShields :
// §4.7 step 2: skipped on the encounter's first round.
func rechargeShields(enc *model.Encounter) {
	for _, c := range enc.Participants {
		if c.Defeated() || c.Shields >= c.MaxShields {
			continue
		}
		missing := c.MaxShields - c.Shields
		c.Shields += int(float64(missing) * ShieldRechargeFraction)
		if c.Shields > c.MaxShields {
			c.Shields = c.MaxShields
		}
	}
}

// computeDamage :
// §4.7 step 3. Attacks are applied in deterministic (sorted attacker
// id) order so concurrent hits on the same target accumulate
// reproducibly.
func (r *RoundResolver) computeDamage(enc *model.Encounter) {
	attackers := make([]string, 0, len(enc.PendingActions))
	for id, action := range enc.PendingActions {
		if action.Kind == model.ActionAttack {
			attackers = append(attackers, id)
		}
	}
	sort.Strings(attackers)

	for _, attackerID := range attackers {
		action := enc.PendingActions[attackerID]
		attacker := enc.Participants[attackerID]
		target := enc.Participants[action.TargetID]
		if attacker == nil || target == nil || attacker.Defeated() || target.Defeated() {
			continue
		}

		rng := seededRNG(enc.CombatID, enc.Round, attackerID, action.TargetID)
		braced := enc.PendingActions[action.TargetID].Kind == model.ActionBrace
		fleeing := isFleeing(enc, action.TargetID)
		applyAttack(rng, action.Commit, attacker, target, braced, fleeing)
	}
}

// applyAttack :
// A committed fighter group partly bounces off the target's shields
// (lost to the attacker) and partly gets through as damage, applied
// to shields first with fighter overflow. Bracing halves shield
// damage and a further bounded fraction of fighter overflow; a
// fleeing target takes reduced-efficacy damage.
func applyAttack(rng *rand.Rand, commit int, attacker, target *model.Combatant, braced, fleeing bool) {
	if commit > attacker.Fighters {
		commit = attacker.Fighters
	}
	deflection := float64(target.Shields) * ShieldDeflectionPerPoint
	if deflection > MaxDeflectionFraction {
		deflection = MaxDeflectionFraction
	}
	lossFraction := deflection * (0.5 + rng.Float64())
	if lossFraction > 1 {
		lossFraction = 1
	}
	attackerLoss := int(float64(commit) * lossFraction)

	damage := commit - attackerLoss
	if fleeing {
		damage = int(float64(damage) * FleeingTargetDamageFactor)
	}

	shieldDamage := damage
	if braced {
		shieldDamage = int(float64(shieldDamage) * BraceShieldDamageFactor)
	}

	fighterDamage := 0
	if shieldDamage > target.Shields {
		overflow := shieldDamage - target.Shields
		shieldDamage = target.Shields
		if braced {
			overflow = int(float64(overflow) * BraceFighterLossFactor)
		}
		fighterDamage = overflow
	}

	target.Shields -= shieldDamage
	target.Fighters -= fighterDamage
	attacker.Fighters -= attackerLoss
	if attacker.Fighters < 0 {
		attacker.Fighters = 0
	}
	if target.Shields < 0 {
		target.Shields = 0
	}
	if target.Fighters < 0 {
		target.Fighters = 0
	}
}

// resolveFlees :
// §4.7 step 4, run after damage so a fleeing combatant still suffers
// this round's reduced-efficacy attacks before the roll decides
// whether they actually leave.
func (r *RoundResolver) resolveFlees(enc *model.Encounter) []events.FleeResult {
	var fleeingIDs []string
	for id, action := range enc.PendingActions {
		if action.Kind == model.ActionFlee {
			fleeingIDs = append(fleeingIDs, id)
		}
	}
	sort.Strings(fleeingIDs)

	results := make([]events.FleeResult, 0, len(fleeingIDs))
	for _, id := range fleeingIDs {
		action := enc.PendingActions[id]
		succeeded, err := r.manager.resolveFlee(enc, id, action)
		if err != nil {
			r.manager.log.Trace(logger.Warning, "combat", "flee resolution failed: "+err.Error())
		}
		results = append(results, events.FleeResult{
			CombatantID:       id,
			DestinationSector: action.DestinationSector,
			Succeeded:         succeeded,
		})
		if !succeeded {
			enc.PendingActions[id] = model.Action{Kind: model.ActionBrace}
		}
	}
	return results
}

// detectEndState :
// §4.7 step 6(a): the fast-paths for toll and admin termination are
// handled by their own callers before resolve ever runs.
func detectEndState(enc *model.Encounter) (bool, model.EncounterResult) {
	live := enc.LiveParticipants()
	if len(live) <= 1 {
		return true, model.ResultOneSideStanding
	}
	firstSide := ""
	for _, id := range live {
		side := sideKey(enc.Participants[id])
		if firstSide == "" {
			firstSide = side
		} else if side != firstSide {
			return false, ""
		}
	}
	return true, model.ResultOneSideStanding
}

// sideKey :
// §4.7 step 6(a) defines "same side" as sharing an owner_character_id,
// so a character and their own surviving garrison count as one side.
func sideKey(c *model.Combatant) string {
	if c.Kind == model.CombatantGarrison {
		return c.GarrisonOwnerID
	}
	return c.OwnerCharacterID
}

func snapshotParticipants(enc *model.Encounter) map[string]model.Combatant {
	out := make(map[string]model.Combatant, len(enc.Participants))
	for id, c := range enc.Participants {
		out[id] = *c
	}
	return out
}

func copyActions(actions map[string]model.Action) map[string]model.Action {
	out := make(map[string]model.Action, len(actions))
	for id, a := range actions {
		out[id] = a
	}
	return out
}

// emitRoundResolved :
// §4.7 step 7, always emitted regardless of whether the encounter
// ended this round.
func (r *RoundResolver) emitRoundResolved(enc *model.Encounter, pre map[string]model.Combatant, actions map[string]model.Action, fleeResults []events.FleeResult, salvage []model.SalvageContainer) {
	payload := events.RoundResolvedPayload{
		CombatID: enc.CombatID,
		SectorID: enc.SectorID,
		Round:    enc.Round,
		Actions:  make(map[string]string, len(actions)),
	}
	for id, a := range actions {
		payload.Actions[id] = string(a.Kind)
	}
	for id, before := range pre {
		after, stillPresent := enc.Participants[id]
		if !stillPresent {
			continue
		}
		payload.Participants = append(payload.Participants, events.CombatantSnapshot{
			CombatantID:  id,
			Kind:         string(after.Kind),
			FightersPre:  before.Fighters,
			FightersPost: after.Fighters,
			ShieldsPre:   before.Shields,
			ShieldsPost:  after.Shields,
			FighterLoss:  before.Fighters - after.Fighters,
			ShieldDamage: before.Shields - after.Shields,
			Defeated:     after.Defeated(),
		})
	}
	payload.FleeResults = fleeResults
	for _, s := range salvage {
		payload.Salvage = append(payload.Salvage, s.SalvageID)
	}
	r.manager.bus.Emit(events.EventCombatRoundResolved, payload, "", events.CharacterList(characterRecipients(enc)...))
}

// emitEnded :
// §4.7 step 7's terminal emission, plus the sector-facing follow-up
// so out-of-combat observers see the garrison/salvage deltas.
func (m *Manager) emitEnded(enc *model.Encounter, salvage []model.SalvageContainer) {
	payload := events.CombatEndedPayload{
		CombatID: enc.CombatID,
		SectorID: enc.SectorID,
		Result:   string(enc.Result),
	}
	for id, c := range enc.Participants {
		payload.Participants = append(payload.Participants, events.CombatantSnapshot{
			CombatantID:  id,
			Kind:         string(c.Kind),
			FightersPost: c.Fighters,
			ShieldsPost:  c.Shields,
			Defeated:     c.Defeated(),
		})
	}
	for _, s := range salvage {
		payload.Salvage = append(payload.Salvage, s.SalvageID)
	}
	m.bus.Emit(events.EventCombatEnded, payload, "", events.CharacterList(characterRecipients(enc)...))

	record := m.index.Get(enc.SectorID)
	sectorPayload := events.SectorUpdatePayload{SectorID: enc.SectorID}
	if record.Garrison != nil {
		sectorPayload.Garrison = &events.GarrisonView{
			OwnerID:    record.Garrison.OwnerID,
			Fighters:   record.Garrison.Fighters,
			Mode:       string(record.Garrison.Mode),
			TollAmount: record.Garrison.TollAmount,
		}
	}
	for salvageID := range record.SalvageIDs {
		sectorPayload.SalvageIDs = append(sectorPayload.SalvageIDs, salvageID)
	}
	m.bus.Emit(events.EventSectorUpdate, sectorPayload, "", events.SectorOccupants(record.CharacterIDs("")))
}
