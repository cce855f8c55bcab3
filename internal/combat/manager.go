// Package combat implements the turn-based sector combat engine:
// CombatManager owns encounter lifecycle (§4.6), RoundResolver closes
// rounds (§4.7), and Scheduler sweeps expired deadlines (§4.9).
package combat

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

// GarrisonBurst :
// The fixed fraction of its own fighters an offensive-mode garrison
// commits per round (§4.7 step 1). Externalized as a single constant
// since the spec leaves the exact formula to implementation (§9).
const GarrisonBurst = 0.4

// ShieldRechargeFraction :
// The fixed fraction of missing shields recovered each round except
// the first (§4.7 step 2).
const ShieldRechargeFraction = 0.2

// Manager :
// Owns the set of live encounters (§4.6). `registry` guards the
// bookkeeping maps only; the `combat:<sector_id>` key from
// `pkg/locker` serializes the actual read-modify-write sequence of
// starting, joining and resolving an encounter in a given sector, per
// §5's ordering guarantees.
type Manager struct {
	registry sync.Mutex
	bySector map[string]string // sector_id -> combat_id
	byID     map[string]*model.Encounter

	world    *world.Repository
	index    *sectorindex.Index
	bus      *events.Bus
	locks    *locker.LockManager
	cfg      config.Config
	log      logger.Logger
	resolver *RoundResolver
}

// New :
func New(repo *world.Repository, index *sectorindex.Index, bus *events.Bus, locks *locker.LockManager, cfg config.Config, log logger.Logger) *Manager {
	m := &Manager{
		bySector: make(map[string]string),
		byID:     make(map[string]*model.Encounter),
		world:    repo,
		index:    index,
		bus:      bus,
		locks:    locks,
		cfg:      cfg,
		log:      log,
	}
	m.resolver = &RoundResolver{manager: m}
	return m
}

// FindEncounterInSector :
func (m *Manager) FindEncounterInSector(sectorID string) (*model.Encounter, bool) {
	m.registry.Lock()
	defer m.registry.Unlock()
	combatID, ok := m.bySector[sectorID]
	if !ok {
		return nil, false
	}
	return m.byID[combatID], true
}

// FindEncounterFor :
func (m *Manager) FindEncounterFor(characterID string) (*model.Encounter, bool) {
	m.registry.Lock()
	defer m.registry.Unlock()
	for _, enc := range m.byID {
		if c, ok := enc.Participants[characterID]; ok && c.OwnerCharacterID == characterID {
			return enc, true
		}
	}
	return nil, false
}

// liveSectorIDs :
// Returns a snapshot of every sector currently hosting an encounter,
// used by the deadline scheduler to sweep without holding the
// registry lock across the whole pass.
func (m *Manager) liveSectorIDs() []string {
	m.registry.Lock()
	defer m.registry.Unlock()
	ids := make([]string, 0, len(m.bySector))
	for sectorID := range m.bySector {
		ids = append(ids, sectorID)
	}
	return ids
}

func (m *Manager) sectorOf(combatID string) (string, bool) {
	m.registry.Lock()
	defer m.registry.Unlock()
	enc, ok := m.byID[combatID]
	if !ok {
		return "", false
	}
	return enc.SectorID, true
}

// StartEncounter :
// Implements §4.6's start_encounter contract under the sector's
// combat lock.
func (m *Manager) StartEncounter(sectorID, initiatorID string, garrisonsToCapture []string, reason string) (*model.Encounter, error) {
	guard := m.locks.Acquire("combat:" + sectorID)
	defer guard.Release()

	m.registry.Lock()
	combatID, exists := m.bySector[sectorID]
	var enc *model.Encounter
	if exists {
		enc = m.byID[combatID]
	}
	m.registry.Unlock()

	if exists {
		m.mergeParticipants(enc, initiatorID, garrisonsToCapture)
		m.emitRefresh(enc)
		return enc, nil
	}

	participants := make(map[string]*model.Combatant)
	for _, c := range m.world.ListCharactersBySector(sectorID) {
		if c.InHyperspace {
			continue
		}
		participants[c.CharacterID] = m.characterCombatant(c)
	}
	if _, ok := participants[initiatorID]; !ok {
		if c, err := m.world.LoadCharacter(initiatorID); err == nil {
			participants[initiatorID] = m.characterCombatant(c)
		}
	}

	capturedSources := make([]string, 0, len(garrisonsToCapture))
	for _, gSectorID := range garrisonsToCapture {
		g, err := m.world.LoadGarrison(gSectorID)
		if err != nil {
			continue
		}
		combatantID := "garrison:" + gSectorID
		participants[combatantID] = garrisonCombatant(g)
		m.world.DeleteGarrison(gSectorID)
		m.index.SetGarrison(gSectorID, nil)
		capturedSources = append(capturedSources, gSectorID)
	}

	if len(participants) <= 1 {
		return nil, &NoOpponentsError{}
	}

	combatID = uuid.NewString()
	enc = &model.Encounter{
		CombatID:     combatID,
		SectorID:     sectorID,
		Round:        1,
		Participants: participants,
		Deadline:     time.Now().Add(m.cfg.RoundWindow),
		Context: model.CombatContext{
			InitiatorID:       initiatorID,
			Reason:            reason,
			CapturedGarrisons: capturedSources,
		},
		PendingActions: make(map[string]model.Action),
		FirstRound:     true,
	}

	m.registry.Lock()
	m.byID[combatID] = enc
	m.bySector[sectorID] = combatID
	m.registry.Unlock()

	m.emitRoundWaiting(enc)
	return enc, nil
}

// mergeParticipants :
// Implements §4.6 step 1: add the initiator and every present
// character, and capture any newly requested garrisons.
func (m *Manager) mergeParticipants(enc *model.Encounter, initiatorID string, garrisonsToCapture []string) {
	if _, ok := enc.Participants[initiatorID]; !ok {
		if c, err := m.world.LoadCharacter(initiatorID); err == nil {
			enc.Participants[initiatorID] = m.characterCombatant(c)
		}
	}
	for _, c := range m.world.ListCharactersBySector(enc.SectorID) {
		if c.InHyperspace {
			continue
		}
		if _, ok := enc.Participants[c.CharacterID]; !ok {
			enc.Participants[c.CharacterID] = m.characterCombatant(c)
		}
	}
	for _, gSectorID := range garrisonsToCapture {
		combatantID := "garrison:" + gSectorID
		if _, ok := enc.Participants[combatantID]; ok {
			continue
		}
		g, err := m.world.LoadGarrison(gSectorID)
		if err != nil {
			continue
		}
		enc.Participants[combatantID] = garrisonCombatant(g)
		m.world.DeleteGarrison(gSectorID)
		m.index.SetGarrison(gSectorID, nil)
		enc.Context.CapturedGarrisons = append(enc.Context.CapturedGarrisons, gSectorID)
	}
}

// AddParticipant :
// Used when a character walks into an ongoing encounter's sector
// (§4.6).
func (m *Manager) AddParticipant(sectorID, characterID string) error {
	guard := m.locks.Acquire("combat:" + sectorID)
	defer guard.Release()

	m.registry.Lock()
	combatID, ok := m.bySector[sectorID]
	var enc *model.Encounter
	if ok {
		enc = m.byID[combatID]
	}
	m.registry.Unlock()
	if !ok {
		return &NotFoundError{CombatID: sectorID}
	}

	if _, already := enc.Participants[characterID]; already {
		return nil
	}
	c, err := m.world.LoadCharacter(characterID)
	if err != nil {
		return err
	}
	enc.Participants[characterID] = m.characterCombatant(c)
	m.emitRefresh(enc)
	return nil
}

// AutoEngageOnArrival :
// Starts (or merges into) sector combat when a character lands in a
// sector hosting a hostile garrison belonging to someone else (§9
// open question: join/move/flee auto-combat). Defensive-mode
// garrisons never initiate on their own; they only fight back once
// engaged. Shared by `dispatch.Join`/`Move` and a successful
// `resolveFlee` so arriving by any of the three paths is consistent.
func (m *Manager) AutoEngageOnArrival(sectorID, characterID string) {
	garrison, err := m.world.LoadGarrison(sectorID)
	if err != nil || garrison.OwnerID == characterID {
		return
	}
	if garrison.Mode == model.GarrisonDefensive {
		return
	}
	_, _ = m.StartEncounter(sectorID, characterID, []string{sectorID}, "arrival_auto")
}

// TerminateByAdmin :
// Implements §4.7 step 6(c): an admin force-ends an encounter outside
// the normal round cycle. Surviving garrisons are reinstated exactly
// as they would be on any other end state; no damage is computed for
// the round in progress.
func (m *Manager) TerminateByAdmin(combatID, reason string) error {
	sectorID, ok := m.sectorOf(combatID)
	if !ok {
		return &NotFoundError{CombatID: combatID}
	}

	guard := m.locks.Acquire("combat:" + sectorID)
	defer guard.Release()

	m.registry.Lock()
	enc, ok := m.byID[combatID]
	m.registry.Unlock()
	if !ok {
		return &NotFoundError{CombatID: combatID}
	}

	enc.Context.Reason = reason
	enc.Result = model.ResultAdminTerminated
	enc.Ended = true
	m.endEncounter(enc)
	m.emitEnded(enc, nil)
	return nil
}

// SubmitAction :
// Implements §4.6's submit_action contract: validates the round,
// validates the actor is live, stores the action, and triggers
// resolution once every live non-garrison participant has submitted (or handles
// the `pay` fast-path first).
func (m *Manager) SubmitAction(combatID, combatantID string, action model.Action, round int) error {
	sectorID, ok := m.sectorOf(combatID)
	if !ok {
		return &NotFoundError{CombatID: combatID}
	}

	guard := m.locks.Acquire("combat:" + sectorID)
	defer guard.Release()

	m.registry.Lock()
	enc, ok := m.byID[combatID]
	m.registry.Unlock()
	if !ok {
		return &NotFoundError{CombatID: combatID}
	}

	if round != enc.Round {
		return &StaleRoundError{Submitted: round, Current: enc.Round}
	}
	combatant, ok := enc.Participants[combatantID]
	if !ok || combatant.Defeated() {
		return &NotParticipantError{CombatantID: combatantID}
	}
	if err := m.validateAction(enc, *combatant, action); err != nil {
		return err
	}

	enc.PendingActions[combatantID] = action

	if action.Kind == model.ActionPay {
		ended, err := m.tryTollFastPath(enc, combatantID)
		if err != nil {
			return err
		}
		if ended {
			return nil
		}
	}

	live := enc.LiveParticipants()
	for _, id := range live {
		if enc.Participants[id].Kind == model.CombatantGarrison {
			// Garrisons never submit; their action is synthesized at
			// resolution time (§4.7 step 1).
			continue
		}
		if _, submitted := enc.PendingActions[id]; !submitted {
			return nil
		}
	}
	m.resolver.resolve(enc)
	return nil
}

func (m *Manager) validateAction(enc *model.Encounter, actor model.Combatant, action model.Action) error {
	switch action.Kind {
	case model.ActionAttack:
		if action.Commit <= 0 {
			return &InvalidActionError{Reason: "attack commit must be greater than zero"}
		}
		if action.Commit > actor.Fighters {
			return &InvalidActionError{Reason: "attack commit exceeds fighters available"}
		}
		target, ok := enc.Participants[action.TargetID]
		if !ok || target.Defeated() {
			return &InvalidActionError{Reason: "attack target is not a live participant"}
		}
		if target.Kind == model.CombatantEscapePod {
			return &InvalidActionError{Reason: "escape pods cannot be targeted"}
		}
	case model.ActionFlee:
		if action.DestinationSector == "" {
			return &InvalidActionError{Reason: "flee requires a destination sector"}
		}
		sector, err := m.world.LoadSector(enc.SectorID)
		if err != nil {
			return err
		}
		if !sector.IsAdjacent(action.DestinationSector) {
			return &InvalidActionError{Reason: "flee destination is not adjacent to the current sector"}
		}
	}
	return nil
}

// tryTollFastPath :
// Implements the §4.6 `pay` fast-path: if the actor pays the full
// toll owed to every toll-mode garrison they are pitted against, the
// encounter ends immediately with no damage computed.
func (m *Manager) tryTollFastPath(enc *model.Encounter, payerID string) (ended bool, err error) {
	payer, ok := enc.Participants[payerID]
	if !ok || payer.Kind != model.CombatantCharacter {
		return false, nil
	}

	var tollGarrisons []string
	totalOwed := 0
	for id, c := range enc.Participants {
		if c.Kind != model.CombatantGarrison || c.Defeated() {
			continue
		}
		if c.GarrisonMode != model.GarrisonToll {
			continue
		}
		tollGarrisons = append(tollGarrisons, id)
		totalOwed += c.TollAmount
	}
	if len(tollGarrisons) == 0 {
		return false, nil
	}

	character, loadErr := m.world.LoadCharacter(payerID)
	if loadErr != nil {
		return false, loadErr
	}
	if character.CreditsOnHand < totalOwed {
		return false, &InvalidActionError{Reason: "insufficient credits to clear toll"}
	}

	// Clears all owed tolls atomically or fails wholly (§9 open
	// question resolution): the credit check above guarantees the
	// deduction below cannot go negative.
	if updErr := m.world.UpdateCharacter(payerID, func(c *model.Character) {
		c.CreditsOnHand -= totalOwed
	}); updErr != nil {
		return false, updErr
	}
	for _, id := range tollGarrisons {
		enc.Participants[id].TollBalance += enc.Participants[id].TollAmount
	}

	enc.Result = model.ResultTollSatisfied
	enc.Ended = true
	m.endEncounter(enc)
	m.emitEnded(enc, nil)
	return true, nil
}

// characterCombatant :
// Builds the combat-facing view of a character from its current ship.
// An escape-pod hull joins as an escape-pod combatant, and a character
// whose ship cannot be loaded joins with zero fighters and shields.
// A combatant with no fighters and no shields counts as defeated, so
// it is not live and SubmitAction rejects its actions.
func (m *Manager) characterCombatant(c model.Character) *model.Combatant {
	combatant := &model.Combatant{
		CombatantID:      c.CharacterID,
		Kind:             model.CombatantCharacter,
		Name:             c.Name,
		OwnerCharacterID: c.CharacterID,
	}
	if ship, err := m.world.LoadShip(c.ShipID); err == nil {
		combatant.Fighters = ship.State.Fighters
		combatant.Shields = ship.State.Shields
		combatant.MaxFighters = ship.State.MaxFighters
		combatant.MaxShields = ship.State.MaxShields
		if ship.ShipType == model.EscapePodType {
			combatant.Kind = model.CombatantEscapePod
		}
	}
	return combatant
}

func garrisonCombatant(g model.Garrison) *model.Combatant {
	return &model.Combatant{
		CombatantID:     "garrison:" + g.SectorID,
		Kind:            model.CombatantGarrison,
		Name:            "garrison",
		Fighters:        g.Fighters,
		MaxFighters:     g.Fighters,
		GarrisonOwnerID: g.OwnerID,
		GarrisonMode:    g.Mode,
		TollAmount:      g.TollAmount,
		TollBalance:     g.TollBalance,
	}
}

func (m *Manager) emitRoundWaiting(enc *model.Encounter) {
	m.bus.Emit(events.EventCombatRoundWaiting, enc, "", events.CharacterList(characterRecipients(enc)...))
}

func (m *Manager) emitRefresh(enc *model.Encounter) {
	m.bus.Emit(events.EventCombatRefresh, enc, "", events.CharacterList(characterRecipients(enc)...))
}

// characterRecipients :
// Every human/NPC participant plus every character owning a
// participating garrison (§4.6 step 4).
func characterRecipients(enc *model.Encounter) []string {
	seen := make(map[string]struct{})
	for _, c := range enc.Participants {
		if c.OwnerCharacterID != "" {
			seen[c.OwnerCharacterID] = struct{}{}
		}
		if c.Kind == model.CombatantGarrison && c.GarrisonOwnerID != "" {
			seen[c.GarrisonOwnerID] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

// endEncounter :
// Removes the encounter from the live registry, reinstates surviving
// garrisons in the sector, and updates SectorIndex (§4.7 step 7).
func (m *Manager) endEncounter(enc *model.Encounter) {
	for id, c := range enc.Participants {
		if c.Kind != model.CombatantGarrison || c.Defeated() {
			continue
		}
		sectorID := id[len("garrison:"):]
		// The garrison's WorldRepository record was deleted at capture
		// time (§4.6 invariant); every field needed to reinstate it
		// travelled on the combatant for the life of the encounter.
		g := model.Garrison{
			SectorID:    sectorID,
			OwnerID:     c.GarrisonOwnerID,
			Fighters:    c.Fighters,
			Mode:        c.GarrisonMode,
			TollAmount:  c.TollAmount,
			TollBalance: c.TollBalance,
		}
		_ = m.world.SaveGarrison(g)
		m.index.SetGarrison(sectorID, &g)
	}

	m.registry.Lock()
	delete(m.bySector, enc.SectorID)
	delete(m.byID, enc.CombatID)
	m.registry.Unlock()
}
