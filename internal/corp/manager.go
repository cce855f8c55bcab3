// Package corp implements corporation bookkeeping (§3 Corporations):
// creation, membership (join/leave/kick), invite-code rotation and
// corporation-funded ship purchases. Split out of the command
// dispatcher the way the teacher splits `internal/game` bookkeeping
// by concern, since corporation membership touches several entities
// (character, corporation, ship) under locks that must not nest with
// combat's.
package corp

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

// Manager :
// Owns every mutation described in §3 Corporations. Callers (the
// command dispatcher) pass `actor_character_id`; this package does
// not re-validate actor/character authorization beyond corporation
// membership, since that is the dispatcher's job (§4.8 step 2).
type Manager struct {
	world *world.Repository
	bus   *events.Bus
	locks *locker.LockManager
	cfg   config.Config
	log   logger.Logger
}

// New :
func New(repo *world.Repository, bus *events.Bus, locks *locker.LockManager, cfg config.Config, log logger.Logger) *Manager {
	return &Manager{world: repo, bus: bus, locks: locks, cfg: cfg, log: log}
}

// generateInviteCode :
// A short, easily-typed token. Grounded on the same `google/uuid`
// dependency already used for combat/salvage ids elsewhere in the
// core, rather than hand-rolling a second random-string generator.
func generateInviteCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:8]
}

// Create :
// Implements `corporation_create`: founds a new corporation with
// `founderID` as its sole member, deducting the creation cost from
// the founder's on-hand credits.
func (m *Manager) Create(founderID, name string) (*model.Corporation, error) {
	if len(name) < 3 || len(name) > 50 {
		return nil, &InvalidNameError{}
	}

	guard := m.locks.Acquire("credit:" + founderID)
	defer guard.Release()

	character, err := m.world.LoadCharacter(founderID)
	if err != nil {
		return nil, err
	}
	if character.CorporationID != "" {
		return nil, &AlreadyMemberError{CharacterID: founderID}
	}
	if character.CreditsOnHand < m.cfg.CorporationCreationCost {
		return nil, &InsufficientFundsError{Required: m.cfg.CorporationCreationCost, Available: character.CreditsOnHand}
	}

	corpID := uuid.NewString()
	c := model.NewCorporation(corpID, name, generateInviteCode(), founderID, time.Now())
	m.world.SaveCorporation(c)

	if err := m.world.UpdateCharacter(founderID, func(ch *model.Character) {
		ch.CreditsOnHand -= m.cfg.CorporationCreationCost
		ch.CorporationID = corpID
	}); err != nil {
		m.world.DeleteCorporation(corpID)
		return nil, err
	}

	m.bus.Emit(events.EventCorporationCreated, events.CorporationCreatedPayload{
		CorpID:     corpID,
		Name:       name,
		InviteCode: c.InviteCode,
		FounderID:  founderID,
	}, "", events.CorporationMembers(memberIDs(*c)))

	return c, nil
}

// Join :
// Implements `corporation_join`: adds `characterID` to `corpID` if
// `inviteCode` matches the corporation's current code.
func (m *Manager) Join(characterID, corpID, inviteCode string) error {
	character, err := m.world.LoadCharacter(characterID)
	if err != nil {
		return err
	}
	if character.CorporationID != "" {
		return &AlreadyMemberError{CharacterID: characterID}
	}

	corpRecord, err := m.world.LoadCorporation(corpID)
	if err != nil {
		return err
	}
	if corpRecord.InviteCode != inviteCode {
		return &InvalidInviteCodeError{}
	}

	if err := m.world.UpdateCorporation(corpID, func(c *model.Corporation) {
		c.Members[characterID] = struct{}{}
	}); err != nil {
		return err
	}
	if err := m.world.UpdateCharacter(characterID, func(ch *model.Character) {
		ch.CorporationID = corpID
	}); err != nil {
		return err
	}

	updated, _ := m.world.LoadCorporation(corpID)
	m.bus.Emit(events.EventCorporationMemberJoined, events.CorporationMembershipPayload{
		CorpID:      corpID,
		Name:        updated.Name,
		MemberID:    characterID,
		MemberCount: len(updated.Members),
	}, "", events.CorporationMembers(memberIDs(updated)))
	return nil
}

// Leave :
// Implements `corporation_leave`. When the departing member was the
// corporation's last one, the corporation is disbanded: its ships are
// marked unowned and `corporation.disbanded` plus
// `corporation.ships_abandoned` are emitted instead of
// `corporation.member_left`.
func (m *Manager) Leave(characterID string) error {
	character, err := m.world.LoadCharacter(characterID)
	if err != nil {
		return err
	}
	corpID := character.CorporationID
	if corpID == "" {
		return &NotMemberError{CharacterID: characterID}
	}
	corpRecord, err := m.world.LoadCorporation(corpID)
	if err != nil {
		return err
	}
	corpName := corpRecord.Name

	if err := m.world.UpdateCharacter(characterID, func(ch *model.Character) {
		ch.CorporationID = ""
	}); err != nil {
		return err
	}

	var becameEmpty bool
	if err := m.world.UpdateCorporation(corpID, func(c *model.Corporation) {
		delete(c.Members, characterID)
		becameEmpty = len(c.Members) == 0
	}); err != nil {
		return err
	}

	if !becameEmpty {
		updated, _ := m.world.LoadCorporation(corpID)
		m.bus.Emit(events.EventCorporationMemberLeft, events.CorporationMembershipPayload{
			CorpID:      corpID,
			Name:        corpName,
			MemberID:    characterID,
			MemberCount: len(updated.Members),
		}, "", events.CorporationMembers(memberIDs(updated)))
		return nil
	}

	return m.disband(corpID, corpName, characterID, "last_member_left")
}

// disband :
// Marks every ship the corporation owned as unowned (preserving the
// hull for later reference, per §3's trade-in invariant) and removes
// the corporation record.
func (m *Manager) disband(corpID, corpName, notifyID, reason string) error {
	ships := m.world.ListShipsByOwner(model.OwnerCorporation, corpID)
	abandoned := make([]string, 0, len(ships))
	for _, s := range ships {
		shipID := s.ShipID
		if err := m.world.UpdateShip(shipID, func(ship *model.Ship) {
			ship.OwnerKind = model.OwnerUnowned
			ship.OwnerID = ""
		}); err == nil {
			abandoned = append(abandoned, shipID)
		}
	}
	m.world.DeleteCorporation(corpID)

	m.bus.Emit(events.EventCorporationDisbanded, events.CorporationDisbandedPayload{
		CorpID:   corpID,
		CorpName: corpName,
		Reason:   reason,
	}, "", events.CharacterList(notifyID))

	if len(abandoned) > 0 {
		m.bus.Emit(events.EventCorporationShipsAbandoned, events.CorporationShipsAbandonedPayload{
			CorpID:   corpID,
			CorpName: corpName,
			ShipIDs:  abandoned,
		}, "", events.CharacterList(notifyID))
	}
	return nil
}

// Kick :
// Implements `corporation_kick`: any member may remove another member
// from the shared corporation. The original can never be emptied by a
// kick (the actor necessarily remains), so no disband path exists
// here.
func (m *Manager) Kick(actorID, targetID string) error {
	if actorID == targetID {
		return &SelfKickError{}
	}
	actor, err := m.world.LoadCharacter(actorID)
	if err != nil {
		return err
	}
	if actor.CorporationID == "" {
		return &NotMemberError{CharacterID: actorID}
	}
	corpID := actor.CorporationID

	target, err := m.world.LoadCharacter(targetID)
	if err != nil {
		return err
	}
	if target.CorporationID != corpID {
		return &TargetNotMemberError{CharacterID: targetID}
	}

	if err := m.world.UpdateCorporation(corpID, func(c *model.Corporation) {
		delete(c.Members, targetID)
	}); err != nil {
		return err
	}
	if err := m.world.UpdateCharacter(targetID, func(ch *model.Character) {
		ch.CorporationID = ""
	}); err != nil {
		return err
	}

	updated, _ := m.world.LoadCorporation(corpID)
	recipients := append(memberIDs(updated), targetID)
	m.bus.Emit(events.EventCorporationMemberKicked, events.CorporationKickedPayload{
		CorpID:      corpID,
		Name:        updated.Name,
		KickedID:    targetID,
		KickerID:    actorID,
		MemberCount: len(updated.Members),
	}, "", events.CharacterList(recipients...))
	return nil
}

// RegenerateInviteCode :
// Implements `corporation_regenerate_invite_code`. Any current member
// may rotate the code.
func (m *Manager) RegenerateInviteCode(characterID string) (string, error) {
	character, err := m.world.LoadCharacter(characterID)
	if err != nil {
		return "", err
	}
	if character.CorporationID == "" {
		return "", &NotMemberError{CharacterID: characterID}
	}
	corpID := character.CorporationID

	newCode := generateInviteCode()
	if err := m.world.UpdateCorporation(corpID, func(c *model.Corporation) {
		c.InviteCode = newCode
	}); err != nil {
		return "", err
	}

	updated, _ := m.world.LoadCorporation(corpID)
	m.bus.Emit(events.EventCorporationInviteRegenerated, events.CorporationInviteRegeneratedPayload{
		CorpID:        corpID,
		Name:          updated.Name,
		NewInviteCode: newCode,
		GeneratedBy:   characterID,
	}, "", events.CorporationMembers(memberIDs(updated)))
	return newCode, nil
}

// PurchaseShipForCorporation :
// Implements the corporation branch of `ship_purchase`: the price
// (plus any requested seed credits for the new hull) is drawn from
// the buyer's bank balance, and the new ship is puppeted by a fresh
// `corporation_ship`-kind character so it can act in the world the
// same way a human-owned ship does.
func (m *Manager) PurchaseShipForCorporation(buyerID string, spec model.ShipTypeSpec, shipName string, initialShipCredits int) (*model.Ship, *model.Character, error) {
	buyer, err := m.world.LoadCharacter(buyerID)
	if err != nil {
		return nil, nil, err
	}
	if buyer.CorporationID == "" {
		return nil, nil, &NotMemberError{CharacterID: buyerID}
	}
	corpID := buyer.CorporationID

	guard := m.locks.Acquire("credit:" + buyerID)
	defer guard.Release()

	totalCost := spec.Price + initialShipCredits
	if buyer.CreditsInBank < totalCost {
		return nil, nil, &InsufficientFundsError{Required: totalCost, Available: buyer.CreditsInBank}
	}

	if err := m.world.UpdateCharacter(buyerID, func(ch *model.Character) {
		ch.CreditsInBank -= totalCost
	}); err != nil {
		return nil, nil, err
	}

	shipID := uuid.NewString()
	ship := model.Ship{
		ShipID:    shipID,
		Name:      shipName,
		ShipType:  spec.Name,
		OwnerKind: model.OwnerCorporation,
		OwnerID:   corpID,
		State: model.ShipState{
			Fighters:    spec.MaxFighters,
			Shields:     spec.MaxShields,
			MaxFighters: spec.MaxFighters,
			MaxShields:  spec.MaxShields,
			WarpPower:   spec.WarpPowerCapacity,
			Cargo:       make(map[string]int),
			Credits:     initialShipCredits,
		},
	}
	m.world.SaveShip(ship)

	if err := m.world.UpdateCorporation(corpID, func(c *model.Corporation) {
		c.Ships[shipID] = struct{}{}
	}); err != nil {
		return nil, nil, err
	}

	puppet := model.Character{
		CharacterID:   shipID,
		Name:          shipName,
		Kind:          model.KindCorporationShip,
		SectorID:      buyer.SectorID,
		ShipID:        shipID,
		CorporationID: corpID,
		LastActive:    time.Now(),
	}
	m.world.SaveCharacter(puppet)

	updated, _ := m.world.LoadCorporation(corpID)
	m.bus.Emit(events.EventCorporationShipPurchased, events.CorporationShipPurchasedPayload{
		CorpID:        corpID,
		ShipID:        shipID,
		ShipType:      spec.Name,
		PurchasePrice: spec.Price,
		BuyerID:       buyerID,
	}, "", events.CorporationMembers(memberIDs(updated)))

	return &ship, &puppet, nil
}

// memberIDs :
func memberIDs(c model.Corporation) []string {
	ids := make([]string, 0, len(c.Members))
	for id := range c.Members {
		ids = append(ids, id)
	}
	return ids
}
