package dispatch

import (
	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/pkg/locker"
)

// requireBankingSector :
func (d *Dispatcher) requireBankingSector(sectorID string) error {
	if sectorID != d.cfg.BankingSectorID {
		return newFault(409, "wrong_sector", "this operation is only available in the banking sector")
	}
	return nil
}

// RechargeWarpPower :
// Implements §4.8 `recharge_warp_power`: restricted to the banking
// sector, capacity-clamped, funded from credits on hand.
func (d *Dispatcher) RechargeWarpPower(actorID, characterID string, units int) (events.WarpPurchasePayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.WarpPurchasePayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.WarpPurchasePayload{}, err
	}
	if units <= 0 {
		return events.WarpPurchasePayload{}, newFault(400, "invalid_units", "units must be positive")
	}

	guard := d.locks.Acquire("credit:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.WarpPurchasePayload{}, translate(err)
	}
	if err := d.requireBankingSector(character.SectorID); err != nil {
		return events.WarpPurchasePayload{}, err
	}
	ship, err := d.world.LoadShip(character.ShipID)
	if err != nil {
		return events.WarpPurchasePayload{}, translate(err)
	}

	capacity := ship.State.WarpPower + units
	if spec, ok := d.catalog.Spec(ship.ShipType); ok {
		capacity = spec.WarpPowerCapacity
	}
	room := capacity - ship.State.WarpPower
	if room < units {
		units = room
	}
	if units <= 0 {
		return events.WarpPurchasePayload{}, newFault(400, "warp_power_full", "warp power is already at capacity")
	}

	totalPrice := units * d.cfg.WarpPowerPrice
	if character.CreditsOnHand < totalPrice {
		return events.WarpPurchasePayload{}, newFault(400, "insufficient_funds", "not enough credits on hand")
	}

	if err := d.world.UpdateCharacter(characterID, func(c *model.Character) { c.CreditsOnHand -= totalPrice }); err != nil {
		return events.WarpPurchasePayload{}, translate(err)
	}
	if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) { s.State.WarpPower += units }); err != nil {
		return events.WarpPurchasePayload{}, translate(err)
	}

	updated, _ := d.world.LoadShip(ship.ShipID)
	payload := events.WarpPurchasePayload{CharacterID: characterID, UnitsPurchased: units, TotalPrice: totalPrice, WarpPower: updated.State.WarpPower}
	d.bus.Emit(events.EventWarpPurchase, payload, "", events.CharacterList(characterID))
	return payload, nil
}

// PurchaseFighters :
// Implements §4.8 `purchase_fighters`: restricted to the banking
// sector, capacity-clamped, funded from credits on hand.
func (d *Dispatcher) PurchaseFighters(actorID, characterID string, units int) (events.FighterPurchasePayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.FighterPurchasePayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.FighterPurchasePayload{}, err
	}
	if units <= 0 {
		return events.FighterPurchasePayload{}, newFault(400, "invalid_units", "units must be positive")
	}

	guard := d.locks.Acquire("credit:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.FighterPurchasePayload{}, translate(err)
	}
	if err := d.requireBankingSector(character.SectorID); err != nil {
		return events.FighterPurchasePayload{}, err
	}
	ship, err := d.world.LoadShip(character.ShipID)
	if err != nil {
		return events.FighterPurchasePayload{}, translate(err)
	}

	room := ship.State.MaxFighters - ship.State.Fighters
	if room < units {
		units = room
	}
	if units <= 0 {
		return events.FighterPurchasePayload{}, newFault(400, "fighters_full", "fighter bay is already at capacity")
	}

	totalPrice := units * d.cfg.FighterPrice
	if character.CreditsOnHand < totalPrice {
		return events.FighterPurchasePayload{}, newFault(400, "insufficient_funds", "not enough credits on hand")
	}

	if err := d.world.UpdateCharacter(characterID, func(c *model.Character) { c.CreditsOnHand -= totalPrice }); err != nil {
		return events.FighterPurchasePayload{}, translate(err)
	}
	if err := d.world.UpdateShip(ship.ShipID, func(s *model.Ship) { s.State.Fighters += units }); err != nil {
		return events.FighterPurchasePayload{}, translate(err)
	}

	updated, _ := d.world.LoadShip(ship.ShipID)
	payload := events.FighterPurchasePayload{CharacterID: characterID, UnitsPurchased: units, TotalPrice: totalPrice, Fighters: updated.State.Fighters}
	d.bus.Emit(events.EventFighterPurchase, payload, "", events.CharacterList(characterID))
	return payload, nil
}

// TransferCredits :
// Implements §4.8 `transfer_credits` (§8 S5): both parties must share
// a sector, be out of hyperspace and out of combat; locks acquired in
// canonical sorted order via `pkg/locker.WithKeys`.
func (d *Dispatcher) TransferCredits(actorID, fromCharacterID, toCharacterID string, amount int) (events.CreditsTransferPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.CreditsTransferPayload{}, err
	}
	if err := d.authorizeControl(actorID, fromCharacterID); err != nil {
		return events.CreditsTransferPayload{}, err
	}
	if amount <= 0 {
		return events.CreditsTransferPayload{}, newFault(400, "invalid_amount", "amount must be positive")
	}
	if fromCharacterID == toCharacterID {
		return events.CreditsTransferPayload{}, newFault(400, "same_character", "cannot transfer to yourself")
	}

	guards := d.locks.WithKeys([]string{"credit:" + fromCharacterID, "credit:" + toCharacterID})
	defer locker.ReleaseAll(guards)

	from, err := d.world.LoadCharacter(fromCharacterID)
	if err != nil {
		return events.CreditsTransferPayload{}, translate(err)
	}
	to, err := d.world.LoadCharacter(toCharacterID)
	if err != nil {
		return events.CreditsTransferPayload{}, translate(err)
	}
	if err := d.requireSameSectorReadyToTransact(from, to); err != nil {
		return events.CreditsTransferPayload{}, err
	}
	if from.CreditsOnHand < amount {
		return events.CreditsTransferPayload{}, newFault(400, "insufficient_funds", "not enough credits on hand")
	}

	if err := d.world.UpdateCharacter(fromCharacterID, func(c *model.Character) { c.CreditsOnHand -= amount }); err != nil {
		return events.CreditsTransferPayload{}, translate(err)
	}
	if err := d.world.UpdateCharacter(toCharacterID, func(c *model.Character) { c.CreditsOnHand += amount }); err != nil {
		return events.CreditsTransferPayload{}, translate(err)
	}

	payload := events.CreditsTransferPayload{FromCharacterID: fromCharacterID, ToCharacterID: toCharacterID, Amount: amount}
	d.bus.Emit(events.EventCreditsTransfer, payload, "", events.CharacterList(fromCharacterID, toCharacterID))

	if updatedFrom, err := d.world.LoadCharacter(fromCharacterID); err == nil {
		d.bus.Emit(events.EventStatusUpdate, d.buildStatusSnapshot(updatedFrom), "", events.CharacterList(fromCharacterID))
	}
	if updatedTo, err := d.world.LoadCharacter(toCharacterID); err == nil {
		d.bus.Emit(events.EventStatusUpdate, d.buildStatusSnapshot(updatedTo), "", events.CharacterList(toCharacterID))
	}
	return payload, nil
}

// TransferWarpPower :
// Implements §4.8 `transfer_warp_power`, same eligibility rules as
// `transfer_credits`. The spec names no dedicated ship lock key, so
// this reuses the owning characters' `credit:` locks (§5's listed
// shared-resource keys).
func (d *Dispatcher) TransferWarpPower(actorID, fromCharacterID, toCharacterID string, amount int) (events.WarpTransferPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.WarpTransferPayload{}, err
	}
	if err := d.authorizeControl(actorID, fromCharacterID); err != nil {
		return events.WarpTransferPayload{}, err
	}
	if amount <= 0 {
		return events.WarpTransferPayload{}, newFault(400, "invalid_amount", "amount must be positive")
	}
	if fromCharacterID == toCharacterID {
		return events.WarpTransferPayload{}, newFault(400, "same_character", "cannot transfer to yourself")
	}

	guards := d.locks.WithKeys([]string{"credit:" + fromCharacterID, "credit:" + toCharacterID})
	defer locker.ReleaseAll(guards)

	from, err := d.world.LoadCharacter(fromCharacterID)
	if err != nil {
		return events.WarpTransferPayload{}, translate(err)
	}
	to, err := d.world.LoadCharacter(toCharacterID)
	if err != nil {
		return events.WarpTransferPayload{}, translate(err)
	}
	if err := d.requireSameSectorReadyToTransact(from, to); err != nil {
		return events.WarpTransferPayload{}, err
	}

	fromShip, err := d.world.LoadShip(from.ShipID)
	if err != nil {
		return events.WarpTransferPayload{}, translate(err)
	}
	toShip, err := d.world.LoadShip(to.ShipID)
	if err != nil {
		return events.WarpTransferPayload{}, translate(err)
	}
	if fromShip.State.WarpPower < amount {
		return events.WarpTransferPayload{}, newFault(400, "insufficient_warp_power", "not enough warp power to transfer")
	}
	room := toShip.State.WarpPower + amount
	if spec, ok := d.catalog.Spec(toShip.ShipType); ok && room > spec.WarpPowerCapacity {
		amount = spec.WarpPowerCapacity - toShip.State.WarpPower
	}
	if amount <= 0 {
		return events.WarpTransferPayload{}, newFault(400, "warp_power_full", "recipient warp power is already at capacity")
	}

	if err := d.world.UpdateShip(fromShip.ShipID, func(s *model.Ship) { s.State.WarpPower -= amount }); err != nil {
		return events.WarpTransferPayload{}, translate(err)
	}
	if err := d.world.UpdateShip(toShip.ShipID, func(s *model.Ship) { s.State.WarpPower += amount }); err != nil {
		return events.WarpTransferPayload{}, translate(err)
	}

	payload := events.WarpTransferPayload{FromCharacterID: fromCharacterID, ToCharacterID: toCharacterID, Amount: amount}
	d.bus.Emit(events.EventWarpTransfer, payload, "", events.CharacterList(fromCharacterID, toCharacterID))

	if updatedFrom, err := d.world.LoadCharacter(fromCharacterID); err == nil {
		d.bus.Emit(events.EventStatusUpdate, d.buildStatusSnapshot(updatedFrom), "", events.CharacterList(fromCharacterID))
	}
	if updatedTo, err := d.world.LoadCharacter(toCharacterID); err == nil {
		d.bus.Emit(events.EventStatusUpdate, d.buildStatusSnapshot(updatedTo), "", events.CharacterList(toCharacterID))
	}
	return payload, nil
}

// requireSameSectorReadyToTransact :
func (d *Dispatcher) requireSameSectorReadyToTransact(a, b model.Character) error {
	if a.InHyperspace || b.InHyperspace {
		return newFault(409, "in_hyperspace", "both parties must be out of hyperspace")
	}
	if a.SectorID != b.SectorID {
		return newFault(409, "sector_mismatch", "both parties must share a sector")
	}
	if _, inCombat := d.combat.FindEncounterFor(a.CharacterID); inCombat {
		return newFault(409, "in_combat", "cannot transact while in combat")
	}
	if _, inCombat := d.combat.FindEncounterFor(b.CharacterID); inCombat {
		return newFault(409, "in_combat", "cannot transact while in combat")
	}
	return nil
}

// BankTransfer :
// Implements §4.8 `bank_transfer`: deposit/withdraw between credits on
// hand and credits in bank, restricted to the banking sector.
func (d *Dispatcher) BankTransfer(actorID, characterID, kind string, amount int) (events.BankTransactionPayload, error) {
	if err := d.allow(actorID); err != nil {
		return events.BankTransactionPayload{}, err
	}
	if err := d.authorizeControl(actorID, characterID); err != nil {
		return events.BankTransactionPayload{}, err
	}
	if amount <= 0 {
		return events.BankTransactionPayload{}, newFault(400, "invalid_amount", "amount must be positive")
	}
	if kind != "deposit" && kind != "withdraw" {
		return events.BankTransactionPayload{}, newFault(400, "invalid_kind", `kind must be "deposit" or "withdraw"`)
	}

	guard := d.locks.Acquire("credit:" + characterID)
	defer guard.Release()

	character, err := d.world.LoadCharacter(characterID)
	if err != nil {
		return events.BankTransactionPayload{}, translate(err)
	}
	if err := d.requireBankingSector(character.SectorID); err != nil {
		return events.BankTransactionPayload{}, err
	}

	if kind == "deposit" {
		if character.CreditsOnHand < amount {
			return events.BankTransactionPayload{}, newFault(400, "insufficient_funds", "not enough credits on hand")
		}
		if err := d.world.UpdateCharacter(characterID, func(c *model.Character) {
			c.CreditsOnHand -= amount
			c.CreditsInBank += amount
		}); err != nil {
			return events.BankTransactionPayload{}, translate(err)
		}
	} else {
		if character.CreditsInBank < amount {
			return events.BankTransactionPayload{}, newFault(400, "insufficient_funds", "not enough credits in bank")
		}
		if err := d.world.UpdateCharacter(characterID, func(c *model.Character) {
			c.CreditsInBank -= amount
			c.CreditsOnHand += amount
		}); err != nil {
			return events.BankTransactionPayload{}, translate(err)
		}
	}

	updated, _ := d.world.LoadCharacter(characterID)
	payload := events.BankTransactionPayload{
		CharacterID:   characterID,
		Kind:          kind,
		Amount:        amount,
		CreditsOnHand: updated.CreditsOnHand,
		CreditsInBank: updated.CreditsInBank,
	}
	d.bus.Emit(events.EventBankTransaction, payload, "", events.CharacterList(characterID))
	return payload, nil
}
