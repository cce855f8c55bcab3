package events

import "time"

// The canonical event names from §6. Declared as constants so that
// dispatcher/combat code never repeats a string literal that could
// drift from the schema registry implied by §9's design note on
// composable payload builders.
const (
	EventStatusSnapshot      = "status.snapshot"
	EventStatusUpdate        = "status.update"
	EventMapKnowledge        = "map.knowledge"
	EventMapRegion           = "map.region"
	EventCoursePlot          = "course.plot"
	EventMovementStart       = "movement.start"
	EventMovementComplete    = "movement.complete"
	EventSectorUpdate        = "sector.update"
	EventCharacterMoved      = "character.moved"
	EventTradeExecuted       = "trade.executed"
	EventPortUpdate          = "port.update"
	EventWarpPurchase        = "warp.purchase"
	EventWarpTransfer        = "warp.transfer"
	EventCreditsTransfer     = "credits.transfer"
	EventBankTransaction     = "bank.transaction"
	EventFighterPurchase     = "fighter.purchase"
	EventGarrisonDeployed    = "garrison.deployed"
	EventGarrisonCollected   = "garrison.collected"
	EventGarrisonModeChanged = "garrison.mode_changed"
	EventGarrisonCombatAlert = "garrison.combat_alert"
	EventSalvageCreated      = "salvage.created"
	EventSalvageCollected    = "salvage.collected"
	EventCombatRoundWaiting  = "combat.round_waiting"
	EventCombatRoundResolved = "combat.round_resolved"
	EventCombatEnded         = "combat.ended"
	EventCombatRefresh       = "combat.refresh"

	EventCorporationCreated            = "corporation.created"
	EventCorporationMemberJoined       = "corporation.member_joined"
	EventCorporationMemberLeft         = "corporation.member_left"
	EventCorporationMemberKicked       = "corporation.member_kicked"
	EventCorporationDisbanded          = "corporation.disbanded"
	EventCorporationShipPurchased      = "corporation.ship_purchased"
	EventCorporationShipsAbandoned     = "corporation.ships_abandoned"
	EventCorporationInviteRegenerated  = "corporation.invite_code_regenerated"

	EventShipTradedIn = "ship.traded_in"
	EventChatMessage  = "chat.message"
	EventError        = "error"
)

// ErrorPayload :
// The payload for the `error` event, addressed only to the acting
// character per §7's error-handling design.
type ErrorPayload struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// CreditsTransferPayload :
// Backs `credits.transfer`, emitted once to each side of a transfer
// (§8 S5).
type CreditsTransferPayload struct {
	FromCharacterID string `json:"from_character_id"`
	ToCharacterID   string `json:"to_character_id"`
	Amount          int    `json:"amount"`
}

// TradeExecutedPayload :
// Backs `trade.executed` (§8 S1).
type TradeExecutedPayload struct {
	CharacterID string `json:"character_id"`
	SectorID    string `json:"sector_id"`
	Commodity   string `json:"commodity"`
	Kind        string `json:"kind"`
	Units       int    `json:"units"`
	TotalPrice  int    `json:"total_price"`
}

// PortUpdatePayload :
// Backs `port.update`, broadcast to every character in the sector
// after a trade (§8 S1).
type PortUpdatePayload struct {
	SectorID string         `json:"sector_id"`
	Code     string         `json:"code"`
	Stock    map[string]int `json:"stock"`
}

// SectorUpdatePayload :
// Backs `sector.update`, the catch-all occupant-facing notification
// for garrison/salvage deltas (§4.7 step 7).
type SectorUpdatePayload struct {
	SectorID   string   `json:"sector_id"`
	SalvageIDs []string `json:"salvage_ids,omitempty"`
	Garrison   *GarrisonView `json:"garrison,omitempty"`
}

// GarrisonView :
// The wire-safe projection of a garrison (never exposes more than
// what occupants are entitled to see).
type GarrisonView struct {
	OwnerID     string `json:"owner_id"`
	Fighters    int    `json:"fighters"`
	Mode        string `json:"mode"`
	TollAmount  int    `json:"toll_amount,omitempty"`
}

// CombatantSnapshot :
// The pre/post stats and this-round delta reported for one combatant
// in `combat.round_resolved` (§4.7 step 7).
type CombatantSnapshot struct {
	CombatantID  string `json:"combatant_id"`
	Kind         string `json:"kind"`
	FightersPre  int    `json:"fighters_pre"`
	FightersPost int    `json:"fighters_post"`
	ShieldsPre   int    `json:"shields_pre"`
	ShieldsPost  int    `json:"shields_post"`
	FighterLoss  int    `json:"fighter_loss"`
	ShieldDamage int    `json:"shield_damage"`
	Defeated     bool   `json:"defeated"`
}

// FleeResult :
// Reports the outcome of a single combatant's flee attempt this
// round (§4.7 step 4).
type FleeResult struct {
	CombatantID       string `json:"combatant_id"`
	DestinationSector string `json:"destination_sector"`
	Succeeded         bool   `json:"succeeded"`
}

// RoundResolvedPayload :
// Backs `combat.round_resolved`, emitted at the close of every round
// regardless of whether the encounter ended (§4.7 step 7).
type RoundResolvedPayload struct {
	CombatID     string               `json:"combat_id"`
	SectorID     string               `json:"sector_id"`
	Round        int                  `json:"round"`
	Participants []CombatantSnapshot  `json:"participants"`
	Actions      map[string]string    `json:"actions"`
	FleeResults  []FleeResult         `json:"flee_results,omitempty"`
	Salvage      []string             `json:"salvage,omitempty"`
}

// CombatEndedPayload :
// Backs `combat.ended`, the terminal snapshot of an encounter (§4.7
// step 7).
type CombatEndedPayload struct {
	CombatID     string              `json:"combat_id"`
	SectorID     string              `json:"sector_id"`
	Result       string              `json:"result"`
	Participants []CombatantSnapshot `json:"participants"`
	Salvage      []string            `json:"salvage,omitempty"`
}

// CorporationCreatedPayload :
// Backs `corporation.created`.
type CorporationCreatedPayload struct {
	CorpID     string `json:"corp_id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code"`
	FounderID  string `json:"founder_id"`
}

// CorporationMembershipPayload :
// Backs both `corporation.member_joined` and `corporation.member_left`.
type CorporationMembershipPayload struct {
	CorpID      string `json:"corp_id"`
	Name        string `json:"name"`
	MemberID    string `json:"member_id"`
	MemberCount int    `json:"member_count"`
}

// CorporationKickedPayload :
// Backs `corporation.member_kicked`.
type CorporationKickedPayload struct {
	CorpID      string `json:"corp_id"`
	Name        string `json:"name"`
	KickedID    string `json:"kicked_member_id"`
	KickerID    string `json:"kicker_id"`
	MemberCount int    `json:"member_count"`
}

// CorporationDisbandedPayload :
// Backs `corporation.disbanded`.
type CorporationDisbandedPayload struct {
	CorpID   string `json:"corp_id"`
	CorpName string `json:"corp_name"`
	Reason   string `json:"reason"`
}

// CorporationShipsAbandonedPayload :
// Backs `corporation.ships_abandoned`, emitted alongside
// `corporation.disbanded` when the corporation owned any ships.
type CorporationShipsAbandonedPayload struct {
	CorpID   string   `json:"corp_id"`
	CorpName string   `json:"corp_name"`
	ShipIDs  []string `json:"ship_ids"`
}

// CorporationInviteRegeneratedPayload :
// Backs `corporation.invite_code_regenerated`.
type CorporationInviteRegeneratedPayload struct {
	CorpID        string `json:"corp_id"`
	Name          string `json:"name"`
	NewInviteCode string `json:"new_invite_code"`
	GeneratedBy   string `json:"generated_by"`
}

// CorporationShipPurchasedPayload :
// Backs `corporation.ship_purchased`.
type CorporationShipPurchasedPayload struct {
	CorpID        string `json:"corp_id"`
	ShipID        string `json:"ship_id"`
	ShipType      string `json:"ship_type"`
	PurchasePrice int    `json:"purchase_price"`
	BuyerID       string `json:"buyer_id"`
}

// ShipSnapshot :
// The wire projection of a character's current ship, shared by
// `status.snapshot` and `status.update`.
type ShipSnapshot struct {
	ShipID      string         `json:"ship_id"`
	Name        string         `json:"name"`
	ShipType    string         `json:"ship_type"`
	Fighters    int            `json:"fighters"`
	Shields     int            `json:"shields"`
	MaxFighters int            `json:"max_fighters"`
	MaxShields  int            `json:"max_shields"`
	WarpPower   int            `json:"warp_power"`
	Cargo       map[string]int `json:"cargo"`
	Credits     int            `json:"credits"`
}

// StatusSnapshotPayload :
// Backs `status.snapshot`/`status.update` (§4.8 `join`/`my_status`).
type StatusSnapshotPayload struct {
	CharacterID   string       `json:"character_id"`
	SectorID      string       `json:"sector_id"`
	InHyperspace  bool         `json:"in_hyperspace"`
	CreditsOnHand int          `json:"credits_on_hand"`
	CreditsInBank int          `json:"credits_in_bank"`
	CorporationID string       `json:"corporation_id,omitempty"`
	Ship          ShipSnapshot `json:"ship"`
}

// PortSnapshotView :
// The wire projection of a character's last observed state of a port
// (§4.8 `my_map`).
type PortSnapshotView struct {
	SectorID   string         `json:"sector_id"`
	Code       string         `json:"code"`
	Stock      map[string]int `json:"stock"`
	ObservedAt time.Time      `json:"observed_at"`
}

// MapKnowledgePayload :
// Backs `map.knowledge` (§4.8 `my_map`).
type MapKnowledgePayload struct {
	CharacterID    string                      `json:"character_id"`
	VisitedSectors []string                    `json:"visited_sectors"`
	KnownPorts     map[string]PortSnapshotView `json:"known_ports"`
}

// CoursePlotPayload :
// Backs `course.plot` (§4.8 `plot_course`), a read-only query with no
// world mutation.
type CoursePlotPayload struct {
	CharacterID string   `json:"character_id"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	Path        []string `json:"path"`
}

// MapRegionPayload :
// Backs `map.region` (§4.8 `local_map_region`): the subset of a
// character's visited sectors within `MaxHops` of `CenterSector`,
// reusing the same knowledge store `my_map` reads from.
type MapRegionPayload struct {
	CharacterID    string                      `json:"character_id"`
	CenterSector   string                      `json:"center_sector"`
	MaxHops        int                         `json:"max_hops"`
	VisitedSectors []string                    `json:"visited_sectors"`
	KnownPorts     map[string]PortSnapshotView `json:"known_ports"`
}

// MovementPayload :
// Backs both `movement.start` and `movement.complete` (§4.8 `move`).
type MovementPayload struct {
	CharacterID string `json:"character_id"`
	FromSector  string `json:"from_sector"`
	ToSector    string `json:"to_sector"`
}

// WarpPurchasePayload :
// Backs `warp.purchase` (§4.8 `recharge_warp_power`).
type WarpPurchasePayload struct {
	CharacterID    string `json:"character_id"`
	UnitsPurchased int    `json:"units_purchased"`
	TotalPrice     int    `json:"total_price"`
	WarpPower      int    `json:"warp_power"`
}

// FighterPurchasePayload :
// Backs `fighter.purchase` (§4.8 `purchase_fighters`).
type FighterPurchasePayload struct {
	CharacterID    string `json:"character_id"`
	UnitsPurchased int    `json:"units_purchased"`
	TotalPrice     int    `json:"total_price"`
	Fighters       int    `json:"fighters"`
}

// WarpTransferPayload :
// Backs `warp.transfer` (§4.8 `transfer_warp_power`).
type WarpTransferPayload struct {
	FromCharacterID string `json:"from_character_id"`
	ToCharacterID   string `json:"to_character_id"`
	Amount          int    `json:"amount"`
}

// BankTransactionPayload :
// Backs `bank.transaction` (§4.8 `bank_transfer`).
type BankTransactionPayload struct {
	CharacterID   string `json:"character_id"`
	Kind          string `json:"kind"`
	Amount        int    `json:"amount"`
	CreditsOnHand int    `json:"credits_on_hand"`
	CreditsInBank int    `json:"credits_in_bank"`
}

// SalvageSourceView :
// The wire-safe projection of `model.SalvageSource`; never carries the
// defeated character's id (§8 S4).
type SalvageSourceView struct {
	ShipName string `json:"ship_name"`
	ShipType string `json:"ship_type"`
}

// SalvageCreatedPayload :
// Backs `salvage.created` (§4.8 `dump_cargo`, §4.7 step 5).
type SalvageCreatedPayload struct {
	SalvageID string            `json:"salvage_id"`
	SectorID  string            `json:"sector_id"`
	Source    SalvageSourceView `json:"source"`
}

// SalvageCollectedPayload :
// Backs `salvage.collected` (§4.8 `salvage_collect`).
type SalvageCollectedPayload struct {
	SalvageID   string         `json:"salvage_id"`
	CharacterID string         `json:"character_id"`
	Cargo       map[string]int `json:"cargo"`
	Scrap       int            `json:"scrap"`
	Credits     int            `json:"credits"`
}

// GarrisonModePayload :
// Backs `garrison.mode_changed` (§4.8 `combat_set_garrison_mode`).
type GarrisonModePayload struct {
	SectorID string       `json:"sector_id"`
	Garrison GarrisonView `json:"garrison"`
}

// GarrisonCombatAlertPayload :
// Backs `garrison.combat_alert`, a warning fired to the other sector
// occupants, without engaging combat, when a garrison is switched into
// offensive or toll mode (§4.8 `combat_set_garrison_mode`).
type GarrisonCombatAlertPayload struct {
	SectorID string `json:"sector_id"`
	OwnerID  string `json:"owner_id"`
	Mode     string `json:"mode"`
}

// ShipTradedInPayload :
// Backs `ship.traded_in` (§4.8 `ship_purchase`, personal branch),
// fired only when the purchase retired a previously character-owned
// hull for trade-in value.
type ShipTradedInPayload struct {
	CharacterID  string `json:"character_id"`
	OldShipID    string `json:"old_ship_id"`
	OldShipType  string `json:"old_ship_type"`
	NewShipID    string `json:"new_ship_id"`
	NewShipType  string `json:"new_ship_type"`
	TradeInValue int    `json:"trade_in_value"`
	Price        int    `json:"price"`
	NetCost      int    `json:"net_cost"`
}
