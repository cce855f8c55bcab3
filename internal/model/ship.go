package model

// OwnerKind :
// Identifies who holds title to a ship: an individual character, a
// corporation collectively, or nobody (an abandoned hull left after a
// trade-in).
type OwnerKind string

// Define the possible ship owner kinds.
const (
	OwnerCharacter   OwnerKind = "character"
	OwnerCorporation OwnerKind = "corporation"
	OwnerUnowned     OwnerKind = "unowned"
)

// ShipTypeSpec :
// The read-only reference data for a ship type, consumed from the
// external ship-stat table named as out-of-scope in §1. The core
// never mutates these; they bound what a `ShipState` is allowed to
// hold (§3 invariant).
type ShipTypeSpec struct {
	Name              string
	MaxFighters       int
	MaxShields        int
	CargoCapacity     int
	WarpPowerCapacity int
	TurnsPerWarp      int
	Price             int
	TradeInValue      int
}

// EscapePodType :
// The degenerate ship type a defeated character is reduced to
// (§4.7 step 5, GLOSSARY). It carries no cargo and cannot fight.
const EscapePodType = "escape_pod"

// ShipState :
// The mutable state of a ship (§3). `Cargo` maps a commodity code to
// the number of units held; the sum of its values must never exceed
// the ship type's cargo capacity. `MaxFighters`/`MaxShields` are
// snapshotted from the ship type's external spec at purchase time so
// shield recharge and capacity checks never have to reach back into
// the reference table.
type ShipState struct {
	Fighters    int
	Shields     int
	MaxFighters int
	MaxShields  int
	WarpPower   int
	Cargo       map[string]int
	Credits     int
}

// Ship :
// A ship as tracked by the world repository (§3). `ShipType` names a
// `ShipTypeSpec` from the external reference table.
type Ship struct {
	ShipID   string
	Name     string
	ShipType string
	OwnerKind OwnerKind
	OwnerID   string
	State     ShipState
}

// CargoUsed :
// Returns the total number of cargo units currently held, used to
// enforce the `sum(cargo.values()) <= cargo_capacity` invariant.
func (s ShipState) CargoUsed() int {
	used := 0
	for _, units := range s.Cargo {
		used += units
	}
	return used
}
