package model

import "time"

// Sector :
// Read-only topology information for a sector, consumed from the
// external universe-generation collaborator named out of scope in
// §1. The core never mutates `Adjacent`.
type Sector struct {
	SectorID string
	Adjacent []string
	Planets  []string
}

// IsAdjacent :
// Reports whether `target` is a direct neighbour of this sector,
// used to validate flee destinations (§4.7 step 4) and moves.
func (s Sector) IsAdjacent(target string) bool {
	for _, id := range s.Adjacent {
		if id == target {
			return true
		}
	}
	return false
}

// Port :
// The mutable trading-post state for a sector (§3). `Code` is the
// three-character buy/sell classifier (e.g. "SSS", "BBB", "SBB", ...)
// consumed by the external price formula; the core only maintains
// `Stock` within `[0, MaxCapacity]` per commodity.
type Port struct {
	SectorID    string
	Code        string
	Stock       map[string]int
	MaxCapacity map[string]int
}

// GarrisonMode :
// The behavior policy a garrison follows when no action is submitted
// on its behalf (§3, §4.7 step 1).
type GarrisonMode string

// Define the possible garrison modes.
const (
	GarrisonOffensive GarrisonMode = "offensive"
	GarrisonDefensive GarrisonMode = "defensive"
	GarrisonToll      GarrisonMode = "toll"
)

// Garrison :
// A stationed group of fighters left in a sector by a character
// (§3). A sector holds at most one garrison, and it belongs to a
// single owner — enforced by `world.Repository.SaveGarrison`.
type Garrison struct {
	SectorID    string
	OwnerID     string
	Fighters    int
	Mode        GarrisonMode
	TollAmount  int
	TollBalance int
}

// SalvageSource :
// Identifies what produced a salvage container without exposing the
// identity of the defeated character (§3, S4 in §8).
type SalvageSource struct {
	ShipName string
	ShipType string
}

// SalvageContainer :
// An ephemeral sector-visible bundle of cargo/credits (§3). Expires
// at `ExpiresAt` unless collected first.
type SalvageContainer struct {
	SalvageID string
	SectorID  string
	Cargo     map[string]int
	Scrap     int
	Credits   int
	ExpiresAt time.Time
	Source    SalvageSource
}
