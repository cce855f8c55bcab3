package model

import "time"

// CharacterKind :
// Distinguishes the three flavors of character named in §3: a human
// player, an NPC driven by the game's own AI, or a corporation-owned
// ship puppeted on behalf of a corporation rather than an individual.
type CharacterKind string

// Define the possible character kinds.
const (
	KindHuman           CharacterKind = "human"
	KindNPC             CharacterKind = "npc"
	KindCorporationShip CharacterKind = "corporation_ship"
)

// Character :
// Represents a character as described in §3. A character always
// references exactly one current ship (`ShipID`) and lives in exactly
// one sector unless currently in hyperspace transit.
//
// The `CorporationID` is empty when the character belongs to no
// corporation.
type Character struct {
	CharacterID   string
	Name          string
	Kind          CharacterKind
	SectorID      string
	ShipID        string
	InHyperspace  bool
	LastActive    time.Time
	CorporationID string

	CreditsOnHand int
	CreditsInBank int
}

// Knowledge :
// Tracks what a character has personally observed of the universe:
// the sectors they have visited and the last known snapshot of any
// port they have traded at. Guarded by the `knowledge:<character_id>`
// lock (§5) whenever it is written, since visits and trades both
// mutate it.
type Knowledge struct {
	CharacterID    string
	VisitedSectors map[string]time.Time
	KnownPorts     map[string]PortSnapshot
}

// PortSnapshot :
// A character's last observed state of a port, used to answer
// `my_map`/`local_map_region` without re-querying the live
// port (which may have moved on).
type PortSnapshot struct {
	SectorID  string
	Code      string
	Stock     map[string]int
	ObservedAt time.Time
}

// NewKnowledge :
// Builds an empty knowledge record for a freshly joined character.
func NewKnowledge(characterID string) *Knowledge {
	return &Knowledge{
		CharacterID:    characterID,
		VisitedSectors: make(map[string]time.Time),
		KnownPorts:     make(map[string]PortSnapshot),
	}
}
