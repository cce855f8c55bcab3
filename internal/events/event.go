// Package events implements the typed event fan-out fabric: EventBus
// stamps and routes events (§4.3), SubscriptionHub fans them out to
// per-client queues with pause/resume and dedup semantics (§4.4).
package events

import "time"

// FilterKind :
// The four recipient-set shapes named in §3. Every variant ultimately
// resolves to a concrete set of character ids (plus, for AdminOnly, a
// standing flag) — the caller is responsible for taking whatever
// sector/corp snapshot is needed to build one (§4.3: "Filter
// resolution is synchronous, performed against a consistent snapshot
// taken under the relevant sector/corp locks by the caller").
type FilterKind string

// Define the possible filter kinds.
const (
	FilterCharacterList      FilterKind = "character_list"
	FilterSectorOccupants    FilterKind = "sector_occupants"
	FilterCorporationMembers FilterKind = "corporation_members"
	FilterAdminOnly          FilterKind = "admin_only"
)

// Filter :
// A resolved recipient-set descriptor. `CharacterIDs` is already the
// concrete snapshot for CharacterList/SectorOccupants/
// CorporationMembers; it is empty (and meaningless) for AdminOnly.
type Filter struct {
	Kind         FilterKind
	CharacterIDs []string
}

// CharacterList :
// Addresses an explicit recipient list.
func CharacterList(ids ...string) Filter {
	return Filter{Kind: FilterCharacterList, CharacterIDs: ids}
}

// SectorOccupants :
// Addresses every character the caller snapshotted as present (and
// not in hyperspace) in a sector, already excluding whoever the
// caller chose to exclude.
func SectorOccupants(ids []string) Filter {
	return Filter{Kind: FilterSectorOccupants, CharacterIDs: ids}
}

// CorporationMembers :
// Addresses every member the caller snapshotted for a corporation.
func CorporationMembers(ids []string) Filter {
	return Filter{Kind: FilterCorporationMembers, CharacterIDs: ids}
}

// AdminOnly :
// Addresses every connected admin subscription, regardless of
// character identity.
func AdminOnly() Filter {
	return Filter{Kind: FilterAdminOnly}
}

// Resolve :
// Returns the concrete character recipients and whether admin
// subscriptions are additionally addressed. Admin connections always
// receive `AdminOnly` events on top of whatever their own
// character_id would otherwise earn them (§4.4).
func (f Filter) Resolve() (recipients []string, adminOnly bool) {
	if f.Kind == FilterAdminOnly {
		return nil, true
	}
	return f.CharacterIDs, false
}

// Event :
// A single typed, stamped event as described by the wire envelope in
// §6. `Payload` is whatever JSON-serializable struct the emitting
// component built for this `Name` (the canonical event set is
// enumerated in §6).
type Event struct {
	Name      string
	Payload   any
	Summary   string
	Sequence  int64
	Timestamp time.Time
	Filter    Filter
}
