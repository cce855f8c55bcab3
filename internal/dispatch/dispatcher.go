// Package dispatch implements CommandDispatcher (§4.8): the single
// entry point every RPC command passes through. It authorizes the
// actor, applies the command's domain precheck, acquires the minimal
// set of locks in canonical order, mutates the world through
// internal/world, and emits the resulting events, leaving transport
// concerns (HTTP/WebSocket framing) to internal/transport.
package dispatch

import (
	"sync"

	"golang.org/x/time/rate"

	"spacecore/internal/combat"
	"spacecore/internal/corp"
	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

// ShipCatalog :
// Stands in for the external ship-stat table named out of scope in
// §1: a read-only map from a `ShipTypeSpec.Name` to its spec, seeded
// once at startup by whatever adapter owns that external collaborator
// in a full deployment.
type ShipCatalog map[string]model.ShipTypeSpec

// Spec :
// Looks up a ship type by name. Returns false if the catalog carries
// no entry for it.
func (c ShipCatalog) Spec(shipType string) (model.ShipTypeSpec, bool) {
	spec, ok := c[shipType]
	return spec, ok
}

// Dispatcher :
// Implements CommandDispatcher. Exported methods implement commands
// one by one, apart from transport helpers such as `Subscription` and
// `Unsubscribe`, which are not commands.
type Dispatcher struct {
	world   *world.Repository
	index   *sectorindex.Index
	bus     *events.Bus
	hub     *events.Hub
	locks   *locker.LockManager
	combat  *combat.Manager
	corp    *corp.Manager
	cfg     config.Config
	log     logger.Logger
	catalog ShipCatalog
	journal *events.Journal

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New :
// Builds a CommandDispatcher over the given components. `catalog`
// should already hold every ship type the deployment's external
// reference data names; a nil catalog disables cargo/fighter/shield
// capacity checks that depend on it (they are simply skipped). A nil
// `journal` disables `event_query`'s replay; it returns an empty
// result set rather than failing.
func New(repo *world.Repository, index *sectorindex.Index, bus *events.Bus, hub *events.Hub, locks *locker.LockManager, combatMgr *combat.Manager, corpMgr *corp.Manager, catalog ShipCatalog, journal *events.Journal, cfg config.Config, log logger.Logger) *Dispatcher {
	if catalog == nil {
		catalog = ShipCatalog{}
	}
	return &Dispatcher{
		world:    repo,
		index:    index,
		bus:      bus,
		hub:      hub,
		locks:    locks,
		combat:   combatMgr,
		corp:     corpMgr,
		cfg:      cfg,
		log:      log,
		catalog:  catalog,
		journal:  journal,
		limiters: make(map[string]*rate.Limiter),
	}
}

// inboundRateLimit :
// Per-actor inbound command rate, generous enough that normal play
// never brushes it but a runaway client script does.
const (
	inboundRatePerSecond = 10
	inboundBurst         = 20
)

// allow :
// Implements per-client inbound command rate limiting (§2's domain
// stack). A rejected call maps to a 409 fault rather than a 4xx
// validation error, since the request itself is well-formed — it is
// only being made too fast.
func (d *Dispatcher) allow(actorID string) error {
	d.limiterMu.Lock()
	lim, ok := d.limiters[actorID]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(inboundRatePerSecond), inboundBurst)
		d.limiters[actorID] = lim
	}
	d.limiterMu.Unlock()

	if !lim.Allow() {
		return &Fault{Status: 409, Code: "rate_limited", Detail: "too many commands submitted too quickly"}
	}
	return nil
}

// sectorOccupantIDs :
// Snapshots the current occupant list of a sector from SectorIndex,
// optionally excluding one character, for building a SectorOccupants
// filter (§3, §4.3).
func (d *Dispatcher) sectorOccupantIDs(sectorID, exclude string) []string {
	return d.index.Get(sectorID).CharacterIDs(exclude)
}
