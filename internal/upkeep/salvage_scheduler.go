// Package upkeep hosts the periodic maintenance sweepers that run
// alongside the command dispatcher and combat scheduler: background
// work that is not triggered by any single player command but keeps
// world state consistent over time.
package upkeep

import (
	"time"

	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/world"
	"spacecore/pkg/background"
	"spacecore/pkg/config"
	"spacecore/pkg/logger"
)

// SalvageScheduler :
// Periodically sweeps expired salvage containers out of the world
// repository (§4.6 "salvage expires on `salvage_ttl_seconds`"),
// keeps the sector index in sync, and notifies sector occupants with
// a `sector.update` event. Wraps `background.Process` the same way
// `combat.Scheduler` wraps it for the round-deadline sweep.
type SalvageScheduler struct {
	world   *world.Repository
	index   *sectorindex.Index
	bus     *events.Bus
	process *background.Process
}

// NewSalvageScheduler :
func NewSalvageScheduler(repo *world.Repository, index *sectorindex.Index, bus *events.Bus, cfg config.Config, log logger.Logger) *SalvageScheduler {
	s := &SalvageScheduler{world: repo, index: index, bus: bus}
	interval := cfg.DeadlinePollInterval
	if interval <= 0 {
		interval = time.Second
	}
	s.process = background.NewProcess(interval, log).
		WithModule("salvage-scheduler").
		WithOperation(s.sweep)
	return s
}

// Start :
func (s *SalvageScheduler) Start() error {
	return s.process.Start()
}

// Stop :
func (s *SalvageScheduler) Stop() {
	s.process.Stop()
}

func (s *SalvageScheduler) sweep() (bool, error) {
	now := time.Now()
	expired := s.world.SweepExpiredSalvage(func(sc model.SalvageContainer) bool {
		return now.After(sc.ExpiresAt)
	})

	bySector := make(map[string][]string)
	for _, sc := range expired {
		s.index.RemoveSalvage(sc.SectorID, sc.SalvageID)
		bySector[sc.SectorID] = append(bySector[sc.SectorID], sc.SalvageID)
	}

	for sectorID := range bySector {
		record := s.index.Get(sectorID)
		payload := events.SectorUpdatePayload{SectorID: sectorID, SalvageIDs: record.SalvageIDList()}
		s.bus.Emit(events.EventSectorUpdate, payload, "", events.SectorOccupants(record.CharacterIDs("")))
	}

	return true, nil
}
