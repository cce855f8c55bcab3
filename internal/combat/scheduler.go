package combat

import (
	"time"

	"spacecore/pkg/background"
	"spacecore/pkg/config"
	"spacecore/pkg/logger"
)

// Scheduler :
// The periodic sweeper named DeadlineScheduler in §4.9: closes combat
// rounds whose deadline has passed without every participant
// submitting. Wraps the teacher's `background.Process` so startup,
// shutdown and panic recovery follow the same shape as every other
// periodic task in the core.
type Scheduler struct {
	manager *Manager
	process *background.Process
}

// NewScheduler :
func NewScheduler(manager *Manager, cfg config.Config, log logger.Logger) *Scheduler {
	s := &Scheduler{manager: manager}
	s.process = background.NewProcess(cfg.DeadlinePollInterval, log).
		WithModule("combat-scheduler").
		WithOperation(s.sweep)
	return s
}

// Start :
func (s *Scheduler) Start() error {
	return s.process.Start()
}

// Stop :
func (s *Scheduler) Stop() {
	s.process.Stop()
}

// sweep :
// Visits every sector with a live encounter and resolves the round if
// its deadline has passed. Re-checks the deadline after acquiring the
// sector's combat lock, since a concurrent `submit_action` may have
// already resolved the round between the unlocked scan and the lock
// acquisition.
func (s *Scheduler) sweep() (bool, error) {
	now := time.Now()
	for _, sectorID := range s.manager.liveSectorIDs() {
		enc, ok := s.manager.FindEncounterInSector(sectorID)
		if !ok || now.Before(enc.Deadline) {
			continue
		}
		s.resolveExpired(sectorID)
	}
	return true, nil
}

func (s *Scheduler) resolveExpired(sectorID string) {
	guard := s.manager.locks.Acquire("combat:" + sectorID)
	defer guard.Release()

	enc, ok := s.manager.FindEncounterInSector(sectorID)
	if !ok || time.Now().Before(enc.Deadline) {
		return
	}
	s.manager.resolver.resolve(enc)
}
