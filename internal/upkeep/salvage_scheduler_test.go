package upkeep_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/upkeep"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/logger"
)

func TestSalvageScheduler_SweepsExpiredContainerAndNotifiesOccupants(t *testing.T) {
	repo := world.New()
	repo.SeedSector(model.Sector{SectorID: "sector-1"})
	repo.SaveSalvage(model.SalvageContainer{
		SalvageID: "wreck-1",
		SectorID:  "sector-1",
		Credits:   100,
		ExpiresAt: time.Now().Add(-time.Second),
	})

	index := sectorindex.New()
	index.AddSalvage("sector-1", "wreck-1")
	index.AddCharacter("sector-1", "char-1")

	log := logger.NewStdLogger("upkeep-test")
	cfg := config.Load()
	cfg.DeadlinePollInterval = 10 * time.Millisecond

	hub := events.NewHub()
	bus := events.NewBus(hub)
	sub := hub.Register("sub-1", "char-1", false)

	scheduler := upkeep.NewSalvageScheduler(repo, index, bus, cfg, log)
	require.NoError(t, scheduler.Start())
	defer scheduler.Stop()

	select {
	case ev := <-sub.Outbound():
		assert.Equal(t, events.EventSectorUpdate, ev.Name)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sector.update after salvage expiry")
	}

	assert.False(t, repo.ExistsSalvage("wreck-1"))
	record := index.Get("sector-1")
	assert.NotContains(t, record.SalvageIDList(), "wreck-1")
}
