package transport_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacecore/internal/combat"
	"spacecore/internal/corp"
	"spacecore/internal/dispatch"
	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/transport"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

func newTestDispatcher(t *testing.T) (*dispatch.Dispatcher, *world.Repository) {
	t.Helper()
	repo := world.New()
	index := sectorindex.New()
	log := logger.NewStdLogger("transport-test")
	cfg := config.Load()
	cfg.BankingSectorID = "sector-bank"

	hub := events.NewHub()
	bus := events.NewBus(hub)
	locks := locker.NewLockManager(0, log)

	repo.SeedSector(model.Sector{SectorID: "sector-bank"})

	combatMgr := combat.New(repo, index, bus, locks, cfg, log)
	corpMgr := corp.New(repo, bus, locks, cfg, log)

	d := dispatch.New(repo, index, bus, hub, locks, combatMgr, corpMgr, dispatch.ShipCatalog{}, nil, cfg, log)
	return d, repo
}

func TestHandle_RejectsRequestWithoutActor(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := transport.Handle(d, "", transport.Request{Command: "my_status"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 400, resp.Error.Status)
	assert.Equal(t, "missing_actor", resp.Error.Code)
}

func TestHandle_RejectsUnknownCommand(t *testing.T) {
	d, _ := newTestDispatcher(t)
	resp := transport.Handle(d, "", transport.Request{Command: "nonexistent", ActorID: "char-1"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, 400, resp.Error.Status)
	assert.Equal(t, "bad_request", resp.Error.Code)
}

func TestHandle_JoinAssignsStarterShip(t *testing.T) {
	d, repo := newTestDispatcher(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", Name: "char-1", Kind: model.KindHuman})

	params, err := json.Marshal(struct {
		CharacterID string `json:"character_id"`
	}{CharacterID: "char-1"})
	require.NoError(t, err)

	resp := transport.Handle(d, "", transport.Request{Command: "join", ActorID: "char-1", Params: params})
	require.Nil(t, resp.Error)
	assert.True(t, resp.OK)
	require.NotNil(t, resp.Result)
}
