package dispatch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacecore/internal/combat"
	"spacecore/internal/corp"
	"spacecore/internal/dispatch"
	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

func newTestDispatcher(t *testing.T) (*dispatch.Dispatcher, *world.Repository, *sectorindex.Index) {
	t.Helper()
	repo := world.New()
	index := sectorindex.New()
	log := logger.NewStdLogger("dispatch-test")
	cfg := config.Load()
	cfg.BankingSectorID = "sector-bank"
	cfg.WarpPowerPrice = 1
	cfg.FighterPrice = 1
	locks := locker.NewLockManager(0, log)
	hub := events.NewHub()
	bus := events.NewBus(hub)

	repo.SeedSector(model.Sector{SectorID: "sector-bank", Adjacent: []string{"sector-1"}})
	repo.SeedSector(model.Sector{SectorID: "sector-1", Adjacent: []string{"sector-bank"}})

	combatMgr := combat.New(repo, index, bus, locks, cfg, log)
	corpMgr := corp.New(repo, bus, locks, cfg, log)

	catalog := dispatch.ShipCatalog{
		"freighter": model.ShipTypeSpec{
			Name: "freighter", MaxFighters: 50, MaxShields: 50,
			CargoCapacity: 100, WarpPowerCapacity: 200, TurnsPerWarp: 10,
			Price: 5000, TradeInValue: 1000,
		},
	}

	d := dispatch.New(repo, index, bus, hub, locks, combatMgr, corpMgr, catalog, nil, cfg, log)
	return d, repo, index
}

func seedPilot(repo *world.Repository, index *sectorindex.Index, characterID, sectorID string) {
	shipID := characterID + "-ship"
	repo.SaveShip(model.Ship{
		ShipID: shipID, Name: "hauler", ShipType: "freighter",
		OwnerKind: model.OwnerCharacter, OwnerID: characterID,
		State: model.ShipState{
			Fighters: 50, Shields: 50, MaxFighters: 50, MaxShields: 50,
			WarpPower: 200, Cargo: map[string]int{},
		},
	})
	repo.SaveCharacter(model.Character{
		CharacterID: characterID, Name: characterID, Kind: model.KindHuman,
		SectorID: sectorID, ShipID: shipID, CreditsOnHand: 10000,
	})
	index.AddCharacter(sectorID, characterID)
}

func TestJoin_AssignsStarterShipOnFirstCall(t *testing.T) {
	d, repo, _ := newTestDispatcher(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", Name: "char-1", Kind: model.KindHuman})

	snapshot, err := d.Join("char-1", "char-1")
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot.Ship.ShipID)
	assert.Equal(t, "sector-bank", snapshot.SectorID)

	character, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.NotEmpty(t, character.ShipID)
}

func TestMove_ConsumesWarpPowerAndRelocates(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "char-1", "sector-bank")

	payload, err := d.Move("char-1", "char-1", "sector-1")
	require.NoError(t, err)
	assert.Equal(t, "sector-1", payload.ToSector)

	character, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.Equal(t, "sector-1", character.SectorID)

	ship, err := repo.LoadShip("char-1-ship")
	require.NoError(t, err)
	assert.Equal(t, 190, ship.State.WarpPower)
}

func TestMove_RejectsNonAdjacentSector(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "char-1", "sector-bank")
	repo.SeedSector(model.Sector{SectorID: "sector-far"})

	_, err := d.Move("char-1", "char-1", "sector-far")
	require.Error(t, err)
	var fault *dispatch.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 400, fault.Status)
}

func TestTrade_BuyDeductsCreditsAndStocksCargo(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "char-1", "sector-bank")
	repo.SavePort(model.Port{
		SectorID: "sector-bank", Code: "ORE",
		Stock:       map[string]int{"ore": 500},
		MaxCapacity: map[string]int{"ore": 1000},
	})

	payload, err := d.Trade("char-1", "char-1", "ore", "buy", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, payload.Units)

	character, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.Less(t, character.CreditsOnHand, 10000)

	ship, err := repo.LoadShip("char-1-ship")
	require.NoError(t, err)
	assert.Equal(t, 10, ship.State.Cargo["ore"])
}

func TestTransferCredits_RequiresSameSector(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "char-1", "sector-bank")
	seedPilot(repo, index, "char-2", "sector-1")

	_, err := d.TransferCredits("char-1", "char-1", "char-2", 100)
	require.Error(t, err)
	var fault *dispatch.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 409, fault.Status)
}

func TestTransferCredits_MovesBalanceBetweenCharacters(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "char-1", "sector-bank")
	seedPilot(repo, index, "char-2", "sector-bank")

	payload, err := d.TransferCredits("char-1", "char-1", "char-2", 250)
	require.NoError(t, err)
	assert.Equal(t, 250, payload.Amount)

	from, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	to, err := repo.LoadCharacter("char-2")
	require.NoError(t, err)
	assert.Equal(t, 9750, from.CreditsOnHand)
	assert.Equal(t, 10250, to.CreditsOnHand)
}

func TestLocalMapRegion_ReturnsVisitedSectorsWithinHopRadius(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	repo.SeedSector(model.Sector{SectorID: "sector-far", Adjacent: []string{"sector-1"}})
	repo.SeedSector(model.Sector{SectorID: "sector-1", Adjacent: []string{"sector-bank", "sector-far"}})
	seedPilot(repo, index, "char-1", "sector-bank")

	_, err := d.Move("char-1", "char-1", "sector-1")
	require.NoError(t, err)
	_, err = d.Move("char-1", "char-1", "sector-far")
	require.NoError(t, err)
	_, err = d.Move("char-1", "char-1", "sector-1")
	require.NoError(t, err)

	region, err := d.LocalMapRegion("char-1", "char-1", "sector-1", 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sector-1", "sector-far"}, region.VisitedSectors)
}

func TestLocalMapRegion_RejectsUnvisitedCenterSector(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "char-1", "sector-bank")

	_, err := d.LocalMapRegion("char-1", "char-1", "sector-1", 1)
	require.Error(t, err)
	var fault *dispatch.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 400, fault.Status)
}

func TestCombatInitiateAndAction_RoundTrip(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "attacker", "sector-1")
	seedPilot(repo, index, "defender", "sector-1")

	enc, err := d.CombatInitiate("attacker", "attacker")
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Contains(t, enc.Participants, "attacker")
	assert.Contains(t, enc.Participants, "defender")

	submittedRound := enc.Round
	err = d.CombatAction("attacker", "attacker", submittedRound, model.Action{Kind: model.ActionAttack, Commit: 10, TargetID: "defender"})
	require.NoError(t, err)

	err = d.CombatAction("defender", "defender", submittedRound, model.Action{Kind: model.ActionAttack, Commit: 10, TargetID: "attacker"})
	require.NoError(t, err)

	// Both participants having submitted resolves the round, so
	// resubmitting against the now-stale round number is rejected.
	err = d.CombatAction("attacker", "attacker", submittedRound, model.Action{Kind: model.ActionAttack, Commit: 10, TargetID: "defender"})
	assert.Error(t, err)
}

func TestCombatAction_RejectsWhenNotInCombat(t *testing.T) {
	d, repo, index := newTestDispatcher(t)
	seedPilot(repo, index, "bystander", "sector-1")

	err := d.CombatAction("bystander", "bystander", 1, model.Action{Kind: model.ActionBrace})
	require.Error(t, err)
	var fault *dispatch.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, 404, fault.Status)
}
