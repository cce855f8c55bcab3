package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacecore/internal/combat"
	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

func newTestManager(t *testing.T) (*combat.Manager, *world.Repository) {
	t.Helper()
	repo := world.New()
	repo.SeedSector(model.Sector{SectorID: "sector-1", Adjacent: []string{"sector-2"}})
	repo.SeedSector(model.Sector{SectorID: "sector-2", Adjacent: []string{"sector-1"}})

	log := logger.NewStdLogger("combat-test")
	cfg := config.Load()
	cfg.RoundWindow = 15 * time.Second

	idx := sectorindex.New()
	bus := events.NewBus(events.NewHub())
	locks := locker.NewLockManager(0, log)

	return combat.New(repo, idx, bus, locks, cfg, log), repo
}

func seedShip(repo *world.Repository, characterID, shipID string, fighters, shields int) {
	repo.SaveShip(model.Ship{
		ShipID: shipID,
		Name:   "Hull-" + shipID,
		State: model.ShipState{
			Fighters:    fighters,
			Shields:     shields,
			MaxFighters: fighters,
			MaxShields:  shields,
			Cargo:       make(map[string]int),
		},
	})
	repo.SaveCharacter(model.Character{
		CharacterID: characterID,
		Name:        characterID,
		SectorID:    "sector-1",
		ShipID:      shipID,
	})
}

func TestStartEncounter_NoOpponentsWhenSectorEmpty(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)

	_, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.Error(t, err)
	var noOpp *combat.NoOpponentsError
	assert.ErrorAs(t, err, &noOpp)
}

func TestStartEncounter_TwoCharactersCreatesEncounter(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	seedShip(repo, "char-2", "ship-2", 10, 10)

	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)
	assert.Len(t, enc.Participants, 2)
	assert.Equal(t, 1, enc.Round)
}

func TestStartEncounter_MergesIntoExistingEncounter(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	seedShip(repo, "char-2", "ship-2", 10, 10)

	first, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	seedShip(repo, "char-3", "ship-3", 10, 10)
	second, err := m.StartEncounter("sector-1", "char-3", nil, "test")
	require.NoError(t, err)

	assert.Equal(t, first.CombatID, second.CombatID)
	assert.Len(t, second.Participants, 3)
}

func TestSubmitAction_RejectsStaleRound(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	seedShip(repo, "char-2", "ship-2", 10, 10)
	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	err = m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionBrace}, 99)
	require.Error(t, err)
	var stale *combat.StaleRoundError
	assert.ErrorAs(t, err, &stale)
}

func TestSubmitAction_RejectsUnknownParticipant(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	seedShip(repo, "char-2", "ship-2", 10, 10)
	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	err = m.SubmitAction(enc.CombatID, "char-99", model.Action{Kind: model.ActionBrace}, enc.Round)
	require.Error(t, err)
	var notParticipant *combat.NotParticipantError
	assert.ErrorAs(t, err, &notParticipant)
}

func TestSubmitAction_RejectsAttackWithZeroCommit(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	seedShip(repo, "char-2", "ship-2", 10, 10)
	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	err = m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionAttack, TargetID: "char-2", Commit: 0}, enc.Round)
	require.Error(t, err)
	var invalid *combat.InvalidActionError
	assert.ErrorAs(t, err, &invalid)
}

func TestSubmitAction_RejectsFleeToNonAdjacentSector(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	seedShip(repo, "char-2", "ship-2", 10, 10)
	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	err = m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionFlee, DestinationSector: "sector-99"}, enc.Round)
	require.Error(t, err)
	var invalid *combat.InvalidActionError
	assert.ErrorAs(t, err, &invalid)
}

func TestSubmitAction_ResolvesRoundOnceEveryoneSubmits(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 0)
	seedShip(repo, "char-2", "ship-2", 10, 0)
	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	require.NoError(t, m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionAttack, TargetID: "char-2", Commit: 5}, 1))
	require.NoError(t, m.SubmitAction(enc.CombatID, "char-2", model.Action{Kind: model.ActionBrace}, 1))

	updated, ok := m.FindEncounterInSector("sector-1")
	require.True(t, ok)
	assert.Equal(t, 2, updated.Round)
	assert.Empty(t, updated.PendingActions)
}

func TestTollFastPath_EndsEncounterWithoutDamage(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	repo.UpdateCharacter("char-1", func(c *model.Character) { c.CreditsOnHand = 1000 })
	require.NoError(t, repo.SaveGarrison(model.Garrison{
		SectorID: "sector-1", OwnerID: "char-owner", Fighters: 20,
		Mode: model.GarrisonToll, TollAmount: 500,
	}))

	enc, err := m.StartEncounter("sector-1", "char-1", []string{"sector-1"}, "toll")
	require.NoError(t, err)

	err = m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionPay}, enc.Round)
	require.NoError(t, err)

	_, stillLive := m.FindEncounterInSector("sector-1")
	assert.False(t, stillLive)

	character, loadErr := repo.LoadCharacter("char-1")
	require.NoError(t, loadErr)
	assert.Equal(t, 500, character.CreditsOnHand)
}

func TestTollFastPath_FailsWhollyWhenCreditsInsufficient(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 10, 10)
	repo.UpdateCharacter("char-1", func(c *model.Character) { c.CreditsOnHand = 10 })
	require.NoError(t, repo.SaveGarrison(model.Garrison{
		SectorID: "sector-1", OwnerID: "char-owner", Fighters: 20,
		Mode: model.GarrisonToll, TollAmount: 500,
	}))

	enc, err := m.StartEncounter("sector-1", "char-1", []string{"sector-1"}, "toll")
	require.NoError(t, err)

	err = m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionPay}, enc.Round)
	require.Error(t, err)

	character, loadErr := repo.LoadCharacter("char-1")
	require.NoError(t, loadErr)
	assert.Equal(t, 10, character.CreditsOnHand)
}
