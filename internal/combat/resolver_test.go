package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacecore/internal/model"
)

func TestResolver_OneSideStandingEndsTheEncounter(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 200, 0)
	seedShip(repo, "char-2", "ship-2", 1, 0)
	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	require.NoError(t, m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionAttack, TargetID: "char-2", Commit: 200}, 1))
	require.NoError(t, m.SubmitAction(enc.CombatID, "char-2", model.Action{Kind: model.ActionBrace}, 1))

	_, stillLive := m.FindEncounterInSector("sector-1")
	assert.False(t, stillLive, "encounter should have ended once one side was wiped out")

	ship, err := repo.LoadShip("ship-2")
	require.NoError(t, err)
	assert.Equal(t, model.EscapePodType, ship.ShipType)
}

func TestResolver_DefeatedCharacterBecomesEscapePodAndDropsSalvage(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveShip(model.Ship{
		ShipID: "ship-2",
		Name:   "Freighter",
		State: model.ShipState{
			Fighters: 1, MaxFighters: 1,
			Cargo: map[string]int{"ore": 40},
		},
	})
	repo.SaveCharacter(model.Character{CharacterID: "char-2", Name: "char-2", SectorID: "sector-1", ShipID: "ship-2"})
	seedShip(repo, "char-1", "ship-1", 200, 0)

	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	require.NoError(t, m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionAttack, TargetID: "char-2", Commit: 200}, 1))
	require.NoError(t, m.SubmitAction(enc.CombatID, "char-2", model.Action{Kind: model.ActionBrace}, 1))

	salvages := repo.ListSalvageBySector("sector-1")
	require.Len(t, salvages, 1)
	assert.Equal(t, 40, salvages[0].Cargo["ore"])
	assert.Equal(t, "Freighter", salvages[0].Source.ShipName)
}

func TestResolver_RoundAdvancesWhenBothSidesSurvive(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 50, 50)
	seedShip(repo, "char-2", "ship-2", 50, 50)
	enc, err := m.StartEncounter("sector-1", "char-1", nil, "test")
	require.NoError(t, err)

	require.NoError(t, m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionAttack, TargetID: "char-2", Commit: 5}, 1))
	require.NoError(t, m.SubmitAction(enc.CombatID, "char-2", model.Action{Kind: model.ActionAttack, TargetID: "char-1", Commit: 5}, 1))

	updated, ok := m.FindEncounterInSector("sector-1")
	require.True(t, ok)
	assert.Equal(t, 2, updated.Round)
	assert.True(t, updated.Participants["char-1"].Fighters < 50)
	assert.True(t, updated.Participants["char-2"].Fighters < 50)
}

func TestResolver_GarrisonDefendsOffensivelyWithoutExplicitAction(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 100, 0)
	require.NoError(t, repo.SaveGarrison(model.Garrison{
		SectorID: "sector-1", OwnerID: "owner-npc", Fighters: 100, Mode: model.GarrisonOffensive,
	}))

	enc, err := m.StartEncounter("sector-1", "char-1", []string{"sector-1"}, "garrison-defense")
	require.NoError(t, err)

	require.NoError(t, m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionBrace}, 1))

	updated, ok := m.FindEncounterInSector("sector-1")
	require.True(t, ok)
	assert.Equal(t, 2, updated.Round)
	assert.True(t, updated.Participants["char-1"].Fighters < 100)
}

func TestResolver_CharacterAndOwnGarrisonCountAsOneSide(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 50, 0)
	seedShip(repo, "char-2", "ship-2", 1, 0)
	require.NoError(t, repo.SaveGarrison(model.Garrison{
		SectorID: "sector-1", OwnerID: "char-1", Fighters: 50, Mode: model.GarrisonDefensive,
	}))

	enc, err := m.StartEncounter("sector-1", "char-1", []string{"sector-1"}, "test")
	require.NoError(t, err)

	require.NoError(t, m.SubmitAction(enc.CombatID, "char-1", model.Action{Kind: model.ActionAttack, TargetID: "char-2", Commit: 50}, 1))
	require.NoError(t, m.SubmitAction(enc.CombatID, "char-2", model.Action{Kind: model.ActionBrace}, 1))

	_, stillLive := m.FindEncounterInSector("sector-1")
	assert.False(t, stillLive, "a character and their own surviving garrison are the same side and should end the encounter")
}

func TestTerminateByAdmin_EndsEncounterAndReinstatesGarrison(t *testing.T) {
	m, repo := newTestManager(t)
	seedShip(repo, "char-1", "ship-1", 50, 50)
	require.NoError(t, repo.SaveGarrison(model.Garrison{
		SectorID: "sector-1", OwnerID: "owner-npc", Fighters: 30, Mode: model.GarrisonDefensive,
	}))

	enc, err := m.StartEncounter("sector-1", "char-1", []string{"sector-1"}, "test")
	require.NoError(t, err)

	require.NoError(t, m.TerminateByAdmin(enc.CombatID, "admin override"))

	_, stillLive := m.FindEncounterInSector("sector-1")
	assert.False(t, stillLive)

	g, err := repo.LoadGarrison("sector-1")
	require.NoError(t, err)
	assert.Equal(t, 30, g.Fighters)
	assert.Equal(t, model.GarrisonDefensive, g.Mode)
}

