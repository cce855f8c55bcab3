package world_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacecore/internal/model"
	"spacecore/internal/world"
)

func TestRepository_SaveAndLoadCharacter(t *testing.T) {
	repo := world.New()
	c := model.Character{CharacterID: "char-1", Name: "Nova", SectorID: "0"}

	repo.SaveCharacter(c)

	found, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.Equal(t, "Nova", found.Name)
	assert.True(t, repo.ExistsCharacter("char-1"))
}

func TestRepository_LoadCharacter_NotFound(t *testing.T) {
	repo := world.New()

	_, err := repo.LoadCharacter("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRepository_UpdateCharacter(t *testing.T) {
	repo := world.New()
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 100})

	err := repo.UpdateCharacter("char-1", func(c *model.Character) {
		c.CreditsOnHand -= 30
	})
	require.NoError(t, err)

	found, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.Equal(t, 70, found.CreditsOnHand)
}

func TestRepository_UpdateCharacter_NotFound(t *testing.T) {
	repo := world.New()

	err := repo.UpdateCharacter("ghost", func(c *model.Character) {})
	assert.Error(t, err)
}

func TestRepository_ListCharactersBySector(t *testing.T) {
	repo := world.New()
	repo.SaveCharacter(model.Character{CharacterID: "a", SectorID: "2"})
	repo.SaveCharacter(model.Character{CharacterID: "b", SectorID: "2"})
	repo.SaveCharacter(model.Character{CharacterID: "c", SectorID: "3"})

	found := repo.ListCharactersBySector("2")
	assert.Len(t, found, 2)
}

func TestRepository_LoadKnowledge_CreatesEmptyOnFirstAccess(t *testing.T) {
	repo := world.New()

	k := repo.LoadKnowledge("char-1")
	require.NotNil(t, k)
	assert.Empty(t, k.VisitedSectors)

	k.VisitedSectors["0"] = k.VisitedSectors["0"]
	repo.SaveKnowledge(k)

	again := repo.LoadKnowledge("char-1")
	assert.Same(t, k, again)
}

func TestRepository_SaveGarrison_RejectsForeignOwnerConflict(t *testing.T) {
	repo := world.New()
	require.NoError(t, repo.SaveGarrison(model.Garrison{SectorID: "1", OwnerID: "owner-a", Fighters: 50}))

	err := repo.SaveGarrison(model.Garrison{SectorID: "1", OwnerID: "owner-b", Fighters: 10})
	require.Error(t, err)

	var conflict *world.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestRepository_SaveGarrison_SameOwnerOverwrites(t *testing.T) {
	repo := world.New()
	require.NoError(t, repo.SaveGarrison(model.Garrison{SectorID: "1", OwnerID: "owner-a", Fighters: 50}))
	require.NoError(t, repo.SaveGarrison(model.Garrison{SectorID: "1", OwnerID: "owner-a", Fighters: 80}))

	g, err := repo.LoadGarrison("1")
	require.NoError(t, err)
	assert.Equal(t, 80, g.Fighters)
}

func TestRepository_DeleteGarrison(t *testing.T) {
	repo := world.New()
	require.NoError(t, repo.SaveGarrison(model.Garrison{SectorID: "1", OwnerID: "owner-a", Fighters: 50}))

	repo.DeleteGarrison("1")

	assert.False(t, repo.ExistsGarrison("1"))
}

func TestRepository_SweepExpiredSalvage(t *testing.T) {
	repo := world.New()
	repo.SaveSalvage(model.SalvageContainer{SalvageID: "s1", SectorID: "0"})
	repo.SaveSalvage(model.SalvageContainer{SalvageID: "s2", SectorID: "0"})

	expired := repo.SweepExpiredSalvage(func(s model.SalvageContainer) bool {
		return s.SalvageID == "s1"
	})

	require.Len(t, expired, 1)
	assert.Equal(t, "s1", expired[0].SalvageID)
	assert.False(t, repo.ExistsSalvage("s1"))
	assert.True(t, repo.ExistsSalvage("s2"))
}

func TestRepository_CorporationRoundTrip(t *testing.T) {
	repo := world.New()
	corp := model.NewCorporation("corp-1", "Star Traders", "INVITE01", "char-1", time.Now())
	repo.SaveCorporation(corp)

	found, err := repo.LoadCorporation("corp-1")
	require.NoError(t, err)
	assert.Equal(t, "Star Traders", found.Name)

	byCode, ok := repo.FindCorporationByInviteCode("INVITE01")
	require.True(t, ok)
	assert.Equal(t, "corp-1", byCode.CorpID)
}

func TestRepository_Reset_ClearsGameplayStateButKeepsSectors(t *testing.T) {
	repo := world.New()
	repo.SeedSector(model.Sector{SectorID: "0", Adjacent: []string{"1"}})
	repo.SaveCharacter(model.Character{CharacterID: "char-1"})

	repo.Reset()

	assert.False(t, repo.ExistsCharacter("char-1"))
	assert.True(t, repo.ExistsSector("0"))
}
