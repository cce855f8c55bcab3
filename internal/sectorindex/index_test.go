package sectorindex_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"

	"spacecore/internal/model"
	"spacecore/internal/sectorindex"
)

func TestIndex_GetUnseenSectorIsEmpty(t *testing.T) {
	idx := sectorindex.New()

	rec := idx.Get("0")

	assert.Equal(t, "0", rec.SectorID)
	assert.Empty(t, rec.Characters)
}

func TestIndex_AddAndRemoveCharacter(t *testing.T) {
	idx := sectorindex.New()

	idx.AddCharacter("2", "char-1")
	idx.AddCharacter("2", "char-2")

	ids := idx.Get("2").CharacterIDs("")
	sort.Strings(ids)
	assert.Equal(t, []string{"char-1", "char-2"}, ids)

	idx.RemoveCharacter("2", "char-1")
	assert.Equal(t, []string{"char-2"}, idx.Get("2").CharacterIDs(""))
}

func TestIndex_CharacterIDsExcludesGivenID(t *testing.T) {
	idx := sectorindex.New()
	idx.AddCharacter("2", "char-1")
	idx.AddCharacter("2", "char-2")

	ids := idx.Get("2").CharacterIDs("char-1")

	assert.Equal(t, []string{"char-2"}, ids)
}

func TestIndex_UpdatePreservesPriorSnapshot(t *testing.T) {
	idx := sectorindex.New()
	idx.AddCharacter("2", "char-1")

	before := idx.Get("2")
	idx.AddCharacter("2", "char-2")
	after := idx.Get("2")

	assert.Len(t, before.Characters, 1, "a previously fetched record must not mutate in place")
	assert.Len(t, after.Characters, 2)
}

func TestIndex_SetAndClearGarrison(t *testing.T) {
	idx := sectorindex.New()
	g := &model.Garrison{SectorID: "1", OwnerID: "owner-a", Fighters: 50, Mode: model.GarrisonToll}

	idx.SetGarrison("1", g)
	assert.Equal(t, g, idx.Get("1").Garrison)

	idx.SetGarrison("1", nil)
	assert.Nil(t, idx.Get("1").Garrison)
}

func TestIndex_AddAndRemoveSalvage(t *testing.T) {
	idx := sectorindex.New()

	idx.AddSalvage("0", "salvage-1")
	_, ok := idx.Get("0").SalvageIDs["salvage-1"]
	assert.True(t, ok)

	idx.RemoveSalvage("0", "salvage-1")
	_, ok = idx.Get("0").SalvageIDs["salvage-1"]
	assert.False(t, ok)
}
