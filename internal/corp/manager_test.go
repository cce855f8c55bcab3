package corp_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spacecore/internal/corp"
	"spacecore/internal/events"
	"spacecore/internal/model"
	"spacecore/internal/world"
	"spacecore/pkg/config"
	"spacecore/pkg/locker"
	"spacecore/pkg/logger"
)

func newTestManager(t *testing.T) (*corp.Manager, *world.Repository) {
	t.Helper()
	repo := world.New()
	log := logger.NewStdLogger("corp-test")
	cfg := config.Load()
	cfg.CorporationCreationCost = 1000
	locks := locker.NewLockManager(0, log)
	bus := events.NewBus(events.NewHub())
	return corp.New(repo, bus, locks, cfg, log), repo
}

func TestCreate_DeductsCostAndSetsFounderMembership(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)
	assert.Len(t, c.Members, 1)

	founder, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.Equal(t, c.CorpID, founder.CorporationID)
	assert.Equal(t, 4000, founder.CreditsOnHand)
}

func TestCreate_RejectsInsufficientCredits(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 10})

	_, err := m.Create("char-1", "Stellar Traders")
	require.Error(t, err)
	var insufficient *corp.InsufficientFundsError
	assert.ErrorAs(t, err, &insufficient)
}

func TestCreate_RejectsAlreadyInCorporation(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000, CorporationID: "existing"})

	_, err := m.Create("char-1", "Stellar Traders")
	require.Error(t, err)
	var already *corp.AlreadyMemberError
	assert.ErrorAs(t, err, &already)
}

func TestJoin_AddsMemberWithValidInviteCode(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})
	repo.SaveCharacter(model.Character{CharacterID: "char-2"})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)

	require.NoError(t, m.Join("char-2", c.CorpID, c.InviteCode))

	joiner, err := repo.LoadCharacter("char-2")
	require.NoError(t, err)
	assert.Equal(t, c.CorpID, joiner.CorporationID)

	updated, err := repo.LoadCorporation(c.CorpID)
	require.NoError(t, err)
	assert.Len(t, updated.Members, 2)
}

func TestJoin_RejectsWrongInviteCode(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})
	repo.SaveCharacter(model.Character{CharacterID: "char-2"})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)

	err = m.Join("char-2", c.CorpID, "WRONGCODE")
	require.Error(t, err)
	var invalid *corp.InvalidInviteCodeError
	assert.ErrorAs(t, err, &invalid)
}

func TestLeave_LastMemberDisbandsAndAbandonsShips(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)
	repo.SaveShip(model.Ship{ShipID: "corp-ship-1", OwnerKind: model.OwnerCorporation, OwnerID: c.CorpID})

	require.NoError(t, m.Leave("char-1"))

	assert.False(t, repo.ExistsCorporation(c.CorpID))
	ship, err := repo.LoadShip("corp-ship-1")
	require.NoError(t, err)
	assert.Equal(t, model.OwnerUnowned, ship.OwnerKind)

	founder, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.Empty(t, founder.CorporationID)
}

func TestLeave_NonLastMemberJustDeparts(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})
	repo.SaveCharacter(model.Character{CharacterID: "char-2"})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)
	require.NoError(t, m.Join("char-2", c.CorpID, c.InviteCode))

	require.NoError(t, m.Leave("char-2"))

	assert.True(t, repo.ExistsCorporation(c.CorpID))
	updated, err := repo.LoadCorporation(c.CorpID)
	require.NoError(t, err)
	assert.Len(t, updated.Members, 1)
}

func TestKick_RemovesTargetButNeverEmptiesCorp(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})
	repo.SaveCharacter(model.Character{CharacterID: "char-2"})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)
	require.NoError(t, m.Join("char-2", c.CorpID, c.InviteCode))

	require.NoError(t, m.Kick("char-1", "char-2"))

	target, err := repo.LoadCharacter("char-2")
	require.NoError(t, err)
	assert.Empty(t, target.CorporationID)
	assert.True(t, repo.ExistsCorporation(c.CorpID))
}

func TestKick_RejectsSelfKick(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)

	err = m.Kick("char-1", "char-1")
	require.Error(t, err)
	var self *corp.SelfKickError
	assert.ErrorAs(t, err, &self)
	_ = c
}

func TestRegenerateInviteCode_ProducesDifferentCode(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)

	newCode, err := m.RegenerateInviteCode("char-1")
	require.NoError(t, err)
	assert.NotEqual(t, c.InviteCode, newCode)

	updated, err := repo.LoadCorporation(c.CorpID)
	require.NoError(t, err)
	assert.Equal(t, newCode, updated.InviteCode)
}

func TestPurchaseShipForCorporation_DrawsFromBankAndCreatesPuppetCharacter(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsOnHand: 5000, CreditsInBank: 20000, SectorID: "sector-1"})

	c, err := m.Create("char-1", "Stellar Traders")
	require.NoError(t, err)

	spec := model.ShipTypeSpec{Name: "hauler", MaxFighters: 10, MaxShields: 10, Price: 8000}
	ship, puppet, err := m.PurchaseShipForCorporation("char-1", spec, "Hauler One", 500)
	require.NoError(t, err)

	assert.Equal(t, model.OwnerCorporation, ship.OwnerKind)
	assert.Equal(t, c.CorpID, ship.OwnerID)
	assert.Equal(t, 500, ship.State.Credits)
	assert.Equal(t, model.KindCorporationShip, puppet.Kind)
	assert.Equal(t, c.CorpID, puppet.CorporationID)

	buyer, err := repo.LoadCharacter("char-1")
	require.NoError(t, err)
	assert.Equal(t, 20000-8000-500, buyer.CreditsInBank)

	updated, err := repo.LoadCorporation(c.CorpID)
	require.NoError(t, err)
	assert.Contains(t, updated.Ships, ship.ShipID)
}

func TestPurchaseShipForCorporation_RejectsNonMember(t *testing.T) {
	m, repo := newTestManager(t)
	repo.SaveCharacter(model.Character{CharacterID: "char-1", CreditsInBank: 20000})

	_, _, err := m.PurchaseShipForCorporation("char-1", model.ShipTypeSpec{Price: 1000}, "Nope", 0)
	require.Error(t, err)
	var notMember *corp.NotMemberError
	assert.ErrorAs(t, err, &notMember)
}
