package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spacecore/internal/model"
)

func TestSeededRNG_SameInputsYieldSameSequence(t *testing.T) {
	first := seededRNG("combat-1", 3, "char-a", "char-b")
	second := seededRNG("combat-1", 3, "char-a", "char-b")

	for i := 0; i < 5; i++ {
		assert.Equal(t, first.Float64(), second.Float64())
	}
}

func TestSeededRNG_DifferentRoundYieldsDifferentSequence(t *testing.T) {
	first := seededRNG("combat-1", 3, "char-a", "char-b")
	second := seededRNG("combat-1", 4, "char-a", "char-b")

	assert.NotEqual(t, first.Float64(), second.Float64())
}

func TestApplyAttack_DeterministicForIdenticalRNGState(t *testing.T) {
	run := func() (int, int, int) {
		rng := seededRNG("combat-1", 1, "attacker", "target")
		attacker := &model.Combatant{Fighters: 30}
		target := &model.Combatant{Fighters: 80, Shields: 20, MaxShields: 20}
		applyAttack(rng, 30, attacker, target, false, false)
		return attacker.Fighters, target.Shields, target.Fighters
	}

	a1, s1, f1 := run()
	a2, s2, f2 := run()
	assert.Equal(t, a1, a2)
	assert.Equal(t, s1, s2)
	assert.Equal(t, f1, f2)
	assert.True(t, s1 < 20 || f1 < 80, "a committed attack should deal some damage")
}

func TestApplyAttack_BracingReducesDamage(t *testing.T) {
	unbraced := &model.Combatant{Fighters: 80, Shields: 0, MaxShields: 0}
	applyAttack(seededRNG("c", 1, "a", "t"), 40, &model.Combatant{Fighters: 40}, unbraced, false, false)

	braced := &model.Combatant{Fighters: 80, Shields: 0, MaxShields: 0}
	applyAttack(seededRNG("c", 1, "a", "t"), 40, &model.Combatant{Fighters: 40}, braced, true, false)

	assert.True(t, braced.Fighters >= unbraced.Fighters, "bracing must never deal more fighter damage than not bracing")
}

func TestApplyAttack_FleeingTargetTakesReducedEfficacyDamage(t *testing.T) {
	standing := &model.Combatant{Fighters: 80, Shields: 0, MaxShields: 0}
	applyAttack(seededRNG("c", 1, "a", "t"), 40, &model.Combatant{Fighters: 40}, standing, false, false)

	fleeing := &model.Combatant{Fighters: 80, Shields: 0, MaxShields: 0}
	applyAttack(seededRNG("c", 1, "a", "t"), 40, &model.Combatant{Fighters: 40}, fleeing, false, true)

	assert.True(t, fleeing.Fighters >= standing.Fighters)
}
