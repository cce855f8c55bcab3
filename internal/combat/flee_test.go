package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFleeChance_ClampedToUnitInterval(t *testing.T) {
	assert.Equal(t, FleeBaseChance+FleeWarpPowerFactorCap, fleeChance(1000, 0))
	assert.Equal(t, 0.0, fleeChance(0, 1000))
}

func TestFleeChance_MoreWarpPowerIncreasesOddsUpToCap(t *testing.T) {
	low := fleeChance(0, 1)
	high := fleeChance(20, 1)
	assert.True(t, high > low)

	capped := fleeChance(1000, 1)
	assert.Equal(t, high, capped, "warp power factor should saturate at its cap")
}

func TestFleeChance_MoreHostilesReducesOdds(t *testing.T) {
	fewHostiles := fleeChance(5, 1)
	manyHostiles := fleeChance(5, 5)
	assert.True(t, manyHostiles < fewHostiles)
}
