package combat

import (
	"hash/fnv"
	"math/rand"
)

// seededRNG :
// Builds a deterministic RNG seeded from `(combat_id, round, attacker,
// target)` (§4.7 step 3: "the same inputs MUST yield the same
// outputs"). Grounded on the teacher's fight simulation, which seeds
// a `rand.Source` once per fight and never reseeds mid-fight so the
// sequence stays replayable; here a fresh seed is derived per
// (round, attacker, target) tuple instead of per whole encounter,
// since damage rolls and flee rolls must each be independently
// reproducible from their own inputs rather than from call order.
func seededRNG(combatID string, round int, attacker, target string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(combatID))
	h.Write([]byte{byte(round), byte(round >> 8), byte(round >> 16), byte(round >> 24)})
	h.Write([]byte(attacker))
	h.Write([]byte(target))
	seed := int64(h.Sum64())
	return rand.New(rand.NewSource(seed))
}
