package runtime

import (
	"math/rand"
	"time"
)

// SeedFunc derives a seed when none was configured.
type SeedFunc func() int64

// WallClockSeed derives the seed from the current time in nanoseconds.
func WallClockSeed() int64 {
	return time.Now().UnixNano()
}

// newSeededRNG resolves seed (0 means derive) and returns the source seeded with it.
// A derivation that yields 0 records seed 1 instead.
func newSeededRNG(seed int64, derive SeedFunc) (*rand.Rand, int64) {
	if seed == 0 {
		seed = derive()
	}
	// Zero means "derive" on replay, so it can never be a recorded seed.
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewSource(seed)), seed
}
