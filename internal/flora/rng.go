package flora

import (
	"math/rand"
	"time"
)

// DefaultSeed is the fixed seed used when a reproducible source is wanted
// but no explicit seed is given (simulation runs with seed 0, tests).
const DefaultSeed int64 = 7

// NewRand builds a *rand.Rand from seed. Seed 0 selects DefaultSeed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = DefaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// newTimeRand returns a time-seeded source for live gardens.
func newTimeRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// intn draws a value in [0,n) from rng, falling back to the package-global
// locked source when rng is nil.
func intn(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.Intn(n)
	}
	return rand.Intn(n)
}
