package flora

import (
	"fmt"
	"math/rand"
	"strings"
)

// Flower is a growing entity: an immutable species label plus a length
// that changes one tending at a time. The length is strictly positive at
// every observable point.
type Flower struct {
	species string
	length  int
}

// NewFlower creates a flower with the given species label and initial
// length. The species must contain at least one non-whitespace character
// and the length must be positive; otherwise ErrInvalidSpecies or
// ErrInvalidLength is returned with the offending value attached.
func NewFlower(species string, initialLength int) (*Flower, error) {
	if !validSpecies(species) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSpecies, species)
	}
	if !validLength(initialLength) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, initialLength)
	}
	f := &Flower{species: species, length: initialLength}
	f.checkInvariant()
	return f, nil
}

// Species returns the species label set at construction.
func (f *Flower) Species() string {
	return f.species
}

// Length returns the current length.
func (f *Flower) Length() int {
	return f.length
}

// IsMature reports whether the flower has grown past length 5.
func (f *Flower) IsMature() bool {
	return f.length > 5
}

// Grow lengthens the flower: by 2 once it is longer than 10, by 1
// otherwise.
func (f *Flower) Grow() {
	old := f.length
	f.length = old + growthFor(old)
	assertf(f.length > old, "grow did not lengthen %v (was %d)", f, old)
	f.checkInvariant()
}

// growthFor returns the tending increase for a flower of the given length.
func growthFor(length int) int {
	if length > 10 {
		return 2
	}
	return 1
}

// Wither shortens the flower by 1. A flower of length 1 stays at 1; the
// length never reaches zero.
func (f *Flower) Wither() {
	old := f.length
	if f.length > 1 {
		f.length--
	}
	assertf(f.length <= old, "wither lengthened %v (was %d)", f, old)
	f.checkInvariant()
}

// RandomGrowOrWither draws one of three equally likely outcomes and
// applies it: leave the flower alone, Grow, or Wither. It returns the
// action taken. A nil rng draws from the shared package source.
func (f *Flower) RandomGrowOrWither(rng *rand.Rand) Action {
	switch n := intn(rng, 3); n {
	case 0:
		return ActionNone
	case 1:
		f.Grow()
		return ActionGrow
	case 2:
		f.Wither()
		return ActionWither
	default:
		panic(fmt.Sprintf("flora: impossible tending draw %d", n))
	}
}

// String renders the flower for debug output. The format is diagnostic,
// not a stable interface.
func (f *Flower) String() string {
	return fmt.Sprintf("flora.Flower: Species=%s Length=%d", f.species, f.length)
}

// checkInvariant enforces the class invariant when debug checks are on:
// a valid species label and a strictly positive length.
func (f *Flower) checkInvariant() {
	assertf(validSpecies(f.species) && validLength(f.length), "invariant violated on %v", f)
}

// validSpecies reports whether s has content after trimming whitespace.
// Shared by the constructor and the invariant check.
func validSpecies(s string) bool {
	return strings.TrimSpace(s) != ""
}

// validLength reports whether l is a legal flower length.
// Shared by the constructor and the invariant check.
func validLength(l int) bool {
	return l > 0
}
