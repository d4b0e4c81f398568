package flora

import "errors"

// Construction errors returned by NewFlower. They are wrapped with the
// offending value, so callers match them with errors.Is.
var (
	// ErrInvalidSpecies rejects species labels that are empty or contain
	// only whitespace.
	ErrInvalidSpecies = errors.New("flora: invalid species")

	// ErrInvalidLength rejects initial lengths that are zero or negative.
	ErrInvalidLength = errors.New("flora: invalid length")
)

// Garden and manager lookup errors.
var (
	// ErrUnknownSpecies is returned when planting a species the garden's
	// catalog does not declare.
	ErrUnknownSpecies = errors.New("flora: species not in catalog")

	// ErrFlowerNotFound is returned when a flower ID is not planted in
	// the garden.
	ErrFlowerNotFound = errors.New("flora: flower not found")

	// ErrGardenExists is returned when creating a garden under an ID that
	// is already taken.
	ErrGardenExists = errors.New("flora: garden already exists")

	// ErrGardenNotFound is returned when a garden ID is not registered.
	ErrGardenNotFound = errors.New("flora: garden not found")
)
