package flora

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlower(t *testing.T) {
	tests := []struct {
		name    string
		species string
		length  int
		wantErr error
	}{
		{name: "valid flower", species: "Tulip", length: 1},
		{name: "valid with surrounding whitespace", species: "  Rose  ", length: 3},
		{name: "empty species", species: "", length: 1, wantErr: ErrInvalidSpecies},
		{name: "whitespace-only species", species: "   ", length: 1, wantErr: ErrInvalidSpecies},
		{name: "zero length", species: "Tulip", length: 0, wantErr: ErrInvalidLength},
		{name: "negative length", species: "Tulip", length: -1, wantErr: ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFlower(tt.species, tt.length)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.species, f.Species())
			assert.Equal(t, tt.length, f.Length())
		})
	}
}

func TestNewFlower_SpeciesValidatedOnceOnly(t *testing.T) {
	// Species validation happens at construction; afterwards the label is
	// immutable and never re-checked against the caller.
	f, err := NewFlower("Tulip", 1)
	require.NoError(t, err)
	assert.Equal(t, "Tulip", f.Species())

	f.Grow()
	f.Wither()
	assert.Equal(t, "Tulip", f.Species())
}

func TestFlower_Grow(t *testing.T) {
	tests := []struct {
		name   string
		start  int
		want   int
	}{
		{name: "short flower grows by 1", start: 1, want: 2},
		{name: "mid flower grows by 1", start: 5, want: 6},
		{name: "boundary length 10 grows by 1", start: 10, want: 11},
		{name: "long flower grows by 2", start: 11, want: 13},
		{name: "longer flower grows by 2", start: 20, want: 22},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFlower("Tulip", tt.start)
			require.NoError(t, err)
			f.Grow()
			assert.Equal(t, tt.want, f.Length())
		})
	}
}

func TestFlower_Wither(t *testing.T) {
	tests := []struct {
		name  string
		start int
		want  int
	}{
		{name: "shrinks by 1", start: 5, want: 4},
		{name: "long flower shrinks by 1", start: 12, want: 11},
		{name: "length 2 reaches the floor", start: 2, want: 1},
		{name: "floor stays at 1", start: 1, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFlower("Tulip", tt.start)
			require.NoError(t, err)
			f.Wither()
			assert.Equal(t, tt.want, f.Length())
		})
	}
}

func TestFlower_Wither_RepeatedStaysAtFloor(t *testing.T) {
	f, err := NewFlower("Tulip", 3)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		f.Wither()
		assert.GreaterOrEqual(t, f.Length(), 1)
	}
	assert.Equal(t, 1, f.Length())
}

func TestFlower_IsMature(t *testing.T) {
	for length := 1; length <= 20; length++ {
		f, err := NewFlower("Tulip", length)
		require.NoError(t, err)
		assert.Equal(t, length > 5, f.IsMature(), "length %d", length)
	}
}

func TestFlower_String(t *testing.T) {
	f, err := NewFlower("Tulip", 3)
	require.NoError(t, err)
	assert.Equal(t, "flora.Flower: Species=Tulip Length=3", f.String())

	f.Grow()
	assert.Equal(t, "flora.Flower: Species=Tulip Length=4", f.String())
}

func TestFlower_RandomGrowOrWither_AppliesReturnedAction(t *testing.T) {
	rng := NewRand(99)

	for i := 0; i < 500; i++ {
		f, err := NewFlower("Tulip", 50)
		require.NoError(t, err)

		old := f.Length()
		action := f.RandomGrowOrWither(rng)

		switch action {
		case ActionNone:
			assert.Equal(t, old, f.Length())
		case ActionGrow:
			assert.Equal(t, old+2, f.Length()) // 50 > 10, so growth is 2
		case ActionWither:
			assert.Equal(t, old-1, f.Length())
		default:
			t.Fatalf("unexpected action %v", action)
		}
	}
}

func TestFlower_RandomGrowOrWither_RoughlyUniform(t *testing.T) {
	rng := NewRand(DefaultSeed)
	counts := make(map[Action]int)
	const trials = 3000

	for i := 0; i < trials; i++ {
		f, err := NewFlower("Tulip", 100)
		require.NoError(t, err)
		counts[f.RandomGrowOrWither(rng)]++
	}

	for _, action := range []Action{ActionNone, ActionGrow, ActionWither} {
		fraction := float64(counts[action]) / float64(trials)
		assert.InDelta(t, 1.0/3.0, fraction, 0.06, "action %s fired %d/%d times", action, counts[action], trials)
	}
}

func TestFlower_RandomGrowOrWither_NilRNG(t *testing.T) {
	f, err := NewFlower("Tulip", 5)
	require.NoError(t, err)

	// nil falls back to the package-global source
	action := f.RandomGrowOrWither(nil)
	assert.Contains(t, []Action{ActionNone, ActionGrow, ActionWither}, action)
	assert.GreaterOrEqual(t, f.Length(), 1)
}

func TestFlower_RandomGrowOrWither_NeverBreaksInvariant(t *testing.T) {
	SetDebugChecks(true)
	t.Cleanup(func() { SetDebugChecks(false) })

	f, err := NewFlower("Tulip", 1)
	require.NoError(t, err)

	rng := NewRand(3)
	for i := 0; i < 1000; i++ {
		f.RandomGrowOrWither(rng)
		assert.GreaterOrEqual(t, f.Length(), 1)
	}
}

func TestFlower_Scenarios(t *testing.T) {
	// Run the fixed scenarios with debug checks on so the post-condition
	// and invariant checks are exercised along the way.
	SetDebugChecks(true)
	t.Cleanup(func() { SetDebugChecks(false) })

	t.Run("short flower grows one by one", func(t *testing.T) {
		f, err := NewFlower("Tulip", 1)
		require.NoError(t, err)

		f.Grow()
		assert.Equal(t, 2, f.Length())
		f.Grow()
		assert.Equal(t, 3, f.Length())
	})

	t.Run("long flower withers one by one", func(t *testing.T) {
		f, err := NewFlower("Tulip", 11)
		require.NoError(t, err)

		f.Wither()
		assert.Equal(t, 10, f.Length())
		f.Wither()
		assert.Equal(t, 9, f.Length())
	})

	t.Run("withering at the floor changes nothing", func(t *testing.T) {
		f, err := NewFlower("Tulip", 1)
		require.NoError(t, err)

		f.Wither()
		assert.Equal(t, 1, f.Length())
		f.Wither()
		assert.Equal(t, 1, f.Length())
	})
}
