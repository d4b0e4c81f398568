package flora

import (
	"encoding/json"
	"fmt"
)

// Snapshot represents a point-in-time capture of a garden's state.
// It includes the garden ID, current time, and all planted flowers.
type Snapshot struct {
	GardenID GardenID     `json:"garden_id"`
	Time     int64        `json:"time"`
	Flowers  []FlowerView `json:"flowers"`
}

// ValidateSnapshot performs validation checks on a snapshot.
// It verifies that:
//   - All flower IDs are non-empty and unique
//   - All species exist in the provided catalog (if catalog is not nil)
//   - Every recorded length is strictly positive
//
// If catalog is nil, the species-existence check is skipped.
// Returns an error if validation fails, nil otherwise.
func ValidateSnapshot(snapshot Snapshot, catalog *Catalog) error {
	seenIDs := make(map[FlowerID]struct{})

	for i, fl := range snapshot.Flowers {
		if fl.ID == "" {
			return fmt.Errorf("flower at index %d has empty ID", i)
		}

		if _, exists := seenIDs[fl.ID]; exists {
			return fmt.Errorf("duplicate flower ID: %s", fl.ID)
		}
		seenIDs[fl.ID] = struct{}{}

		if !validSpecies(fl.Species) {
			return fmt.Errorf("flower %s has invalid species: %q", fl.ID, fl.Species)
		}

		if catalog != nil {
			if _, exists := catalog.Species(SpeciesName(fl.Species)); !exists {
				return fmt.Errorf("flower %s has invalid species: %s (not found in catalog)", fl.ID, fl.Species)
			}
		}

		// The length invariant holds at rest too
		if !validLength(fl.Length) {
			return fmt.Errorf("flower %s has invalid length: %d", fl.ID, fl.Length)
		}
	}

	return nil
}

// EncodeSnapshotJSON encodes a snapshot to JSON format.
// Returns the JSON bytes and any encoding error.
func EncodeSnapshotJSON(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotJSON decodes a snapshot from JSON format.
// Returns the decoded snapshot and any decoding error.
func DecodeSnapshotJSON(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snapshot, nil
}
