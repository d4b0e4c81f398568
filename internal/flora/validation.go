package flora

import (
	"fmt"
	"strings"
)

// ValidationError collects multiple validation issues
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "invalid config: unknown validation error"
	}
	if len(e.Issues) == 1 {
		return e.Issues[0]
	}
	return "config validation errors: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Add(issue string) {
	e.Issues = append(e.Issues, issue)
}

func (e *ValidationError) HasIssues() bool {
	return len(e.Issues) > 0
}

// ValidateCatalogConfig performs comprehensive validation of a CatalogConfig
func ValidateCatalogConfig(cfg CatalogConfig) error {
	err := &ValidationError{}

	// Validate catalog name
	if cfg.Name == "" {
		err.Add("catalog name is required")
	}

	// Track species names for duplicate detection
	speciesMap := make(map[string]bool)

	// Validate species: every name must survive the same predicate the
	// flower constructor applies
	for i, sp := range cfg.Species {
		if !validSpecies(sp.Name) {
			err.Add("species at index " + fmt.Sprintf("%d", i) + ": species name is required")
			continue
		}
		if speciesMap[sp.Name] {
			err.Add("duplicate species name: " + sp.Name)
		} else {
			speciesMap[sp.Name] = true
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}

// ValidateSeedConfig validates an initial planting list against a catalog.
// A nil catalog skips the species-existence check.
func ValidateSeedConfig(cfg SeedConfig, catalog *Catalog) error {
	err := &ValidationError{}

	for i, p := range cfg.Plantings {
		prefix := "planting at index " + fmt.Sprintf("%d", i)

		if !validSpecies(p.Species) {
			err.Add(prefix + ": species is required")
		} else if catalog != nil {
			if _, ok := catalog.Species(SpeciesName(p.Species)); !ok {
				err.Add(prefix + ": species '" + p.Species + "' does not exist in catalog")
			}
		}

		if !validLength(p.Length) {
			err.Add(prefix + ": length must be positive, got " + fmt.Sprintf("%d", p.Length))
		}

		if p.Count < 0 {
			err.Add(prefix + ": count cannot be negative, got " + fmt.Sprintf("%d", p.Count))
		}
	}

	if err.HasIssues() {
		return err
	}
	return nil
}
