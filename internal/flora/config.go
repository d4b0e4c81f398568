package flora

// SpeciesConfig is the JSON form of one species declaration.
type SpeciesConfig struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// CatalogConfig is the JSON form of a catalog: a name plus its species.
type CatalogConfig struct {
	Name    string          `json:"name"`
	Species []SpeciesConfig `json:"species"`
}

// PlantingConfig declares one or more flowers to plant: a species, a
// starting length, and an optional count (defaulting to 1).
type PlantingConfig struct {
	Species string `json:"species"`
	Length  int    `json:"length"`
	Count   int    `json:"count,omitempty"`
}

// SeedConfig is the JSON form of an initial planting list, used to
// populate a garden before stepping it.
type SeedConfig struct {
	Plantings []PlantingConfig `json:"plantings"`
}

// BuildCatalogFromConfig converts a CatalogConfig to a Catalog.
func BuildCatalogFromConfig(cfg CatalogConfig) (*Catalog, error) {
	// Validate the configuration first
	if err := ValidateCatalogConfig(cfg); err != nil {
		return nil, err
	}

	c := NewCatalog(cfg.Name)
	for _, sp := range cfg.Species {
		c = c.WithSpecies(Species{
			Name:        SpeciesName(sp.Name),
			Description: sp.Description,
			Meta:        sp.Meta,
		})
	}
	return c, nil
}
