package flora

// SpeciesName is the name/identifier of a flower species.
type SpeciesName string

// Species describes a kind of flower a garden may grow.
// Each species has a name, description, and optional metadata.
type Species struct {
	Name        SpeciesName
	Description string
	Meta        map[string]any
}

// Catalog is the declared set of species a garden recognizes. A garden
// without a catalog accepts any valid species label.
type Catalog struct {
	Name    string
	species map[SpeciesName]Species
}

// NewCatalog creates a new catalog with the given name.
// The catalog starts with no species.
func NewCatalog(name string) *Catalog {
	return &Catalog{
		Name:    name,
		species: make(map[SpeciesName]Species),
	}
}

// WithSpecies adds species definitions to the catalog and returns the
// catalog for method chaining.
func (c *Catalog) WithSpecies(species ...Species) *Catalog {
	for _, sp := range species {
		c.species[sp.Name] = sp
	}
	return c
}

// Species retrieves a species definition by name.
// Returns the species and a boolean indicating if it was found.
func (c *Catalog) Species(name SpeciesName) (Species, bool) {
	sp, ok := c.species[name]
	return sp, ok
}

// Names returns all declared species names in no particular order.
func (c *Catalog) Names() []SpeciesName {
	names := make([]SpeciesName, 0, len(c.species))
	for name := range c.species {
		names = append(names, name)
	}
	return names
}

// Len returns the number of declared species.
func (c *Catalog) Len() int {
	return len(c.species)
}
