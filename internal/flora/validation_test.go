package flora

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	t.Run("empty has fallback message", func(t *testing.T) {
		err := &ValidationError{}
		assert.False(t, err.HasIssues())
		assert.Contains(t, err.Error(), "unknown validation error")
	})

	t.Run("single issue is the message", func(t *testing.T) {
		err := &ValidationError{}
		err.Add("catalog name is required")
		assert.True(t, err.HasIssues())
		assert.Equal(t, "catalog name is required", err.Error())
	})

	t.Run("multiple issues are joined", func(t *testing.T) {
		err := &ValidationError{}
		err.Add("first issue")
		err.Add("second issue")
		assert.Contains(t, err.Error(), "first issue")
		assert.Contains(t, err.Error(), "second issue")
		assert.Contains(t, err.Error(), "; ")
	})
}

func TestValidateCatalogConfig(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CatalogConfig
		wantIssues []string
	}{
		{
			name: "valid config",
			cfg: CatalogConfig{
				Name: "spring",
				Species: []SpeciesConfig{
					{Name: "Tulip", Description: "Spring bulb"},
					{Name: "Rose"},
				},
			},
		},
		{
			name:       "missing catalog name",
			cfg:        CatalogConfig{Species: []SpeciesConfig{{Name: "Tulip"}}},
			wantIssues: []string{"catalog name is required"},
		},
		{
			name: "missing species name",
			cfg: CatalogConfig{
				Name:    "spring",
				Species: []SpeciesConfig{{Name: ""}},
			},
			wantIssues: []string{"species name is required"},
		},
		{
			name: "whitespace-only species name",
			cfg: CatalogConfig{
				Name:    "spring",
				Species: []SpeciesConfig{{Name: "   "}},
			},
			wantIssues: []string{"species name is required"},
		},
		{
			name: "duplicate species name",
			cfg: CatalogConfig{
				Name: "spring",
				Species: []SpeciesConfig{
					{Name: "Tulip"},
					{Name: "Tulip"},
				},
			},
			wantIssues: []string{"duplicate species name: Tulip"},
		},
		{
			name: "multiple issues collected",
			cfg: CatalogConfig{
				Species: []SpeciesConfig{
					{Name: ""},
					{Name: "Rose"},
					{Name: "Rose"},
				},
			},
			wantIssues: []string{
				"catalog name is required",
				"species name is required",
				"duplicate species name: Rose",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCatalogConfig(tt.cfg)
			if len(tt.wantIssues) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Issues, len(tt.wantIssues))
			for i, want := range tt.wantIssues {
				assert.Contains(t, vErr.Issues[i], want)
			}
		})
	}
}

func TestValidateSeedConfig(t *testing.T) {
	catalog := NewCatalog("spring").WithSpecies(
		Species{Name: "Tulip"},
		Species{Name: "Rose"},
	)

	tests := []struct {
		name       string
		cfg        SeedConfig
		catalog    *Catalog
		wantIssues int
	}{
		{
			name: "valid seed",
			cfg: SeedConfig{Plantings: []PlantingConfig{
				{Species: "Tulip", Length: 1, Count: 3},
				{Species: "Rose", Length: 7},
			}},
			catalog: catalog,
		},
		{
			name: "unknown species rejected with catalog",
			cfg: SeedConfig{Plantings: []PlantingConfig{
				{Species: "Orchid", Length: 1},
			}},
			catalog:    catalog,
			wantIssues: 1,
		},
		{
			name: "unknown species allowed without catalog",
			cfg: SeedConfig{Plantings: []PlantingConfig{
				{Species: "Orchid", Length: 1},
			}},
		},
		{
			name: "missing species",
			cfg: SeedConfig{Plantings: []PlantingConfig{
				{Species: "  ", Length: 1},
			}},
			catalog:    catalog,
			wantIssues: 1,
		},
		{
			name: "non-positive length",
			cfg: SeedConfig{Plantings: []PlantingConfig{
				{Species: "Tulip", Length: 0},
			}},
			catalog:    catalog,
			wantIssues: 1,
		},
		{
			name: "negative count",
			cfg: SeedConfig{Plantings: []PlantingConfig{
				{Species: "Tulip", Length: 1, Count: -2},
			}},
			catalog:    catalog,
			wantIssues: 1,
		},
		{
			name: "issues accumulate across plantings",
			cfg: SeedConfig{Plantings: []PlantingConfig{
				{Species: "", Length: -1},
				{Species: "Orchid", Length: 2},
			}},
			catalog:    catalog,
			wantIssues: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSeedConfig(tt.cfg, tt.catalog)
			if tt.wantIssues == 0 {
				assert.NoError(t, err)
				return
			}

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Len(t, vErr.Issues, tt.wantIssues)
		})
	}
}

func TestBuildCatalogFromConfig(t *testing.T) {
	t.Run("valid config builds catalog", func(t *testing.T) {
		cfg := CatalogConfig{
			Name: "spring",
			Species: []SpeciesConfig{
				{Name: "Tulip", Description: "Spring bulb", Meta: map[string]any{"color": "red"}},
				{Name: "Rose"},
			},
		}

		c, err := BuildCatalogFromConfig(cfg)
		require.NoError(t, err)
		assert.Equal(t, "spring", c.Name)
		assert.Equal(t, 2, c.Len())

		tulip, ok := c.Species("Tulip")
		require.True(t, ok)
		assert.Equal(t, "Spring bulb", tulip.Description)
		assert.Equal(t, "red", tulip.Meta["color"])
	})

	t.Run("invalid config is rejected", func(t *testing.T) {
		_, err := BuildCatalogFromConfig(CatalogConfig{Name: ""})
		require.Error(t, err)
		var vErr *ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}
