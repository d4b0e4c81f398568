package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/florelab/floradb/internal/config"
	"github.com/florelab/floradb/internal/flora"
	"github.com/florelab/floradb/internal/logging"
	"github.com/florelab/floradb/internal/server"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run a headless garden simulation",
	Long: `Run a garden for a fixed number of steps without the HTTP server and
print a per-species summary.

The catalog file declares the accepted species. An optional seed file
lists the initial plantings:

  {"plantings": [{"species": "Tulip", "length": 2, "count": 5}]}

Seed 0 selects a fixed seed, so runs are reproducible by default.`,
	RunE: runSim,
}

var (
	simCatalogFile string
	simSeedFile    string
	simTicks       int
	simSeed        int64
	simGardenID    string
)

func init() {
	rootCmd.AddCommand(simCmd)

	simCmd.Flags().StringVar(&simCatalogFile, "catalog-file", "", "path to catalog JSON file (required)")
	simCmd.Flags().StringVar(&simSeedFile, "seed-file", "", "path to seed plantings JSON file (optional)")
	simCmd.Flags().IntVar(&simTicks, "ticks", 100, "number of steps to run")
	simCmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 uses the fixed default)")
	simCmd.Flags().StringVar(&simGardenID, "garden-id", "simulation", "garden ID for the run")
	_ = simCmd.MarkFlagRequired("catalog-file")
}

func runSim(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	logger := logging.New(cfg.Logging.Level)

	ticks := cfg.Sim.Ticks
	if cmd.Flags().Changed("ticks") {
		ticks = simTicks
	}
	seed := cfg.Sim.Seed
	if cmd.Flags().Changed("seed") {
		seed = simSeed
	}

	catalogCfg, catalog, err := server.LoadCatalogFile(simCatalogFile)
	if err != nil {
		return err
	}

	g := flora.NewGarden(catalog)
	g.SetGardenID(flora.GardenID(simGardenID))
	g.SetLogger(logger)
	g.SetRand(flora.NewRand(seed))

	if simSeedFile != "" {
		if err := plantSeedFile(g, simSeedFile, catalog); err != nil {
			return err
		}
	}

	logger.Infof("Simulation starting: garden_id=%s flowers=%d ticks=%d seed=%d",
		simGardenID, g.Len(), ticks, seed)

	for i := 0; i < ticks; i++ {
		g.Step()
	}

	printSummary(cmd.OutOrStdout(), catalogCfg.Name, ticks, g)
	return nil
}

// plantSeedFile loads an initial planting list and plants every entry,
// expanding counts.
func plantSeedFile(g *flora.Garden, path string, catalog *flora.Catalog) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var seedCfg flora.SeedConfig
	if err := json.Unmarshal(data, &seedCfg); err != nil {
		return fmt.Errorf("parsing seed JSON: %w", err)
	}

	if err := flora.ValidateSeedConfig(seedCfg, catalog); err != nil {
		return fmt.Errorf("validating seed plantings: %w", err)
	}

	for _, p := range seedCfg.Plantings {
		count := p.Count
		if count == 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			if _, err := g.Plant(p.Species, p.Length); err != nil {
				return fmt.Errorf("planting %s: %w", p.Species, err)
			}
		}
	}

	return nil
}

type speciesStats struct {
	population int
	mature     int
	minLength  int
	maxLength  int
	sumLength  int
}

func printSummary(w io.Writer, catalogName string, ticks int, g *flora.Garden) {
	flowers := g.Flowers()

	stats := make(map[string]*speciesStats)
	for _, f := range flowers {
		st, ok := stats[f.Species]
		if !ok {
			st = &speciesStats{minLength: f.Length, maxLength: f.Length}
			stats[f.Species] = st
		}
		st.population++
		if f.Mature {
			st.mature++
		}
		if f.Length < st.minLength {
			st.minLength = f.Length
		}
		if f.Length > st.maxLength {
			st.maxLength = f.Length
		}
		st.sumLength += f.Length
	}

	fmt.Fprintf(w, "Simulation finished (catalog=%s, garden=%s, ticks=%d)\n", catalogName, g.ID(), ticks)
	fmt.Fprintf(w, "Flowers: %d\n", len(flowers))
	if len(flowers) == 0 {
		return
	}

	fmt.Fprintln(w, "Species:")

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		st := stats[name]
		mean := float64(st.sumLength) / float64(st.population)
		fmt.Fprintf(w, "  %s: population=%d mature=%d length min=%d mean=%.1f max=%d\n",
			name, st.population, st.mature, st.minLength, mean, st.maxLength)
	}
}
