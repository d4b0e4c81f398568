package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/florelab/floradb/internal/config"
	"github.com/florelab/floradb/internal/flora"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Walk one flower through its lifecycle",
	Long: `Plant a single Tulip and walk it through growing, one random tending
and withering, printing the flower after each phase.`,
	RunE: runDemo,
}

var demoChecks bool

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().BoolVar(&demoChecks, "checks", true, "enable runtime invariant checks")
}

func runDemo(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	checks := cfg.Demo.Checks
	if cmd.Flags().Changed("checks") {
		checks = demoChecks
	}
	flora.SetDebugChecks(checks)

	f, err := flora.NewFlower("Tulip", 1)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	f.Grow()
	f.Grow()
	fmt.Fprintln(out, f.String())

	f.RandomGrowOrWither(nil)
	fmt.Fprintln(out, f.String())

	f.Wither()
	f.Wither()
	fmt.Fprintln(out, f.String())

	return nil
}
