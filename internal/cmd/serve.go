package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/florelab/floradb/internal/config"
	"github.com/florelab/floradb/internal/flora"
	"github.com/florelab/floradb/internal/logging"
	"github.com/florelab/floradb/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the floradb HTTP server",
	Long: `Start the HTTP server that manages gardens, flowers, snapshots and
event notifiers.

A catalog file given via server.catalog_file is applied to the default
garden on startup, and with server.watch_catalog enabled the file is
re-applied live whenever it changes on disk.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.Logging.Level)

	s := server.NewServer(logger)
	defer s.Close()

	s.SetSnapshotDir(cfg.Snapshot.Dir)
	s.SetSnapshotEveryTicks(cfg.Snapshot.EveryTicks)

	gardenID := flora.GardenID(cfg.Server.GardenID)
	if cfg.Server.CatalogFile != "" {
		if err := s.ApplyCatalogFile(cfg.Server.CatalogFile, gardenID); err != nil {
			return err
		}
		if cfg.Server.WatchCatalog {
			stop, err := s.WatchCatalogFile(cfg.Server.CatalogFile, gardenID)
			if err != nil {
				return err
			}
			defer stop()
		}
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: s.Handler(),
	}

	go func() {
		logger.Infof("Server listening: addr=%s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
