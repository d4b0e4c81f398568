// Package server exposes the floradb HTTP API over a garden manager and
// a shared notification manager.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/florelab/floradb/internal/flora"
	"github.com/florelab/floradb/internal/flora/notifiers"
	"github.com/florelab/floradb/internal/logging"
)

// wsNotifierID is the notifier the /ws endpoint attaches connections to.
const wsNotifierID = "websocket"

// Server holds the garden manager and the global notification manager
// shared by every garden it creates.
type Server struct {
	manager     *flora.GardenManager
	notifierMgr *flora.NotificationManager
	logger      *logging.Logger

	snapshotDir        string
	snapshotEveryTicks int64

	wsMu       sync.Mutex
	wsNotifier *notifiers.WebSocketNotifier
}

// NewServer creates a server with the given logger wired through to the
// garden manager and notification manager.
func NewServer(logger *logging.Logger) *Server {
	return &Server{
		manager:            flora.NewGardenManagerWithLogger(logger),
		notifierMgr:        flora.NewNotificationManagerWithLogger(logger),
		logger:             logger,
		snapshotEveryTicks: -1,
	}
}

// SetSnapshotDir sets the directory new gardens write snapshots to.
func (s *Server) SetSnapshotDir(dir string) {
	s.snapshotDir = dir
}

// SetSnapshotEveryTicks sets how often gardens write periodic snapshots.
// 0 disables periodic snapshots; negative leaves the garden default.
func (s *Server) SetSnapshotEveryTicks(ticks int64) {
	s.snapshotEveryTicks = ticks
}

// Handler returns the HTTP handler for the full floradb API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/gardens", s.handleListGardens)
	mux.HandleFunc("/garden/", s.handleGardenRoutes)
	mux.HandleFunc("/notifiers", s.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", s.handleNotifiersRoutes)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// Close shuts down the notification manager, draining in-flight
// deliveries and closing every registered notifier.
func (s *Server) Close() error {
	return s.notifierMgr.Close()
}

// configureGarden wires the shared notification manager and snapshot
// settings into a garden.
func (s *Server) configureGarden(g *flora.Garden) {
	g.SetNotificationManager(s.notifierMgr)
	if s.snapshotDir != "" {
		g.SetSnapshotDir(s.snapshotDir)
	}
	if s.snapshotEveryTicks >= 0 {
		g.SetSnapshotEveryNTicks(s.snapshotEveryTicks)
	}
}

// applyCatalog creates the garden with the given catalog, or live-updates
// the catalog of an existing garden. Flowers already planted are kept.
func (s *Server) applyCatalog(gardenID flora.GardenID, catalog *flora.Catalog) error {
	g, err := s.manager.CreateGarden(gardenID, catalog)
	if err != nil {
		// Garden already exists, swap its catalog in place.
		if err := s.manager.UpdateGardenCatalog(gardenID, catalog); err != nil {
			return err
		}
		g, _ = s.manager.GetGarden(gardenID)
	}
	s.configureGarden(g)
	return nil
}

// LoadCatalogFile reads, validates and builds a catalog config from a
// JSON file.
func LoadCatalogFile(path string) (flora.CatalogConfig, *flora.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return flora.CatalogConfig{}, nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var cfg flora.CatalogConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return flora.CatalogConfig{}, nil, fmt.Errorf("parsing catalog JSON: %w", err)
	}

	if err := flora.ValidateCatalogConfig(cfg); err != nil {
		return flora.CatalogConfig{}, nil, fmt.Errorf("validating catalog: %w", err)
	}

	catalog, err := flora.BuildCatalogFromConfig(cfg)
	if err != nil {
		return flora.CatalogConfig{}, nil, fmt.Errorf("building catalog: %w", err)
	}

	return cfg, catalog, nil
}

// ApplyCatalogFile loads a catalog config file and applies it to the
// garden, creating the garden when it does not exist yet.
func (s *Server) ApplyCatalogFile(path string, gardenID flora.GardenID) error {
	cfg, catalog, err := LoadCatalogFile(path)
	if err != nil {
		return err
	}
	if err := s.applyCatalog(gardenID, catalog); err != nil {
		return err
	}
	s.logger.Infof("Catalog applied: garden_id=%s catalog_name=%s species=%d", gardenID, cfg.Name, catalog.Len())
	return nil
}

// webSocketNotifier returns the notifier backing /ws, registering it with
// the notification manager on first use. A websocket notifier registered
// earlier under the same ID is reused.
func (s *Server) webSocketNotifier() (*notifiers.WebSocketNotifier, error) {
	s.wsMu.Lock()
	defer s.wsMu.Unlock()

	if s.wsNotifier != nil {
		return s.wsNotifier, nil
	}

	if existing, ok := s.notifierMgr.GetNotifier(wsNotifierID); ok {
		wsn, ok := existing.(*notifiers.WebSocketNotifier)
		if !ok {
			return nil, fmt.Errorf("notifier ID %q is taken by a %s notifier", wsNotifierID, existing.Type())
		}
		s.wsNotifier = wsn
		return wsn, nil
	}

	wsn := notifiers.NewWebSocketNotifier(wsNotifierID)
	if err := s.notifierMgr.RegisterNotifier(wsn); err != nil {
		_ = wsn.Close()
		return nil, err
	}
	s.wsNotifier = wsn
	return wsn, nil
}
