package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/florelab/floradb/internal/flora"
	"github.com/florelab/floradb/internal/flora/notifiers"
)

// extractGardenID extracts the garden ID from a path like "/garden/{id}/..."
// Returns the garden ID and the remaining path, or empty string if not found.
func extractGardenID(path string) (flora.GardenID, string) {
	rest, ok := strings.CutPrefix(path, "/garden/")
	if !ok {
		return "", ""
	}

	idx := strings.Index(rest, "/")
	if idx == -1 {
		// No more path segments, the whole thing is the garden ID.
		return flora.GardenID(rest), ""
	}

	return flora.GardenID(rest[:idx]), rest[idx:]
}

// extractFlowerOp splits the tail of "/garden/{id}/flower/{fid}[/op]"
// into the flower ID and the optional trailing operation.
func extractFlowerOp(remainingPath string) (flora.FlowerID, string) {
	rest, ok := strings.CutPrefix(remainingPath, "/flower/")
	if !ok {
		return "", ""
	}
	fid, op, _ := strings.Cut(rest, "/")
	return flora.FlowerID(fid), op
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleGardenRoutes routes requests to garden-specific handlers.
// Handles paths like /garden/{id}/catalog, /garden/{id}/flower, etc.
func (s *Server) handleGardenRoutes(w http.ResponseWriter, r *http.Request) {
	gardenID, remainingPath := extractGardenID(r.URL.Path)
	if gardenID == "" {
		http.Error(w, "garden ID is required in path: /garden/{id}/...", http.StatusBadRequest)
		return
	}

	switch {
	case remainingPath == "/catalog" && r.Method == http.MethodPost:
		s.handleCatalog(w, r)
	case remainingPath == "/flower" && r.Method == http.MethodPost:
		s.handlePlantFlower(w, r)
	case remainingPath == "/flowers" && r.Method == http.MethodGet:
		s.handleListFlowers(w, r)
	case strings.HasPrefix(remainingPath, "/flower/"):
		s.handleFlowerRoutes(w, r, remainingPath)
	case remainingPath == "/tick" && r.Method == http.MethodPost:
		s.handleTick(w, r)
	case remainingPath == "/start" && r.Method == http.MethodPost:
		s.handleStart(w, r)
	case remainingPath == "/stop" && r.Method == http.MethodPost:
		s.handleStop(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodPost:
		s.handleSaveSnapshot(w, r)
	case remainingPath == "/snapshot" && r.Method == http.MethodGet:
		s.handleGetSnapshot(w, r)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteGarden(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleFlowerRoutes dispatches /garden/{id}/flower/{fid} and the grow and
// wither operations under it.
func (s *Server) handleFlowerRoutes(w http.ResponseWriter, r *http.Request, remainingPath string) {
	_, op := extractFlowerOp(remainingPath)

	switch {
	case op == "" && r.Method == http.MethodGet:
		s.handleGetFlower(w, r)
	case op == "" && r.Method == http.MethodDelete:
		s.handleUprootFlower(w, r)
	case op == "grow" && r.Method == http.MethodPost:
		s.handleTendFlower(w, r, flora.ActionGrow)
	case op == "wither" && r.Method == http.MethodPost:
		s.handleTendFlower(w, r, flora.ActionWither)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// gardenFromRequest resolves the garden named in the request path,
// replying 404 when it does not exist.
func (s *Server) gardenFromRequest(w http.ResponseWriter, r *http.Request) (*flora.Garden, bool) {
	gardenID, _ := extractGardenID(r.URL.Path)
	g, exists := s.manager.GetGarden(gardenID)
	if !exists {
		http.Error(w, "garden not found", http.StatusNotFound)
		return nil, false
	}
	return g, true
}

// POST /garden/{id}/catalog
// Body: CatalogConfig JSON
// Creates a new garden with the given catalog, or updates an existing one.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	gardenID, _ := extractGardenID(r.URL.Path)

	var cfg flora.CatalogConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid catalog json: "+err.Error(), http.StatusBadRequest)
		return
	}

	catalog, err := flora.BuildCatalogFromConfig(cfg)
	if err != nil {
		http.Error(w, "cannot build catalog: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.applyCatalog(gardenID, catalog); err != nil {
		s.logger.Errorf("Failed to apply catalog: garden_id=%s error=%v", gardenID, err)
		http.Error(w, "cannot apply catalog: "+err.Error(), http.StatusInternalServerError)
		return
	}

	s.logger.Infof("Catalog applied: garden_id=%s catalog_name=%s", gardenID, cfg.Name)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("catalog loaded"))
}

// POST /garden/{id}/flower
// Body: { "species": "...", "length": n }
type plantFlowerRequest struct {
	Species string `json:"species"`
	Length  int    `json:"length"`
}

func (s *Server) handlePlantFlower(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	var req plantFlowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	view, err := g.Plant(req.Species, req.Length)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Debugf("Flower planted: garden_id=%s flower_id=%s species=%s", g.ID(), view.ID, view.Species)

	writeJSON(w, view)
}

// GET /garden/{id}/flowers
func (s *Server) handleListFlowers(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	writeJSON(w, g.Flowers())
}

// GET /garden/{id}/flower/{fid}
func (s *Server) handleGetFlower(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	_, remainingPath := extractGardenID(r.URL.Path)
	fid, _ := extractFlowerOp(remainingPath)

	view, err := g.Flower(fid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, view)
}

// DELETE /garden/{id}/flower/{fid}
func (s *Server) handleUprootFlower(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	_, remainingPath := extractGardenID(r.URL.Path)
	fid, _ := extractFlowerOp(remainingPath)

	if err := g.Uproot(fid); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Debugf("Flower uprooted: garden_id=%s flower_id=%s", g.ID(), fid)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("uprooted"))
}

// POST /garden/{id}/flower/{fid}/grow
// POST /garden/{id}/flower/{fid}/wither
func (s *Server) handleTendFlower(w http.ResponseWriter, r *http.Request, action flora.Action) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	_, remainingPath := extractGardenID(r.URL.Path)
	fid, _ := extractFlowerOp(remainingPath)

	var view flora.FlowerView
	var err error
	switch action {
	case flora.ActionGrow:
		view, err = g.Grow(fid)
	case flora.ActionWither:
		view, err = g.Wither(fid)
	default:
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, view)
}

// POST /garden/{id}/tick
// Manually trigger a single step (useful for testing when auto-running is disabled).
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	g.Step()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ticked"))
}

// POST /garden/{id}/start
// Start the garden auto-running with the specified interval (in milliseconds).
// Query param: interval (default: 1000ms)
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	interval := 1000 * time.Millisecond
	if intervalStr := r.URL.Query().Get("interval"); intervalStr != "" {
		if ms, err := strconv.Atoi(intervalStr); err == nil && ms > 0 {
			interval = time.Duration(ms) * time.Millisecond
		} else {
			http.Error(w, "invalid interval: must be a positive integer (milliseconds)", http.StatusBadRequest)
			return
		}
	}

	g.Run(interval)
	s.logger.Infof("Garden started: garden_id=%s interval=%v", g.ID(), interval)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("garden started"))
}

// POST /garden/{id}/stop
func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	g.Stop()
	s.logger.Infof("Garden stopped: garden_id=%s", g.ID())

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("garden stopped"))
}

// POST /garden/{id}/snapshot
// Triggers a synchronous snapshot save.
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}
	g.SetSnapshotDir(s.snapshotDir)

	if err := g.SaveSnapshot(); err != nil {
		s.logger.Errorf("Failed to save snapshot: garden_id=%s error=%v", g.ID(), err)
		http.Error(w, "failed to save snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	path := g.SnapshotPath()
	s.logger.Debugf("Snapshot saved: garden_id=%s path=%s", g.ID(), path)

	writeJSON(w, map[string]string{
		"status": "ok",
		"path":   path,
	})
}

// GET /garden/{id}/snapshot
// Returns the raw snapshot JSON if it exists.
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	g, ok := s.gardenFromRequest(w, r)
	if !ok {
		return
	}

	if s.snapshotDir == "" {
		http.Error(w, "snapshot directory not configured", http.StatusInternalServerError)
		return
	}
	g.SetSnapshotDir(s.snapshotDir)

	data, err := os.ReadFile(g.SnapshotPath())
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "snapshot not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to read snapshot: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DELETE /garden/{id}
func (s *Server) handleDeleteGarden(w http.ResponseWriter, r *http.Request) {
	gardenID, _ := extractGardenID(r.URL.Path)

	if err := s.manager.DeleteGarden(gardenID); err != nil {
		s.logger.Warnf("Failed to delete garden: garden_id=%s error=%v", gardenID, err)
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("Garden deleted: garden_id=%s", gardenID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("garden deleted"))
}

// GET /gardens
// List all garden IDs.
func (s *Server) handleListGardens(w http.ResponseWriter, r *http.Request) {
	gardenIDs := s.manager.ListGardens()

	ids := make([]string, len(gardenIDs))
	for i, id := range gardenIDs {
		ids[i] = string(id)
	}

	writeJSON(w, map[string][]string{"gardens": ids})
}

// handleNotifiersRoutes handles notifier management endpoints.
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	list := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			list = append(list, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	writeJSON(w, map[string]any{"notifiers": list})
}

// POST /notifiers
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier flora.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	case "websocket":
		notifier = notifiers.NewWebSocketNotifier(req.ID)
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		_ = notifier.Close()
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.logger.Infof("Notifier registered: id=%s type=%s", req.ID, req.Type)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("Notifier unregistered: id=%s", notifierID)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws
// Upgrades the connection and attaches it to the websocket notifier,
// registering the notifier on first use.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsn, err := s.webSocketNotifier()
	if err != nil {
		http.Error(w, "websocket notifier unavailable: "+err.Error(), http.StatusInternalServerError)
		return
	}

	upgrader := wsn.Upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.logger.Warnf("Websocket upgrade failed: remote=%s error=%v", r.RemoteAddr, err)
		return
	}

	wsn.RegisterClient(conn)
	s.logger.Debugf("Websocket client connected: remote=%s", r.RemoteAddr)

	// Drain client frames so close handshakes are seen; events flow only
	// server to client.
	go func() {
		defer wsn.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
	}
}
