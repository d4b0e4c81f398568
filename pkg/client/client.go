package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/florelab/floradb/internal/flora"
)

// CatalogBuilder provides a fluent API for building catalogs.
// Use it to declare the species a garden accepts before planting.
type CatalogBuilder struct {
	name    string
	species []flora.SpeciesConfig
}

// NewCatalog creates a new catalog builder with the given name.
// The name identifies the catalog and is used for organization purposes.
func NewCatalog(name string) *CatalogBuilder {
	return &CatalogBuilder{
		name:    name,
		species: make([]flora.SpeciesConfig, 0),
	}
}

// Species adds a species definition to the catalog.
// The meta parameter can be nil or contain additional metadata.
func (cb *CatalogBuilder) Species(name, description string, meta map[string]any) *CatalogBuilder {
	cb.species = append(cb.species, flora.SpeciesConfig{
		Name:        name,
		Description: description,
		Meta:        meta,
	})
	return cb
}

// Build converts the builder to a CatalogConfig that can be used
// with ApplyCatalog or other FloraDB APIs.
func (cb *CatalogBuilder) Build() flora.CatalogConfig {
	return flora.CatalogConfig{
		Name:    cb.name,
		Species: cb.species,
	}
}

// NotifierInfo describes one registered notifier.
type NotifierInfo struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type notifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config,omitempty"`
}

type plantRequest struct {
	Species string `json:"species"`
	Length  int    `json:"length"`
}

// ApplyCatalog sends the catalog configuration to a FloraDB server.
// The baseURL is the server's base URL (e.g., "http://localhost:8080"),
// and gardenID is the garden the catalog should be applied to. The garden
// is created on first apply and live-updated afterwards.
func ApplyCatalog(ctx context.Context, baseURL, gardenID string, catalog *CatalogBuilder) error {
	u, err := joinURL(baseURL, "garden", gardenID, "catalog")
	if err != nil {
		return err
	}
	return send(ctx, http.MethodPost, u, catalog.Build(), nil)
}

// Plant adds a flower of the given species and starting length to the
// garden and returns the server's view of it.
func Plant(ctx context.Context, baseURL, gardenID, species string, length int) (flora.FlowerView, error) {
	u, err := joinURL(baseURL, "garden", gardenID, "flower")
	if err != nil {
		return flora.FlowerView{}, err
	}

	var view flora.FlowerView
	if err := send(ctx, http.MethodPost, u, plantRequest{Species: species, Length: length}, &view); err != nil {
		return flora.FlowerView{}, err
	}
	return view, nil
}

// Flowers lists every flower in the garden.
func Flowers(ctx context.Context, baseURL, gardenID string) ([]flora.FlowerView, error) {
	u, err := joinURL(baseURL, "garden", gardenID, "flowers")
	if err != nil {
		return nil, err
	}

	var views []flora.FlowerView
	if err := send(ctx, http.MethodGet, u, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetFlower fetches a single flower by ID.
func GetFlower(ctx context.Context, baseURL, gardenID, flowerID string) (flora.FlowerView, error) {
	u, err := joinURL(baseURL, "garden", gardenID, "flower", flowerID)
	if err != nil {
		return flora.FlowerView{}, err
	}

	var view flora.FlowerView
	if err := send(ctx, http.MethodGet, u, nil, &view); err != nil {
		return flora.FlowerView{}, err
	}
	return view, nil
}

// Grow tends the flower once, growing it, and returns the updated view.
func Grow(ctx context.Context, baseURL, gardenID, flowerID string) (flora.FlowerView, error) {
	return tend(ctx, baseURL, gardenID, flowerID, "grow")
}

// Wither tends the flower once, withering it, and returns the updated view.
func Wither(ctx context.Context, baseURL, gardenID, flowerID string) (flora.FlowerView, error) {
	return tend(ctx, baseURL, gardenID, flowerID, "wither")
}

func tend(ctx context.Context, baseURL, gardenID, flowerID, op string) (flora.FlowerView, error) {
	u, err := joinURL(baseURL, "garden", gardenID, "flower", flowerID, op)
	if err != nil {
		return flora.FlowerView{}, err
	}

	var view flora.FlowerView
	if err := send(ctx, http.MethodPost, u, nil, &view); err != nil {
		return flora.FlowerView{}, err
	}
	return view, nil
}

// Uproot removes the flower from the garden.
func Uproot(ctx context.Context, baseURL, gardenID, flowerID string) error {
	u, err := joinURL(baseURL, "garden", gardenID, "flower", flowerID)
	if err != nil {
		return err
	}
	return send(ctx, http.MethodDelete, u, nil, nil)
}

// Tick advances the garden's logical clock by one step.
func Tick(ctx context.Context, baseURL, gardenID string) error {
	u, err := joinURL(baseURL, "garden", gardenID, "tick")
	if err != nil {
		return err
	}
	return send(ctx, http.MethodPost, u, nil, nil)
}

// Start begins stepping the garden automatically at the given interval.
func Start(ctx context.Context, baseURL, gardenID string, interval time.Duration) error {
	u, err := joinURL(baseURL, "garden", gardenID, "start")
	if err != nil {
		return err
	}
	u += "?interval=" + strconv.FormatInt(interval.Milliseconds(), 10)
	return send(ctx, http.MethodPost, u, nil, nil)
}

// Stop halts a garden started with Start.
func Stop(ctx context.Context, baseURL, gardenID string) error {
	u, err := joinURL(baseURL, "garden", gardenID, "stop")
	if err != nil {
		return err
	}
	return send(ctx, http.MethodPost, u, nil, nil)
}

// SaveSnapshot persists the garden to disk on the server side and
// returns the server-local path of the snapshot file.
func SaveSnapshot(ctx context.Context, baseURL, gardenID string) (string, error) {
	u, err := joinURL(baseURL, "garden", gardenID, "snapshot")
	if err != nil {
		return "", err
	}

	var result struct {
		Status string `json:"status"`
		Path   string `json:"path"`
	}
	if err := send(ctx, http.MethodPost, u, nil, &result); err != nil {
		return "", err
	}
	return result.Path, nil
}

// GetSnapshot fetches the last saved snapshot of the garden.
func GetSnapshot(ctx context.Context, baseURL, gardenID string) (flora.Snapshot, error) {
	u, err := joinURL(baseURL, "garden", gardenID, "snapshot")
	if err != nil {
		return flora.Snapshot{}, err
	}

	var snapshot flora.Snapshot
	if err := send(ctx, http.MethodGet, u, nil, &snapshot); err != nil {
		return flora.Snapshot{}, err
	}
	return snapshot, nil
}

// DeleteGarden removes the garden and stops it if it is running.
func DeleteGarden(ctx context.Context, baseURL, gardenID string) error {
	u, err := joinURL(baseURL, "garden", gardenID)
	if err != nil {
		return err
	}
	return send(ctx, http.MethodDelete, u, nil, nil)
}

// ListGardens returns the IDs of all gardens on the server.
func ListGardens(ctx context.Context, baseURL string) ([]string, error) {
	u, err := joinURL(baseURL, "gardens")
	if err != nil {
		return nil, err
	}

	var result struct {
		Gardens []string `json:"gardens"`
	}
	if err := send(ctx, http.MethodGet, u, nil, &result); err != nil {
		return nil, err
	}
	return result.Gardens, nil
}

// RegisterWebhook registers a webhook notifier that receives every garden
// event as a JSON POST. Headers are attached to each delivery and may be nil.
func RegisterWebhook(ctx context.Context, baseURL, id, hookURL string, headers map[string]string) error {
	u, err := joinURL(baseURL, "notifiers")
	if err != nil {
		return err
	}

	cfg := map[string]any{"url": hookURL}
	if len(headers) > 0 {
		cfg["headers"] = headers
	}
	return send(ctx, http.MethodPost, u, notifierRequest{Type: "webhook", ID: id, Config: cfg}, nil)
}

// RegisterWebSocket registers a websocket notifier under the given ID.
// Clients attach to it through the server's /ws endpoint.
func RegisterWebSocket(ctx context.Context, baseURL, id string) error {
	u, err := joinURL(baseURL, "notifiers")
	if err != nil {
		return err
	}
	return send(ctx, http.MethodPost, u, notifierRequest{Type: "websocket", ID: id}, nil)
}

// UnregisterNotifier removes a notifier by ID.
func UnregisterNotifier(ctx context.Context, baseURL, id string) error {
	u, err := joinURL(baseURL, "notifiers", id)
	if err != nil {
		return err
	}
	return send(ctx, http.MethodDelete, u, nil, nil)
}

// ListNotifiers returns the notifiers registered on the server.
func ListNotifiers(ctx context.Context, baseURL string) ([]NotifierInfo, error) {
	u, err := joinURL(baseURL, "notifiers")
	if err != nil {
		return nil, err
	}

	var result struct {
		Notifiers []NotifierInfo `json:"notifiers"`
	}
	if err := send(ctx, http.MethodGet, u, nil, &result); err != nil {
		return nil, err
	}
	return result.Notifiers, nil
}

// WatchEvents connects to the server's websocket endpoint and streams
// garden events. The returned channel is closed when the connection
// drops, the context is cancelled, or the stop function is called.
func WatchEvents(ctx context.Context, baseURL string) (<-chan flora.Event, func() error, error) {
	wsURL, err := websocketURL(baseURL)
	if err != nil {
		return nil, nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if resp != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}

	events := make(chan flora.Event)
	go func() {
		defer close(events)
		for {
			var ev flora.Event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() error { return conn.Close() }
	return events, stop, nil
}

// websocketURL converts an http(s) base URL into the ws(s) URL of the
// server's /ws endpoint.
func websocketURL(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme %q in base URL", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	return u.String(), nil
}

func joinURL(baseURL string, parts ...string) (string, error) {
	u, err := url.JoinPath(baseURL, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to build URL: %w", err)
	}
	return u, nil
}

// send performs one JSON round trip. A nil payload sends an empty body;
// a nil out discards the response body.
func send(ctx context.Context, method, u string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
