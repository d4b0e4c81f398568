package flora

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FlowerID is a unique identifier for a planted flower.
type FlowerID string

// bed is one planted flower plus its garden-side bookkeeping. The flower
// itself stays free of clocks and identifiers.
type bed struct {
	flower       *Flower
	plantedAt    int64
	lastTendedAt int64
}

// FlowerView is the read-only, JSON-encodable picture of one planted
// flower at a moment in garden time.
type FlowerView struct {
	ID           FlowerID `json:"id"`
	Species      string   `json:"species"`
	Length       int      `json:"length"`
	Mature       bool     `json:"mature"`
	PlantedAt    int64    `json:"planted_at"`
	LastTendedAt int64    `json:"last_tended_at"`
}

// Garden holds a population of flowers and advances them on a shared
// logical clock, one random tending per flower per step.
type Garden struct {
	mu        sync.RWMutex
	id        GardenID
	catalog   *Catalog
	time      int64
	beds      map[FlowerID]*bed
	rand      *rand.Rand
	stopCh    chan struct{}
	isRunning bool

	nm            *NotificationManager
	snapshotDir   string
	snapshotEvery int64
	logger        Logger
}

// NewGarden creates an empty garden. A nil catalog means any valid
// species label may be planted.
func NewGarden(catalog *Catalog) *Garden {
	return &Garden{
		catalog: catalog,
		beds:    make(map[FlowerID]*bed),
		rand:    newTimeRand(),
		time:    0,
		stopCh:  make(chan struct{}),
		logger:  NewNoOpLogger(),
	}
}

// SetGardenID names the garden; the ID tags snapshots and events.
func (g *Garden) SetGardenID(id GardenID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.id = id
}

// SetNotificationManager wires the manager that receives garden events.
func (g *Garden) SetNotificationManager(nm *NotificationManager) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nm = nm
}

// SetSnapshotDir sets the directory snapshots are written to. An empty
// directory disables snapshotting.
func (g *Garden) SetSnapshotDir(dir string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshotDir = dir
}

// SetSnapshotEveryNTicks makes Step persist a snapshot every n ticks.
// Zero or negative disables periodic snapshots.
func (g *Garden) SetSnapshotEveryNTicks(n int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.snapshotEvery = n
}

// SetLogger replaces the garden's logger. A nil logger silences it.
func (g *Garden) SetLogger(l Logger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if l == nil {
		l = NewNoOpLogger()
	}
	g.logger = l
}

// SetRand replaces the garden's random source, usually with a seeded one
// for reproducible runs. A nil rng keeps the current source.
func (g *Garden) SetRand(rng *rand.Rand) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if rng != nil {
		g.rand = rng
	}
}

// ID returns the garden's identifier.
func (g *Garden) ID() GardenID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.id
}

// Catalog returns the garden's catalog, which may be nil.
func (g *Garden) Catalog() *Catalog {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.catalog
}

// Time returns the garden's logical clock.
func (g *Garden) Time() int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.time
}

// Plant adds a new flower to the garden. The species and length go
// through the same validation as NewFlower; when the garden has a
// catalog, the species must also be declared there.
func (g *Garden) Plant(species string, length int) (FlowerView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.catalog != nil && validSpecies(species) {
		if _, ok := g.catalog.Species(SpeciesName(species)); !ok {
			return FlowerView{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, species)
		}
	}

	f, err := NewFlower(species, length)
	if err != nil {
		return FlowerView{}, err
	}

	id := FlowerID(newRandomID())
	g.beds[id] = &bed{
		flower:       f,
		plantedAt:    g.time,
		lastTendedAt: g.time,
	}

	g.emitLocked(ActionPlant, id, f, f.Length())
	return g.viewLocked(id), nil
}

// Uproot removes a flower from the garden.
func (g *Garden) Uproot(id FlowerID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.beds[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrFlowerNotFound, id)
	}
	delete(g.beds, id)
	g.emitLocked(ActionUproot, id, b.flower, b.flower.Length())
	return nil
}

// Grow tends one flower deterministically and returns its updated view.
func (g *Garden) Grow(id FlowerID) (FlowerView, error) {
	return g.tend(id, func(f *Flower) { f.Grow() }, ActionGrow)
}

// Wither tends one flower deterministically and returns its updated view.
// Withering a flower of length 1 changes nothing but still counts as a
// tending.
func (g *Garden) Wither(id FlowerID) (FlowerView, error) {
	return g.tend(id, func(f *Flower) { f.Wither() }, ActionWither)
}

func (g *Garden) tend(id FlowerID, op func(*Flower), action Action) (FlowerView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.beds[id]
	if !ok {
		return FlowerView{}, fmt.Errorf("%w: %s", ErrFlowerNotFound, id)
	}

	old := b.flower.Length()
	op(b.flower)
	b.lastTendedAt = g.time
	g.emitLocked(action, id, b.flower, old)
	return g.viewLocked(id), nil
}

// Flower returns the view of one planted flower.
func (g *Garden) Flower(id FlowerID) (FlowerView, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.beds[id]; !ok {
		return FlowerView{}, fmt.Errorf("%w: %s", ErrFlowerNotFound, id)
	}
	return g.viewLocked(id), nil
}

// Flowers returns views of every planted flower, in no particular order.
func (g *Garden) Flowers() []FlowerView {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]FlowerView, 0, len(g.beds))
	for id := range g.beds {
		out = append(out, g.viewLocked(id))
	}
	return out
}

// Len returns the number of planted flowers.
func (g *Garden) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.beds)
}

// Step advances the clock by one tick and visits every flower once,
// applying a random tending (grow, wither, or nothing, equally likely).
// Every visit emits an event, including the untouched ones.
func (g *Garden) Step() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.time++

	// snapshot the population before tending it
	ids := make([]FlowerID, 0, len(g.beds))
	for id := range g.beds {
		ids = append(ids, id)
	}

	for _, id := range ids {
		b := g.beds[id]
		old := b.flower.Length()
		action := b.flower.RandomGrowOrWither(g.rand)
		if action != ActionNone {
			b.lastTendedAt = g.time
		}
		g.emitLocked(action, id, b.flower, old)
	}

	if g.snapshotEvery > 0 && g.snapshotDir != "" && g.time%g.snapshotEvery == 0 {
		if err := g.saveSnapshotLocked(); err != nil {
			g.logger.Errorf("periodic snapshot failed at tick %d: %v", g.time, err)
		} else {
			g.logger.Debugf("snapshot saved at tick %d", g.time)
		}
	}
}

// Run will start the garden in a goroutine, starting its own ticker that
// will run until the stop channel is closed. It can be called multiple
// times to restart after stopping.
func (g *Garden) Run(interval time.Duration) {
	g.mu.Lock()
	if g.isRunning {
		g.mu.Unlock()
		return
	}
	// Create a new stop channel for this run (allows restart after stop)
	g.stopCh = make(chan struct{})
	g.isRunning = true
	stopCh := g.stopCh
	g.mu.Unlock()

	// Run in a goroutine so it doesn't block the caller. The goroutine
	// holds its own stop channel; a later restart replaces g.stopCh
	// without touching this run.
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				g.Step()
			case <-stopCh:
				return
			}
		}
	}()
}

// Stop will stop the garden by closing the stop channel. Stopping an idle
// garden is a no-op. After stopping, Run() can be called again to restart.
func (g *Garden) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.isRunning {
		return
	}

	g.isRunning = false
	close(g.stopCh)
}

// IsRunning reports whether the background ticker is active.
func (g *Garden) IsRunning() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isRunning
}

// SnapshotPath returns the file a snapshot would be written to, or ""
// when no snapshot directory is configured.
func (g *Garden) SnapshotPath() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotPathLocked()
}

func (g *Garden) snapshotPathLocked() string {
	if g.snapshotDir == "" {
		return ""
	}
	name := string(g.id)
	if name == "" {
		name = "garden"
	}
	return filepath.Join(g.snapshotDir, name+".snapshot.json")
}

// SaveSnapshot writes the garden's current state to its snapshot path.
func (g *Garden) SaveSnapshot() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saveSnapshotLocked()
}

func (g *Garden) saveSnapshotLocked() error {
	path := g.snapshotPathLocked()
	if path == "" {
		return fmt.Errorf("flora: no snapshot directory configured")
	}

	views := make([]FlowerView, 0, len(g.beds))
	for id := range g.beds {
		views = append(views, g.viewLocked(id))
	}
	snapshot := Snapshot{
		GardenID: g.id,
		Time:     g.time,
		Flowers:  views,
	}

	data, err := EncodeSnapshotJSON(snapshot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(g.snapshotDir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// RestoreSnapshot replaces the garden's population and clock with the
// snapshot's. Every flower is rebuilt through NewFlower, so a corrupted
// snapshot cannot smuggle in an invalid one.
func (g *Garden) RestoreSnapshot(snapshot Snapshot) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ValidateSnapshot(snapshot, g.catalog); err != nil {
		return err
	}

	beds := make(map[FlowerID]*bed, len(snapshot.Flowers))
	for _, v := range snapshot.Flowers {
		f, err := NewFlower(v.Species, v.Length)
		if err != nil {
			return fmt.Errorf("flower %s: %w", v.ID, err)
		}
		beds[v.ID] = &bed{
			flower:       f,
			plantedAt:    v.PlantedAt,
			lastTendedAt: v.LastTendedAt,
		}
	}

	g.beds = beds
	g.time = snapshot.Time
	return nil
}

func (g *Garden) viewLocked(id FlowerID) FlowerView {
	b := g.beds[id]
	return FlowerView{
		ID:           id,
		Species:      b.flower.Species(),
		Length:       b.flower.Length(),
		Mature:       b.flower.IsMature(),
		PlantedAt:    b.plantedAt,
		LastTendedAt: b.lastTendedAt,
	}
}

func (g *Garden) emitLocked(action Action, id FlowerID, f *Flower, oldLength int) {
	if g.nm == nil {
		return
	}
	ev := Event{
		GardenID:   g.id,
		FlowerID:   id,
		Species:    f.Species(),
		Action:     action,
		OldLength:  oldLength,
		NewLength:  f.Length(),
		Mature:     f.IsMature(),
		GardenTime: g.time,
		Timestamp:  time.Now().Unix(),
	}
	g.nm.Enqueue(ev, g.nm.ListNotifiers())
}
