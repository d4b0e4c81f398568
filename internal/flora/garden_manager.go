package flora

import (
	"fmt"
	"sync"
)

// GardenID is a unique identifier for a garden.
type GardenID string

// GardenManager manages multiple gardens, each isolated from the others.
type GardenManager struct {
	mu      sync.RWMutex
	gardens map[GardenID]*Garden
	logger  Logger
}

// NewGardenManager creates a new garden manager.
func NewGardenManager() *GardenManager {
	return &GardenManager{
		gardens: make(map[GardenID]*Garden),
		logger:  NewNoOpLogger(),
	}
}

// NewGardenManagerWithLogger creates a manager whose gardens log through l.
func NewGardenManagerWithLogger(l Logger) *GardenManager {
	m := NewGardenManager()
	if l != nil {
		m.logger = l
	}
	return m
}

// CreateGarden creates a new garden with the given ID and catalog.
// Returns ErrGardenExists if a garden with that ID already exists.
func (m *GardenManager) CreateGarden(id GardenID, catalog *Catalog) (*Garden, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.gardens[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrGardenExists, id)
	}

	g := NewGarden(catalog)
	g.SetGardenID(id)
	g.SetLogger(WithPrefix(m.logger, "garden "+string(id)))
	m.gardens[id] = g
	return g, nil
}

// GetGarden retrieves a garden by ID.
// Returns the garden and a boolean indicating if it was found.
func (m *GardenManager) GetGarden(id GardenID) (*Garden, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, exists := m.gardens[id]
	return g, exists
}

// DeleteGarden removes a garden by ID, stopping it first if it is
// running. Returns ErrGardenNotFound if the garden doesn't exist.
func (m *GardenManager) DeleteGarden(id GardenID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, exists := m.gardens[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrGardenNotFound, id)
	}

	g.Stop()
	delete(m.gardens, id)
	return nil
}

// ListGardens returns a list of all garden IDs.
func (m *GardenManager) ListGardens() []GardenID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]GardenID, 0, len(m.gardens))
	for id := range m.gardens {
		ids = append(ids, id)
	}
	return ids
}

// UpdateGardenCatalog replaces the catalog of an existing garden.
// The new catalog applies to future plantings; flowers already in the
// ground are kept.
func (m *GardenManager) UpdateGardenCatalog(id GardenID, catalog *Catalog) error {
	m.mu.RLock()
	g, exists := m.gardens[id]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrGardenNotFound, id)
	}

	g.mu.Lock()
	g.catalog = catalog
	g.mu.Unlock()

	return nil
}
