package flora

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectingNotifier accumulates delivered events for inspection.
type collectingNotifier struct {
	id     string
	mu     sync.Mutex
	events []Event
}

func (c *collectingNotifier) ID() string   { return c.id }
func (c *collectingNotifier) Type() string { return "collector" }
func (c *collectingNotifier) Notify(ctx context.Context, event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}
func (c *collectingNotifier) Close() error { return nil }

func (c *collectingNotifier) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.events))
	copy(out, c.events)
	return out
}

func waitForEvents(t *testing.T, c *collectingNotifier, want int) []Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		events := c.snapshot()
		if len(events) >= want {
			return events
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected at least %d events, got %d", want, len(c.snapshot()))
	return nil
}

func TestGarden_Notifications_Plant(t *testing.T) {
	collector := &collectingNotifier{id: "collector"}
	nm := NewNotificationManager()
	defer nm.Close()
	require.NoError(t, nm.RegisterNotifier(collector))

	g := NewGarden(nil)
	g.SetGardenID("backyard")
	g.SetNotificationManager(nm)

	view, err := g.Plant("Tulip", 3)
	require.NoError(t, err)

	events := waitForEvents(t, collector, 1)
	ev := events[0]
	assert.Equal(t, GardenID("backyard"), ev.GardenID)
	assert.Equal(t, view.ID, ev.FlowerID)
	assert.Equal(t, "Tulip", ev.Species)
	assert.Equal(t, ActionPlant, ev.Action)
	assert.Equal(t, 3, ev.OldLength)
	assert.Equal(t, 3, ev.NewLength)
}

func TestGarden_Notifications_TendingAndUproot(t *testing.T) {
	collector := &collectingNotifier{id: "collector"}
	nm := NewNotificationManager()
	defer nm.Close()
	require.NoError(t, nm.RegisterNotifier(collector))

	g := NewGarden(nil)
	g.SetGardenID("backyard")
	g.SetNotificationManager(nm)

	view, err := g.Plant("Tulip", 1)
	require.NoError(t, err)
	_, err = g.Grow(view.ID)
	require.NoError(t, err)
	_, err = g.Wither(view.ID)
	require.NoError(t, err)
	require.NoError(t, g.Uproot(view.ID))

	events := waitForEvents(t, collector, 4)
	actions := make([]Action, 0, len(events))
	for _, ev := range events {
		actions = append(actions, ev.Action)
	}
	assert.Equal(t, []Action{ActionPlant, ActionGrow, ActionWither, ActionUproot}, actions)

	grow := events[1]
	assert.Equal(t, 1, grow.OldLength)
	assert.Equal(t, 2, grow.NewLength)

	wither := events[2]
	assert.Equal(t, 2, wither.OldLength)
	assert.Equal(t, 1, wither.NewLength)
}

func TestGarden_Notifications_StepEmitsEveryVisit(t *testing.T) {
	collector := &collectingNotifier{id: "collector"}
	nm := NewNotificationManager()
	defer nm.Close()
	require.NoError(t, nm.RegisterNotifier(collector))

	g := NewGarden(nil)
	g.SetGardenID("backyard")
	g.SetRand(NewRand(17))

	const flowers = 8
	for i := 0; i < flowers; i++ {
		_, err := g.Plant("Tulip", 20)
		require.NoError(t, err)
	}

	// Attach the manager after planting so only step events arrive
	g.SetNotificationManager(nm)
	g.Step()

	events := waitForEvents(t, collector, flowers)
	assert.Len(t, events, flowers, "one event per flower per step, untouched visits included")
	for _, ev := range events {
		assert.Contains(t, []Action{ActionNone, ActionGrow, ActionWither}, ev.Action)
		assert.Equal(t, int64(1), ev.GardenTime)
		switch ev.Action {
		case ActionNone:
			assert.Equal(t, ev.OldLength, ev.NewLength)
		case ActionGrow:
			assert.Equal(t, ev.OldLength+2, ev.NewLength) // 20 > 10
		case ActionWither:
			assert.Equal(t, ev.OldLength-1, ev.NewLength)
		}
	}
}

func TestGarden_Notifications_NoManagerIsFine(t *testing.T) {
	g := NewGarden(nil)

	assert.NotPanics(t, func() {
		view, err := g.Plant("Tulip", 1)
		require.NoError(t, err)
		g.Step()
		require.NoError(t, g.Uproot(view.ID))
	})
}
