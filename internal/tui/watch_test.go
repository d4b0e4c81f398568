package tui

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florelab/floradb/internal/flora"
)

func event(action flora.Action, id, species string, length int, mature bool) eventMsg {
	return eventMsg(flora.Event{
		GardenID:  "backyard",
		FlowerID:  flora.FlowerID(id),
		Species:   species,
		Action:    action,
		NewLength: length,
		Mature:    mature,
	})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated
}

func TestModelAppliesEvents(t *testing.T) {
	m := New("http://localhost:8080")
	m.connected = true

	m = step(t, m, event(flora.ActionPlant, "f-1", "Tulip", 3, false))
	require.Len(t, m.order, 1)
	require.Contains(t, m.rows, flora.FlowerID("f-1"))
	assert.Equal(t, 3, m.rows["f-1"].length)
	assert.Equal(t, flora.ActionPlant, m.rows["f-1"].lastAction)

	m = step(t, m, event(flora.ActionGrow, "f-1", "Tulip", 4, false))
	assert.Equal(t, 4, m.rows["f-1"].length)
	assert.Equal(t, flora.ActionGrow, m.rows["f-1"].lastAction)

	m = step(t, m, event(flora.ActionWither, "f-1", "Tulip", 3, false))
	assert.Equal(t, 3, m.rows["f-1"].length)

	m = step(t, m, event(flora.ActionUproot, "f-1", "Tulip", 3, false))
	assert.Empty(t, m.order)
	assert.NotContains(t, m.rows, flora.FlowerID("f-1"))

	assert.Equal(t, 4, m.nEvent)
}

func TestModelTracksFlowersFirstSeenMidStream(t *testing.T) {
	m := New("http://localhost:8080")
	m.connected = true

	// A grow event for a flower planted before we connected creates the row.
	m = step(t, m, event(flora.ActionGrow, "f-9", "Rose", 8, true))
	require.Contains(t, m.rows, flora.FlowerID("f-9"))
	assert.Equal(t, 8, m.rows["f-9"].length)
	assert.True(t, m.rows["f-9"].mature)
}

func TestModelSeedsWithoutOverwritingEventRows(t *testing.T) {
	m := New("http://localhost:8080")
	m = step(t, m, connectedMsg{})
	assert.True(t, m.connected)

	// An event beats the initial listing to a flower.
	m = step(t, m, event(flora.ActionPlant, "f-1", "Tulip", 7, true))

	m = step(t, m, flowersLoadedMsg{{
		gardenID: "backyard",
		flowers: []flora.FlowerView{
			{ID: "f-1", Species: "Tulip", Length: 3},
			{ID: "f-2", Species: "Rose", Length: 2},
		},
	}})

	require.Len(t, m.order, 2)
	assert.Equal(t, 7, m.rows["f-1"].length, "event row must not be overwritten by the stale listing")
	assert.Equal(t, 2, m.rows["f-2"].length)
}

func TestModelQuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	}

	for _, key := range keys {
		t.Run(key.String(), func(t *testing.T) {
			m := New("http://localhost:8080")
			stopped := false
			m.stop = func() error {
				stopped = true
				return nil
			}

			next, cmd := m.Update(key)
			m = next.(Model)

			assert.True(t, m.quitting)
			assert.True(t, stopped)
			require.NotNil(t, cmd)
			assert.Equal(t, tea.Quit(), cmd())
		})
	}
}

func TestViewStates(t *testing.T) {
	m := New("http://localhost:8080")
	assert.Contains(t, m.View(), "connecting")

	m.connected = true
	assert.Contains(t, m.View(), "No flowers yet")

	m = step(t, m, event(flora.ActionPlant, "f-1", "Tulip", 4, false))
	view := m.View()
	assert.Contains(t, view, "Tulip")
	assert.Contains(t, view, "growing")

	m = step(t, m, event(flora.ActionGrow, "f-1", "Tulip", 6, true))
	view = m.View()
	assert.Contains(t, view, "mature")
	assert.Contains(t, view, "events: 2")

	m.err = fmt.Errorf("boom")
	assert.Contains(t, m.View(), "boom")

	m.quitting = true
	assert.Equal(t, "", m.View())
}

func TestStreamClosedShowsError(t *testing.T) {
	m := New("http://localhost:8080")
	m.connected = true

	m = step(t, m, streamClosedMsg{})
	require.Error(t, m.err)
	assert.Contains(t, m.View(), "event stream closed")
}
