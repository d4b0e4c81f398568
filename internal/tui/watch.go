package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/florelab/floradb/internal/flora"
	"github.com/florelab/floradb/pkg/client"
)

const maxBarWidth = 30

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA")) // Purple
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))            // Gray
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171"))            // Red
	speciesStyle = lipgloss.NewStyle().Bold(true)
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")) // Green

	matureBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9FAFB")).
			Background(lipgloss.Color("#10B981")).
			Padding(0, 1)

	growingBadge = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Padding(0, 1)
)

type connectedMsg struct {
	events <-chan flora.Event
	stop   func() error
}

type eventMsg flora.Event

type streamClosedMsg struct{}

type errMsg struct{ err error }

type gardenFlowers struct {
	gardenID string
	flowers  []flora.FlowerView
}

type flowersLoadedMsg []gardenFlowers

type flowerRow struct {
	id         flora.FlowerID
	gardenID   flora.GardenID
	species    string
	length     int
	mature     bool
	lastAction flora.Action
}

// Model is the Bubbletea model for the live garden watcher. It seeds its
// rows from the server's current flowers and then keeps them in sync from
// the event stream.
type Model struct {
	baseURL   string
	spinner   spinner.Model
	connected bool
	quitting  bool
	err       error
	width     int

	events <-chan flora.Event
	stop   func() error

	order  []flora.FlowerID
	rows   map[flora.FlowerID]*flowerRow
	nEvent int
}

// New creates a new watch model pointed at the given server base URL.
func New(baseURL string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	return Model{
		baseURL: baseURL,
		spinner: sp,
		rows:    make(map[flora.FlowerID]*flowerRow),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, connect(m.baseURL))
}

func connect(baseURL string) tea.Cmd {
	return func() tea.Msg {
		events, stop, err := client.WatchEvents(context.Background(), baseURL)
		if err != nil {
			return errMsg{err}
		}
		return connectedMsg{events: events, stop: stop}
	}
}

func loadFlowers(baseURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		gardens, err := client.ListGardens(ctx, baseURL)
		if err != nil {
			return errMsg{err}
		}

		loaded := make([]gardenFlowers, 0, len(gardens))
		for _, id := range gardens {
			views, err := client.Flowers(ctx, baseURL, id)
			if err != nil {
				return errMsg{err}
			}
			loaded = append(loaded, gardenFlowers{gardenID: id, flowers: views})
		}
		return flowersLoadedMsg(loaded)
	}
}

func waitForEvent(events <-chan flora.Event) tea.Cmd {
	return func() tea.Msg {
		ev, open := <-events
		if !open {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			if m.stop != nil {
				_ = m.stop()
			}
			return m, tea.Quit
		}
		return m, nil

	case connectedMsg:
		m.connected = true
		m.events = msg.events
		m.stop = msg.stop
		return m, tea.Batch(loadFlowers(m.baseURL), waitForEvent(m.events))

	case flowersLoadedMsg:
		// Events may already have created fresher rows; keep those.
		for _, gf := range msg {
			for _, view := range gf.flowers {
				if _, known := m.rows[view.ID]; known {
					continue
				}
				m.addRow(flora.GardenID(gf.gardenID), view)
			}
		}
		return m, nil

	case eventMsg:
		m.applyEvent(flora.Event(msg))
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		m.err = fmt.Errorf("event stream closed")
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.connected {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) addRow(gardenID flora.GardenID, view flora.FlowerView) {
	m.rows[view.ID] = &flowerRow{
		id:       view.ID,
		gardenID: gardenID,
		species:  view.Species,
		length:   view.Length,
		mature:   view.Mature,
	}
	m.order = append(m.order, view.ID)
}

func (m *Model) applyEvent(ev flora.Event) {
	m.nEvent++

	switch ev.Action {
	case flora.ActionPlant:
		if _, known := m.rows[ev.FlowerID]; !known {
			m.addRow(ev.GardenID, flora.FlowerView{
				ID:      ev.FlowerID,
				Species: ev.Species,
				Length:  ev.NewLength,
				Mature:  ev.Mature,
			})
			m.rows[ev.FlowerID].lastAction = flora.ActionPlant
			return
		}
		fallthrough

	case flora.ActionGrow, flora.ActionWither, flora.ActionNone:
		row, known := m.rows[ev.FlowerID]
		if !known {
			// First sight of a flower planted before we connected.
			m.addRow(ev.GardenID, flora.FlowerView{
				ID:      ev.FlowerID,
				Species: ev.Species,
				Length:  ev.NewLength,
				Mature:  ev.Mature,
			})
			row = m.rows[ev.FlowerID]
		}
		row.length = ev.NewLength
		row.mature = ev.Mature
		row.lastAction = ev.Action

	case flora.ActionUproot:
		delete(m.rows, ev.FlowerID)
		for i, id := range m.order {
			if id == ev.FlowerID {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("FloraDB Watch"))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(m.baseURL))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n\n")
	}

	switch {
	case !m.connected:
		b.WriteString(m.spinner.View())
		b.WriteString(mutedStyle.Render(" connecting..."))
		b.WriteString("\n")

	case len(m.order) == 0:
		b.WriteString(mutedStyle.Render("No flowers yet."))
		b.WriteString("\n")

	default:
		for _, id := range m.order {
			row := m.rows[id]
			if row == nil {
				continue
			}
			b.WriteString(m.renderRow(row))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("events: %d • q to quit", m.nEvent)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderRow(row *flowerRow) string {
	badge := growingBadge.Render("growing")
	if row.mature {
		badge = matureBadge.Render("mature")
	}

	bar := row.length
	if bar > maxBarWidth {
		bar = maxBarWidth
	}

	action := ""
	if row.lastAction != flora.ActionNone {
		action = mutedStyle.Render(" " + row.lastAction.String())
	}

	return fmt.Sprintf("%s %s %s %s%s",
		mutedStyle.Render(fmt.Sprintf("%-12s", shortID(row.id))),
		speciesStyle.Render(fmt.Sprintf("%-10s", row.species)),
		barStyle.Render(strings.Repeat("▇", bar))+fmt.Sprintf(" %d", row.length),
		badge,
		action,
	)
}

func shortID(id flora.FlowerID) string {
	s := string(id)
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

// Run starts the watch UI against the given server.
func Run(baseURL string) error {
	p := tea.NewProgram(New(baseURL), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
