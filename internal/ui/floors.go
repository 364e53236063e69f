package ui

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mapgrid/internal/mapapi"
	"github.com/five82/mapgrid/internal/transport"
)

func (m Model) handleMapLoaded(msg mapLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(msg.err)
		if transport.StatusOf(msg.err) == http.StatusNotFound && m.screen == screenFloors {
			m.screen = screenMaps
			m.current = nil
		}
		return m, nil
	}
	if msg.m == nil {
		return m, nil
	}
	loaded := *msg.m
	loaded.Floors = append([]mapapi.Floor(nil), loaded.Floors...)
	sort.SliceStable(loaded.Floors, func(i, j int) bool {
		return loaded.Floors[i].Number < loaded.Floors[j].Number
	})
	m.current = &loaded
	m.floorCursor = clamp(m.floorCursor, 0, len(loaded.Floors)-1)
	return m, nil
}

// handleFloorsKey processes keyboard input for the map overview.
func (m Model) handleFloorsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.current == nil {
		if key.Matches(msg, m.keys.Back) {
			m.screen = screenMaps
		}
		return m, nil
	}
	floors := m.current.Floors

	switch {
	case key.Matches(msg, m.keys.Back):
		m.screen = screenMaps
		m.current = nil
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.floorCursor = clamp(m.floorCursor-1, 0, len(floors)-1)
	case key.Matches(msg, m.keys.Down):
		m.floorCursor = clamp(m.floorCursor+1, 0, len(floors)-1)
	case key.Matches(msg, m.keys.New):
		return m, m.openPrompt(promptNewFloor, "")
	case key.Matches(msg, m.keys.Rename):
		m.pending = target{kind: targetMap, id: m.current.ID, name: m.current.Name}
		return m, m.openPrompt(promptRenameMap, m.current.Name)
	case len(floors) == 0:
		return m, nil
	case key.Matches(msg, m.keys.Open):
		return m, m.openFloor(floors[m.floorCursor])
	case key.Matches(msg, m.keys.Delete):
		f := floors[m.floorCursor]
		m.confirmDelete(target{kind: targetFloor, id: f.ID, name: f.Name})
	}
	return m, nil
}

// openFloor switches to the editor and starts loading the floor's cells.
func (m *Model) openFloor(f mapapi.Floor) tea.Cmd {
	task := m.editor.LoadAsync(m.ctx, f.ID)
	m.screen = screenEditor
	m.floorID = f.ID
	m.floor = f
	m.cells = nil
	m.dirty = nil
	m.cursorX, m.cursorY = 0, 0
	m.loading = true
	m.leaveArmed = false
	m.status, m.errText = "", ""
	return tea.Batch(waitFloorCmd(m.ctx, f.ID, task), m.spinner.Tick)
}

func (m Model) renderFloors(styles Styles) string {
	if m.current == nil {
		return styles.MutedText.Render("Loading map...")
	}
	floors := m.current.Floors
	if len(floors) == 0 {
		return styles.MutedText.Render("No floors yet. Press n to add one.")
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Floors (%d)", len(floors))))
	b.WriteString("\n")
	for i, f := range floors {
		line := fmt.Sprintf("#%-3d %-28s %dx%d", f.Number, truncate(f.Name, 28), f.DimensionX, f.DimensionY)
		if i == m.floorCursor {
			b.WriteString(styles.Selected.Render("› " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return b.String()
}
