package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mapgrid/internal/grid"
)

func (m Model) handleFloorLoaded(msg floorLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.floorID != m.floorID {
		return m, nil
	}
	m.loading = false
	if msg.err != nil {
		m.setError(msg.err)
		// Nothing of this floor is loaded, so there is nothing to edit.
		if m.editor.FloorID() != msg.floorID && m.screen == screenEditor {
			m.screen = screenFloors
		}
		return m, nil
	}

	dropped := len(m.dirty)
	m.floor = msg.floor
	m.syncEditor()
	m.cursorX = clamp(m.cursorX, 0, m.floor.DimensionX-1)
	m.cursorY = clamp(m.cursorY, 0, m.floor.DimensionY-1)
	if dropped > 0 {
		m.setStatus("Reloaded %s; %d unsaved edits dropped", m.floor.Name, dropped)
	} else {
		m.setStatus("Loaded %s (%dx%d)", m.floor.Name, m.floor.DimensionX, m.floor.DimensionY)
	}
	return m, nil
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.saving = false
	m.syncEditor()
	switch {
	case msg.err != nil:
		m.setError(msg.err)
	case msg.result.NoOp:
		m.setStatus("Nothing to save")
	case len(m.dirty) > 0:
		m.setStatus("Saved %d cells; %d newer edits pending", msg.result.Submitted, len(m.dirty))
	default:
		m.setStatus("Saved %d cells", msg.result.Submitted)
	}
	return m, nil
}

// syncEditor copies the manager's working grid into the model for rendering.
func (m *Model) syncEditor() {
	snap, err := m.editor.Snapshot()
	if err != nil || snap.ID != m.floorID {
		return
	}
	m.floor = snap
	m.cells = make(map[grid.Coord]bool, len(snap.Cells))
	for _, c := range snap.Cells {
		m.cells[grid.Coord{X: c.X, Y: c.Y}] = c.IsFilled
	}
	dirty := m.editor.Dirty()
	m.dirty = make(map[grid.Coord]bool, len(dirty))
	for _, d := range dirty {
		m.dirty[grid.Coord{X: d.X, Y: d.Y}] = d.IsFilled
	}
}

// handleEditorKey processes keyboard input for the floor editor.
func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		if len(m.dirty) > 0 && !m.leaveArmed {
			m.leaveArmed = true
			m.setStatus("%d unsaved edits; press esc again to leave", len(m.dirty))
			return m, nil
		}
		m.leaveArmed = false
		m.screen = screenFloors
		if m.current != nil {
			return m, loadMapCmd(m.ctx, m.client, m.current.ID)
		}
		return m, nil
	}
	m.leaveArmed = false
	reloadArmed := m.reloadArmed
	m.reloadArmed = false

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursorY = clamp(m.cursorY-1, 0, m.floor.DimensionY-1)
	case key.Matches(msg, m.keys.Down):
		m.cursorY = clamp(m.cursorY+1, 0, m.floor.DimensionY-1)
	case key.Matches(msg, m.keys.Left):
		m.cursorX = clamp(m.cursorX-1, 0, m.floor.DimensionX-1)
	case key.Matches(msg, m.keys.Right):
		m.cursorX = clamp(m.cursorX+1, 0, m.floor.DimensionX-1)

	case m.cells == nil:
		// Still loading; edits need a baseline.
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if _, err := m.editor.ToggleCell(m.cursorX, m.cursorY); err != nil {
			m.setError(err)
			return m, nil
		}
		m.syncEditor()

	case key.Matches(msg, m.keys.Save):
		if m.saving {
			m.setStatus("Save already in progress")
			return m, nil
		}
		task := m.editor.SaveAsync(m.ctx)
		m.saving = true
		m.status = "Saving..."
		return m, tea.Batch(waitSaveCmd(m.ctx, task), m.spinner.Tick)

	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		if len(m.dirty) > 0 && !reloadArmed {
			m.reloadArmed = true
			m.setStatus("%d unsaved edits; press r again to reload", len(m.dirty))
			return m, nil
		}
		task := m.editor.LoadAsync(m.ctx, m.floorID)
		m.loading = true
		return m, tea.Batch(waitFloorCmd(m.ctx, m.floorID, task), m.spinner.Tick)

	case key.Matches(msg, m.keys.Discard):
		n := m.editor.Discard()
		m.syncEditor()
		m.setStatus("Discarded %d edits", n)
	}
	return m, nil
}

func (m Model) renderEditor(styles Styles) string {
	f := m.floor
	info := fmt.Sprintf("#%d %s  %dx%d  cursor (%d,%d)", f.Number, f.Name, f.DimensionX, f.DimensionY, m.cursorX, m.cursorY)
	if m.cells == nil {
		return styles.Text.Render(info) + "\n" + styles.MutedText.Render("Loading floor...")
	}

	dirtyLabel := styles.MutedText.Render("no unsaved edits")
	if n := len(m.dirty); n > 0 {
		dirtyLabel = styles.WarningText.Render(fmt.Sprintf("%d unsaved edits", n))
	}

	var b strings.Builder
	for y := 0; y < f.DimensionY; y++ {
		for x := 0; x < f.DimensionX; x++ {
			c := grid.Coord{X: x, Y: y}
			filled := m.cells[c]
			_, dirty := m.dirty[c]

			glyph := "··"
			style := styles.CellEmpty
			if filled {
				glyph = "██"
				style = styles.CellFilled
			}
			if dirty {
				style = styles.CellDirty
			}
			if x == m.cursorX && y == m.cursorY {
				style = styles.Cursor
				if !filled {
					glyph = "[]"
				}
			}
			b.WriteString(style.Render(glyph))
		}
		if y < f.DimensionY-1 {
			b.WriteString("\n")
		}
	}

	return styles.Text.Render(info) + "  " + dirtyLabel + "\n" + styles.Panel.Render(b.String())
}
