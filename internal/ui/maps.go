package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mapgrid/internal/state"
)

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap

	// Put the cursor back on the map opened last time, once.
	if !m.restoredMapID && snap.HasMaps {
		m.restoredMapID = true
		for i, mp := range snap.Maps {
			if mp.ID == m.prefs.LastMapID {
				m.mapCursor = i
				break
			}
		}
	}
	m.mapCursor = clamp(m.mapCursor, 0, len(snap.Maps)-1)
}

// handleMapsKey processes keyboard input for the map list.
func (m Model) handleMapsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maps := m.snapshot.Maps

	switch {
	case key.Matches(msg, m.keys.Up):
		m.mapCursor = clamp(m.mapCursor-1, 0, len(maps)-1)
	case key.Matches(msg, m.keys.Down):
		m.mapCursor = clamp(m.mapCursor+1, 0, len(maps)-1)
	case key.Matches(msg, m.keys.New):
		return m, m.openPrompt(promptNewMap, "")
	case len(maps) == 0:
		return m, nil
	case key.Matches(msg, m.keys.Open):
		selected := maps[m.mapCursor]
		m.current = &selected
		m.floorCursor = 0
		m.screen = screenFloors
		m.status, m.errText = "", ""
		if m.prefs.LastMapID != selected.ID {
			m.prefs.LastMapID = selected.ID
			m.savePrefs()
		}
		return m, loadMapCmd(m.ctx, m.client, selected.ID)
	case key.Matches(msg, m.keys.Delete):
		selected := maps[m.mapCursor]
		m.confirmDelete(target{kind: targetMap, id: selected.ID, name: selected.Name})
	case key.Matches(msg, m.keys.Rename):
		selected := maps[m.mapCursor]
		m.pending = target{kind: targetMap, id: selected.ID, name: selected.Name}
		return m, m.openPrompt(promptRenameMap, selected.Name)
	}
	return m, nil
}

func (m Model) renderMaps(styles Styles) string {
	snap := m.snapshot
	if !snap.HasMaps {
		if snap.LastError != nil {
			return styles.DangerText.Render("Cannot reach the map API: ") + styles.MutedText.Render(errorDetail(snap.LastError))
		}
		return styles.MutedText.Render("Loading maps...")
	}
	if len(snap.Maps) == 0 {
		return styles.MutedText.Render("No maps yet. Press n to create one.")
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Maps (%d)", len(snap.Maps))))
	b.WriteString("\n")
	for i, mp := range snap.Maps {
		line := fmt.Sprintf("%-32s %s", truncate(mp.Name, 32), floorsLabel(mp.NumberOfFloors))
		if i == m.mapCursor {
			b.WriteString(styles.Selected.Render("› " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		b.WriteString("\n")
	}
	if snap.LastError != nil {
		b.WriteString(styles.WarningText.Render(fmt.Sprintf("last refresh failed at %s: %s",
			snap.LastUpdated.Format("15:04:05"), errorDetail(snap.LastError))))
		b.WriteString("\n")
	}
	return b.String()
}

func floorsLabel(n int) string {
	if n == 1 {
		return "1 floor"
	}
	return fmt.Sprintf("%d floors", n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
