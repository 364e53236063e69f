package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mapgrid/internal/mapapi"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptNewMap
	promptRenameMap
	promptNewFloor
	promptConfirmDelete
)

type targetKind int

const (
	targetMap targetKind = iota
	targetFloor
)

// target is the map or floor a rename or delete prompt acts on.
type target struct {
	kind targetKind
	id   int64
	name string
}

func (t target) label() string {
	if t.kind == targetFloor {
		return fmt.Sprintf("floor %q", t.name)
	}
	return fmt.Sprintf("map %q", t.name)
}

func (m *Model) openPrompt(kind promptKind, value string) tea.Cmd {
	m.prompt = kind
	m.input.Reset()
	switch kind {
	case promptNewMap, promptRenameMap:
		m.input.Placeholder = "map name"
	case promptNewFloor:
		m.input.Placeholder = "name WIDTHxHEIGHT, e.g. Ground 12x8"
	}
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) confirmDelete(t target) {
	m.pending = t
	m.prompt = promptConfirmDelete
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.input.Blur()
	m.input.Reset()
}

// handlePromptKey routes keys to the open prompt.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt == promptConfirmDelete {
		t := m.pending
		m.closePrompt()
		if msg.String() != "y" && msg.String() != "Y" {
			m.setStatus("Delete cancelled")
			return m, nil
		}
		return m, m.deleteCmd(t)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.submitPrompt()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitPrompt() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())
	kind := m.prompt
	pending := m.pending
	m.closePrompt()

	switch kind {
	case promptNewMap:
		return m, mutateCmd(m.ctx, m.refresh, fmt.Sprintf("Created map %q", value), func(ctx context.Context) error {
			_, err := m.client.CreateMap(ctx, value)
			return err
		})

	case promptRenameMap:
		return m, mutateCmd(m.ctx, m.refresh, fmt.Sprintf("Renamed %s to %q", pending.label(), value), func(ctx context.Context) error {
			return m.client.EditMap(ctx, pending.id, value)
		})

	case promptNewFloor:
		if m.current == nil {
			return m, nil
		}
		name, dx, dy, err := parseFloorInput(value)
		if err != nil {
			m.setError(err)
			return m, nil
		}
		dto := &mapapi.FloorDTO{
			Name:       name,
			Number:     nextFloorNumber(m.current.Floors),
			DimensionX: dx,
			DimensionY: dy,
			MapID:      m.current.ID,
		}
		return m, mutateCmd(m.ctx, m.refresh, fmt.Sprintf("Created floor %q (%dx%d)", name, dx, dy), func(ctx context.Context) error {
			_, err := m.client.CreateFloor(ctx, dto)
			return err
		})
	}
	return m, nil
}

func (m Model) deleteCmd(t target) tea.Cmd {
	summary := "Deleted " + t.label()
	if t.kind == targetFloor {
		return mutateCmd(m.ctx, m.refresh, summary, func(ctx context.Context) error {
			return m.client.DeleteFloor(ctx, t.id)
		})
	}
	return mutateCmd(m.ctx, m.refresh, summary, func(ctx context.Context) error {
		return m.client.DeleteMap(ctx, t.id)
	})
}

// handleMutated reports the outcome of a create, rename or delete and pulls
// fresh data for the visible screen.
func (m Model) handleMutated(msg mutatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setError(msg.err)
		return m, nil
	}
	m.setStatus("%s", msg.summary)

	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.screen == screenFloors && m.current != nil {
		cmds = append(cmds, loadMapCmd(m.ctx, m.client, m.current.ID))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) renderPrompt(styles Styles) string {
	switch m.prompt {
	case promptConfirmDelete:
		return styles.WarningText.Render(fmt.Sprintf("Delete %s? (y/N)", m.pending.label()))
	case promptNewMap:
		return styles.AccentText.Render("New map: ") + m.input.View()
	case promptRenameMap:
		return styles.AccentText.Render("Rename map: ") + m.input.View()
	case promptNewFloor:
		return styles.AccentText.Render("New floor: ") + m.input.View()
	}
	return ""
}

// parseFloorInput reads "<name> <width>x<height>".
func parseFloorInput(s string) (name string, dx, dy int, err error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return "", 0, 0, fmt.Errorf("floor needs a name and a size, e.g. Ground 12x8")
	}
	size := strings.ToLower(fields[len(fields)-1])
	w, h, ok := strings.Cut(size, "x")
	if !ok {
		return "", 0, 0, fmt.Errorf("floor size %q must look like 12x8", size)
	}
	if dx, err = strconv.Atoi(w); err != nil || dx <= 0 {
		return "", 0, 0, fmt.Errorf("floor width %q must be a positive number", w)
	}
	if dy, err = strconv.Atoi(h); err != nil || dy <= 0 {
		return "", 0, 0, fmt.Errorf("floor height %q must be a positive number", h)
	}
	return strings.Join(fields[:len(fields)-1], " "), dx, dy, nil
}

func nextFloorNumber(floors []mapapi.Floor) int {
	next := 0
	for _, f := range floors {
		if f.Number >= next {
			next = f.Number + 1
		}
	}
	return next
}
