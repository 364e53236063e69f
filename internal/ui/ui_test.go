package ui

import (
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/mapgrid/internal/fakeapi"
	"github.com/five82/mapgrid/internal/grid"
	"github.com/five82/mapgrid/internal/mapapi"
	"github.com/five82/mapgrid/internal/prefs"
	"github.com/five82/mapgrid/internal/state"
	"github.com/five82/mapgrid/internal/transport"
)

type harness struct {
	srv    *fakeapi.Server
	client *mapapi.Client
	store  *state.Store
	model  Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := fakeapi.New(logger)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	tr, err := transport.New(transport.Config{BaseURL: hs.URL, Logger: logger})
	require.NoError(t, err)
	client := mapapi.NewClient(tr)
	store := &state.Store{}
	refresh := func(ctx context.Context) error {
		maps, err := client.ListMaps(ctx)
		store.Update(maps, err)
		return err
	}

	h := &harness{srv: srv, client: client, store: store}
	h.model = New(Options{
		Context:   context.Background(),
		Client:    client,
		Editor:    grid.NewManager(client, grid.WithLogger(logger)),
		Store:     store,
		Refresh:   refresh,
		Prefs:     prefs.Prefs{Theme: "Slate"},
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Logger:    logger,
	})
	h.refresh(t)
	return h
}

func (h *harness) refresh(t *testing.T) {
	t.Helper()
	maps, err := h.client.ListMaps(context.Background())
	h.store.Update(maps, err)
	h.settle(fetchSnapshotCmd(h.store))
}

// settle runs cmd and every follow-up command, feeding results back into the
// model. Spinner ticks are dropped so animation never blocks the test.
func (h *harness) settle(cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil, spinner.TickMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			updated, follow := h.model.Update(msg)
			h.model = updated.(Model)
			queue = append(queue, follow)
		}
	}
}

// press sends a key and settles the resulting commands.
func (h *harness) press(keys ...tea.KeyMsg) {
	for _, k := range keys {
		updated, cmd := h.model.Update(k)
		h.model = updated.(Model)
		h.settle(cmd)
	}
}

// pressNoSettle sends a key and drops its command, for keys that only start
// cursor blinking.
func (h *harness) pressNoSettle(k tea.KeyMsg) {
	updated, _ := h.model.Update(k)
	h.model = updated.(Model)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	rightKey = tea.KeyMsg{Type: tea.KeyRight}
)

func TestModel_EditAndSaveFloor(t *testing.T) {
	h := newHarness(t)
	hq := h.srv.SeedMap("HQ")
	floor, err := h.srv.SeedFloor(mapapi.FloorDTO{Name: "Ground", Number: 0, DimensionX: 3, DimensionY: 2, MapID: hq.ID})
	require.NoError(t, err)
	h.refresh(t)

	assert.Contains(t, h.model.View(), "HQ")

	h.press(enterKey)
	require.Equal(t, screenFloors, h.model.screen)
	require.NotNil(t, h.model.current)
	require.Len(t, h.model.current.Floors, 1)
	assert.Contains(t, h.model.View(), "Ground")

	h.press(enterKey)
	require.Equal(t, screenEditor, h.model.screen)
	assert.False(t, h.model.loading)
	assert.Len(t, h.model.cells, 6)

	h.press(spaceKey, rightKey, spaceKey)
	assert.Len(t, h.model.dirty, 2)
	assert.Contains(t, h.model.View(), "2 unsaved edits")

	h.srv.FailNext(500, "db down")
	h.press(runeKey('s'))
	assert.False(t, h.model.saving)
	assert.Contains(t, h.model.errText, "db down")
	assert.Contains(t, h.model.errText, "HTTP 500")
	assert.Len(t, h.model.dirty, 2, "failed save keeps edits")

	h.press(runeKey('s'))
	assert.Empty(t, h.model.errText)
	assert.Equal(t, "Saved 2 cells", h.model.status)
	assert.Empty(t, h.model.dirty)

	saved, ok := h.srv.Floor(floor.ID)
	require.True(t, ok)
	filled := map[grid.Coord]bool{}
	for _, c := range saved.Cells {
		if c.IsFilled {
			filled[grid.Coord{X: c.X, Y: c.Y}] = true
		}
	}
	assert.Equal(t, map[grid.Coord]bool{{X: 0, Y: 0}: true, {X: 1, Y: 0}: true}, filled)

	h.press(runeKey('s'))
	assert.Equal(t, "Nothing to save", h.model.status)
}

func TestModel_DiscardAndLeaveGuard(t *testing.T) {
	h := newHarness(t)
	hq := h.srv.SeedMap("HQ")
	_, err := h.srv.SeedFloor(mapapi.FloorDTO{Name: "Ground", DimensionX: 2, DimensionY: 2, MapID: hq.ID})
	require.NoError(t, err)
	h.refresh(t)

	h.press(enterKey, enterKey, spaceKey)
	require.Len(t, h.model.dirty, 1)

	updated, cmd := h.model.Update(runeKey('q'))
	h.model = updated.(Model)
	assert.Nil(t, cmd, "first q with unsaved edits must not quit")
	assert.Contains(t, h.model.status, "press q again")

	h.press(escKey)
	assert.Equal(t, screenEditor, h.model.screen)

	h.press(runeKey('r'))
	assert.Contains(t, h.model.status, "press r again")
	assert.Len(t, h.model.dirty, 1)

	h.press(runeKey('u'))
	assert.Empty(t, h.model.dirty)
	assert.Equal(t, "Discarded 1 edits", h.model.status)

	h.press(escKey)
	assert.Equal(t, screenFloors, h.model.screen)
}

func TestModel_CreateMapThroughPrompt(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedMap("HQ")
	h.refresh(t)

	h.pressNoSettle(runeKey('n'))
	require.Equal(t, promptNewMap, h.model.prompt)
	h.pressNoSettle(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Annex")})
	h.press(enterKey)

	assert.Equal(t, promptNone, h.model.prompt)
	assert.Equal(t, `Created map "Annex"`, h.model.status)
	require.Len(t, h.model.snapshot.Maps, 2)
}

func TestModel_DeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedMap("HQ")
	h.refresh(t)

	h.press(runeKey('d'))
	require.Equal(t, promptConfirmDelete, h.model.prompt)
	h.press(runeKey('x'))
	assert.Equal(t, "Delete cancelled", h.model.status)
	assert.Len(t, h.model.snapshot.Maps, 1)

	h.press(runeKey('d'), runeKey('y'))
	assert.Equal(t, `Deleted map "HQ"`, h.model.status)
	assert.Empty(t, h.model.snapshot.Maps)
}

func TestModel_RestoresLastMap(t *testing.T) {
	h := newHarness(t)
	h.srv.SeedMap("A")
	b := h.srv.SeedMap("B")

	h.model.prefs.LastMapID = b.ID
	h.model.restoredMapID = false
	h.refresh(t)
	assert.Equal(t, 1, h.model.mapCursor)
}

func TestParseFloorInput(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		dx, dy  int
		wantErr bool
	}{
		{in: "Ground 12x8", name: "Ground", dx: 12, dy: 8},
		{in: "Upper Deck 3X4", name: "Upper Deck", dx: 3, dy: 4},
		{in: "Ground", wantErr: true},
		{in: "Ground 12", wantErr: true},
		{in: "Ground 0x8", wantErr: true},
		{in: "Ground ax8", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, dx, dy, err := parseFloorInput(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.dx, dx)
			assert.Equal(t, tt.dy, dy)
		})
	}
}

func TestNextFloorNumber(t *testing.T) {
	assert.Equal(t, 0, nextFloorNumber(nil))
	assert.Equal(t, 3, nextFloorNumber([]mapapi.Floor{{Number: 2}, {Number: 0}}))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, []string{"Nightfox", "Kanagawa", "Slate"}, ThemeNames())
	assert.Equal(t, "Kanagawa", NextTheme("Nightfox"))
	assert.Equal(t, "Nightfox", NextTheme("Slate"))
	assert.Equal(t, "Nightfox", NextTheme("Unknown"))
	assert.Equal(t, "Slate", GetTheme("Slate").Name)
	assert.Equal(t, "Nightfox", GetTheme("Unknown").Name)
}
