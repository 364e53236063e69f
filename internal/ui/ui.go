package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/five82/mapgrid/internal/grid"
	"github.com/five82/mapgrid/internal/mapapi"
	"github.com/five82/mapgrid/internal/prefs"
	"github.com/five82/mapgrid/internal/state"
)

// screen identifies the active view.
type screen int

const (
	screenMaps screen = iota
	screenFloors
	screenEditor
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    mapapi.Service
	Editor    *grid.Manager
	Store     *state.Store
	Refresh   func(context.Context) error // refreshes Store after a mutation
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *logrus.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    mapapi.Service
	editor    *grid.Manager
	store     *state.Store
	refresh   func(context.Context) error
	log       *logrus.Entry
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	screen  screen
	width   int
	height  int

	// Prompt state
	input   textinput.Model
	prompt  promptKind
	pending target

	// Map list
	snapshot      state.Snapshot
	mapCursor     int
	restoredMapID bool

	// Map overview
	current     *mapapi.Map
	floorCursor int

	// Floor editor
	floorID     int64
	floor       mapapi.Floor
	cells       map[grid.Coord]bool
	dirty       map[grid.Coord]bool
	cursorX     int
	cursorY     int
	loading     bool
	saving      bool
	quitArmed   bool
	leaveArmed  bool
	reloadArmed bool

	// Status line
	status  string
	errText string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	editor := opts.Editor
	if editor == nil && opts.Client != nil {
		editor = grid.NewManager(opts.Client, grid.WithLogger(logger))
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	input := textinput.New()
	input.CharLimit = 120

	theme := GetTheme(opts.Prefs.Theme)
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	return Model{
		ctx:       ctx,
		client:    opts.Client,
		editor:    editor,
		store:     opts.Store,
		refresh:   opts.Refresh,
		log:       logger.WithField("component", "ui"),
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
		pollTick:  pollTick,
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		input:     input,
		screen:    screenMaps,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(20, msg.Width-20)
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case mapLoadedMsg:
		return m.handleMapLoaded(msg)

	case floorLoadedMsg:
		return m.handleFloorLoaded(msg)

	case savedMsg:
		return m.handleSaved(msg)

	case mutatedMsg:
		return m.handleMutated(msg)
	}

	if m.prompt != promptNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(m.renderHeader(styles))
	b.WriteString("\n\n")

	switch m.screen {
	case screenMaps:
		b.WriteString(m.renderMaps(styles))
	case screenFloors:
		b.WriteString(m.renderFloors(styles))
	case screenEditor:
		b.WriteString(m.renderEditor(styles))
	}
	b.WriteString("\n")

	if line := m.renderStatus(styles); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if m.prompt != promptNone {
		b.WriteString(m.renderPrompt(styles))
		b.WriteString("\n")
	}
	b.WriteString(styles.Footer.Render(m.help.View(screenKeys{keyMap: m.keys, screen: m.screen})))
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.screen == screenEditor && len(m.dirty) > 0 && !m.quitArmed {
			m.quitArmed = true
			m.status = fmt.Sprintf("%d unsaved edits; press q again to quit", len(m.dirty))
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.cycleTheme()
		return m, nil
	}
	m.quitArmed = false

	switch m.screen {
	case screenMaps:
		return m.handleMapsKey(msg)
	case screenFloors:
		return m.handleFloorsKey(msg)
	case screenEditor:
		return m.handleEditorKey(msg)
	}
	return m, nil
}

func (m *Model) cycleTheme() {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	m.prefs.Theme = m.theme.Name
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.WithError(err).Warn("save prefs failed")
	}
}

func (m Model) busy() bool {
	return m.loading || m.saving
}

func (m *Model) setError(err error) {
	m.status = ""
	m.errText = describeError(err)
}

func (m *Model) setStatus(format string, args ...any) {
	m.errText = ""
	m.status = fmt.Sprintf(format, args...)
}

func (m Model) renderHeader(styles Styles) string {
	crumbs := []string{"mapgrid"}
	if m.screen != screenMaps && m.current != nil {
		crumbs = append(crumbs, m.current.Name)
	}
	if m.screen == screenEditor && m.floor.Name != "" {
		crumbs = append(crumbs, m.floor.Name)
	}
	left := styles.Header.Render(strings.Join(crumbs, " › "))

	var right string
	switch {
	case m.snapshot.IsOffline():
		right = styles.DangerText.Render("● offline")
	case m.snapshot.HasMaps:
		right = styles.SuccessText.Render("● online")
	default:
		right = styles.WarningText.Render("● connecting")
	}
	if m.busy() {
		right = m.spinner.View() + " " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderStatus(styles Styles) string {
	if m.errText != "" {
		return styles.DangerText.Render("✗ " + m.errText)
	}
	if m.status != "" {
		return styles.MutedText.Render(m.status)
	}
	return ""
}

// describeError turns API and editor failures into a single status line.
func describeError(err error) string {
	if err == nil {
		return ""
	}
	var saveErr *grid.SaveError
	if errors.As(err, &saveErr) {
		return fmt.Sprintf("save failed (%d edits kept): %s", saveErr.Retained, describeError(saveErr.Err))
	}
	return errorDetail(err)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type mapLoadedMsg struct {
	m   *mapapi.Map
	err error
}

type floorLoadedMsg struct {
	floorID int64
	floor   mapapi.Floor
	err     error
}

type savedMsg struct {
	result grid.SaveResult
	err    error
}

type mutatedMsg struct {
	summary string
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadMapCmd(ctx context.Context, client mapapi.Service, id int64) tea.Cmd {
	return func() tea.Msg {
		loaded, err := client.GetMap(ctx, id)
		return mapLoadedMsg{m: loaded, err: err}
	}
}

func waitFloorCmd(ctx context.Context, floorID int64, task *grid.Task[mapapi.Floor]) tea.Cmd {
	return func() tea.Msg {
		floor, err := task.Wait(ctx)
		return floorLoadedMsg{floorID: floorID, floor: floor, err: err}
	}
}

func waitSaveCmd(ctx context.Context, task *grid.Task[grid.SaveResult]) tea.Cmd {
	return func() tea.Msg {
		result, err := task.Wait(ctx)
		return savedMsg{result: result, err: err}
	}
}

// mutateCmd runs a create, rename or delete call and refreshes the map list
// on success.
func mutateCmd(ctx context.Context, refresh func(context.Context) error, summary string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(ctx); err != nil {
			return mutatedMsg{err: err}
		}
		if refresh != nil {
			_ = refresh(ctx)
		}
		return mutatedMsg{summary: summary}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("ui requires a data store")
	}
	if opts.Client == nil {
		return fmt.Errorf("ui requires an api client")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
