package grid

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/mapgrid/internal/mapapi"
)

// Coord addresses a cell on a floor.
type Coord struct {
	X, Y int
}

// State is the manager's lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSaving:
		return "saving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// CellState is the working value of one cell.
type CellState struct {
	X, Y     int
	IsFilled bool
	Dirty    bool
}

// SaveResult describes a save that did not fail. NoOp is set when there was
// nothing to submit and no request was made.
type SaveResult struct {
	FloorID   int64
	Submitted int
	NoOp      bool
}

// Editor is the surface view code uses to edit one floor.
type Editor interface {
	LoadFloor(ctx context.Context, floorID int64) (mapapi.Floor, error)
	ToggleCell(x, y int) (CellState, error)
	SaveDirty(ctx context.Context) (SaveResult, error)
	DirtyCount() int
}

// Ensure Manager implements Editor at compile time.
var _ Editor = (*Manager)(nil)

// Manager holds the working copy of one floor's cells: the baseline last
// confirmed by the server and the dirty edits not yet saved.
type Manager struct {
	api mapapi.FloorService
	log *logrus.Entry

	mu       sync.Mutex
	state    State
	floor    mapapi.Floor
	baseline map[Coord]bool
	dirty    map[Coord]bool
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger routes manager logs to logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.log = logger.WithField("component", "grid")
		}
	}
}

// NewManager returns an unloaded manager backed by api.
func NewManager(api mapapi.FloorService, opts ...Option) *Manager {
	m := &Manager{
		api:      api,
		log:      logrus.StandardLogger().WithField("component", "grid"),
		baseline: make(map[Coord]bool),
		dirty:    make(map[Coord]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FloorID returns the id of the loaded floor, or 0.
func (m *Manager) FloorID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loadedLocked() {
		return 0
	}
	return m.floor.ID
}

// LoadFloor fetches the floor and replaces the baseline with it. Unsaved
// edits are dropped. On failure the previous floor, if any, stays loaded.
func (m *Manager) LoadFloor(ctx context.Context, floorID int64) (mapapi.Floor, error) {
	prev, err := m.beginLoad()
	if err != nil {
		return mapapi.Floor{}, err
	}
	floor, err := m.api.GetFloor(ctx, floorID)
	return m.finishLoad(floorID, prev, floor, err)
}

// LoadAsync starts LoadFloor in the background. The state check happens
// before it returns, so a rejected load yields an already finished task.
func (m *Manager) LoadAsync(ctx context.Context, floorID int64) *Task[mapapi.Floor] {
	prev, err := m.beginLoad()
	if err != nil {
		return finishedTask(mapapi.Floor{}, err)
	}
	return startTask(ctx, func(ctx context.Context) (mapapi.Floor, error) {
		floor, err := m.api.GetFloor(ctx, floorID)
		return m.finishLoad(floorID, prev, floor, err)
	})
}

func (m *Manager) beginLoad() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateSaving:
		return m.state, ErrSaveInFlight
	case StateLoading:
		return m.state, ErrLoadInFlight
	}
	prev := m.state
	m.state = StateLoading
	return prev, nil
}

func (m *Manager) finishLoad(floorID int64, prev State, floor *mapapi.Floor, err error) (mapapi.Floor, error) {
	var baseline map[Coord]bool
	if err == nil {
		baseline, err = buildBaseline(floorID, floor)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry := m.log.WithField("floor_id", floorID)
	if err != nil {
		m.state = prev
		entry.WithError(err).Warn("floor load failed")
		return mapapi.Floor{}, fmt.Errorf("load floor %d: %w", floorID, err)
	}

	discarded := 0
	if prev == StateReady {
		discarded = len(m.dirty)
	}
	m.floor = floor.Clone()
	m.baseline = baseline
	m.dirty = make(map[Coord]bool)
	m.state = StateReady

	entry = entry.WithFields(logrus.Fields{"dimension_x": floor.DimensionX, "dimension_y": floor.DimensionY})
	if discarded > 0 {
		entry = entry.WithField("discarded", discarded)
	}
	entry.Info("floor loaded")
	return m.snapshotLocked(), nil
}

// ToggleCell flips the working value at (x, y). Coordinates outside the floor
// are rejected with an *OutOfBoundsError and leave state untouched.
func (m *Manager) ToggleCell(x, y int) (CellState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkLocked(x, y); err != nil {
		return CellState{}, err
	}
	c := Coord{X: x, Y: y}
	return m.setLocked(c, !m.valueLocked(c)), nil
}

// SetCell sets the working value at (x, y), recording a dirty entry only when
// it differs from the baseline.
func (m *Manager) SetCell(x, y int, filled bool) (CellState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkLocked(x, y); err != nil {
		return CellState{}, err
	}
	return m.setLocked(Coord{X: x, Y: y}, filled), nil
}

// Cell returns the working value at (x, y).
func (m *Manager) Cell(x, y int) (CellState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkLocked(x, y); err != nil {
		return CellState{}, err
	}
	c := Coord{X: x, Y: y}
	_, dirty := m.dirty[c]
	return CellState{X: x, Y: y, IsFilled: m.valueLocked(c), Dirty: dirty}, nil
}

// DirtyCount returns the number of unsaved edits.
func (m *Manager) DirtyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dirty)
}

// Dirty returns the unsaved edits ordered by row, then column.
func (m *Manager) Dirty() []mapapi.CellUpdateDTO {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingLocked()
}

// Baseline returns a copy of the last server-confirmed cell values.
func (m *Manager) Baseline() map[Coord]bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	dup := make(map[Coord]bool, len(m.baseline))
	for c, v := range m.baseline {
		dup[c] = v
	}
	return dup
}

// Discard drops every unsaved edit.
func (m *Manager) Discard() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.dirty)
	m.dirty = make(map[Coord]bool)
	return n
}

// Snapshot returns a copy of the loaded floor with working values applied.
func (m *Manager) Snapshot() (mapapi.Floor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loadedLocked() {
		return mapapi.Floor{}, ErrNotLoaded
	}
	return m.snapshotLocked(), nil
}

// SaveDirty submits the dirty set as one batch. An empty dirty set returns
// a NoOp result without calling the API. On failure the dirty set is kept
// and a *SaveError wrapping the cause is returned.
func (m *Manager) SaveDirty(ctx context.Context) (SaveResult, error) {
	batch, result, err := m.beginSave()
	if err != nil || result.NoOp {
		return result, err
	}
	err = m.api.UpdateCells(ctx, batch)
	return m.finishSave(batch, err)
}

// SaveAsync starts SaveDirty in the background. Cancelling the task aborts
// the request and counts as a failed save.
func (m *Manager) SaveAsync(ctx context.Context) *Task[SaveResult] {
	batch, result, err := m.beginSave()
	if err != nil || result.NoOp {
		return finishedTask(result, err)
	}
	return startTask(ctx, func(ctx context.Context) (SaveResult, error) {
		err := m.api.UpdateCells(ctx, batch)
		return m.finishSave(batch, err)
	})
}

func (m *Manager) beginSave() (*mapapi.CellsBatch, SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case StateSaving:
		return nil, SaveResult{}, ErrSaveInFlight
	case StateUnloaded, StateLoading:
		return nil, SaveResult{}, ErrNotLoaded
	}
	result := SaveResult{FloorID: m.floor.ID}
	if len(m.dirty) == 0 {
		result.NoOp = true
		return nil, result, nil
	}
	m.state = StateSaving
	return &mapapi.CellsBatch{FloorID: m.floor.ID, Cells: m.pendingLocked()}, result, nil
}

func (m *Manager) finishSave(batch *mapapi.CellsBatch, err error) (SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateReady

	result := SaveResult{FloorID: batch.FloorID}
	entry := m.log.WithFields(logrus.Fields{"floor_id": batch.FloorID, "cells": len(batch.Cells)})
	if err != nil {
		entry.WithError(err).WithField("retained", len(m.dirty)).Warn("cell save failed")
		return result, &SaveError{FloorID: batch.FloorID, Retained: len(m.dirty), Err: err}
	}

	// Edits made while the request was in flight stay dirty against the
	// new baseline.
	for _, cell := range batch.Cells {
		c := Coord{X: cell.X, Y: cell.Y}
		working := m.valueLocked(c)
		m.baseline[c] = cell.IsFilled
		if working == cell.IsFilled {
			delete(m.dirty, c)
		} else {
			m.dirty[c] = working
		}
	}
	result.Submitted = len(batch.Cells)
	entry.WithField("remaining", len(m.dirty)).Info("cells saved")
	return result, nil
}

func (m *Manager) loadedLocked() bool {
	return m.state == StateReady || m.state == StateSaving
}

func (m *Manager) checkLocked(x, y int) error {
	if !m.loadedLocked() {
		return ErrNotLoaded
	}
	if !m.floor.InBounds(x, y) {
		return &OutOfBoundsError{X: x, Y: y, DimensionX: m.floor.DimensionX, DimensionY: m.floor.DimensionY}
	}
	return nil
}

func (m *Manager) valueLocked(c Coord) bool {
	if v, ok := m.dirty[c]; ok {
		return v
	}
	return m.baseline[c]
}

func (m *Manager) setLocked(c Coord, filled bool) CellState {
	dirty := filled != m.baseline[c]
	if dirty {
		m.dirty[c] = filled
	} else {
		delete(m.dirty, c)
	}
	return CellState{X: c.X, Y: c.Y, IsFilled: filled, Dirty: dirty}
}

func (m *Manager) pendingLocked() []mapapi.CellUpdateDTO {
	out := make([]mapapi.CellUpdateDTO, 0, len(m.dirty))
	for c, v := range m.dirty {
		out = append(out, mapapi.CellUpdateDTO{X: c.X, Y: c.Y, IsFilled: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

func (m *Manager) snapshotLocked() mapapi.Floor {
	snap := m.floor.Clone()
	for i := range snap.Cells {
		c := Coord{X: snap.Cells[i].X, Y: snap.Cells[i].Y}
		snap.Cells[i].IsFilled = m.valueLocked(c)
	}
	return snap
}

func buildBaseline(floorID int64, floor *mapapi.Floor) (map[Coord]bool, error) {
	if floor == nil {
		return nil, fmt.Errorf("empty floor response")
	}
	if floor.ID != floorID {
		return nil, &GridError{FloorID: floorID, Reason: fmt.Sprintf("response is for floor %d", floor.ID)}
	}
	if floor.DimensionX <= 0 || floor.DimensionY <= 0 {
		return nil, &GridError{FloorID: floor.ID, Reason: fmt.Sprintf("invalid dimensions %dx%d", floor.DimensionX, floor.DimensionY)}
	}
	if len(floor.Cells) != floor.CellCount() {
		return nil, &GridError{FloorID: floor.ID, Reason: fmt.Sprintf("has %d cells, want %d", len(floor.Cells), floor.CellCount())}
	}
	baseline := make(map[Coord]bool, len(floor.Cells))
	for _, cell := range floor.Cells {
		if !floor.InBounds(cell.X, cell.Y) {
			return nil, &GridError{FloorID: floor.ID, Reason: fmt.Sprintf("cell (%d,%d) out of bounds", cell.X, cell.Y)}
		}
		c := Coord{X: cell.X, Y: cell.Y}
		if _, dup := baseline[c]; dup {
			return nil, &GridError{FloorID: floor.ID, Reason: fmt.Sprintf("duplicate cell (%d,%d)", cell.X, cell.Y)}
		}
		baseline[c] = cell.IsFilled
	}
	return baseline, nil
}
