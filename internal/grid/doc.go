// Package grid keeps the editable working copy of a floor's cell grid and
// reconciles it with the remote store.
//
// # Overview
//
// A Manager holds two maps keyed by Coord:
//
//   - baseline: the cell values last confirmed by the server
//   - dirty: pending values, only for cells that differ from baseline
//
// The working value of a cell is its dirty entry when present, else its
// baseline value. Toggling a cell back to its baseline value removes the
// dirty entry, so a save only ever submits cells that really changed.
//
// # Lifecycle
//
//	Unloaded ──LoadFloor──> Loading ──ok──> Ready ──SaveDirty──> Saving
//	                           │                ^                   │
//	                           └──fail (prev)   └───ok or fail──────┘
//
// LoadFloor replaces baseline wholesale and clears dirty, even when edits
// are pending. Asking the user before throwing edits away is the caller's
// job; DirtyCount tells it whether there is anything to lose.
//
// # Saving
//
// SaveDirty builds one mapapi.CellsBatch from the dirty set and submits it.
//
//   - Empty dirty set: SaveResult{NoOp: true}, no request.
//   - Success: submitted values become baseline and their dirty entries go
//     away. Cells toggled again while the request was in flight stay dirty.
//   - Failure: dirty is left as it was and a *SaveError wrapping the
//     transport or remote error is returned. Retry by calling SaveDirty again.
//
// Only one save runs at a time. A second SaveDirty, or a LoadFloor, issued
// while a save is pending fails with ErrSaveInFlight.
//
// # Concurrency
//
// The manager's mutex is held only while touching the maps, never across a
// network call, so toggles stay responsive during a save and are visible to
// the next read immediately. LoadAsync and SaveAsync run the network part in
// a goroutine and return a *Task handle; the state transition happens before
// they return, which keeps the single-save rule deterministic. Cancelling a
// save task aborts the request and is reported like any other failed save.
//
// # Errors
//
//   - ErrNotLoaded: no floor loaded, or a load is in progress
//   - *OutOfBoundsError: coordinate outside the floor (errors.Is ErrInvalidInput and mapapi.ErrValidation)
//   - *GridError: fetched cells do not form a dimensionX × dimensionY grid
//   - *SaveError: a save failed; unwraps to the underlying error
package grid
