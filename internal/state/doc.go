// Package state provides thread-safe storage for the map list shown by the UI.
//
// # Overview
//
// The background poller in package app writes the latest map list into a
// Store; the UI reads Snapshots on its own schedule.
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ ListMaps()     │            │                 │
//	│      ↓         │            │                 │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓          │
//	│  repeat...     │            │  render list    │
//	└────────────────┘            └─────────────────┘
//
// # Update Semantics
//
//	// Success case: replace the list
//	store.Update(maps, nil)
//	→ snapshot.Maps = maps, LastError = nil, ConsecutiveFailures = 0
//
//	// Error case: keep the old list, record the error
//	store.Update(nil, err)
//	→ snapshot.Maps = <unchanged>, LastError = err, ConsecutiveFailures++
//
// The UI therefore always has the last good list, and IsOffline turns true
// after two failed polls in a row.
//
// # Copying
//
// Update and Snapshot copy the map slice and each map's floor slice, so
// callers can mutate what they get back without racing the poller.
//
// The zero Store is ready to use.
package state
