package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/mapgrid/internal/mapapi"
)

// Snapshot represents the latest map list available to the UI.
type Snapshot struct {
	Maps                []mapapi.Map
	HasMaps             bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive poll failures
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Find returns the map with the given id from the snapshot.
func (s Snapshot) Find(id int64) (mapapi.Map, bool) {
	for _, m := range s.Maps {
		if m.ID == id {
			return m, true
		}
	}
	return mapapi.Map{}, false
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored map list. When err is non-nil the previous list
// is kept but the error is recorded for visibility.
func (s *Store) Update(maps []mapapi.Map, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Maps = cloneMaps(maps)
	s.snapshot.HasMaps = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Maps = cloneMaps(s.snapshot.Maps)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneMaps(maps []mapapi.Map) []mapapi.Map {
	if len(maps) == 0 {
		return nil
	}
	dup := make([]mapapi.Map, len(maps))
	copy(dup, maps)
	for i := range dup {
		if maps[i].Floors != nil {
			floors := make([]mapapi.Floor, len(maps[i].Floors))
			for j, f := range maps[i].Floors {
				floors[j] = f.Clone()
			}
			dup[i].Floors = floors
		}
	}
	return dup
}
