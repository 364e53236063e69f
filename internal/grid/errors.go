package grid

import (
	"errors"
	"fmt"

	"github.com/five82/mapgrid/internal/mapapi"
)

var (
	// ErrNotLoaded is returned when no floor is loaded or a load is still running.
	ErrNotLoaded = errors.New("no floor loaded")
	// ErrSaveInFlight is returned when a save for the floor is already pending.
	ErrSaveInFlight = errors.New("save already in progress")
	// ErrLoadInFlight is returned when a load for the floor is already pending.
	ErrLoadInFlight = errors.New("load already in progress")
	// ErrInvalidInput matches local input rejected without touching state.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidGrid matches floors whose cells do not form a consistent grid.
	ErrInvalidGrid = errors.New("inconsistent floor grid")
)

// OutOfBoundsError reports a coordinate outside the loaded floor.
type OutOfBoundsError struct {
	X, Y       int
	DimensionX int
	DimensionY int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("cell (%d,%d) outside %dx%d floor", e.X, e.Y, e.DimensionX, e.DimensionY)
}

// Is matches ErrInvalidInput and mapapi.ErrValidation.
func (e *OutOfBoundsError) Is(target error) bool {
	return target == ErrInvalidInput || target == mapapi.ErrValidation
}

// GridError reports a fetched floor whose cells break the grid invariants.
type GridError struct {
	FloorID int64
	Reason  string
}

func (e *GridError) Error() string {
	return fmt.Sprintf("floor %d: %s", e.FloorID, e.Reason)
}

func (e *GridError) Is(target error) bool {
	return target == ErrInvalidGrid
}

// SaveError reports a failed save. The pending edits are still held by the
// manager; Retained counts them.
type SaveError struct {
	FloorID  int64
	Retained int
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save floor %d: %v", e.FloorID, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
