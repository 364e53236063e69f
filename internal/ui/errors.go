package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/mapgrid/internal/grid"
	"github.com/five82/mapgrid/internal/transport"
)

// errorDetail renders err for the status line without the request plumbing
// that makes raw error strings long.
func errorDetail(err error) string {
	var remote *transport.RemoteError
	if errors.As(err, &remote) {
		if strings.HasPrefix(remote.Message, "HTTP ") {
			return remote.Message
		}
		return fmt.Sprintf("%s (HTTP %d)", remote.Message, remote.Status)
	}

	var netErr *transport.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "request timed out"
		}
		if errors.Is(netErr, transport.ErrTooLarge) {
			return netErr.Err.Error()
		}
		return fmt.Sprintf("cannot reach %s: %v", netErr.URL, netErr.Err)
	}

	switch {
	case errors.Is(err, grid.ErrSaveInFlight):
		return "a save is already in progress"
	case errors.Is(err, grid.ErrLoadInFlight):
		return "the floor is still loading"
	case errors.Is(err, grid.ErrNotLoaded):
		return "no floor is loaded"
	}
	return err.Error()
}
