package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/mapgrid/internal/mapapi"
	"github.com/five82/mapgrid/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// MapLister is the part of the API the poller needs.
type MapLister interface {
	ListMaps(ctx context.Context) ([]mapapi.Map, error)
}

// StartPoller launches a background goroutine that refreshes the store's map
// list. After consecutive failures the wait grows exponentially up to
// maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, lister MapLister, interval time.Duration, log *logrus.Entry) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	go func() {
		for {
			_ = Refresh(ctx, store, lister, log)
			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

// Refresh fetches the map list once and records the outcome in store.
func Refresh(ctx context.Context, store *state.Store, lister MapLister, log *logrus.Entry) error {
	maps, err := lister.ListMaps(ctx)
	store.Update(maps, err)
	if err != nil && log != nil {
		log.WithError(err).WithField("failures", store.Snapshot().ConsecutiveFailures).Warn("map list poll failed")
	}
	return err
}

func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
