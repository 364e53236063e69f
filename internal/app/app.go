package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/mapgrid/internal/config"
	"github.com/five82/mapgrid/internal/grid"
	"github.com/five82/mapgrid/internal/logging"
	"github.com/five82/mapgrid/internal/mapapi"
	"github.com/five82/mapgrid/internal/prefs"
	"github.com/five82/mapgrid/internal/state"
	"github.com/five82/mapgrid/internal/transport"
	"github.com/five82/mapgrid/internal/ui"
)

// Options configure the terminal UI.
type Options struct {
	Config    config.Config
	PrefsPath string        // empty uses default ~/.config/mapgrid/prefs.toml
	PollEvery time.Duration // zero uses default
}

// NewClient builds the map API client described by cfg.
func NewClient(cfg config.Config, logger *logrus.Logger) (*mapapi.Client, error) {
	tr, err := transport.New(transport.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init transport: %w", err)
	}
	return mapapi.NewClient(tr), nil
}

// Run boots the TUI until the user quits or ctx is cancelled. Logs go to the
// configured log file so they do not corrupt the terminal.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config

	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logFile)
	if err != nil {
		return err
	}

	client, err := NewClient(cfg, logger)
	if err != nil {
		return err
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &state.Store{}
	interval := opts.PollEvery
	if interval <= 0 {
		interval = defaultPollInterval
	}
	log := logger.WithField("component", "poller")

	// Populate the store before the first frame, then keep it fresh.
	_ = Refresh(ctx, store, client, log)
	StartPoller(ctx, store, client, interval, log)

	logger.WithField("base_url", cfg.BaseURL).Info("starting tui")

	return ui.Run(ui.Options{
		Context:   ctx,
		Client:    client,
		Editor:    grid.NewManager(client, grid.WithLogger(logger)),
		Store:     store,
		Refresh:   func(ctx context.Context) error { return Refresh(ctx, store, client, log) },
		PollTick:  interval,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Logger:    logger,
	})
}
