package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/five82/mapgrid/internal/app"
	"github.com/five82/mapgrid/internal/config"
	"github.com/five82/mapgrid/internal/logging"
	"github.com/five82/mapgrid/internal/mapapi"
)

// cli carries global flag values and the lazily built dependencies shared by
// every subcommand.
type cli struct {
	configPath string
	baseURL    string
	timeout    time.Duration
	output     string

	cfg    config.Config
	logger *logrus.Logger
	client *mapapi.Client
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "mapgrid",
		Short:         "Browse maps and edit floor grids on a remote map service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		// Without a subcommand mapgrid opens the TUI.
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd, app.Options{})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "config file (default ~/.config/mapgrid/config.toml)")
	pf.StringVar(&c.baseURL, "base-url", "", "API base URL, overrides config and "+config.BaseURLEnv)
	pf.DurationVar(&c.timeout, "timeout", 0, "per-request timeout (default from config, 15s)")
	pf.StringVarP(&c.output, "output", "o", "table", "output format: table, json or yaml")

	root.AddCommand(
		newTUICmd(c),
		newMapsCmd(c),
		newFloorsCmd(c),
		newCellsCmd(c),
		newDevServerCmd(c),
		newLogsCmd(c),
	)
	return root
}

// setup loads config, applies flag overrides and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	switch c.output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", c.output)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(c.baseURL); v != "" {
		cfg.BaseURL = v
	}
	if cmd.Flags().Changed("timeout") {
		if c.timeout <= 0 {
			return fmt.Errorf("--timeout must be positive")
		}
		cfg.Timeout = c.timeout
	}
	c.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	c.logger = logger
	return nil
}

// api returns the map API client, building it on first use.
func (c *cli) api() (*mapapi.Client, error) {
	if c.client != nil {
		return c.client, nil
	}
	client, err := app.NewClient(c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.client = client
	return client, nil
}

func (c *cli) printer(cmd *cobra.Command) printer {
	return printer{w: cmd.OutOrStdout(), format: c.output}
}

func (c *cli) runTUI(cmd *cobra.Command, opts app.Options) error {
	opts.Config = c.cfg
	return app.Run(cmd.Context(), opts)
}

func newTUICmd(c *cli) *cobra.Command {
	var opts app.Options
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive floor editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd, opts)
		},
	}
	cmd.Flags().DurationVar(&opts.PollEvery, "poll", 0, "map list refresh interval (default 5s)")
	cmd.Flags().StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/mapgrid/prefs.toml)")
	return cmd
}

func parseID(kind, arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s id %q", kind, arg)
	}
	return id, nil
}

func parseCoord(axis, arg string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid %s coordinate %q", axis, arg)
	}
	return v, nil
}
