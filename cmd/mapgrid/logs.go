package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/five82/mapgrid/internal/logtail"
)

func newLogsCmd(c *cli) *cobra.Command {
	var lines int
	var level string
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the TUI log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tail, err := logtail.Read(c.cfg.LogPath(), lines)
			if err != nil {
				return err
			}
			if strings.TrimSpace(level) != "" {
				minLevel, err := logrus.ParseLevel(level)
				if err != nil {
					return fmt.Errorf("parse --level: %w", err)
				}
				tail = logtail.Filter(tail, minLevel)
			}
			if c.output != "table" {
				return c.printer(cmd).print(tail, nil)
			}
			out := cmd.OutOrStdout()
			for _, line := range logtail.ColorizeLines(tail) {
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 200, "number of lines to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "", "only show entries at or above this level")
	return cmd
}
