package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/mapgrid/internal/fakeapi"
	"github.com/five82/mapgrid/internal/mapapi"
)

func newDevServerCmd(c *cli) *cobra.Command {
	var listen string
	var seed bool
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory map API for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := fakeapi.New(c.logger)
			if seed {
				demo := srv.SeedMap("Demo")
				if _, err := srv.SeedFloor(mapapi.FloorDTO{Name: "Ground", Number: 0, DimensionX: 12, DimensionY: 8, MapID: demo.ID}); err != nil {
					return err
				}
				if _, err := srv.SeedFloor(mapapi.FloorDTO{Name: "First", Number: 1, DimensionX: 12, DimensionY: 8, MapID: demo.ID}); err != nil {
					return err
				}
			}
			return srv.ListenAndServe(cmd.Context(), listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", ":7219", "address to listen on")
	cmd.Flags().BoolVar(&seed, "seed", false, "start with a demo map of two floors")
	return cmd
}
