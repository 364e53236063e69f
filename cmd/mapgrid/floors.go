package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/mapgrid/internal/mapapi"
)

func newFloorsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "floors",
		Aliases: []string{"floor"},
		Short:   "Inspect and change floors",
	}
	cmd.AddCommand(
		newFloorGetCmd(c),
		newFloorCreateCmd(c),
		newFloorEditCmd(c),
		newFloorDeleteCmd(c),
	)
	return cmd
}

func newFloorGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a floor with its cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("floor", args[0])
			if err != nil {
				return err
			}
			client, err := c.api()
			if err != nil {
				return err
			}
			f, err := client.GetFloor(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.printer(cmd).print(f, func() string { return floorsTable([]mapapi.Floor{*f}) })
		},
	}
}

func newFloorCreateCmd(c *cli) *cobra.Command {
	var dto mapapi.FloorDTO
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a floor with an empty grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.api()
			if err != nil {
				return err
			}
			f, err := client.CreateFloor(cmd.Context(), &dto)
			if err != nil {
				return err
			}
			return c.printer(cmd).print(f, func() string { return floorsTable([]mapapi.Floor{*f}) })
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&dto.MapID, "map", 0, "id of the owning map")
	flags.StringVar(&dto.Name, "name", "", "floor name")
	flags.IntVar(&dto.Number, "number", 0, "floor number")
	flags.IntVar(&dto.DimensionX, "x", 0, "grid width")
	flags.IntVar(&dto.DimensionY, "y", 0, "grid height")
	_ = cmd.MarkFlagRequired("map")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}

func newFloorEditCmd(c *cli) *cobra.Command {
	var edit mapapi.FloorDTO
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a floor's name, number or size",
		Long:  "Change a floor's name, number or size. Flags that are not given keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("floor", args[0])
			if err != nil {
				return err
			}
			client, err := c.api()
			if err != nil {
				return err
			}
			current, err := client.GetFloor(cmd.Context(), id)
			if err != nil {
				return err
			}

			dto := mapapi.FloorDTO{
				Name:       current.Name,
				Number:     current.Number,
				DimensionX: current.DimensionX,
				DimensionY: current.DimensionY,
				MapID:      current.MapID,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				dto.Name = edit.Name
			}
			if flags.Changed("number") {
				dto.Number = edit.Number
			}
			if flags.Changed("x") {
				dto.DimensionX = edit.DimensionX
			}
			if flags.Changed("y") {
				dto.DimensionY = edit.DimensionY
			}

			if err := client.EditFloor(cmd.Context(), id, &dto); err != nil {
				return err
			}
			res := actionResult{Action: "updated", Kind: "floor", ID: id, Name: dto.Name}
			return c.printer(cmd).print(res, res.String)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&edit.Name, "name", "", "new floor name")
	flags.IntVar(&edit.Number, "number", 0, "new floor number")
	flags.IntVar(&edit.DimensionX, "x", 0, "new grid width")
	flags.IntVar(&edit.DimensionY, "y", 0, "new grid height")
	return cmd
}

func newFloorDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a floor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("floor", args[0])
			if err != nil {
				return err
			}
			client, err := c.api()
			if err != nil {
				return err
			}
			if err := client.DeleteFloor(cmd.Context(), id); err != nil {
				return err
			}
			res := actionResult{Action: "deleted", Kind: "floor", ID: id}
			return c.printer(cmd).print(res, res.String)
		},
	}
}
