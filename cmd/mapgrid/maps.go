package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newMapsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "maps",
		Aliases: []string{"map"},
		Short:   "List, inspect and change maps",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List maps",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := c.api()
				if err != nil {
					return err
				}
				maps, err := client.ListMaps(cmd.Context())
				if err != nil {
					return err
				}
				return c.printer(cmd).print(maps, func() string { return mapsTable(maps) })
			},
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show a map and its floors",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("map", args[0])
				if err != nil {
					return err
				}
				client, err := c.api()
				if err != nil {
					return err
				}
				m, err := client.GetMap(cmd.Context(), id)
				if err != nil {
					return err
				}
				return c.printer(cmd).print(m, func() string { return mapDetail(m) })
			},
		},
		&cobra.Command{
			Use:   "create <name>",
			Short: "Create a map",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, err := c.api()
				if err != nil {
					return err
				}
				m, err := client.CreateMap(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				res := actionResult{Action: "created", Kind: "map", ID: m.ID, Name: m.Name}
				return c.printer(cmd).print(m, res.String)
			},
		},
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a map",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("map", args[0])
				if err != nil {
					return err
				}
				client, err := c.api()
				if err != nil {
					return err
				}
				name := strings.Join(args[1:], " ")
				if err := client.EditMap(cmd.Context(), id, name); err != nil {
					return err
				}
				res := actionResult{Action: "renamed", Kind: "map", ID: id, Name: strings.TrimSpace(name)}
				return c.printer(cmd).print(res, res.String)
			},
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a map and its floors",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID("map", args[0])
				if err != nil {
					return err
				}
				client, err := c.api()
				if err != nil {
					return err
				}
				if err := client.DeleteMap(cmd.Context(), id); err != nil {
					return err
				}
				res := actionResult{Action: "deleted", Kind: "map", ID: id}
				return c.printer(cmd).print(res, res.String)
			},
		},
	)
	return cmd
}
