package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/planline/pkg/model"
)

func newGroupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage task groups",
	}
	cmd.AddCommand(newGroupAddCmd(), newGroupRmCmd())
	return cmd
}

func newGroupAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [name]",
		Short: "Add a group",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}
			if len(args) == 1 {
				body["name"] = args[0]
			}
			resp, err := client.Post("/api/v1/groups/", body)
			if err != nil {
				return fmt.Errorf("add group: %w", err)
			}
			var g model.Group
			if err := decodeData(resp, &g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group added: %s (%s)\n", g.ID, g.Name)
			return nil
		},
	}
}

func newGroupRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <group_id>",
		Short: "Remove a group; its tasks become ungrouped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/groups/" + args[0]); err != nil {
				return fmt.Errorf("remove group: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Group removed: %s\n", args[0])
			return nil
		},
	}
}
