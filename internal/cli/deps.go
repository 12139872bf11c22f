package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/planline/pkg/model"
)

func newDepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage finish-to-start dependencies",
	}
	cmd.AddCommand(newDepAddCmd(), newDepRmCmd(), newDepListCmd(), newDepClearCmd())
	return cmd
}

func newDepAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <from_task_id> <to_task_id>",
		Short: "Make a task wait for another to finish",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Post("/api/v1/dependencies/", map[string]any{
				"fromTaskId": args[0],
				"toTaskId":   args[1],
			})
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) && len(apiErr.TaskIDs) > 0 {
					return fmt.Errorf("%s (tasks: %s)", apiErr.Message, strings.Join(apiErr.TaskIDs, ", "))
				}
				return fmt.Errorf("add dependency: %w", err)
			}
			var dep model.Dependency
			if err := decodeData(resp, &dep); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dependency added: %s (%s -> %s)\n", dep.ID, dep.FromTaskID, dep.ToTaskID)
			return nil
		},
	}
}

func newDepRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <dependency_id>",
		Short: "Remove a dependency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/dependencies/" + args[0]); err != nil {
				return fmt.Errorf("remove dependency: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dependency removed: %s\n", args[0])
			return nil
		},
	}
}

func newDepListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := fetchAll[model.Dependency](client, "/api/v1/dependencies/")
			if err != nil {
				return fmt.Errorf("list dependencies: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(deps) == 0 {
				fmt.Fprintln(out, "No dependencies found.")
				return nil
			}
			fmt.Fprintf(out, "%-40s  %-42s  %s\n", "ID", "FROM", "TO")
			fmt.Fprintf(out, "%-40s  %-42s  %s\n", "--", "----", "--")
			for _, d := range deps {
				fmt.Fprintf(out, "%-40s  %-42s  %s\n", d.ID, d.FromTaskID, d.ToTaskID)
			}
			return nil
		},
	}
}

func newDepClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every dependency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Delete("/api/v1/dependencies/")
			if err != nil {
				return fmt.Errorf("clear dependencies: %w", err)
			}
			var res struct {
				Deleted int `json:"deleted"`
			}
			if err := decodeData(resp, &res); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d dependencies\n", res.Deleted)
			return nil
		},
	}
}
