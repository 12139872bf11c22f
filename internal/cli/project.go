package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/planline/pkg/model"
)

func newProjectCmd() *cobra.Command {
	var name, epoch string

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show the project, or rename it with --name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}
			if cmd.Flags().Changed("name") {
				body["name"] = name
			}
			if cmd.Flags().Changed("epoch") {
				body["epoch"] = epoch
			}

			var (
				resp *apiResponse
				err  error
			)
			if len(body) == 0 {
				resp, err = client.Get("/api/v1/project/")
			} else {
				resp, err = client.Put("/api/v1/project/", body)
			}
			if err != nil {
				return fmt.Errorf("project: %w", err)
			}

			var p model.Project
			if err := decodeData(resp, &p); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project: %s\n", p.Name)
			fmt.Fprintf(out, "  ID:    %s\n", p.ID)
			fmt.Fprintf(out, "  Epoch: %s\n", p.Epoch)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New project name")
	cmd.Flags().StringVar(&epoch, "epoch", "", "Project epoch (YYYY-MM-DD)")
	return cmd
}
