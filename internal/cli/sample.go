package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/me/planline/internal/sample"
)

func newSampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "sample [small|medium|large]",
		Short:     "Replace the project with a generated sample project",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(sample.Small), string(sample.Medium), string(sample.Large)},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			size, err := sample.ParseSize(name)
			if err != nil {
				return err
			}

			resp, err := client.Post("/api/v1/sample?size="+url.QueryEscape(string(size)), nil)
			if err != nil {
				return fmt.Errorf("load sample: %w", err)
			}
			return printReplaced(cmd.OutOrStdout(), "Loaded", resp)
		},
	}
}

var errResetNotConfirmed = errors.New("reset deletes every task, dependency and group; rerun with --yes")

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete everything and start over with an empty project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errResetNotConfirmed
			}
			resp, err := client.Post("/api/v1/reset", nil)
			if err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			return printReplaced(cmd.OutOrStdout(), "Reset", resp)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the reset")
	return cmd
}
