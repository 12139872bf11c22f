package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/me/planline/internal/exchange"
	"github.com/me/planline/pkg/model"
)

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the project to a JSON or YAML file (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f := exchange.FormatFromPath(path)
			if cmd.Flags().Changed("format") {
				var err error
				if f, err = exchange.ParseFormat(format); err != nil {
					return err
				}
			}

			data, err := client.Download("/api/v1/export?format=" + string(f))
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if path == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", humanize.Bytes(uint64(len(data))), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default: from the file extension)")
	return cmd
}

type importResult struct {
	Project      model.Project `json:"project"`
	Tasks        int           `json:"tasks"`
	Dependencies int           `json:"dependencies"`
	Groups       int           `json:"groups"`
	ScheduleOK   bool          `json:"schedule_ok"`
}

// printReplaced summarises a project that was replaced wholesale.
func printReplaced(out io.Writer, verb string, resp *apiResponse) error {
	var res importResult
	if err := decodeData(resp, &res); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %q: %d tasks, %d dependencies, %d groups\n",
		verb, res.Project.Name, res.Tasks, res.Dependencies, res.Groups)
	if !res.ScheduleOK {
		fmt.Fprintln(out, color.YellowString("Warning: the project contains a dependency cycle"))
	}
	return nil
}

func newImportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the project with an exported JSON or YAML file (- for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f := exchange.FormatFromPath(path)
			if cmd.Flags().Changed("format") {
				var err error
				if f, err = exchange.ParseFormat(format); err != nil {
					return err
				}
			}

			var (
				data []byte
				err  error
			)
			if path == "-" {
				data, err = io.ReadAll(cmd.InOrStdin())
			} else {
				data, err = os.ReadFile(path)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			// Reject malformed documents before they reach the server.
			if _, err := exchange.Decode(bytes.NewReader(data), f); err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			contentType := "application/json"
			if f == exchange.FormatYAML {
				contentType = "application/yaml"
			}
			resp, err := client.Upload("/api/v1/import?format="+string(f), contentType, bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}
			return printReplaced(cmd.OutOrStdout(), "Imported", resp)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or yaml (default: from the file extension, json for stdin)")
	return cmd
}
