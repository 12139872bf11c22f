package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and project status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.Get("/api/v1/health")
			if err != nil {
				return fmt.Errorf("get status: %w", err)
			}
			h := gjson.ParseBytes(resp.Data)

			saved := "never"
			if ts := h.Get("last_saved_at"); ts.Exists() {
				t, err := time.Parse(time.RFC3339Nano, ts.String())
				if err != nil {
					return fmt.Errorf("parse last_saved_at: %w", err)
				}
				saved = humanize.Time(t)
			}
			schedule := color.GreenString("ok")
			if !h.Get("schedule_ok").Bool() {
				schedule = color.RedString("dependency cycle")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:       %s (v%s, up %s)\n", flagServer, h.Get("version").String(), h.Get("uptime").String())
			fmt.Fprintf(out, "Project:      %s\n", h.Get("project").String())
			fmt.Fprintf(out, "Tasks:        %d\n", h.Get("tasks").Int())
			fmt.Fprintf(out, "Dependencies: %d\n", h.Get("dependencies").Int())
			fmt.Fprintf(out, "Schedule:     %s\n", schedule)
			fmt.Fprintf(out, "Last saved:   %s\n", saved)
			return nil
		},
	}
}
