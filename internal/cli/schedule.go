package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/me/planline/internal/timeline"
)

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Show effective start and end dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := fetchSchedule()
			if err != nil {
				return err
			}
			if !sched.OK {
				return fmt.Errorf("dependency cycle involving tasks: %s", strings.Join(sched.CycleTaskIDs, ", "))
			}

			tasks, err := fetchTasks()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-24s  %-10s  %-10s  %s\n", "TASK", "START", "END", "SHIFT")
			fmt.Fprintf(out, "%-24s  %-10s  %-10s  %s\n", "----", "-----", "---", "-----")
			for _, t := range tasks {
				start, ok := sched.Starts[t.ID]
				if !ok {
					continue
				}
				shift := ""
				if d := start - t.StartDayIndex; d > 0 {
					shift = color.YellowString("+%dd", d)
				}
				// The end day is exclusive; show the last working day.
				fmt.Fprintf(out, "%-24s  %-10s  %-10s  %s\n", t.Name,
					timeline.FormatDayIndex(start), timeline.FormatDayIndex(sched.Ends[t.ID]-1), shift)
			}
			return nil
		},
	}
}
