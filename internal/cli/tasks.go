package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/me/planline/internal/timeline"
	"github.com/me/planline/pkg/model"
)

// parseDay accepts a day index ("12", "-3") or a date ("2024-01-13").
func parseDay(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	n, err := timeline.ParseDate(s)
	if err != nil {
		return 0, fmt.Errorf("invalid day %q: want a day index or YYYY-MM-DD", s)
	}
	return n, nil
}

func fetchTasks() ([]model.Task, error) {
	tasks, err := fetchAll[model.Task](client, "/api/v1/tasks/")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func fetchSchedule() (*model.Schedule, error) {
	resp, err := client.Get("/api/v1/schedule")
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	var sched model.Schedule
	if err := decodeData(resp, &sched); err != nil {
		return nil, err
	}
	return &sched, nil
}

func newTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List tasks in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := fetchTasks()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}

			fmt.Fprintf(out, "%-42s  %-24s  %-10s  %8s  %s\n", "ID", "NAME", "START", "DURATION", "GROUP")
			fmt.Fprintf(out, "%-42s  %-24s  %-10s  %8s  %s\n", "--", "----", "-----", "--------", "-----")
			for _, t := range tasks {
				group := "-"
				if t.GroupID != nil {
					group = *t.GroupID
				}
				fmt.Fprintf(out, "%-42s  %-24s  %-10s  %7dd  %s\n",
					t.ID, t.Name, timeline.FormatDayIndex(t.StartDayIndex), t.DurationDays, group)
			}
			return nil
		},
	}
}

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Add, update, remove or move tasks",
	}
	cmd.AddCommand(newTaskAddCmd(), newTaskUpdateCmd(), newTaskRmCmd(), newTaskMoveCmd())
	return cmd
}

// taskFlags are shared by task add and task update.
type taskFlags struct {
	name, start, group, color string
	duration                  int
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Task name")
	cmd.Flags().StringVar(&f.start, "start", "", "Start day: day index or YYYY-MM-DD")
	cmd.Flags().IntVar(&f.duration, "duration", 0, "Duration in days (>= 1)")
	cmd.Flags().StringVar(&f.group, "group", "", "Group ID (empty string removes the task from its group)")
	cmd.Flags().StringVar(&f.color, "color", "", "Bar colour, e.g. #93B5F7")
}

// body builds a request containing only the flags the user set.
func (f *taskFlags) body(cmd *cobra.Command) (map[string]any, error) {
	body := map[string]any{}
	if cmd.Flags().Changed("name") {
		body["name"] = f.name
	}
	if cmd.Flags().Changed("start") {
		day, err := parseDay(f.start)
		if err != nil {
			return nil, err
		}
		body["startDayIndex"] = day
	}
	if cmd.Flags().Changed("duration") {
		body["durationDays"] = f.duration
	}
	if cmd.Flags().Changed("group") {
		body["groupId"] = f.group
	}
	if cmd.Flags().Changed("color") {
		body["color"] = f.color
	}
	return body, nil
}

func printTask(cmd *cobra.Command, verb string, t model.Task) {
	fmt.Fprintf(cmd.OutOrStdout(), "Task %s: %s\n", verb, t.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "  %s, %s for %d day(s)\n",
		t.Name, timeline.FormatDayIndex(t.StartDayIndex), t.DurationDays)
}

func newTaskAddCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := f.body(cmd)
			if err != nil {
				return err
			}
			resp, err := client.Post("/api/v1/tasks/", body)
			if err != nil {
				return fmt.Errorf("add task: %w", err)
			}
			var t model.Task
			if err := decodeData(resp, &t); err != nil {
				return err
			}
			printTask(cmd, "added", t)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTaskUpdateCmd() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "update <task_id>",
		Short: "Change a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := f.body(cmd)
			if err != nil {
				return err
			}
			if len(body) == 0 {
				return fmt.Errorf("nothing to update: pass at least one of --name, --start, --duration, --group, --color")
			}
			resp, err := client.Patch("/api/v1/tasks/"+args[0], body)
			if err != nil {
				return fmt.Errorf("update task: %w", err)
			}
			var t model.Task
			if err := decodeData(resp, &t); err != nil {
				return err
			}
			printTask(cmd, "updated", t)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newTaskRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task_id>",
		Short: "Remove a task and its dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := client.Delete("/api/v1/tasks/" + args[0]); err != nil {
				return fmt.Errorf("remove task: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task removed: %s\n", args[0])
			return nil
		},
	}
}

func newTaskMoveCmd() *cobra.Command {
	var (
		to    int
		group string
	)
	cmd := &cobra.Command{
		Use:   "move <task_id>...",
		Short: "Move tasks to a position, optionally into a group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{
				"taskIds":     args,
				"targetIndex": to,
			}
			if group != "" {
				body["groupId"] = group
			}
			resp, err := client.Post("/api/v1/tasks/move", body)
			if err != nil {
				return fmt.Errorf("move tasks: %w", err)
			}
			var tasks []model.Task
			if err := decodeData(resp, &tasks); err != nil {
				return err
			}
			ids := make([]string, len(tasks))
			for i, t := range tasks {
				ids[i] = t.ID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order: %s\n", strings.Join(ids, ", "))
			return nil
		},
	}
	cmd.Flags().IntVar(&to, "to", 0, "Target position among the remaining tasks")
	cmd.Flags().StringVar(&group, "group", "", "Group to move the tasks into (default: ungrouped)")
	return cmd
}
