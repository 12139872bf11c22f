package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/me/planline/internal/logging"
)

var (
	flagServer    string
	flagDebug     bool
	flagLogLevel  string
	flagLogFormat string

	logger *slog.Logger
	client *Client
)

// defaultServer returns the default server URL, checking PLANLINE_SERVER first.
func defaultServer() string {
	if s := os.Getenv("PLANLINE_SERVER"); s != "" {
		return s
	}
	return "http://localhost:8080"
}

// NewRootCmd creates the root cobra command for the planline CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planline",
		Short: "planline: project timelines with finish-to-start scheduling",
		Long:  "planline edits a project timeline held by a planline server: tasks, dependencies, groups and the computed schedule.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagDebug {
				flagLogLevel = "debug"
			}
			logger = logging.NewLogger(logging.ParseLevel(flagLogLevel), flagLogFormat)
			client = NewClient(flagServer, logger)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", defaultServer(), "planline server URL (or PLANLINE_SERVER env)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")

	root.AddCommand(
		newStatusCmd(),
		newProjectCmd(),
		newTasksCmd(),
		newTaskCmd(),
		newDepCmd(),
		newGroupCmd(),
		newScheduleCmd(),
		newExportCmd(),
		newImportCmd(),
		newSampleCmd(),
		newResetCmd(),
	)

	return root
}
