package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Running with no subcommand opens the
// interactive portal.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "studentlink",
		Short:        "StudentLink campus portal client",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Open the interactive portal (room list + chat)
  studentlink

  # Scriptable commands
  studentlink login student@campus.edu
  studentlink concerns list --status pending
  studentlink rooms list --filter wifi
  studentlink export csv report.csv

  # Run the bundled demo backend
  studentlink stub
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.HasSubCommands() && len(args) == 0 {
				if err := app.bootstrap(); err != nil {
					return err
				}
				return runPortal(app, nil)
			}
			return cmd.Help()
		},
	}

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newConcernsCmd(app))
	cmd.AddCommand(newRoomsCmd(app))
	cmd.AddCommand(newChatCmd(app))
	cmd.AddCommand(newAnnouncementsCmd(app))
	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newDepartmentsCmd(app))
	cmd.AddCommand(newWorkflowsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newNotifyCmd(app))
	cmd.AddCommand(newStatsCmd(app))
	cmd.AddCommand(newStubCmd(app))

	return cmd
}
