package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNotifyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Inspect notifications",
	}
	cmd.AddCommand(newNotifyListCmd(app))
	cmd.AddCommand(newNotifyTestCmd(app))
	return cmd
}

func newNotifyListCmd(app *App) *cobra.Command {
	var unread bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			notifications, _, err := app.client.ListNotifications(cmd.Context(), unread, 1, 50)
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintln(w, "ID\tTITLE\tREAD\tRECEIVED")
			for _, n := range notifications {
				read := "yes"
				if n.ReadAt == nil {
					read = "no"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", n.ID, n.Title, read, formatTime(n.CreatedAt))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	return cmd
}

func newNotifyTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send yourself a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			if err := app.client.SendTestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("test notification sent")
			return nil
		},
	}
}
