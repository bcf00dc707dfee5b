package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

func newLoginCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Authenticate and store the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				raw, err := term.ReadPassword(int(syscall.Stdin))
				fmt.Fprintln(os.Stderr)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				password = string(raw)
			}

			resp, err := app.client.Login(cmd.Context(), models.LoginRequest{
				Email:    args[0],
				Password: password,
			})
			if err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear local state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			if err := app.client.Logout(cmd.Context()); err != nil {
				// Local state is already cleared; the remote revoke failing
				// is worth a note but not a failed exit.
				fmt.Fprintf(os.Stderr, "warning: remote logout failed: %v\n", err)
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			if !app.session.Authenticated() {
				fmt.Println("not logged in")
				return nil
			}

			user, err := app.client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			w := newTabWriter()
			fmt.Fprintf(w, "Name:\t%s\n", user.Name)
			fmt.Fprintf(w, "Email:\t%s\n", user.Email)
			fmt.Fprintf(w, "Role:\t%s\n", user.Role)
			if user.Department != nil {
				fmt.Fprintf(w, "Department:\t%s\n", user.Department.Name)
			}
			return w.Flush()
		},
	}
}
