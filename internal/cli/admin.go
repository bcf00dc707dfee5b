package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

func newUsersCmd(app *App) *cobra.Command {
	var role, department, search string
	var page int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List portal users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			filter := models.UserFilter{Search: search, Page: page}
			if role != "" {
				r := models.UserRole(role)
				filter.Role = &r
			}
			if department != "" {
				filter.DepartmentID = &department
			}

			users, pagination, err := app.client.ListUsers(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tACTIVE")
			for _, u := range users {
				active := "yes"
				if !u.Active {
					active = "no"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, active)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if pagination != nil && pagination.LastPage > 1 {
				fmt.Printf("page %d of %d (%d total)\n",
					pagination.CurrentPage, pagination.LastPage, pagination.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "filter by role")
	cmd.Flags().StringVar(&department, "department", "", "filter by department id")
	cmd.Flags().StringVar(&search, "search", "", "search name and email")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newDepartmentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "departments",
		Short: "List departments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			departments, err := app.client.ListDepartments(cmd.Context())
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintln(w, "ID\tCODE\tNAME\tHEAD")
			for _, d := range departments {
				head := "-"
				if d.Head != nil {
					head = d.Head.Name
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Code, d.Name, head)
			}
			return w.Flush()
		},
	}
}

func newWorkflowsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "workflows",
		Short: "List automation rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			workflows, err := app.client.ListWorkflows(cmd.Context())
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintln(w, "ID\tNAME\tTRIGGER\tACTION\tENABLED")
			for _, wf := range workflows {
				enabled := "yes"
				if !wf.Enabled {
					enabled = "no"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", wf.ID, wf.Name, wf.Trigger, wf.Action, enabled)
			}
			return w.Flush()
		},
	}
}
