package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

func newConcernsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "concerns",
		Short: "Browse and submit concerns",
	}
	cmd.AddCommand(newConcernsListCmd(app))
	cmd.AddCommand(newConcernsShowCmd(app))
	cmd.AddCommand(newConcernsCreateCmd(app))
	cmd.AddCommand(newConcernTransitionCmd(app, "approve", "Approve a pending concern", app.approveConcern))
	cmd.AddCommand(newConcernTransitionCmd(app, "reject", "Reject a pending concern", app.rejectConcern))
	cmd.AddCommand(newConcernTransitionCmd(app, "escalate", "Escalate a concern to the department head", app.escalateConcern))
	cmd.AddCommand(newConcernTransitionCmd(app, "resolve", "Mark a concern resolved", app.resolveConcern))
	cmd.AddCommand(newConcernsAssignCmd(app))
	return cmd
}

func (a *App) approveConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return a.client.ApproveConcern(ctx, id, req)
}

func (a *App) rejectConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return a.client.RejectConcern(ctx, id, req)
}

func (a *App) escalateConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return a.client.EscalateConcern(ctx, id, req)
}

func (a *App) resolveConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return a.client.ResolveConcern(ctx, id, req)
}

func newConcernTransitionCmd(app *App, verb, short string, run func(context.Context, string, models.ConcernActionRequest) (*models.Concern, error)) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   verb + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			c, err := run(cmd.Context(), args[0], models.ConcernActionRequest{Note: note})
			if err != nil {
				return err
			}
			fmt.Printf("%s is now %s\n", c.ReferenceNumber, c.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "note recorded with the transition")
	return cmd
}

func newConcernsAssignCmd(app *App) *cobra.Command {
	var departmentID, assigneeID, note string

	cmd := &cobra.Command{
		Use:   "assign <id>",
		Short: "Route a concern to a department and/or staff member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			req := models.AssignConcernRequest{Note: note}
			if departmentID != "" {
				req.DepartmentID = &departmentID
			}
			if assigneeID != "" {
				req.AssigneeID = &assigneeID
			}
			c, err := app.client.AssignConcern(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Printf("%s assigned\n", c.ReferenceNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&departmentID, "department", "", "department id")
	cmd.Flags().StringVar(&assigneeID, "assignee", "", "staff member id")
	cmd.Flags().StringVar(&note, "note", "", "note recorded with the assignment")
	return cmd
}

func newConcernsListCmd(app *App) *cobra.Command {
	var status, priority, search string
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List concerns",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			filter := models.ConcernFilter{Search: search, Page: page}
			if status != "" {
				s := models.ConcernStatus(status)
				filter.Status = &s
			}
			if priority != "" {
				p := models.ConcernPriority(priority)
				filter.Priority = &p
			}

			concerns, pagination, err := app.client.ListConcerns(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintln(w, "REF\tSUBJECT\tSTATUS\tPRIORITY\tSUBMITTED")
			for _, c := range concerns {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					c.ReferenceNumber, c.Subject, c.Status, c.Priority, formatTime(c.CreatedAt))
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

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&search, "search", "", "search subject and description")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func newConcernsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one concern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			c, err := app.client.GetConcern(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintf(w, "Reference:\t%s\n", c.ReferenceNumber)
			fmt.Fprintf(w, "Subject:\t%s\n", c.Subject)
			fmt.Fprintf(w, "Status:\t%s\n", c.Status)
			fmt.Fprintf(w, "Priority:\t%s\n", c.Priority)
			if c.Department != nil {
				fmt.Fprintf(w, "Department:\t%s\n", c.Department.Name)
			}
			if c.Assignee != nil {
				fmt.Fprintf(w, "Assignee:\t%s\n", c.Assignee.Name)
			}
			fmt.Fprintf(w, "Submitted:\t%s\n", formatTime(c.CreatedAt))
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%s\n", c.Description)
			return nil
		},
	}
}

func newConcernsCreateCmd(app *App) *cobra.Command {
	var description, priority string
	var anonymous bool

	cmd := &cobra.Command{
		Use:   "create <subject>",
		Short: "Submit a new concern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			created, err := app.client.CreateConcern(cmd.Context(), models.CreateConcernRequest{
				Subject:     args[0],
				Description: description,
				Priority:    models.ConcernPriority(priority),
				IsAnonymous: anonymous,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created %s (%s)\n", created.ReferenceNumber, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "concern description")
	cmd.Flags().StringVar(&priority, "priority", string(models.PriorityMedium), "low|medium|high|urgent")
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "hide your identity from the department")
	cmd.MarkFlagRequired("description")
	return cmd
}
