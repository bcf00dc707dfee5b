package cli

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

func newAnnouncementsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"news"},
		Short:   "Read campus announcements",
	}
	cmd.AddCommand(newAnnouncementsListCmd(app))
	cmd.AddCommand(newAnnouncementsShowCmd(app))
	cmd.AddCommand(newAnnouncementsPublishCmd(app))
	cmd.AddCommand(newAnnouncementsArchiveCmd(app))
	return cmd
}

func newAnnouncementsPublishCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a draft announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			ann, err := app.client.PublishAnnouncement(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("published %q\n", ann.Title)
			return nil
		},
	}
}

func newAnnouncementsArchiveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive an announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			ann, err := app.client.ArchiveAnnouncement(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("archived %q\n", ann.Title)
			return nil
		},
	}
}

func newAnnouncementsListCmd(app *App) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			status := models.AnnouncementPublished
			anns, _, err := app.client.ListAnnouncements(cmd.Context(), models.AnnouncementFilter{
				Status:   &status,
				Category: category,
				Search:   search,
			})
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tPUBLISHED")
			for _, a := range anns {
				published := "-"
				if a.PublishedAt != nil {
					published = formatTime(*a.PublishedAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Title, a.Category, published)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	cmd.Flags().StringVar(&search, "search", "", "search title and content")
	return cmd
}

func newAnnouncementsShowCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render one announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			ann, err := app.client.GetAnnouncement(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			// Reading counts as a view.
			if err := app.client.TrackEngagement(cmd.Context(), ann.ID, models.EngagementView); err != nil {
				fmt.Fprintf(os.Stderr, "warning: engagement tracking failed: %v\n", err)
			}

			body := fmt.Sprintf("# %s\n\n%s\n", ann.Title, ann.Content)
			if raw {
				fmt.Print(body)
				return nil
			}

			renderer, err := glamour.NewTermRenderer(
				glamour.WithAutoStyle(),
				glamour.WithWordWrap(100),
			)
			if err != nil {
				fmt.Print(body)
				return nil
			}
			out, err := renderer.Render(body)
			if err != nil {
				fmt.Print(body)
				return nil
			}
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "print raw markdown without terminal styling")
	return cmd
}
