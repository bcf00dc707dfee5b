package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show portal analytics overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}
			overview, err := app.client.AnalyticsOverview(cmd.Context())
			if err != nil {
				return err
			}

			w := newTabWriter()
			fmt.Fprintf(w, "Total concerns:\t%d\n", overview.TotalConcerns)
			fmt.Fprintf(w, "Open:\t%d\n", overview.OpenConcerns)
			fmt.Fprintf(w, "Resolved:\t%d\n", overview.ResolvedConcerns)
			fmt.Fprintf(w, "Avg resolution:\t%.1fh\n", overview.AvgResolutionHours)
			fmt.Fprintf(w, "Active chat rooms:\t%d\n", overview.ActiveChatRooms)
			fmt.Fprintf(w, "Users:\t%d\n", overview.TotalUsers)
			return w.Flush()
		},
	}
}
