package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/pkg/export"
)

func newExportCmd(app *App) *cobra.Command {
	var status, from, to string

	cmd := &cobra.Command{
		Use:   "export <csv|pdf> <path>",
		Short: "Export the concern report to a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			format := strings.ToLower(args[0])
			if format != "csv" && format != "pdf" {
				return fmt.Errorf("unsupported format %q, want csv or pdf", args[0])
			}

			filter := models.ReportFilter{}
			if status != "" {
				s := models.ConcernStatus(status)
				filter.Status = &s
			}
			if from != "" {
				t, err := time.Parse("2006-01-02", from)
				if err != nil {
					return fmt.Errorf("invalid --from date: %w", err)
				}
				filter.From = &t
			}
			if to != "" {
				t, err := time.Parse("2006-01-02", to)
				if err != nil {
					return fmt.Errorf("invalid --to date: %w", err)
				}
				filter.To = &t
			}

			rows, err := app.client.ConcernReport(cmd.Context(), filter)
			if err != nil {
				return err
			}
			dataset := export.ConcernReportDataset(rows)

			var blob []byte
			switch format {
			case "csv":
				blob, err = export.NewCSVExporter().Render(dataset)
			case "pdf":
				blob, err = export.NewPDFExporter().Render(dataset)
			}
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], blob, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d rows to %s\n", len(rows), args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().StringVar(&from, "from", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "end date (YYYY-MM-DD)")
	return cmd
}
