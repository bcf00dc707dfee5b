package export

import (
	"time"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// Column describes one exported column. Weight is the relative share of the
// page width the PDF renderer gives the column; CSV output ignores it.
type Column struct {
	Title  string
	Weight float64
}

// Dataset is an ordered tabular payload ready for rendering. Row values are
// positional and must line up with Columns.
type Dataset struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// ConcernReportDataset flattens report rows fetched from the analytics API
// into an exportable dataset.
func ConcernReportDataset(rows []models.ConcernReportRow) Dataset {
	out := Dataset{
		Title: "StudentLink Concern Report",
		Columns: []Column{
			{Title: "Reference", Weight: 1.2},
			{Title: "Subject", Weight: 2.5},
			{Title: "Status", Weight: 1},
			{Title: "Priority", Weight: 1},
			{Title: "Department", Weight: 1.3},
			{Title: "Assignee", Weight: 1.3},
			{Title: "Submitted", Weight: 1.6},
			{Title: "Resolved", Weight: 1.6},
		},
	}
	for _, row := range rows {
		resolved := ""
		if row.ResolvedAt != nil {
			resolved = row.ResolvedAt.Format(time.RFC3339)
		}
		out.Rows = append(out.Rows, []string{
			row.ReferenceNumber,
			row.Subject,
			string(row.Status),
			string(row.Priority),
			row.Department,
			row.Assignee,
			row.SubmittedAt.Format(time.RFC3339),
			resolved,
		})
	}
	return out
}
