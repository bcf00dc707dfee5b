package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// AnalyticsOverview fetches the dashboard summary block.
func (c *Client) AnalyticsOverview(ctx context.Context) (*models.AnalyticsOverview, error) {
	env, err := c.do(ctx, http.MethodGet, "/analytics/overview", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.AnalyticsOverview
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConcernReport fetches report rows for local rendering or export.
func (c *Client) ConcernReport(ctx context.Context, filter models.ReportFilter) ([]models.ConcernReportRow, error) {
	env, err := c.do(ctx, http.MethodGet, "/analytics/concerns/report", requestOptions{query: reportQuery(filter)})
	if err != nil {
		return nil, err
	}
	var out []models.ConcernReportRow
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExportReport fetches the server-rendered report blob (xlsx/pdf) with the
// bearer header, bypassing the JSON decoding path.
func (c *Client) ExportReport(ctx context.Context, format string, filter models.ReportFilter) ([]byte, string, error) {
	q := reportQuery(filter)
	q.Set("format", format)
	return c.download(ctx, "/analytics/concerns/report/export", q)
}

func reportQuery(filter models.ReportFilter) url.Values {
	q := url.Values{}
	if filter.From != nil {
		q.Set("from", filter.From.Format(time.RFC3339))
	}
	if filter.To != nil {
		q.Set("to", filter.To.Format(time.RFC3339))
	}
	if filter.DepartmentID != nil {
		q.Set("department_id", *filter.DepartmentID)
	}
	if filter.Status != nil {
		q.Set("status", string(*filter.Status))
	}
	return q
}
