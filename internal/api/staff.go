package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ListStaff fetches staff accounts, optionally scoped to a department.
func (c *Client) ListStaff(ctx context.Context, departmentID string) ([]models.User, error) {
	q := url.Values{}
	if departmentID != "" {
		q.Set("department_id", departmentID)
	}
	env, err := c.do(ctx, http.MethodGet, "/staff", requestOptions{query: q})
	if err != nil {
		return nil, err
	}
	var out []models.User
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// StaffWorkload fetches per-member assignment load for a department.
func (c *Client) StaffWorkload(ctx context.Context, departmentID string) ([]models.StaffWorkload, error) {
	q := url.Values{}
	if departmentID != "" {
		q.Set("department_id", departmentID)
	}
	env, err := c.do(ctx, http.MethodGet, "/staff/workload", requestOptions{query: q})
	if err != nil {
		return nil, err
	}
	var out []models.StaffWorkload
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}
