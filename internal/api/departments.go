package api

import (
	"context"
	"net/http"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ListDepartments fetches all departments.
func (c *Client) ListDepartments(ctx context.Context) ([]models.Department, error) {
	env, err := c.do(ctx, http.MethodGet, "/departments", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out []models.Department
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDepartment fetches one department.
func (c *Client) GetDepartment(ctx context.Context, id string) (*models.Department, error) {
	env, err := c.do(ctx, http.MethodGet, "/departments/"+id, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.Department
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateDepartment creates a department.
func (c *Client) CreateDepartment(ctx context.Context, req models.CreateDepartmentRequest) (*models.Department, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, "/departments", requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Department
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDepartment applies a partial update.
func (c *Client) UpdateDepartment(ctx context.Context, id string, req models.UpdateDepartmentRequest) (*models.Department, error) {
	env, err := c.do(ctx, http.MethodPatch, "/departments/"+id, requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Department
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDepartment removes a department.
func (c *Client) DeleteDepartment(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/departments/"+id, requestOptions{})
	return err
}
