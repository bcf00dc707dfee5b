package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ListUsers fetches accounts matching the filter.
func (c *Client) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	q := url.Values{}
	if filter.Role != nil {
		q.Set("role", string(*filter.Role))
	}
	if filter.DepartmentID != nil {
		q.Set("department_id", *filter.DepartmentID)
	}
	if filter.Active != nil {
		q.Set("is_active", strconv.FormatBool(*filter.Active))
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	q = pageQuery(q, filter.Page, filter.PerPage)

	env, err := c.do(ctx, http.MethodGet, "/users", requestOptions{query: q})
	if err != nil {
		return nil, nil, err
	}
	var out []models.User
	if err := decodeData(env, &out); err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

// GetUser fetches one account.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/users/"+id, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.User
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUser creates an account.
func (c *Client) CreateUser(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, "/users", requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.User
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser applies a partial update.
func (c *Client) UpdateUser(ctx context.Context, id string, req models.UpdateUserRequest) (*models.User, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPatch, "/users/"+id, requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.User
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteUser removes the server record; callers purge local caches after.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/users/"+id, requestOptions{})
	return err
}

// SetUserActive toggles the activity flag.
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) (*models.User, error) {
	body := map[string]bool{"is_active": active}
	env, err := c.do(ctx, http.MethodPatch, "/users/"+id+"/active", requestOptions{body: body})
	if err != nil {
		return nil, err
	}
	var out models.User
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
