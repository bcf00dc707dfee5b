package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ListConcerns fetches concerns matching the filter.
func (c *Client) ListConcerns(ctx context.Context, filter models.ConcernFilter) ([]models.Concern, *models.Pagination, error) {
	q := url.Values{}
	if filter.Status != nil {
		q.Set("status", string(*filter.Status))
	}
	if filter.Priority != nil {
		q.Set("priority", string(*filter.Priority))
	}
	if filter.DepartmentID != nil {
		q.Set("department_id", *filter.DepartmentID)
	}
	if filter.AssigneeID != nil {
		q.Set("assignee_id", *filter.AssigneeID)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	q = pageQuery(q, filter.Page, filter.PerPage)

	env, err := c.do(ctx, http.MethodGet, "/concerns", requestOptions{query: q})
	if err != nil {
		return nil, nil, err
	}
	var out []models.Concern
	if err := decodeData(env, &out); err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

// GetConcern fetches one concern by id.
func (c *Client) GetConcern(ctx context.Context, id string) (*models.Concern, error) {
	env, err := c.do(ctx, http.MethodGet, "/concerns/"+id, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.Concern
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConcern submits a new concern.
func (c *Client) CreateConcern(ctx context.Context, req models.CreateConcernRequest) (*models.Concern, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, "/concerns", requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Concern
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateConcern applies a partial update and returns the canonical record.
func (c *Client) UpdateConcern(ctx context.Context, id string, req models.UpdateConcernRequest) (*models.Concern, error) {
	env, err := c.do(ctx, http.MethodPatch, "/concerns/"+id, requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Concern
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteConcern removes a concern record.
func (c *Client) DeleteConcern(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/concerns/"+id, requestOptions{})
	return err
}

// AssignConcern routes a concern to a department and/or assignee.
func (c *Client) AssignConcern(ctx context.Context, id string, req models.AssignConcernRequest) (*models.Concern, error) {
	return c.concernTransition(ctx, id, "assign", req)
}

// ApproveConcern requests the pending→approved transition.
func (c *Client) ApproveConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return c.concernTransition(ctx, id, "approve", req)
}

// RejectConcern requests the pending→rejected transition.
func (c *Client) RejectConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return c.concernTransition(ctx, id, "reject", req)
}

// EscalateConcern escalates to the department head.
func (c *Client) EscalateConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return c.concernTransition(ctx, id, "escalate", req)
}

// ResolveConcern requests the in_progress→resolved transition.
func (c *Client) ResolveConcern(ctx context.Context, id string, req models.ConcernActionRequest) (*models.Concern, error) {
	return c.concernTransition(ctx, id, "resolve", req)
}

// UpdateConcernPriority changes the priority level.
func (c *Client) UpdateConcernPriority(ctx context.Context, id string, priority models.ConcernPriority) (*models.Concern, error) {
	body := map[string]models.ConcernPriority{"priority": priority}
	env, err := c.do(ctx, http.MethodPatch, "/concerns/"+id+"/priority", requestOptions{body: body})
	if err != nil {
		return nil, err
	}
	var out models.Concern
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateConcernStatus requests an explicit status transition. The server
// owns the state machine; an invalid transition comes back as an error.
func (c *Client) UpdateConcernStatus(ctx context.Context, id string, status models.ConcernStatus) (*models.Concern, error) {
	body := map[string]models.ConcernStatus{"status": status}
	env, err := c.do(ctx, http.MethodPatch, "/concerns/"+id+"/status", requestOptions{body: body})
	if err != nil {
		return nil, err
	}
	var out models.Concern
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) concernTransition(ctx context.Context, id, action string, body any) (*models.Concern, error) {
	env, err := c.do(ctx, http.MethodPost, "/concerns/"+id+"/"+action, requestOptions{body: body})
	if err != nil {
		return nil, err
	}
	var out models.Concern
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
