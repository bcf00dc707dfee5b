package api

import (
	"context"
	"net/http"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ListWorkflows fetches automation rules.
func (c *Client) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	env, err := c.do(ctx, http.MethodGet, "/workflows", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out []models.Workflow
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWorkflow fetches one rule.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*models.Workflow, error) {
	env, err := c.do(ctx, http.MethodGet, "/workflows/"+id, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.Workflow
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateWorkflow authors a new rule; evaluation stays server-side.
func (c *Client) CreateWorkflow(ctx context.Context, req models.CreateWorkflowRequest) (*models.Workflow, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, "/workflows", requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Workflow
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateWorkflow applies a partial rule update.
func (c *Client) UpdateWorkflow(ctx context.Context, id string, req models.UpdateWorkflowRequest) (*models.Workflow, error) {
	env, err := c.do(ctx, http.MethodPatch, "/workflows/"+id, requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Workflow
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteWorkflow removes a rule.
func (c *Client) DeleteWorkflow(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/workflows/"+id, requestOptions{})
	return err
}
