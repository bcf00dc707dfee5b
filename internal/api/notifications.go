package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ListNotifications fetches the caller's notifications.
func (c *Client) ListNotifications(ctx context.Context, unreadOnly bool, page, perPage int) ([]models.Notification, *models.Pagination, error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread", strconv.FormatBool(true))
	}
	q = pageQuery(q, page, perPage)

	env, err := c.do(ctx, http.MethodGet, "/notifications", requestOptions{query: q})
	if err != nil {
		return nil, nil, err
	}
	var out []models.Notification
	if err := decodeData(env, &out); err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

// SendNotification dispatches a notification to a user, role, or topic.
func (c *Client) SendNotification(ctx context.Context, req models.SendNotificationRequest) (*models.Notification, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}
	env, err := c.do(ctx, http.MethodPost, "/notifications/send", requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Notification
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTestNotification dispatches a test push to the caller's own devices.
func (c *Client) SendTestNotification(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/notifications/test", requestOptions{})
	return err
}

// NotificationStats fetches delivery statistics.
func (c *Client) NotificationStats(ctx context.Context) (*models.NotificationStats, error) {
	env, err := c.do(ctx, http.MethodGet, "/notifications/stats", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.NotificationStats
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkNotificationRead marks one notification read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodPost, "/notifications/"+id+"/read", requestOptions{})
	return err
}
