package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// ImageUpload carries an announcement image for multipart creation.
type ImageUpload struct {
	FileName string
	Content  io.Reader
}

// ListAnnouncements fetches announcements matching the filter.
func (c *Client) ListAnnouncements(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, *models.Pagination, error) {
	q := url.Values{}
	if filter.Status != nil {
		q.Set("status", string(*filter.Status))
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	q = pageQuery(q, filter.Page, filter.PerPage)

	env, err := c.do(ctx, http.MethodGet, "/announcements", requestOptions{query: q})
	if err != nil {
		return nil, nil, err
	}
	var out []models.Announcement
	if err := decodeData(env, &out); err != nil {
		return nil, nil, err
	}
	return out, env.Pagination, nil
}

// GetAnnouncement fetches one announcement.
func (c *Client) GetAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	env, err := c.do(ctx, http.MethodGet, "/announcements/"+id, requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.Announcement
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAnnouncement posts a multipart payload: scalar fields stringified,
// arrays JSON-encoded, the image under the "image" form field. The runtime
// sets the multipart boundary because do() leaves Content-Type alone for
// multipart bodies.
func (c *Client) CreateAnnouncement(ctx context.Context, req models.CreateAnnouncementRequest, image *ImageUpload) (*models.Announcement, error) {
	if err := c.validate(req); err != nil {
		return nil, err
	}

	fields := map[string]string{
		"title":    req.Title,
		"content":  req.Content,
		"category": req.Category,
	}
	if req.ScheduledAt != nil {
		fields["scheduled_at"] = req.ScheduledAt.Format(time.RFC3339)
	}
	if req.ExpiresAt != nil {
		fields["expires_at"] = req.ExpiresAt.Format(time.RFC3339)
	}
	if len(req.Tags) > 0 {
		encoded, err := json.Marshal(req.Tags)
		if err == nil {
			fields["tags"] = string(encoded)
		}
	}

	var files []fileUpload
	if image != nil {
		files = append(files, fileUpload{Field: "image", FileName: image.FileName, Content: image.Content})
	}

	env, err := c.do(ctx, http.MethodPost, "/announcements", requestOptions{fields: fields, files: files})
	if err != nil {
		return nil, err
	}
	var out models.Announcement
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAnnouncement applies a partial update.
func (c *Client) UpdateAnnouncement(ctx context.Context, id string, req models.UpdateAnnouncementRequest) (*models.Announcement, error) {
	env, err := c.do(ctx, http.MethodPatch, "/announcements/"+id, requestOptions{body: req})
	if err != nil {
		return nil, err
	}
	var out models.Announcement
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAnnouncement removes an announcement.
func (c *Client) DeleteAnnouncement(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/announcements/"+id, requestOptions{})
	return err
}

// PublishAnnouncement moves a draft to published.
func (c *Client) PublishAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	env, err := c.do(ctx, http.MethodPost, "/announcements/"+id+"/publish", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.Announcement
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ArchiveAnnouncement moves a published announcement to archived.
func (c *Client) ArchiveAnnouncement(ctx context.Context, id string) (*models.Announcement, error) {
	env, err := c.do(ctx, http.MethodPost, "/announcements/"+id+"/archive", requestOptions{})
	if err != nil {
		return nil, err
	}
	var out models.Announcement
	if err := decodeData(env, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrackEngagement records a reader interaction for analytics.
func (c *Client) TrackEngagement(ctx context.Context, id string, kind models.EngagementKind) error {
	body := map[string]models.EngagementKind{"kind": kind}
	_, err := c.do(ctx, http.MethodPost, "/announcements/"+id+"/engagement", requestOptions{body: body})
	return err
}

// DownloadAnnouncementImage fetches the attached image bytes.
func (c *Client) DownloadAnnouncementImage(ctx context.Context, id string) ([]byte, string, error) {
	return c.download(ctx, "/announcements/"+id+"/image", nil)
}
