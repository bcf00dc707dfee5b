package models

import "time"

// AnnouncementStatus enumerates the publication lifecycle.
type AnnouncementStatus string

const (
	AnnouncementDraft     AnnouncementStatus = "draft"
	AnnouncementPublished AnnouncementStatus = "published"
	AnnouncementArchived  AnnouncementStatus = "archived"
)

// AnnouncementImage holds image metadata attached to an announcement.
type AnnouncementImage struct {
	URL      string `json:"url"`
	FileName string `json:"file_name,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// EngagementCounters aggregates reader interactions, maintained server-side.
type EngagementCounters struct {
	Views     int `json:"views"`
	Downloads int `json:"downloads"`
	Shares    int `json:"shares"`
	Bookmarks int `json:"bookmarks"`
}

// Announcement is a portal-wide notice. Expiry is time-based and evaluated
// by the server.
type Announcement struct {
	ID          string             `db:"id" json:"id"`
	Title       string             `db:"title" json:"title"`
	Content     string             `db:"content" json:"content"`
	Category    string             `db:"category" json:"category"`
	Status      AnnouncementStatus `db:"status" json:"status"`
	AuthorID    string             `db:"author_id" json:"author_id"`
	Author      *User              `db:"-" json:"author,omitempty"`
	Image       *AnnouncementImage `db:"-" json:"image,omitempty"`
	Engagement  EngagementCounters `db:"-" json:"engagement"`
	PublishedAt *time.Time         `db:"published_at" json:"published_at,omitempty"`
	ScheduledAt *time.Time         `db:"scheduled_at" json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `db:"updated_at" json:"updated_at"`
}

// AnnouncementFilter captures query parameters for listing announcements.
type AnnouncementFilter struct {
	Status   *AnnouncementStatus
	Category string
	Search   string
	Page     int
	PerPage  int
}

// CreateAnnouncementRequest is the scalar part of the multipart creation
// payload; the image travels as a separate form file.
type CreateAnnouncementRequest struct {
	Title       string     `json:"title" validate:"required"`
	Content     string     `json:"content" validate:"required"`
	Category    string     `json:"category" validate:"required"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

// UpdateAnnouncementRequest carries partial announcement updates.
type UpdateAnnouncementRequest struct {
	Title       *string    `json:"title,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Category    *string    `json:"category,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// EngagementKind names a trackable reader interaction.
type EngagementKind string

const (
	EngagementView     EngagementKind = "view"
	EngagementDownload EngagementKind = "download"
	EngagementShare    EngagementKind = "share"
	EngagementBookmark EngagementKind = "bookmark"
)
