package models

import "time"

// Notification is a portal push/in-app notification record.
type Notification struct {
	ID        string     `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	Topic     string     `db:"topic" json:"topic,omitempty"`
	UserID    *string    `db:"user_id" json:"user_id,omitempty"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// SendNotificationRequest targets either a user, a role, or a topic.
type SendNotificationRequest struct {
	Title  string    `json:"title" validate:"required"`
	Body   string    `json:"body" validate:"required"`
	UserID *string   `json:"user_id,omitempty"`
	Role   *UserRole `json:"role,omitempty"`
	Topic  *string   `json:"topic,omitempty"`
}

// NotificationStats summarises delivery outcomes, computed server-side.
type NotificationStats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Read      int `json:"read"`
}
