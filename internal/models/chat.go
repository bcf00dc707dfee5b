package models

import "time"

// ChatRoomStatus enumerates room lifecycle states.
type ChatRoomStatus string

const (
	RoomActive   ChatRoomStatus = "active"
	RoomClosed   ChatRoomStatus = "closed"
	RoomArchived ChatRoomStatus = "archived"
)

// MessageType distinguishes speaker bubbles from system banners.
type MessageType string

const (
	MessageText         MessageType = "text"
	MessageImage        MessageType = "image"
	MessageFile         MessageType = "file"
	MessageSystem       MessageType = "system"
	MessageStatusChange MessageType = "status_change"
)

// IsBanner reports whether the type renders as a centered banner rather than
// a left/right speaker bubble.
func (t MessageType) IsBanner() bool {
	return t == MessageSystem || t == MessageStatusChange
}

// ChatRoom is the 1:1 conversation channel bound to a single concern,
// created lazily on first need.
type ChatRoom struct {
	ID             string         `db:"id" json:"id"`
	ConcernID      string         `db:"concern_id" json:"concern_id"`
	RoomName       string         `db:"room_name" json:"room_name"`
	Status         ChatRoomStatus `db:"status" json:"status"`
	Concern        *Concern       `db:"-" json:"concern,omitempty"`
	LatestMessage  *ChatMessage   `db:"-" json:"latest_message,omitempty"`
	UnreadCount    int            `db:"unread_count" json:"unread_count"`
	LastActivityAt *time.Time     `db:"last_activity_at" json:"last_activity_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// ChatMessage belongs to a room. CreatedAt is the authoritative ordering
// key; transport delivery order is not guaranteed to match it.
type ChatMessage struct {
	ID          string      `db:"id" json:"id"`
	RoomID      string      `db:"room_id" json:"room_id"`
	AuthorID    string      `db:"author_id" json:"author_id"`
	AuthorName  string      `db:"author_name" json:"author_name,omitempty"`
	Message     string      `db:"message" json:"message"`
	Type        MessageType `db:"message_type" json:"message_type"`
	DeliveredAt *time.Time  `db:"delivered_at" json:"delivered_at,omitempty"`
	ReadAt      *time.Time  `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// ReceiptState is the rendered delivery indicator for an outgoing message.
type ReceiptState string

const (
	ReceiptSent      ReceiptState = "sent"
	ReceiptDelivered ReceiptState = "delivered"
	ReceiptRead      ReceiptState = "read"
)

// Receipt resolves the indicator with strict priority: read overrides
// delivered overrides sent.
func (m ChatMessage) Receipt() ReceiptState {
	switch {
	case m.ReadAt != nil:
		return ReceiptRead
	case m.DeliveredAt != nil:
		return ReceiptDelivered
	default:
		return ReceiptSent
	}
}

// SendMessageRequest is the payload for posting a message to a room.
type SendMessageRequest struct {
	Message string      `json:"message" validate:"required"`
	Type    MessageType `json:"message_type,omitempty"`
}

// ChatRoomFilter captures query parameters for listing rooms.
type ChatRoomFilter struct {
	Status  *ChatRoomStatus
	Page    int
	PerPage int
}
