// Package chat holds the client-side coordination state for the portal's
// real-time conversations: the room list and the per-room message timeline.
// REST supplies history and confirmations; transport events mutate state
// live. Both flows reconcile by timestamp, never by arrival order.
package chat

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
)

// RoomLister is the API surface the room list consumes.
type RoomLister interface {
	ListChatRooms(ctx context.Context, filter models.ChatRoomFilter) ([]models.ChatRoom, *models.Pagination, error)
}

// RoomList tracks active conversations. Live room-created events insert
// idempotently; a stale fetch response never clobbers a newer load.
type RoomList struct {
	api    RoomLister
	logger *zap.Logger

	mu         sync.Mutex
	rooms      []models.ChatRoom
	known      map[string]struct{}
	generation uint64
	loaded     bool
}

// NewRoomList builds an empty room list.
func NewRoomList(api RoomLister, logger *zap.Logger) *RoomList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomList{
		api:    api,
		logger: logger,
		known:  make(map[string]struct{}),
	}
}

// Load fetches active rooms. Responses belonging to an older generation
// (a newer Load started meanwhile) are dropped.
func (l *RoomList) Load(ctx context.Context) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	status := models.RoomActive
	rooms, _, err := l.api.ListChatRooms(ctx, models.ChatRoomFilter{Status: &status})
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		l.logger.Debug("dropping stale room list response")
		return nil
	}

	l.rooms = rooms
	l.known = make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		l.known[room.ID] = struct{}{}
	}
	l.loaded = true
	return nil
}

// Loaded reports whether an initial fetch has completed.
func (l *RoomList) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// HandleRoomCreated prepends a room announced over the transport. The insert
// is idempotent: a known id leaves the list untouched.
func (l *RoomList) HandleRoomCreated(room models.ChatRoom) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.known[room.ID]; ok {
		return false
	}
	l.known[room.ID] = struct{}{}
	l.rooms = append([]models.ChatRoom{room}, l.rooms...)
	return true
}

// Rooms returns a copy of the current list in display order.
func (l *RoomList) Rooms() []models.ChatRoom {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.ChatRoom, len(l.rooms))
	copy(out, l.rooms)
	return out
}

// Len returns the number of rooms.
func (l *RoomList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}

// Filter returns rooms whose concern subject, concern description, or room
// name contains the query, case-insensitively. An empty query returns the
// full list.
func (l *RoomList) Filter(query string) []models.ChatRoom {
	rooms := l.Rooms()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rooms
	}

	var out []models.ChatRoom
	for _, room := range rooms {
		if roomMatches(room, query) {
			out = append(out, room)
		}
	}
	return out
}

func roomMatches(room models.ChatRoom, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(room.RoomName), loweredQuery) {
		return true
	}
	if room.Concern == nil {
		return false
	}
	return strings.Contains(strings.ToLower(room.Concern.Subject), loweredQuery) ||
		strings.Contains(strings.ToLower(room.Concern.Description), loweredQuery)
}
