package chat

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

// groupingGap is the silence between two messages from the same author after
// which the second one regains its avatar and timestamp.
const groupingGap = 5 * time.Minute

// defaultTypingTTL expires a typing indicator when no stopped_typing event
// ever arrives.
const defaultTypingTTL = 8 * time.Second

// MessageAPI is the API surface the timeline consumes.
type MessageAPI interface {
	ListChatMessages(ctx context.Context, roomID string, page, perPage int) ([]models.ChatMessage, *models.Pagination, error)
	SendChatMessage(ctx context.Context, roomID string, req models.SendMessageRequest) (*models.ChatMessage, error)
	MarkRoomRead(ctx context.Context, roomID string) error
}

// Entry is one rendered timeline row: either a confirmed server message or an
// in-flight optimistic send.
type Entry struct {
	models.ChatMessage
	Pending bool
}

// Timeline holds the ordered message state for one open room. Confirmed
// messages are kept sorted by created_at regardless of arrival order;
// optimistic sends render after them and never enter the confirmed list
// until the server echoes a canonical record.
type Timeline struct {
	roomID        string
	currentUserID string
	api           MessageAPI
	logger        *zap.Logger

	typingTTL time.Duration
	now       func() time.Time

	mu         sync.Mutex
	confirmed  []models.ChatMessage
	seen       map[string]struct{}
	pending    []pendingSend
	typing     map[string]typingEntry
	generation uint64
}

type pendingSend struct {
	id        string
	text      string
	startedAt time.Time
}

type typingEntry struct {
	name    string
	expires time.Time
}

// TimelineOption tweaks a Timeline at construction.
type TimelineOption func(*Timeline)

// WithTypingTTL overrides the typing-indicator expiry. Non-positive values
// keep the default.
func WithTypingTTL(ttl time.Duration) TimelineOption {
	return func(t *Timeline) {
		if ttl > 0 {
			t.typingTTL = ttl
		}
	}
}

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) TimelineOption {
	return func(t *Timeline) { t.now = now }
}

// NewTimeline builds the state for one room on behalf of currentUserID.
func NewTimeline(roomID, currentUserID string, api MessageAPI, logger *zap.Logger, opts ...TimelineOption) *Timeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Timeline{
		roomID:        roomID,
		currentUserID: currentUserID,
		api:           api,
		logger:        logger,
		typingTTL:     defaultTypingTTL,
		now:           time.Now,
		seen:          make(map[string]struct{}),
		typing:        make(map[string]typingEntry),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RoomID returns the room this timeline belongs to.
func (t *Timeline) RoomID() string { return t.roomID }

// Load fetches history, replaces the confirmed set, and marks the room read.
// A response from a superseded Load is dropped.
func (t *Timeline) Load(ctx context.Context, page, perPage int) error {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.mu.Unlock()

	msgs, _, err := t.api.ListChatMessages(ctx, t.roomID, page, perPage)
	if err != nil {
		return err
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		t.logger.Debug("dropping stale history response", zap.String("room_id", t.roomID))
		return nil
	}
	t.confirmed = msgs
	t.seen = make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		t.seen[m.ID] = struct{}{}
	}
	t.mu.Unlock()

	if err := t.api.MarkRoomRead(ctx, t.roomID); err != nil {
		t.logger.Warn("mark read failed", zap.String("room_id", t.roomID), zap.Error(err))
	}
	return nil
}

// HandleIncoming merges a transport-delivered message. Duplicates (already
// confirmed ids) are ignored; new messages are inserted at their timestamp
// position, not appended. Returns whether the message was new and whether it
// came from another user, in which case the caller should mark the room read.
func (t *Timeline) HandleIncoming(msg models.ChatMessage) (inserted, foreign bool) {
	if msg.RoomID != "" && msg.RoomID != t.roomID {
		return false, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.seen[msg.ID]; dup {
		return false, false
	}
	t.seen[msg.ID] = struct{}{}
	t.insertSortedLocked(msg)
	return true, msg.AuthorID != t.currentUserID
}

func (t *Timeline) insertSortedLocked(msg models.ChatMessage) {
	idx := sort.Search(len(t.confirmed), func(i int) bool {
		return t.confirmed[i].CreatedAt.After(msg.CreatedAt)
	})
	t.confirmed = append(t.confirmed, models.ChatMessage{})
	copy(t.confirmed[idx+1:], t.confirmed[idx:])
	t.confirmed[idx] = msg
}

// Send runs the optimistic protocol: register a pending entry, post to the
// server, then swap the pending entry for the canonical record. On failure
// the pending entry is removed and the original text is returned so the
// caller can restore it to the input field.
func (t *Timeline) Send(ctx context.Context, text string) (restoreText string, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", appErrors.New(appErrors.KindValidation, "message cannot be empty")
	}

	pendingID := t.BeginSend(text)
	msg, err := t.api.SendChatMessage(ctx, t.roomID, models.SendMessageRequest{Message: text})
	if err != nil {
		return t.FailSend(pendingID), err
	}
	t.ConfirmSend(pendingID, *msg)
	return "", nil
}

// BeginSend registers an optimistic entry and returns its client-local id.
// The id never collides with server ids and never leaves the client.
func (t *Timeline) BeginSend(text string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := pendingSend{id: uuid.NewString(), text: text, startedAt: t.now()}
	t.pending = append(t.pending, p)
	return p.id
}

// ConfirmSend drops the pending entry and merges the server's record. The
// rendered list ends up with exactly the canonical message, even when the
// transport already delivered it as an echo.
func (t *Timeline) ConfirmSend(pendingID string, msg models.ChatMessage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removePendingLocked(pendingID)
	if _, dup := t.seen[msg.ID]; dup {
		return
	}
	t.seen[msg.ID] = struct{}{}
	t.insertSortedLocked(msg)
}

// FailSend drops the pending entry and returns its text. Confirmed messages
// are untouched.
func (t *Timeline) FailSend(pendingID string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.pending {
		if p.id == pendingID {
			t.removePendingLocked(pendingID)
			return p.text
		}
	}
	return ""
}

func (t *Timeline) removePendingLocked(pendingID string) {
	for i, p := range t.pending {
		if p.id == pendingID {
			t.pending = append(t.pending[:i], t.pending[i+1:]...)
			return
		}
	}
}

// Sending reports whether an optimistic send is in flight.
func (t *Timeline) Sending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// ApplyRead records that reader read messages in this room. With explicit ids
// only those are touched; without, every message not authored by the reader
// is. Timestamps are set once and never regress.
func (t *Timeline) ApplyRead(payload ReadUpdate) {
	at := payload.At
	if at.IsZero() {
		at = t.now()
	}
	ids := make(map[string]struct{}, len(payload.MessageIDs))
	for _, id := range payload.MessageIDs {
		ids[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.confirmed {
		m := &t.confirmed[i]
		if len(ids) > 0 {
			if _, ok := ids[m.ID]; !ok {
				continue
			}
		} else if m.AuthorID == payload.ReaderID {
			continue
		}
		if m.ReadAt == nil {
			stamp := at
			m.ReadAt = &stamp
		}
		if m.DeliveredAt == nil {
			stamp := at
			m.DeliveredAt = &stamp
		}
	}
}

// ReadUpdate describes a messages_read notification.
type ReadUpdate struct {
	ReaderID   string
	MessageIDs []string
	At         time.Time
}

// ApplyDelivered stamps delivery on the given messages, leaving read state
// alone.
func (t *Timeline) ApplyDelivered(messageIDs []string, at time.Time) {
	if at.IsZero() {
		at = t.now()
	}
	ids := make(map[string]struct{}, len(messageIDs))
	for _, id := range messageIDs {
		ids[id] = struct{}{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.confirmed {
		m := &t.confirmed[i]
		if _, ok := ids[m.ID]; !ok {
			continue
		}
		if m.DeliveredAt == nil {
			stamp := at
			m.DeliveredAt = &stamp
		}
	}
}

// SetTyping records that a user started or stopped typing. The indicator
// self-expires after the TTL so a lost stopped_typing event cannot pin it.
func (t *Timeline) SetTyping(userID, name string, typing bool) {
	if userID == "" || userID == t.currentUserID {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !typing {
		delete(t.typing, userID)
		return
	}
	t.typing[userID] = typingEntry{name: name, expires: t.now().Add(t.typingTTL)}
}

// TypingUsers returns the display names of users currently typing, expired
// entries pruned. Order is stable by name.
func (t *Timeline) TypingUsers() []string {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	var names []string
	for id, entry := range t.typing {
		if now.After(entry.expires) {
			delete(t.typing, id)
			continue
		}
		name := entry.name
		if name == "" {
			name = id
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns the rendered list: confirmed messages in timestamp order
// followed by pending sends in submission order. Pending rows carry the
// client-local id and the caller's identity.
func (t *Timeline) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, 0, len(t.confirmed)+len(t.pending))
	for _, m := range t.confirmed {
		out = append(out, Entry{ChatMessage: m})
	}
	for _, p := range t.pending {
		out = append(out, Entry{
			ChatMessage: models.ChatMessage{
				ID:        p.id,
				RoomID:    t.roomID,
				AuthorID:  t.currentUserID,
				Message:   p.text,
				Type:      models.MessageText,
				CreatedAt: p.startedAt,
			},
			Pending: true,
		})
	}
	return out
}

// ShowAvatar reports whether the entry at i starts a visual group: first in
// the list, a different author than the previous entry, or a gap above the
// grouping threshold. Banner rows never show an avatar and always break a
// group.
func ShowAvatar(entries []Entry, i int) bool {
	if i < 0 || i >= len(entries) {
		return false
	}
	if entries[i].Type.IsBanner() {
		return false
	}
	if i == 0 {
		return true
	}
	prev := entries[i-1]
	if prev.Type.IsBanner() || prev.AuthorID != entries[i].AuthorID {
		return true
	}
	return entries[i].CreatedAt.Sub(prev.CreatedAt) > groupingGap
}

// ShowTimestamp reports whether the entry at i ends a visual group: last in
// the list, a different author follows, or the next message is far enough
// away in time.
func ShowTimestamp(entries []Entry, i int) bool {
	if i < 0 || i >= len(entries) {
		return false
	}
	if entries[i].Type.IsBanner() {
		return false
	}
	if i == len(entries)-1 {
		return true
	}
	next := entries[i+1]
	if next.Type.IsBanner() || next.AuthorID != entries[i].AuthorID {
		return true
	}
	return next.CreatedAt.Sub(entries[i].CreatedAt) > groupingGap
}
