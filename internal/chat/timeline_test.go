package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type mockMessageAPI struct {
	mu        sync.Mutex
	history   []models.ChatMessage
	sendReply *models.ChatMessage
	sendErr   error
	readCalls int
	sent      []models.SendMessageRequest
}

func (m *mockMessageAPI) ListChatMessages(ctx context.Context, roomID string, page, perPage int) ([]models.ChatMessage, *models.Pagination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ChatMessage(nil), m.history...), nil, nil
}

func (m *mockMessageAPI) SendChatMessage(ctx context.Context, roomID string, req models.SendMessageRequest) (*models.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, req)
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	return m.sendReply, nil
}

func (m *mockMessageAPI) MarkRoomRead(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls++
	return nil
}

func msg(id, author string, offset time.Duration) models.ChatMessage {
	return models.ChatMessage{
		ID: id, RoomID: "42", AuthorID: author, Message: "m-" + id,
		Type: models.MessageText, CreatedAt: baseTime.Add(offset),
	}
}

func newTestTimeline(api *mockMessageAPI, opts ...TimelineOption) *Timeline {
	return NewTimeline("42", "me", api, zap.NewNop(), opts...)
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestLoadSortsHistoryAndMarksRead(t *testing.T) {
	api := &mockMessageAPI{history: []models.ChatMessage{
		msg("m3", "other", 2*time.Minute),
		msg("m1", "me", 0),
		msg("m2", "other", time.Minute),
	}}
	tl := newTestTimeline(api)

	require.NoError(t, tl.Load(context.Background(), 1, 50))
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(tl.Entries()))
	assert.Equal(t, 1, api.readCalls)
}

func TestIncomingOutOfOrderLandsAtTimestampPosition(t *testing.T) {
	api := &mockMessageAPI{history: []models.ChatMessage{
		msg("m1", "other", 0),
		msg("m3", "other", 2*time.Minute),
	}}
	tl := newTestTimeline(api)
	require.NoError(t, tl.Load(context.Background(), 1, 50))

	inserted, foreign := tl.HandleIncoming(msg("m2", "other", time.Minute))
	assert.True(t, inserted)
	assert.True(t, foreign)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(tl.Entries()))
}

func TestIncomingDuplicateIgnored(t *testing.T) {
	api := &mockMessageAPI{history: []models.ChatMessage{msg("m1", "other", 0)}}
	tl := newTestTimeline(api)
	require.NoError(t, tl.Load(context.Background(), 1, 50))

	inserted, _ := tl.HandleIncoming(msg("m1", "other", 0))
	assert.False(t, inserted)
	assert.Len(t, tl.Entries(), 1)
}

func TestIncomingOwnEchoIsNotForeign(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})
	inserted, foreign := tl.HandleIncoming(msg("m1", "me", 0))
	assert.True(t, inserted)
	assert.False(t, foreign)
}

func TestIncomingForOtherRoomIgnored(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})
	stray := msg("m1", "other", 0)
	stray.RoomID = "99"
	inserted, _ := tl.HandleIncoming(stray)
	assert.False(t, inserted)
	assert.Empty(t, tl.Entries())
}

func TestOrderingStableUnderAnyInterleaving(t *testing.T) {
	arrivals := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{2, 0, 3, 1},
		{1, 3, 0, 2},
	}
	for _, order := range arrivals {
		tl := newTestTimeline(&mockMessageAPI{})
		for _, i := range order {
			tl.HandleIncoming(msg(string(rune('a'+i)), "other", time.Duration(i)*time.Minute))
		}
		assert.Equal(t, []string{"a", "b", "c", "d"}, ids(tl.Entries()), "arrival order %v", order)
	}
}

func TestSendSuccessAppendsExactlyServerRecord(t *testing.T) {
	server := msg("m-server", "me", 5*time.Minute)
	api := &mockMessageAPI{sendReply: &server}
	tl := newTestTimeline(api)

	restore, err := tl.Send(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Empty(t, restore)
	assert.False(t, tl.Sending())

	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "m-server", entries[0].ID)
	assert.False(t, entries[0].Pending)
	require.Len(t, api.sent, 1)
	assert.Equal(t, "Hello", api.sent[0].Message)
}

func TestSendFailureRestoresTextWithoutMutatingList(t *testing.T) {
	api := &mockMessageAPI{
		history: []models.ChatMessage{msg("m1", "other", 0)},
		sendErr: appErrors.Wrap(errors.New("dial refused"), appErrors.KindNetwork, "unable to reach the server"),
	}
	tl := newTestTimeline(api)
	require.NoError(t, tl.Load(context.Background(), 1, 50))

	restore, err := tl.Send(context.Background(), "Hello again")
	require.Error(t, err)
	assert.Equal(t, "Hello again", restore)
	assert.True(t, appErrors.IsKind(err, appErrors.KindNetwork))
	assert.Equal(t, []string{"m1"}, ids(tl.Entries()))
	assert.False(t, tl.Sending())
}

func TestSendEmptyRejectedLocally(t *testing.T) {
	api := &mockMessageAPI{}
	tl := newTestTimeline(api)

	_, err := tl.Send(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindValidation))
	assert.Empty(t, api.sent)
}

func TestPendingEntryRendersWhileInFlight(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})

	pendingID := tl.BeginSend("draft")
	assert.True(t, tl.Sending())

	entries := tl.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Pending)
	assert.Equal(t, "me", entries[0].AuthorID)
	assert.Equal(t, "draft", entries[0].Message)

	// Echo arrives over the transport before the REST confirmation.
	echo := msg("m-echo", "me", time.Minute)
	echo.Message = "draft"
	tl.HandleIncoming(echo)
	tl.ConfirmSend(pendingID, echo)

	entries = tl.Entries()
	require.Len(t, entries, 1, "echo plus confirmation must not duplicate")
	assert.Equal(t, "m-echo", entries[0].ID)
	assert.False(t, entries[0].Pending)
}

func TestFailSendUnknownIDReturnsEmpty(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})
	assert.Empty(t, tl.FailSend("nope"))
}

func TestReadBeatsDelivered(t *testing.T) {
	m := msg("m1", "me", 0)
	assert.Equal(t, models.ReceiptSent, m.Receipt())

	tl := newTestTimeline(&mockMessageAPI{})
	tl.HandleIncoming(m)

	tl.ApplyDelivered([]string{"m1"}, baseTime.Add(time.Minute))
	assert.Equal(t, models.ReceiptDelivered, tl.Entries()[0].Receipt())

	tl.ApplyRead(ReadUpdate{ReaderID: "other", At: baseTime.Add(2 * time.Minute)})
	assert.Equal(t, models.ReceiptRead, tl.Entries()[0].Receipt())

	// A late delivered update never regresses the read state.
	tl.ApplyDelivered([]string{"m1"}, baseTime.Add(3*time.Minute))
	assert.Equal(t, models.ReceiptRead, tl.Entries()[0].Receipt())
}

func TestApplyReadSkipsReadersOwnMessages(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})
	tl.HandleIncoming(msg("mine", "me", 0))
	tl.HandleIncoming(msg("theirs", "other", time.Minute))

	tl.ApplyRead(ReadUpdate{ReaderID: "other", At: baseTime.Add(2 * time.Minute)})

	entries := tl.Entries()
	assert.Equal(t, models.ReceiptRead, entries[0].Receipt(), "my message was read by them")
	assert.Equal(t, models.ReceiptSent, entries[1].Receipt(), "their own message untouched")
}

func TestApplyReadExplicitIDs(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})
	tl.HandleIncoming(msg("m1", "me", 0))
	tl.HandleIncoming(msg("m2", "me", time.Minute))

	tl.ApplyRead(ReadUpdate{ReaderID: "other", MessageIDs: []string{"m2"}, At: baseTime.Add(time.Hour)})

	entries := tl.Entries()
	assert.Equal(t, models.ReceiptSent, entries[0].Receipt())
	assert.Equal(t, models.ReceiptRead, entries[1].Receipt())
}

func TestTypingIndicatorExpires(t *testing.T) {
	now := baseTime
	clock := func() time.Time { return now }
	tl := newTestTimeline(&mockMessageAPI{}, WithClock(clock), WithTypingTTL(8*time.Second))

	tl.SetTyping("u2", "Dana", true)
	tl.SetTyping("u3", "", true)
	assert.Equal(t, []string{"Dana", "u3"}, tl.TypingUsers())

	now = now.Add(5 * time.Second)
	assert.Len(t, tl.TypingUsers(), 2)

	now = now.Add(4 * time.Second)
	assert.Empty(t, tl.TypingUsers(), "entries expire after the TTL")
}

func TestStoppedTypingClearsImmediately(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})
	tl.SetTyping("u2", "Dana", true)
	tl.SetTyping("u2", "Dana", false)
	assert.Empty(t, tl.TypingUsers())
}

func TestOwnTypingIgnored(t *testing.T) {
	tl := newTestTimeline(&mockMessageAPI{})
	tl.SetTyping("me", "Me", true)
	assert.Empty(t, tl.TypingUsers())
}

func TestGroupingHeuristics(t *testing.T) {
	entries := []Entry{
		{ChatMessage: msg("a1", "alice", 0)},
		{ChatMessage: msg("a2", "alice", time.Minute)},
		{ChatMessage: msg("a3", "alice", 10 * time.Minute)}, // gap over threshold
		{ChatMessage: msg("b1", "bob", 11 * time.Minute)},
	}

	assert.True(t, ShowAvatar(entries, 0), "first message")
	assert.False(t, ShowAvatar(entries, 1), "same author within threshold")
	assert.True(t, ShowAvatar(entries, 2), "gap breaks the group")
	assert.True(t, ShowAvatar(entries, 3), "author change")

	assert.False(t, ShowTimestamp(entries, 0))
	assert.True(t, ShowTimestamp(entries, 1), "gap below ends the group")
	assert.True(t, ShowTimestamp(entries, 2), "author change below")
	assert.True(t, ShowTimestamp(entries, 3), "last message")
}

func TestGroupingExactThresholdStaysGrouped(t *testing.T) {
	entries := []Entry{
		{ChatMessage: msg("a1", "alice", 0)},
		{ChatMessage: msg("a2", "alice", 5 * time.Minute)},
	}
	assert.False(t, ShowAvatar(entries, 1), "exactly five minutes is still grouped")
	assert.False(t, ShowTimestamp(entries, 0))
}

func TestBannersBreakGroupsAndCarryNoChrome(t *testing.T) {
	banner := msg("sys", "", 90*time.Second)
	banner.Type = models.MessageStatusChange
	entries := []Entry{
		{ChatMessage: msg("a1", "alice", 0)},
		{ChatMessage: banner},
		{ChatMessage: msg("a2", "alice", 2 * time.Minute)},
	}

	assert.False(t, ShowAvatar(entries, 1))
	assert.False(t, ShowTimestamp(entries, 1))
	assert.True(t, ShowAvatar(entries, 2), "banner above restarts the group")
	assert.True(t, ShowTimestamp(entries, 0), "banner below ends the group")
}

func TestStaleHistoryResponseDropped(t *testing.T) {
	gate := make(chan struct{})
	api := &gatedMessageAPI{
		mockMessageAPI: mockMessageAPI{history: []models.ChatMessage{msg("old", "other", 0)}},
		gate:           gate,
		gated:          true,
	}
	tl := NewTimeline("42", "me", api, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- tl.Load(context.Background(), 1, 50) }()

	// A second load supersedes the first while it is blocked in flight.
	api.mu.Lock()
	api.gated = false
	api.history = []models.ChatMessage{msg("new", "other", time.Minute)}
	api.mu.Unlock()
	require.NoError(t, tl.Load(context.Background(), 1, 50))

	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"new"}, ids(tl.Entries()))
}

type gatedMessageAPI struct {
	mockMessageAPI
	gate  chan struct{}
	gated bool
}

func (g *gatedMessageAPI) ListChatMessages(ctx context.Context, roomID string, page, perPage int) ([]models.ChatMessage, *models.Pagination, error) {
	g.mu.Lock()
	wait := g.gated
	g.mu.Unlock()
	if wait {
		<-g.gate
	}
	return g.mockMessageAPI.ListChatMessages(ctx, roomID, page, perPage)
}
