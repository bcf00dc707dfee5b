package stubserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/api"
	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/realtime"
	"github.com/noah-isme/studentlink-portal/internal/session"
	"github.com/noah-isme/studentlink-portal/pkg/config"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

func newFixture(t *testing.T) (*api.Client, *session.Session, *httptest.Server) {
	t.Helper()
	srv, err := New(config.StubConfig{JWTSecret: "test_secret", JWTExpiry: time.Hour}, zap.NewNop(), nil)
	require.NoError(t, err)

	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	sess := session.New(nil)
	client := api.New(httpSrv.URL+"/api/v1", sess, zap.NewNop())
	return client, sess, httpSrv
}

func login(t *testing.T, client *api.Client, email string) *models.User {
	t.Helper()
	resp, err := client.Login(context.Background(), models.LoginRequest{Email: email, Password: demoPassword})
	require.NoError(t, err)
	return &resp.User
}

func TestLoginRoundTrip(t *testing.T) {
	client, sess, _ := newFixture(t)

	_, err := client.Login(context.Background(), models.LoginRequest{Email: "student@campus.edu", Password: "wrong-pass"})
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAuthentication))

	user := login(t, client, "student@campus.edu")
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NotEmpty(t, sess.Token())

	me, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	client, _, _ := newFixture(t)
	_, _, err := client.ListConcerns(context.Background(), models.ConcernFilter{})
	require.Error(t, err)
	assert.True(t, appErrors.IsKind(err, appErrors.KindAuthentication))
}

func TestConcernListingAndCreation(t *testing.T) {
	client, _, _ := newFixture(t)
	login(t, client, "student@campus.edu")

	concerns, page, err := client.ListConcerns(context.Background(), models.ConcernFilter{Search: "wifi"})
	require.NoError(t, err)
	require.Len(t, concerns, 1)
	assert.Equal(t, "WiFi down in library", concerns[0].Subject)
	require.NotNil(t, page)
	assert.Equal(t, 1, page.Total)

	created, err := client.CreateConcern(context.Background(), models.CreateConcernRequest{
		Subject:     "Broken projector",
		Description: "Room 204 projector flickers",
		Priority:    models.PriorityLow,
	})
	require.NoError(t, err)
	assert.Contains(t, created.ReferenceNumber, "CON-")
	assert.Equal(t, models.ConcernPending, created.Status)
}

func TestChatFlowEndToEnd(t *testing.T) {
	studentClient, _, httpSrv := newFixture(t)
	student := login(t, studentClient, "student@campus.edu")

	staffSess := session.New(nil)
	staffClient := api.New(httpSrv.URL+"/api/v1", staffSess, zap.NewNop())
	login(t, staffClient, "staff@campus.edu")

	room, err := studentClient.GetOrCreateChatRoom(context.Background(), "c-wifi")
	require.NoError(t, err)
	assert.Equal(t, models.RoomActive, room.Status)

	// Same concern resolves to the same room.
	again, err := staffClient.GetOrCreateChatRoom(context.Background(), "c-wifi")
	require.NoError(t, err)
	assert.Equal(t, room.ID, again.ID)

	adapter := realtime.New(realtime.Config{
		URL:          "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws",
		ReconnectMin: 10 * time.Millisecond,
		ReconnectMax: 50 * time.Millisecond,
	}, zap.NewNop(), nil)
	t.Cleanup(func() { adapter.Close() })
	require.NoError(t, adapter.Connect(context.Background()))

	events := make(chan realtime.Event, 8)
	require.NoError(t, adapter.Subscribe(realtime.RoomChannel(room.ID), func(e realtime.Event) { events <- e }))

	// Give the subscribe frame a moment to land before broadcasting.
	time.Sleep(50 * time.Millisecond)

	sent, err := staffClient.SendChatMessage(context.Background(), room.ID, models.SendMessageRequest{Message: "On our way"})
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, realtime.EventNewMessage, evt.Name)
		var msg models.ChatMessage
		require.NoError(t, evt.Decode(&msg))
		assert.Equal(t, sent.ID, msg.ID)
		assert.Equal(t, "On our way", msg.Message)
	case <-time.After(3 * time.Second):
		t.Fatal("no new_message broadcast")
	}

	// The student reading the room notifies the message stream.
	require.NoError(t, studentClient.MarkRoomRead(context.Background(), room.ID))
	select {
	case evt := <-events:
		assert.Equal(t, realtime.EventMessageRead, evt.Name)
		var payload realtime.ReadPayload
		require.NoError(t, evt.Decode(&payload))
		assert.Equal(t, student.ID, payload.ReaderID)
		assert.Equal(t, []string{sent.ID}, payload.MessageIDs)
	case <-time.After(3 * time.Second):
		t.Fatal("no messages_read broadcast")
	}

	msgs, _, err := studentClient.ListChatMessages(context.Background(), room.ID, 1, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.ReceiptRead, msgs[0].Receipt())
}

func TestTypingBroadcast(t *testing.T) {
	client, _, httpSrv := newFixture(t)
	login(t, client, "staff@campus.edu")

	room, err := client.GetOrCreateChatRoom(context.Background(), "c-wifi")
	require.NoError(t, err)

	adapter := realtime.New(realtime.Config{URL: "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"}, zap.NewNop(), nil)
	t.Cleanup(func() { adapter.Close() })
	require.NoError(t, adapter.Connect(context.Background()))

	events := make(chan realtime.Event, 2)
	require.NoError(t, adapter.Subscribe(realtime.TypingChannel(room.ID), func(e realtime.Event) { events <- e }))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, client.SetTyping(context.Background(), room.ID, true))
	select {
	case evt := <-events:
		assert.Equal(t, realtime.EventTyping, evt.Name)
		var payload realtime.TypingPayload
		require.NoError(t, evt.Decode(&payload))
		assert.Equal(t, "Devin Staff", payload.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("no typing broadcast")
	}

	require.NoError(t, client.SetTyping(context.Background(), room.ID, false))
	select {
	case evt := <-events:
		assert.Equal(t, realtime.EventStoppedTyping, evt.Name)
	case <-time.After(3 * time.Second):
		t.Fatal("no stopped_typing broadcast")
	}
}

func TestRoomCreatedBroadcast(t *testing.T) {
	client, _, httpSrv := newFixture(t)
	login(t, client, "student@campus.edu")

	adapter := realtime.New(realtime.Config{URL: "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/ws"}, zap.NewNop(), nil)
	t.Cleanup(func() { adapter.Close() })
	require.NoError(t, adapter.Connect(context.Background()))

	events := make(chan realtime.Event, 2)
	require.NoError(t, adapter.Subscribe(realtime.DepartmentRoomsChannel("d-it"), func(e realtime.Event) { events <- e }))
	time.Sleep(50 * time.Millisecond)

	room, err := client.GetOrCreateChatRoom(context.Background(), "c-wifi")
	require.NoError(t, err)

	select {
	case evt := <-events:
		assert.Equal(t, realtime.EventRoomCreated, evt.Name)
		var got models.ChatRoom
		require.NoError(t, evt.Decode(&got))
		assert.Equal(t, room.ID, got.ID)
	case <-time.After(3 * time.Second):
		t.Fatal("no chat_room_created broadcast")
	}

	// Second resolve is idempotent and must not broadcast again.
	_, err = client.GetOrCreateChatRoom(context.Background(), "c-wifi")
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, events)
}
