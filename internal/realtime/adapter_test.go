package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// wsServer is a minimal stream endpoint that records subscribe frames and
// lets tests push events and kill connections.
type wsServer struct {
	t        *testing.T
	upgrader websocket.Upgrader

	mu         sync.Mutex
	conns      []*websocket.Conn
	subscribes []string
	auth       []string
}

func (s *wsServer) handler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	require.NoError(s.t, err)

	s.mu.Lock()
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	go func() {
		for {
			var frame Frame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			if frame.Action == "subscribe" {
				s.mu.Lock()
				s.subscribes = append(s.subscribes, frame.Channel)
				s.mu.Unlock()
			}
		}
	}()
}

func (s *wsServer) push(conn *websocket.Conn, frame Frame) {
	data, err := json.Marshal(frame)
	require.NoError(s.t, err)
	require.NoError(s.t, conn.WriteMessage(websocket.TextMessage, data))
}

func (s *wsServer) lastConn() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(s.t, s.conns)
	return s.conns[len(s.conns)-1]
}

func (s *wsServer) subscribedChannels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.subscribes...)
}

func newWSFixture(t *testing.T) (*wsServer, *Adapter) {
	t.Helper()
	srv := &wsServer{t: t}
	httpSrv := httptest.NewServer(http.HandlerFunc(srv.handler))
	t.Cleanup(httpSrv.Close)

	adapter := New(Config{
		URL:          "ws" + strings.TrimPrefix(httpSrv.URL, "http"),
		Token:        "tok-ws",
		ReconnectMin: 10 * time.Millisecond,
		ReconnectMax: 50 * time.Millisecond,
	}, zap.NewNop(), nil)
	t.Cleanup(func() { adapter.Close() })
	return srv, adapter
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSubscribeDelivery(t *testing.T) {
	srv, adapter := newWSFixture(t)
	require.NoError(t, adapter.Connect(context.Background()))
	assert.Equal(t, StateConnected, adapter.State())

	events := make(chan Event, 4)
	require.NoError(t, adapter.Subscribe(RoomChannel("42"), func(e Event) { events <- e }))

	waitFor(t, func() bool { return len(srv.subscribedChannels()) == 1 })

	srv.push(srv.lastConn(), Frame{
		Event:   EventNewMessage,
		Channel: RoomChannel("42"),
		Data:    json.RawMessage(`{"id":"m1"}`),
	})

	select {
	case evt := <-events:
		assert.Equal(t, EventNewMessage, evt.Name)
		assert.Equal(t, RoomChannel("42"), evt.Channel)
	case <-time.After(3 * time.Second):
		t.Fatal("no event delivered")
	}

	// Bearer token travels on the handshake.
	srv.mu.Lock()
	assert.Equal(t, []string{"Bearer tok-ws"}, srv.auth)
	srv.mu.Unlock()
}

func TestUnknownChannelIgnored(t *testing.T) {
	srv, adapter := newWSFixture(t)
	require.NoError(t, adapter.Connect(context.Background()))

	events := make(chan Event, 1)
	require.NoError(t, adapter.Subscribe(RoomChannel("42"), func(e Event) { events <- e }))
	waitFor(t, func() bool { return len(srv.subscribedChannels()) == 1 })

	srv.push(srv.lastConn(), Frame{Event: EventNewMessage, Channel: RoomChannel("99"), Data: json.RawMessage(`{}`)})
	srv.push(srv.lastConn(), Frame{Event: EventNewMessage, Channel: RoomChannel("42"), Data: json.RawMessage(`{}`)})

	evt := <-events
	assert.Equal(t, RoomChannel("42"), evt.Channel)
	assert.Empty(t, events)
}

func TestReconnectReplaysSubscriptions(t *testing.T) {
	srv, adapter := newWSFixture(t)
	require.NoError(t, adapter.Connect(context.Background()))

	events := make(chan Event, 4)
	require.NoError(t, adapter.Subscribe(RoomChannel("7"), func(e Event) { events <- e }))
	require.NoError(t, adapter.Subscribe(TypingChannel("7"), func(e Event) { events <- e }))
	waitFor(t, func() bool { return len(srv.subscribedChannels()) == 2 })

	// Kill the connection; the adapter must redial and replay both channels.
	srv.lastConn().Close()
	waitFor(t, func() bool { return len(srv.subscribedChannels()) == 4 })
	waitFor(t, func() bool { return adapter.State() == StateConnected })

	channels := srv.subscribedChannels()[2:]
	assert.ElementsMatch(t, []string{RoomChannel("7"), TypingChannel("7")}, channels)

	// Delivery keeps working on the new connection.
	srv.push(srv.lastConn(), Frame{Event: EventNewMessage, Channel: RoomChannel("7"), Data: json.RawMessage(`{}`)})
	select {
	case <-events:
	case <-time.After(3 * time.Second):
		t.Fatal("no event after reconnect")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	srv, adapter := newWSFixture(t)
	require.NoError(t, adapter.Connect(context.Background()))

	events := make(chan Event, 1)
	require.NoError(t, adapter.Subscribe(RoomChannel("1"), func(e Event) { events <- e }))
	waitFor(t, func() bool { return len(srv.subscribedChannels()) == 1 })

	require.NoError(t, adapter.Unsubscribe(RoomChannel("1")))
	srv.push(srv.lastConn(), Frame{Event: EventNewMessage, Channel: RoomChannel("1"), Data: json.RawMessage(`{}`)})

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, events)
}

func TestCloseMovesToDisconnected(t *testing.T) {
	_, adapter := newWSFixture(t)
	require.NoError(t, adapter.Connect(context.Background()))
	require.NoError(t, adapter.Close())
	assert.Equal(t, StateDisconnected, adapter.State())
}

func TestEventDecode(t *testing.T) {
	evt := Event{Name: EventTyping, Data: json.RawMessage(`{"room_id":"42","user_id":"u9"}`)}
	var payload TypingPayload
	require.NoError(t, evt.Decode(&payload))
	assert.Equal(t, "u9", payload.UserID)

	empty := Event{Name: EventTyping}
	assert.Error(t, empty.Decode(&payload))
}
