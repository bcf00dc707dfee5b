package stubserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/realtime"
)

// subscriberBuffer bounds each connection's outbound queue. A subscriber that
// cannot keep up loses frames rather than stalling the broadcast.
const subscriberBuffer = 32

type subscriber struct {
	conn *websocket.Conn
	send chan []byte

	mu       sync.Mutex
	channels map[string]struct{}
}

func (s *subscriber) subscribed(channel string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.channels[channel]
	return ok
}

func (s *subscriber) set(channel string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.channels[channel] = struct{}{}
	} else {
		delete(s.channels, channel)
	}
}

// hub fans server events out to websocket subscribers by channel name.
type hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func newHub(logger *zap.Logger) *hub {
	return &hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
	}
}

// serveWS upgrades the request and runs the subscriber until it disconnects.
func (h *hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{
		conn:     conn,
		send:     make(chan []byte, subscriberBuffer),
		channels: make(map[string]struct{}),
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(sub)
	h.readLoop(sub)
}

func (h *hub) readLoop(sub *subscriber) {
	defer h.drop(sub)
	for {
		var frame realtime.Frame
		if err := sub.conn.ReadJSON(&frame); err != nil {
			return
		}
		switch frame.Action {
		case "subscribe":
			sub.set(frame.Channel, true)
		case "unsubscribe":
			sub.set(frame.Channel, false)
		}
	}
}

func (h *hub) writeLoop(sub *subscriber) {
	for data := range sub.send {
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

func (h *hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
	h.mu.Unlock()
	sub.conn.Close()
}

// broadcast delivers an event to every subscriber of the channel. Slow
// subscribers are skipped, not waited on.
func (h *hub) broadcast(channel, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("broadcast payload marshal failed", zap.Error(err))
		return
	}
	frame, err := json.Marshal(realtime.Frame{Event: event, Channel: channel, Data: data})
	if err != nil {
		h.logger.Error("broadcast frame marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		if !sub.subscribed(channel) {
			continue
		}
		select {
		case sub.send <- frame:
		default:
			h.logger.Warn("dropping frame for slow subscriber", zap.String("channel", channel))
		}
	}
}
