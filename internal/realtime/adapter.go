// Package realtime wraps the portal's WebSocket stream. One logical channel
// exists per chat room plus a typing stream per room and a department-scoped
// room-creation broadcast. Delivery is at-least-once and unordered relative
// to REST-fetched history; consumers reconcile by timestamp.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/pkg/metrics"
)

// ConnState reports transport connectivity.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// Handler consumes events for one channel. Handlers run on the read loop
// goroutine and must not block.
type Handler func(Event)

// Config tunes the adapter.
type Config struct {
	URL              string
	Token            string
	ReconnectMin     time.Duration
	ReconnectMax     time.Duration
	HandshakeTimeout time.Duration
}

// Adapter maintains the connection and the live subscription registry. On
// reconnect it replays subscribe frames for every registered channel; it
// holds no replay log of missed events, so consumers re-sync over REST.
type Adapter struct {
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	conn     *websocket.Conn
	handlers map[string]Handler
	state    ConnState

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

// New builds an adapter; Connect starts the transport.
func New(cfg Config, logger *zap.Logger, m *metrics.Metrics) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = time.Second
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = 30 * time.Second
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	return &Adapter{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		handlers: make(map[string]Handler),
		state:    StateDisconnected,
		done:     make(chan struct{}),
	}
}

// Connect dials the stream and starts the read loop. The loop reconnects
// with bounded exponential backoff until Close or ctx cancellation.
func (a *Adapter) Connect(ctx context.Context) error {
	a.setState(StateConnecting)
	conn, err := a.dial(ctx)
	if err != nil {
		a.setState(StateDisconnected)
		return err
	}
	a.setConn(conn)
	a.setState(StateConnected)
	a.resubscribeAll()

	go a.readLoop(ctx)
	return nil
}

// State returns the current connection state.
func (a *Adapter) State() ConnState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Subscribe registers a handler for a channel and announces the
// subscription to the server. Re-subscribing a channel replaces its handler.
func (a *Adapter) Subscribe(channel string, handler Handler) error {
	a.mu.Lock()
	a.handlers[channel] = handler
	connected := a.state == StateConnected
	a.mu.Unlock()

	if connected {
		return a.writeFrame(Frame{Action: "subscribe", Channel: channel})
	}
	return nil
}

// Unsubscribe removes the handler and tells the server to stop delivery.
func (a *Adapter) Unsubscribe(channel string) error {
	a.mu.Lock()
	_, known := a.handlers[channel]
	delete(a.handlers, channel)
	connected := a.state == StateConnected
	a.mu.Unlock()

	if known && connected {
		return a.writeFrame(Frame{Action: "unsubscribe", Channel: channel})
	}
	return nil
}

// Close tears the connection down permanently.
func (a *Adapter) Close() error {
	a.once.Do(func() { close(a.done) })
	a.mu.Lock()
	conn := a.conn
	a.conn = nil
	a.state = StateDisconnected
	a.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (a *Adapter) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: a.cfg.HandshakeTimeout}
	header := map[string][]string{}
	if a.cfg.Token != "" {
		header["Authorization"] = []string{"Bearer " + a.cfg.Token}
	}
	conn, _, err := dialer.DialContext(ctx, a.cfg.URL, header)
	return conn, err
}

func (a *Adapter) readLoop(ctx context.Context) {
	for {
		conn := a.currentConn()
		if conn == nil {
			return
		}

		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			select {
			case <-a.done:
				return
			case <-ctx.Done():
				return
			default:
			}
			a.logger.Warn("realtime read failed, reconnecting", zap.Error(err))
			if !a.reconnect(ctx) {
				return
			}
			continue
		}

		a.dispatch(frame)
	}
}

func (a *Adapter) dispatch(frame Frame) {
	a.mu.RLock()
	handler := a.handlers[frame.Channel]
	a.mu.RUnlock()
	if handler == nil {
		return
	}
	a.metrics.ObserveRealtimeEvent(frame.Event)
	handler(Event{Channel: frame.Channel, Name: frame.Event, Data: frame.Data})
}

// reconnect redials with backoff and replays subscribe frames for all
// registered channels. Returns false when the adapter is shutting down.
func (a *Adapter) reconnect(ctx context.Context) bool {
	a.setState(StateConnecting)

	backoff := a.cfg.ReconnectMin
	for {
		select {
		case <-a.done:
			return false
		case <-ctx.Done():
			a.setState(StateDisconnected)
			return false
		case <-time.After(backoff):
		}

		a.metrics.ObserveReconnect()
		conn, err := a.dial(ctx)
		if err != nil {
			a.logger.Warn("realtime redial failed", zap.Error(err), zap.Duration("backoff", backoff))
			backoff *= 2
			if backoff > a.cfg.ReconnectMax {
				backoff = a.cfg.ReconnectMax
			}
			continue
		}

		a.setConn(conn)
		a.setState(StateConnected)
		a.resubscribeAll()
		a.logger.Info("realtime reconnected")
		return true
	}
}

func (a *Adapter) resubscribeAll() {
	a.mu.RLock()
	channels := make([]string, 0, len(a.handlers))
	for channel := range a.handlers {
		channels = append(channels, channel)
	}
	a.mu.RUnlock()

	for _, channel := range channels {
		if err := a.writeFrame(Frame{Action: "subscribe", Channel: channel}); err != nil {
			a.logger.Warn("resubscribe failed", zap.String("channel", channel), zap.Error(err))
		}
	}
}

func (a *Adapter) writeFrame(frame Frame) error {
	conn := a.currentConn()
	if conn == nil {
		return nil
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (a *Adapter) currentConn() *websocket.Conn {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.conn
}

func (a *Adapter) setConn(conn *websocket.Conn) {
	a.mu.Lock()
	a.conn = conn
	a.mu.Unlock()
}

func (a *Adapter) setState(state ConnState) {
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
}
