package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/realtime"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

type screen int

const (
	screenLogin screen = iota
	screenRooms
	screenChat
)

// eventBuffer bounds the transport-to-update-loop queue.
const eventBuffer = 64

type adapterReadyMsg struct {
	adapter *realtime.Adapter
}

type appModel struct {
	deps Deps

	screen screen
	width  int
	height int

	login loginModel
	rooms roomsModel
	chat  *chatModel

	adapter   *realtime.Adapter
	events    chan realtime.Event
	quit      chan struct{}
	quitOnce  sync.Once
	connState realtime.ConnState

	userID  string
	errText string
}

func newAppModel(deps Deps) *appModel {
	m := &appModel{
		deps:      deps,
		login:     newLoginModel(),
		rooms:     newRoomsModel(deps),
		events:    make(chan realtime.Event, eventBuffer),
		quit:      make(chan struct{}),
		connState: realtime.StateDisconnected,
	}
	if u := deps.Session.User(); u != nil {
		m.userID = u.ID
	}
	return m
}

func (m *appModel) Init() tea.Cmd {
	if !m.deps.Session.Authenticated() {
		m.screen = screenLogin
		return m.login.Init()
	}
	return m.afterAuth()
}

// afterAuth kicks off everything that needs a token: the room list load, the
// cached snapshot, and the realtime connection.
func (m *appModel) afterAuth() tea.Cmd {
	cmds := []tea.Cmd{
		m.rooms.loadCachedCmd(),
		m.rooms.loadCmd(),
		m.connectRealtimeCmd(),
	}
	if m.deps.InitialRoom != nil {
		m.screen = screenChat
		chat := newChatModel(m.deps, m.deps.InitialRoom, m.userID)
		m.chat = &chat
		cmds = append(cmds, m.chat.Init())
	} else {
		m.screen = screenRooms
	}
	return tea.Batch(cmds...)
}

// toLogin tears down the authenticated screens and shows the login form with
// a notice. The realtime connection carries the old token, so it goes too.
func (m *appModel) toLogin(notice string) tea.Cmd {
	if m.chat != nil {
		m.unsubscribeChatStreams(m.chat.roomID())
		m.chat = nil
	}
	if m.adapter != nil {
		m.adapter.Close()
		m.adapter = nil
	}
	m.connState = realtime.StateDisconnected
	m.errText = ""
	m.login = newLoginModel()
	m.login.errText = notice
	m.screen = screenLogin
	return m.login.Init()
}

func (m *appModel) connectRealtimeCmd() tea.Cmd {
	cfg := m.deps.Config.Realtime
	token := m.deps.Session.Token()
	logger := m.deps.Logger
	metrics := m.deps.Metrics

	return func() tea.Msg {
		adapter := realtime.New(realtime.Config{
			URL:              cfg.URL,
			Token:            token,
			ReconnectMin:     cfg.ReconnectMin,
			ReconnectMax:     cfg.ReconnectMax,
			HandshakeTimeout: cfg.HandshakeTimeout,
		}, logger, metrics)
		if err := adapter.Connect(context.Background()); err != nil {
			logger.Warn("realtime connect failed, continuing without live updates", zap.Error(err))
			return realtimeStateMsg{state: realtime.StateDisconnected}
		}
		return adapterReadyMsg{adapter: adapter}
	}
}

// listenCmd pulls the next transport event into the update loop. The quit
// channel unblocks the final listener when the program shuts down.
func (m *appModel) listenCmd() tea.Cmd {
	events, quit := m.events, m.quit
	return func() tea.Msg {
		select {
		case e := <-events:
			return realtimeEventMsg{event: e}
		case <-quit:
			return nil
		}
	}
}

// push forwards an event from the read-loop goroutine without blocking it.
// Events arriving after shutdown are dropped.
func (m *appModel) push(e realtime.Event) {
	select {
	case <-m.quit:
		return
	default:
	}
	select {
	case m.events <- e:
	default:
		m.deps.Logger.Warn("dropping realtime event, update loop behind",
			zap.String("channel", e.Channel))
	}
}

// shutdown releases the transport and any parked listener.
func (m *appModel) shutdown() {
	if m.adapter != nil {
		m.adapter.Close()
		m.adapter = nil
	}
	m.quitOnce.Do(func() { close(m.quit) })
}

func (m *appModel) subscribeRoomStream() {
	if m.adapter == nil {
		return
	}
	departmentID := "general"
	if u := m.deps.Session.User(); u != nil && u.DepartmentID != nil {
		departmentID = *u.DepartmentID
	}
	if err := m.adapter.Subscribe(realtime.DepartmentRoomsChannel(departmentID), m.push); err != nil {
		m.deps.Logger.Warn("room stream subscribe failed", zap.Error(err))
	}
}

func (m *appModel) subscribeChatStreams(roomID string) {
	if m.adapter == nil {
		return
	}
	if err := m.adapter.Subscribe(realtime.RoomChannel(roomID), m.push); err != nil {
		m.deps.Logger.Warn("room channel subscribe failed", zap.Error(err))
	}
	if err := m.adapter.Subscribe(realtime.TypingChannel(roomID), m.push); err != nil {
		m.deps.Logger.Warn("typing channel subscribe failed", zap.Error(err))
	}
}

func (m *appModel) unsubscribeChatStreams(roomID string) {
	if m.adapter == nil {
		return
	}
	m.adapter.Unsubscribe(realtime.RoomChannel(roomID))
	m.adapter.Unsubscribe(realtime.TypingChannel(roomID))
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.rooms.resize(msg.Width, msg.Height)
		if m.chat != nil {
			m.chat.resize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.shutdown()
			return m, tea.Quit
		}

	case adapterReadyMsg:
		m.adapter = msg.adapter
		m.connState = realtime.StateConnected
		m.subscribeRoomStream()
		if m.chat != nil {
			m.subscribeChatStreams(m.chat.roomID())
		}
		return m, m.listenCmd()

	case realtimeStateMsg:
		m.connState = msg.state
		return m, nil

	case realtimeEventMsg:
		cmd := m.routeEvent(msg.event)
		return m, tea.Batch(cmd, m.listenCmd())

	case loginDoneMsg:
		m.userID = msg.user.ID
		m.errText = ""
		m.rooms = newRoomsModel(m.deps)
		m.rooms.resize(m.width, m.height)
		return m, m.afterAuth()

	case roomOpenedMsg:
		if m.chat != nil {
			m.unsubscribeChatStreams(m.chat.roomID())
		}
		chat := newChatModel(m.deps, msg.room, m.userID)
		m.chat = &chat
		m.chat.resize(m.width, m.height)
		m.screen = screenChat
		m.subscribeChatStreams(msg.room.ID)
		return m, m.chat.Init()

	case errMsg:
		if m.screen == screenLogin {
			login, cmd := m.login.update(msg, m.deps)
			m.login = login
			return m, cmd
		}
		// A 401 already cleared the session in the client layer; drop the
		// user back to the login form instead of stranding a dead screen.
		if appErrors.IsKind(msg.err, appErrors.KindAuthentication) {
			return m, m.toLogin("session expired, please sign in again")
		}
		m.errText = appErrors.Normalize(msg.err).Message
		return m, nil
	}

	switch m.screen {
	case screenLogin:
		login, cmd := m.login.update(msg, m.deps)
		m.login = login
		return m, cmd
	case screenRooms:
		rooms, cmd := m.rooms.update(msg)
		m.rooms = rooms
		return m, cmd
	case screenChat:
		if m.chat == nil {
			m.screen = screenRooms
			return m, nil
		}
		cmd, closed := m.chat.update(msg)
		if closed {
			m.unsubscribeChatStreams(m.chat.roomID())
			m.chat = nil
			m.screen = screenRooms
			return m, m.rooms.loadCmd()
		}
		return m, cmd
	}
	return m, nil
}

// routeEvent dispatches a transport event to the screen that owns it. Events
// for rooms that are not open are dropped; history re-sync on open covers
// them.
func (m *appModel) routeEvent(e realtime.Event) tea.Cmd {
	switch e.Name {
	case realtime.EventRoomCreated:
		return m.rooms.handleRoomCreated(e)
	case realtime.EventNewMessage:
		if m.chat != nil {
			return m.chat.handleNewMessage(e)
		}
	case realtime.EventTyping, realtime.EventStoppedTyping:
		if m.chat != nil {
			m.chat.handleTyping(e, e.Name == realtime.EventTyping)
		}
	case realtime.EventMessageRead:
		if m.chat != nil {
			m.chat.handleRead(e)
		}
	}
	return nil
}

func (m *appModel) View() string {
	var body string
	switch m.screen {
	case screenLogin:
		body = m.login.view(m.width)
	case screenRooms:
		body = m.rooms.view()
	case screenChat:
		if m.chat != nil {
			body = m.chat.view()
		}
	}

	status := ""
	if m.connState != realtime.StateConnected && m.screen != screenLogin {
		status = statusStyle.Render("offline: live updates unavailable")
	}
	if m.errText != "" {
		status = errorBannerStyle.Render(m.errText)
	}
	if status == "" {
		return body
	}
	return body + "\n" + status
}

// typingIdle is how long after the last keystroke the client reports
// stopped_typing.
const typingIdle = 3 * time.Second
