package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/chat"
	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/realtime"
	"github.com/noah-isme/studentlink-portal/internal/store"
)

type roomsModel struct {
	deps Deps
	list *chat.RoomList

	filter    textinput.Model
	filtering bool
	cursor    int
	width     int
	height    int
	loading   bool
}

func newRoomsModel(deps Deps) roomsModel {
	filter := textinput.New()
	filter.Placeholder = "filter rooms"
	filter.CharLimit = 80

	return roomsModel{
		deps:    deps,
		list:    chat.NewRoomList(deps.Client, deps.Logger),
		filter:  filter,
		loading: true,
	}
}

func (m *roomsModel) resize(width, height int) {
	m.width, m.height = width, height
}

// loadCachedCmd paints the last known room snapshot while the fetch runs.
func (m roomsModel) loadCachedCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		cache, err := store.Open(deps.Config.Cache.Path, deps.Logger)
		if err != nil {
			return nil
		}
		defer cache.Close()
		rooms, err := cache.ListRooms(context.Background())
		if err != nil || len(rooms) == 0 {
			return nil
		}
		return cachedRoomsMsg{rooms: rooms}
	}
}

func (m roomsModel) loadCmd() tea.Cmd {
	list := m.list
	deps := m.deps
	return func() tea.Msg {
		if err := list.Load(context.Background()); err != nil {
			return errMsg{err: err}
		}
		rooms := list.Rooms()
		if cache, err := store.Open(deps.Config.Cache.Path, deps.Logger); err == nil {
			defer cache.Close()
			if err := cache.UpsertRooms(context.Background(), rooms); err != nil {
				deps.Logger.Warn("room cache write failed", zap.Error(err))
			}
		}
		return roomsLoadedMsg{rooms: rooms}
	}
}

func (m roomsModel) handleRoomCreated(e realtime.Event) tea.Cmd {
	var room models.ChatRoom
	if err := e.Decode(&room); err != nil {
		m.deps.Logger.Warn("bad room payload", zap.Error(err))
		return nil
	}
	m.list.HandleRoomCreated(room)
	return nil
}

func (m roomsModel) visibleRooms() []models.ChatRoom {
	return m.list.Filter(m.filter.Value())
}

func (m roomsModel) update(msg tea.Msg) (roomsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case cachedRoomsMsg:
		// Cached rooms only seed an empty list; a completed fetch wins.
		if !m.list.Loaded() && m.list.Len() == 0 {
			for i := len(msg.rooms) - 1; i >= 0; i-- {
				m.list.HandleRoomCreated(msg.rooms[i])
			}
		}
		return m, nil

	case roomsLoadedMsg:
		m.loading = false
		if m.cursor >= len(msg.rooms) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			switch msg.Type {
			case tea.KeyEsc:
				m.filtering = false
				m.filter.Blur()
				m.filter.SetValue("")
				return m, nil
			case tea.KeyEnter:
				m.filtering = false
				m.filter.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(msg)
			m.cursor = 0
			return m, cmd
		}

		switch msg.String() {
		case "/":
			m.filtering = true
			m.filter.Focus()
			return m, textinput.Blink
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.visibleRooms())-1 {
				m.cursor++
			}
			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "enter":
			rooms := m.visibleRooms()
			if m.cursor < len(rooms) {
				room := rooms[m.cursor]
				return m, func() tea.Msg { return roomOpenedMsg{room: &room} }
			}
			return m, nil
		case "q":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m roomsModel) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Conversations"))
	b.WriteString("\n")

	if m.filtering || m.filter.Value() != "" {
		b.WriteString("  " + m.filter.View() + "\n")
	}

	rooms := m.visibleRooms()
	switch {
	case m.loading && len(rooms) == 0:
		b.WriteString("\n" + statusStyle.Render("loading rooms..."))
	case len(rooms) == 0:
		b.WriteString("\n" + statusStyle.Render("no rooms"))
	}

	for i, room := range rooms {
		line := room.RoomName
		if room.Concern != nil {
			line = fmt.Sprintf("%s · %s", room.RoomName, room.Concern.Subject)
		}
		if room.LatestMessage != nil {
			preview := room.LatestMessage.Message
			if len(preview) > 40 {
				preview = preview[:40] + "…"
			}
			line += timestampStyle.Render("  " + preview)
		}
		if room.UnreadCount > 0 {
			line += unreadBadgeStyle.Render(fmt.Sprintf("  (%d)", room.UnreadCount))
		}

		prefix := "  "
		if i == m.cursor {
			prefix = "> "
			line = selectedRowStyle.Render(line)
		}
		b.WriteString("\n" + prefix + line)
	}

	b.WriteString("\n\n" + helpStyle.Render("enter: open · /: filter · r: reload · q: quit"))
	return b.String()
}
