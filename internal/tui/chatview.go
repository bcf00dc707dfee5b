package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/chat"
	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/realtime"
	"github.com/noah-isme/studentlink-portal/internal/store"
)

type chatModel struct {
	deps     Deps
	room     *models.ChatRoom
	timeline *chat.Timeline

	viewport viewport.Model
	input    textinput.Model

	width   int
	height  int
	loading bool
	sending bool
	typing  bool

	lastKeystroke time.Time
}

func newChatModel(deps Deps, room *models.ChatRoom, userID string) chatModel {
	input := textinput.New()
	input.Placeholder = "type a message"
	input.CharLimit = 2000
	input.Focus()

	vp := viewport.New(80, 20)

	return chatModel{
		deps: deps,
		room: room,
		timeline: chat.NewTimeline(room.ID, userID, deps.Client, deps.Logger,
			chat.WithTypingTTL(deps.Config.Chat.TypingTTL)),
		viewport: vp,
		input:    input,
		loading:  true,
	}
}

func (m *chatModel) roomID() string { return m.room.ID }

func (m *chatModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), typingTick(), textinput.Blink)
}

func (m *chatModel) resize(width, height int) {
	m.width, m.height = width, height
	vpHeight := height - 5
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.refresh()
}

func (m *chatModel) loadCmd() tea.Cmd {
	timeline := m.timeline
	deps := m.deps
	page := deps.Config.Chat.HistoryPage
	if page <= 0 {
		page = 50
	}
	return func() tea.Msg {
		if err := timeline.Load(context.Background(), 1, page); err != nil {
			return errMsg{err: err}
		}

		entries := timeline.Entries()
		if cache, err := store.Open(deps.Config.Cache.Path, deps.Logger); err == nil {
			defer cache.Close()
			msgs := make([]models.ChatMessage, len(entries))
			for i, e := range entries {
				msgs[i] = e.ChatMessage
			}
			if err := cache.UpsertMessages(context.Background(), msgs); err != nil {
				deps.Logger.Warn("message cache write failed", zap.Error(err))
			}
		}
		return historyLoadedMsg{roomID: timeline.RoomID()}
	}
}

func typingTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return typingTickMsg{at: t}
	})
}

func (m *chatModel) handleNewMessage(e realtime.Event) tea.Cmd {
	var msg models.ChatMessage
	if err := e.Decode(&msg); err != nil {
		m.deps.Logger.Warn("bad message payload", zap.Error(err))
		return nil
	}

	inserted, foreign := m.timeline.HandleIncoming(msg)
	if !inserted {
		return nil
	}
	m.refresh()
	m.viewport.GotoBottom()
	if !foreign {
		return nil
	}

	// The room is on screen, so a foreign message is read immediately.
	deps := m.deps
	roomID := m.room.ID
	return func() tea.Msg {
		if err := deps.Client.MarkRoomRead(context.Background(), roomID); err != nil {
			deps.Logger.Warn("mark read failed", zap.Error(err))
		}
		return markReadDoneMsg{}
	}
}

func (m *chatModel) handleTyping(e realtime.Event, started bool) {
	var payload realtime.TypingPayload
	if err := e.Decode(&payload); err != nil {
		return
	}
	m.timeline.SetTyping(payload.UserID, payload.Name, started)
}

func (m *chatModel) handleRead(e realtime.Event) {
	var payload realtime.ReadPayload
	if err := e.Decode(&payload); err != nil {
		return
	}
	m.timeline.ApplyRead(chat.ReadUpdate{ReaderID: payload.ReaderID, MessageIDs: payload.MessageIDs})
	m.refresh()
}

func (m *chatModel) setTypingCmd(typing bool) tea.Cmd {
	deps := m.deps
	roomID := m.room.ID
	return func() tea.Msg {
		if err := deps.Client.SetTyping(context.Background(), roomID, typing); err != nil {
			deps.Logger.Debug("typing publish failed", zap.Error(err))
		}
		return nil
	}
}

func (m *chatModel) sendCmd(text string) tea.Cmd {
	timeline := m.timeline
	roomID := m.room.ID
	return func() tea.Msg {
		restore, err := timeline.Send(context.Background(), text)
		return sendDoneMsg{roomID: roomID, restoreText: restore, err: err}
	}
}

// update returns closed=true when the user backs out to the room list.
func (m *chatModel) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.roomID != m.room.ID {
			return nil, false
		}
		m.loading = false
		m.refresh()
		m.viewport.GotoBottom()
		return nil, false

	case sendDoneMsg:
		if msg.roomID != m.room.ID {
			return nil, false
		}
		m.sending = false
		m.input.Focus()
		if msg.err != nil {
			// The failed text goes back into the input, list untouched.
			m.input.SetValue(msg.restoreText)
			m.refresh()
			return func() tea.Msg { return errMsg{err: msg.err} }, false
		}
		m.refresh()
		m.viewport.GotoBottom()
		return nil, false

	case typingTickMsg:
		var cmds []tea.Cmd
		if m.typing && time.Since(m.lastKeystroke) > typingIdle {
			m.typing = false
			cmds = append(cmds, m.setTypingCmd(false))
		}
		m.refresh()
		cmds = append(cmds, typingTick())
		return tea.Batch(cmds...), false

	case markReadDoneMsg:
		return nil, false

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyEsc:
			var cmd tea.Cmd
			if m.typing {
				cmd = m.setTypingCmd(false)
			}
			return cmd, true

		case tea.KeyEnter:
			if m.sending {
				return nil, false
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return nil, false
			}
			m.sending = true
			m.input.SetValue("")
			m.input.Blur()
			m.refresh()
			m.viewport.GotoBottom()

			cmds := []tea.Cmd{m.sendCmd(text)}
			if m.typing {
				m.typing = false
				cmds = append(cmds, m.setTypingCmd(false))
			}
			return tea.Batch(cmds...), false

		case tea.KeyPgUp:
			m.viewport.HalfViewUp()
			return nil, false
		case tea.KeyPgDown:
			m.viewport.HalfViewDown()
			return nil, false
		}

		if m.sending {
			return nil, false
		}
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)

		m.lastKeystroke = time.Now()
		if !m.typing && m.input.Value() != "" {
			m.typing = true
			cmds = append(cmds, m.setTypingCmd(true))
		}
		return tea.Batch(cmds...), false
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd, false
}

// refresh re-renders the transcript into the viewport.
func (m *chatModel) refresh() {
	m.viewport.SetContent(m.renderTranscript())
}

func (m *chatModel) renderTranscript() string {
	entries := m.timeline.Entries()
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for i, e := range entries {
		if e.Type.IsBanner() {
			b.WriteString(bannerStyle.Width(width).Render("· "+e.Message+" ·") + "\n")
			continue
		}

		if chat.ShowAvatar(entries, i) {
			author := e.AuthorName
			if author == "" {
				author = e.AuthorID
			}
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(authorStyle.Render(author) + "\n")
		}

		line := "  " + e.Message
		if e.Pending {
			line = pendingStyle.Render(line + " (sending...)")
		}
		if !e.Pending && m.isOwn(e) {
			line += receiptStyle.Render("  " + receiptGlyph(e.Receipt()))
		}
		b.WriteString(line + "\n")

		if chat.ShowTimestamp(entries, i) {
			b.WriteString(timestampStyle.Render("  "+e.CreatedAt.Local().Format("15:04")) + "\n")
		}
	}
	return b.String()
}

func (m *chatModel) isOwn(e chat.Entry) bool {
	if u := m.deps.Session.User(); u != nil {
		return e.AuthorID == u.ID
	}
	return false
}

func receiptGlyph(state models.ReceiptState) string {
	switch state {
	case models.ReceiptRead:
		return "✓✓"
	case models.ReceiptDelivered:
		return "✓"
	default:
		return "•"
	}
}

func (m *chatModel) view() string {
	title := m.room.RoomName
	if m.room.Concern != nil {
		title = fmt.Sprintf("%s · %s", m.room.RoomName, m.room.Concern.Subject)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")

	if m.loading {
		b.WriteString(statusStyle.Render("loading history...") + "\n")
	}
	b.WriteString(m.viewport.View() + "\n")

	if names := m.timeline.TypingUsers(); len(names) > 0 {
		verb := "is typing"
		if len(names) > 1 {
			verb = "are typing"
		}
		b.WriteString(typingStyle.Render(strings.Join(names, ", ")+" "+verb+"...") + "\n")
	}

	prompt := m.input.View()
	if m.sending {
		prompt = statusStyle.Render("sending...")
	}
	b.WriteString(prompt + "\n")
	b.WriteString(helpStyle.Render("enter: send · esc: back · pgup/pgdn: scroll"))

	return lipgloss.NewStyle().MaxWidth(maxInt(m.width, 1)).Render(b.String())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
