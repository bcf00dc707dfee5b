package tui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/realtime"
	"github.com/noah-isme/studentlink-portal/internal/session"
	"github.com/noah-isme/studentlink-portal/pkg/config"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

func newTestAppModel(t *testing.T) *appModel {
	t.Helper()
	sess := session.New(nil)
	require.NoError(t, sess.SetToken("tok"))
	require.NoError(t, sess.SetUser(&models.User{ID: "me", Name: "Me"}))
	return newAppModel(Deps{
		Config:  &config.Config{},
		Logger:  zap.NewNop(),
		Session: sess,
	})
}

func TestSessionExpiryReturnsToLogin(t *testing.T) {
	m := newTestAppModel(t)
	m.screen = screenChat
	chat := newChatModel(m.deps, &models.ChatRoom{ID: "r1", RoomName: "Concern CON-2025-0100"}, "me")
	m.chat = &chat

	expired := appErrors.New(appErrors.KindAuthentication, "token expired")
	_, cmd := m.Update(errMsg{err: expired})

	assert.Equal(t, screenLogin, m.screen)
	assert.Nil(t, m.chat)
	assert.Contains(t, m.login.errText, "session expired")
	assert.NotNil(t, cmd)
}

func TestNonAuthErrorKeepsScreen(t *testing.T) {
	m := newTestAppModel(t)
	m.screen = screenRooms

	_, _ = m.Update(errMsg{err: appErrors.Wrap(errors.New("dial refused"), appErrors.KindNetwork, "rooms unavailable")})

	assert.Equal(t, screenRooms, m.screen)
	assert.Equal(t, "rooms unavailable", m.errText)
}

func TestLoginErrorStaysOnLoginForm(t *testing.T) {
	m := newTestAppModel(t)
	m.screen = screenLogin

	_, _ = m.Update(errMsg{err: appErrors.New(appErrors.KindAuthentication, "invalid credentials")})

	assert.Equal(t, screenLogin, m.screen)
	assert.Equal(t, "invalid credentials", m.login.errText)
}

func TestQuitUnblocksListener(t *testing.T) {
	m := newTestAppModel(t)

	got := make(chan tea.Msg, 1)
	listen := m.listenCmd()
	go func() { got <- listen() }()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	select {
	case msg := <-got:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("listener still parked after quit")
	}

	// Late transport deliveries after shutdown are dropped, not sent.
	m.push(realtime.Event{Channel: "chat.room.r1"})
	assert.Empty(t, m.events)
}
