package tui

import (
	"time"

	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/realtime"
)

// Messages flowing through the bubbletea update loop.

type loginDoneMsg struct {
	user *models.User
}

type roomsLoadedMsg struct {
	rooms []models.ChatRoom
}

type cachedRoomsMsg struct {
	rooms []models.ChatRoom
}

type historyLoadedMsg struct {
	roomID string
}

type roomOpenedMsg struct {
	room *models.ChatRoom
}

type sendDoneMsg struct {
	roomID      string
	restoreText string
	err         error
}

type realtimeEventMsg struct {
	event realtime.Event
}

type realtimeStateMsg struct {
	state realtime.ConnState
}

type typingTickMsg struct {
	at time.Time
}

type markReadDoneMsg struct{}

type errMsg struct {
	err error
}
