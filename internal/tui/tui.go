// Package tui implements the interactive portal: a login form, the live
// room list, and the chat screen. Screens share one bubbletea program; the
// realtime adapter feeds events into the update loop through a channel.
package tui

import (
	"go.uber.org/zap"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/noah-isme/studentlink-portal/internal/api"
	"github.com/noah-isme/studentlink-portal/internal/models"
	"github.com/noah-isme/studentlink-portal/internal/session"
	"github.com/noah-isme/studentlink-portal/pkg/config"
	"github.com/noah-isme/studentlink-portal/pkg/metrics"
)

// Deps carries everything the portal screens need.
type Deps struct {
	Config  *config.Config
	Logger  *zap.Logger
	Session *session.Session
	Client  *api.Client
	Metrics *metrics.Metrics

	// InitialRoom, when set, opens straight into that chat room after
	// authentication instead of the room list.
	InitialRoom *models.ChatRoom
}

// Run blocks until the user quits.
func Run(deps Deps) error {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	program := tea.NewProgram(newAppModel(deps), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
