package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/noah-isme/studentlink-portal/internal/models"
	appErrors "github.com/noah-isme/studentlink-portal/pkg/errors"
)

type loginModel struct {
	email    textinput.Model
	password textinput.Model
	focused  int
	busy     bool
	errText  string
}

func newLoginModel() loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 120

	return loginModel{email: email, password: password}
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) update(msg tea.Msg, deps Deps) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
			m.focused = (m.focused + 1) % 2
			if m.focused == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.email.Blur()
			}
			return m, nil
		case tea.KeyEnter:
			if m.focused == 0 {
				m.focused = 1
				m.email.Blur()
				m.password.Focus()
				return m, nil
			}
			email := strings.TrimSpace(m.email.Value())
			password := m.password.Value()
			if email == "" || password == "" {
				m.errText = "email and password are required"
				return m, nil
			}
			m.busy = true
			m.errText = ""
			return m, loginCmd(deps, email, password)
		}

	case errMsg:
		m.busy = false
		m.errText = appErrors.Normalize(msg.err).Message
		m.password.SetValue("")
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func loginCmd(deps Deps, email, password string) tea.Cmd {
	return func() tea.Msg {
		resp, err := deps.Client.Login(context.Background(), models.LoginRequest{Email: email, Password: password})
		if err != nil {
			return errMsg{err: err}
		}
		return loginDoneMsg{user: &resp.User}
	}
}

func (m loginModel) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("StudentLink"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.email.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n")
	if m.busy {
		b.WriteString("\n" + statusStyle.Render("signing in..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorBannerStyle.Render(m.errText))
	}
	b.WriteString("\n" + helpStyle.Render("enter: sign in · tab: switch field · ctrl+c: quit"))

	if width > 0 {
		return lipgloss.NewStyle().Width(width).Render(b.String())
	}
	return b.String()
}
