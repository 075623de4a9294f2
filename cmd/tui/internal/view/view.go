package view

import (
	tea "github.com/charmbracelet/bubbletea"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views.
type CommonModel struct{}

// BackMsg returns the user to the main menu.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// LoggedInMsg is emitted when a login succeeds and a session is stored.
type LoggedInMsg struct{}

// LoggedOutMsg is emitted when the user logs out.
type LoggedOutMsg struct{}

// SessionExpiredMsg is emitted when a protected call came back 401; the root
// model falls back to the login view.
type SessionExpiredMsg struct{}
