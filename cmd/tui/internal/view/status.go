package view

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"budgetbook/internal/api"
)

// clearStatusMsg clears a transient status line. The seq ties the message to
// the status it was scheduled for, so a newer message is not wiped out by an
// older timer.
type clearStatusMsg struct {
	seq int
}

func clearStatusTick(seq int) tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func apiMessage(err error) string {
	return api.Message(err)
}
