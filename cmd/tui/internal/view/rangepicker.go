package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"budgetbook/internal/budget"
)

// Timeframe is a predefined or custom calendar date range.
type Timeframe int

const (
	TimeframeThisWeek Timeframe = iota
	TimeframeLastWeek
	TimeframeThisMonth
	TimeframeLastMonth
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeLastWeek:
		return "Last Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

func timeframeToRange(tf Timeframe) (budget.Date, budget.Date) {
	now := time.Now()
	today := budget.Today()

	switch tf {
	case TimeframeThisWeek:
		// ISO week starts Monday.
		offset := int(now.Weekday())
		if offset == 0 {
			offset = 7
		}

		return budget.Date{Time: today.AddDate(0, 0, -offset+1)}, today
	case TimeframeLastWeek:
		offset := int(now.Weekday())
		if offset == 0 {
			offset = 7
		}

		end := budget.Date{Time: today.AddDate(0, 0, -offset)}

		return budget.Date{Time: end.AddDate(0, 0, -6)}, end
	case TimeframeThisMonth:
		return budget.Date{Time: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)}, today
	case TimeframeLastMonth:
		last := now.AddDate(0, -1, 0)
		start := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)

		return budget.Date{Time: start}, budget.Date{Time: start.AddDate(0, 1, -1)}
	}

	return budget.Date{}, budget.Date{}
}

// RangeSelectedMsg is emitted when the user picked a date range. Both dates
// are zero when All is true.
type RangeSelectedMsg struct {
	Start budget.Date
	End   budget.Date
	All   bool
}

type rangeState int

const (
	rangeStateSelect rangeState = iota
	rangeStateCustom
)

// RangePicker is a reusable component for selecting a calendar date range.
type RangePicker struct {
	state    rangeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewRangePicker() RangePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return RangePicker{
		startInput: si,
		endInput:   ei,
	}
}

func (m RangePicker) Init() tea.Cmd {
	return nil
}

func (m RangePicker) Update(msg tea.Msg) (RangePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case rangeStateSelect:
			return m.updateSelect(keyMsg)
		case rangeStateCustom:
			return m.updateCustom(keyMsg)
		}
	}

	if m.state == rangeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m RangePicker) updateSelect(msg tea.KeyMsg) (RangePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisWeek {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = rangeStateCustom
			m.startInput.Focus()
			m.focusIndex = 0

			return m, textinput.Blink
		}

		if m.selected == TimeframeAll {
			return m, func() tea.Msg {
				return RangeSelectedMsg{All: true}
			}
		}

		start, end := timeframeToRange(m.selected)

		return m, func() tea.Msg {
			return RangeSelectedMsg{Start: start, End: end}
		}
	}

	return m, nil
}

func (m RangePicker) updateCustom(msg tea.KeyMsg) (RangePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		start, err := budget.ParseDate(m.startInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid start date (YYYY-MM-DD)")
			return m, nil
		}

		end, err := budget.ParseDate(m.endInput.Value())
		if err != nil {
			m.err = fmt.Errorf("invalid end date (YYYY-MM-DD)")
			return m, nil
		}

		m.err = nil

		return m, func() tea.Msg {
			return RangeSelectedMsg{Start: start, End: end}
		}

	case "esc":
		m.state = rangeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

func (m RangePicker) updateInputs(msg tea.Msg) (RangePicker, tea.Cmd) {
	var cmds []tea.Cmd

	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m RangePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == rangeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range:\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Select Timeframe:\n\n"

	for i := TimeframeThisWeek; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, i.String())
	}

	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting reports whether the picker is on the preset list (not the
// custom inputs).
func (m RangePicker) IsSelecting() bool {
	return m.state == rangeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *RangePicker) Reset() {
	m.state = rangeStateSelect
	m.selected = TimeframeThisWeek
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
