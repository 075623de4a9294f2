package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type loginState int

const (
	loginStateLogin loginState = iota
	loginStateRegister
)

// loginFields is the state the huh inputs write into. It sits behind a
// pointer on the model so the field bindings stay valid across the by-value
// model copies bubbletea makes on every update.
type loginFields struct {
	username string
	email    string
	password string
	confirm  string
}

// LoginModel is the auth gate shown whenever no valid session exists.
type LoginModel struct {
	CommonModel
	api API

	state  loginState
	form   *huh.Form
	fields *loginFields

	busy      bool
	status    string
	statusOK  bool
	statusSeq int
}

func NewLoginModel(client API) LoginModel {
	m := LoginModel{api: client, fields: &loginFields{}}
	m.form = m.buildLoginForm()

	return m
}

func (m LoginModel) Title() string { return "Login" }

func (m LoginModel) ShortHelp() string {
	if m.state == loginStateRegister {
		return "Enter: submit | ctrl+l: back to login | ctrl+c: quit"
	}

	return "Enter: submit | ctrl+r: register | ctrl+c: quit"
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(msg.message, false)
			m.form = m.buildLoginForm()

			return m, tea.Batch(m.form.Init(), clearStatusTick(m.statusSeq))
		}

		return m, func() tea.Msg { return LoggedInMsg{} }

	case registerResultMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(msg.message, false)
			m.form = m.buildRegisterForm()

			return m, tea.Batch(m.form.Init(), clearStatusTick(m.statusSeq))
		}

		// Registered; have the user log in with the new account.
		m.state = loginStateLogin
		m.setStatus("Account created, please log in.", true)
		m.fields.password = ""
		m.fields.confirm = ""
		m.form = m.buildLoginForm()

		return m, tea.Batch(m.form.Init(), clearStatusTick(m.statusSeq))

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}

		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+r":
			if m.state == loginStateLogin {
				m.state = loginStateRegister
				m.status = ""
				m.fields.password = ""
				m.fields.confirm = ""
				m.form = m.buildRegisterForm()

				return m, m.form.Init()
			}
		case "ctrl+l":
			if m.state == loginStateRegister {
				m.state = loginStateLogin
				m.status = ""
				m.fields.password = ""
				m.form = m.buildLoginForm()

				return m, m.form.Init()
			}
		}
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true

	if m.state == loginStateRegister {
		return m, m.registerCmd()
	}

	return m, m.loginCmd()
}

func (m LoginModel) View() string {
	title := "Budget Tracker — Login"
	hint := "ctrl+r to create an account"

	if m.state == loginStateRegister {
		title = "Budget Tracker — Register"
		hint = "ctrl+l to go back to login"
	}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"

	if m.busy {
		content += "Working...\n"
	} else {
		content += m.form.View()
	}

	if m.status != "" {
		style := errorStyle
		if m.statusOK {
			style = successStyle
		}

		content += "\n" + style.Render(m.status)
	}

	content += "\n\n" + faintStyle.Render(hint)

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// setStatus replaces any pending status message.
func (m *LoginModel) setStatus(s string, ok bool) {
	m.status = s
	m.statusOK = ok
	m.statusSeq++
}

func (m *LoginModel) buildLoginForm() *huh.Form {
	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&f.username).
				Validate(notEmpty("username")),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(notEmpty("password")),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (m *LoginModel) buildRegisterForm() *huh.Form {
	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("username").
				Title("Username").
				Value(&f.username).
				Validate(notEmpty("username")),

			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&f.email).
				Validate(notEmpty("email")),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(notEmpty("password")),

			huh.NewInput().
				Key("confirm").
				Title("Confirm Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.confirm).
				Validate(func(s string) error {
					if s != f.password {
						return fmt.Errorf("passwords do not match")
					}
					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}

		return nil
	}
}

// Messages

type loginResultMsg struct {
	err     error
	message string
}

func (m LoginModel) loginCmd() tea.Cmd {
	username, password := m.fields.username, m.fields.password
	client := m.api

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		if err := client.Login(ctx, username, password); err != nil {
			return loginResultMsg{err: err, message: apiMessage(err)}
		}

		return loginResultMsg{}
	}
}

type registerResultMsg struct {
	err     error
	message string
}

func (m LoginModel) registerCmd() tea.Cmd {
	username, email, password := m.fields.username, m.fields.email, m.fields.password
	client := m.api

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		if err := client.Register(ctx, username, email, password); err != nil {
			return registerResultMsg{err: err, message: apiMessage(err)}
		}

		return registerResultMsg{}
	}
}
