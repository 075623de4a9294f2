package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"budgetbook/cmd/tui/internal/view"
	"budgetbook/internal/api"
	"budgetbook/internal/config"
	"budgetbook/internal/export"
	"budgetbook/internal/session"
)

type model struct {
	client        *api.Client
	exportService *export.Service

	currentView View

	loginView     view.LoginModel
	dashboardView view.DashboardModel
	importView    view.ImportModel
	exportView    view.ExportModel
}

type View int

const (
	ViewLogin     View = 0
	ViewMenu      View = 1
	ViewDashboard View = 2
	ViewImport    View = 3
	ViewExport    View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tokenPath := cfg.Session.TokenPath
	if tokenPath == "" {
		tokenPath, err = session.DefaultPath()
		if err != nil {
			slog.Error("failed to resolve token path", "error", err)
			os.Exit(1)
		}
	}

	store, err := session.NewFileStore(tokenPath)
	if err != nil {
		slog.Error("failed to open session store", "error", err)
		os.Exit(1)
	}

	client := api.New(cfg.API.URL, cfg.API.Timeout, store)
	expSvc := export.NewService(client)

	current := ViewLogin
	if client.HasSession() {
		current = ViewMenu
	}

	return model{
		client:        client,
		exportService: expSvc,
		currentView:   current,
		loginView:     view.NewLoginModel(client),
		dashboardView: view.NewDashboardModel(client),
		importView:    view.NewImportModel(client),
		exportView:    view.NewExportModel(expSvc),
	}
}

func (m model) Init() tea.Cmd {
	if m.currentView == ViewLogin {
		return m.loginView.Init()
	}

	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewDashboard
				m.dashboardView = view.NewDashboardModel(m.client)

				return m, m.dashboardView.Init()
			case "2":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.client)

				return m, m.importView.Init()
			case "3":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.LoggedInMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.LoggedOutMsg, view.SessionExpiredMsg:
		m.currentView = ViewLogin
		m.loginView = view.NewLoginModel(m.client)

		return m, m.loginView.Init()
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewDashboard:
		var newModel tea.Model
		newModel, cmd = m.dashboardView.Update(msg)
		m.dashboardView = newModel.(view.DashboardModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Budgetbook\n\n" +
				"1. Transactions\n" +
				"2. Import Transactions\n" +
				"3. Export Transactions\n\n" +
				"q. Quit",
		)
	case ViewDashboard:
		return m.dashboardView.View()
	case ViewImport:
		return m.importView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
