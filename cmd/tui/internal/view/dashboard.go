package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"budgetbook/internal/api"
	"budgetbook/internal/budget"
	"budgetbook/internal/pager"
)

type dashState int

const (
	dashStateBrowse dashState = iota
	dashStateForm
	dashStateConfirmDelete
	dashStateRange
)

// typeFilters is the cycle order for the type filter.
var typeFilters = []string{api.TypeAll, string(budget.TypeIncome), string(budget.TypeExpense)}

// DashboardModel is the main screen: summary panel, paginated transaction
// table, filters, and the add/edit form. All list and summary state is owned
// by the server; this model only mirrors the last responses.
type DashboardModel struct {
	CommonModel
	api API

	state dashState
	table table.Model
	txs   []budget.Transaction
	sum   budget.Summary

	pages          pager.State
	typeFilterIdx  int
	categoryIdx    int // 0 = all, then Categories() order
	startDate      budget.Date
	endDate        budget.Date
	rangePicker    RangePicker
	rangeFrameName string

	// formState lives behind a pointer so the huh field bindings keep
	// pointing at live state across the model copies bubbletea makes.
	formState *FormState
	form      *huh.Form

	confirmForm *huh.Form
	deleteID    int64

	// listSeq orders list fetches; responses carrying an older seq are
	// stale and dropped.
	listSeq int

	loading   bool
	status    string
	statusOK  bool
	statusSeq int
}

func NewDashboardModel(client API) DashboardModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Name", Width: 20},
		{Title: "Description", Width: 26},
		{Title: "Category", Width: 14},
		{Title: "Amount", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(api.DefaultPageSize),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return DashboardModel{
		api:            client,
		table:          t,
		pages:          pager.New(api.DefaultPageSize),
		rangePicker:    NewRangePicker(),
		rangeFrameName: "All Time",
		formState:      NewFormState(),
		loading:        true,
		listSeq:        1,
	}
}

func (m DashboardModel) Title() string { return "Dashboard" }

func (m DashboardModel) ShortHelp() string {
	switch m.state {
	case dashStateForm:
		return "Navigate form | Esc: cancel"
	case dashStateConfirmDelete:
		return "Confirm deletion"
	case dashStateRange:
		return "Enter: select | Esc: cancel"
	}

	return "n: new | e: edit | d: delete | f/c/t: filters | ←/→: page | r: refresh | ctrl+l: logout | esc: back"
}

func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadListCmd(m.listSeq), m.loadSummaryCmd(m.listSeq))
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case listLoadedMsg:
		return m.onListLoaded(msg)

	case summaryLoadedMsg:
		if msg.seq != m.listSeq {
			// A response from before the latest mutation; the totals it
			// carries are stale.
			return m, nil
		}

		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return m, m.sessionExpiredCmd()
			}

			m.setStatus(apiMessage(msg.err), false)

			return m, clearStatusTick(m.statusSeq)
		}

		// Replaced wholesale; never mutated locally.
		m.sum = msg.summary

		return m, nil

	case savedMsg:
		return m.onSaved(msg)

	case deletedMsg:
		return m.onDeleted(msg)

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}

		return m, nil

	case RangeSelectedMsg:
		m.startDate = msg.Start
		m.endDate = msg.End
		m.rangeFrameName = "Custom"
		if msg.All {
			m.rangeFrameName = "All Time"
		}

		m.state = dashStateBrowse
		m.table.Focus()
		m.pages.Page = 1
		cmd := m.refresh()

		return m, cmd

	case tea.WindowSizeMsg:
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}

		if height > api.DefaultPageSize {
			height = api.DefaultPageSize
		}

		m.table.SetHeight(height)

		return m, nil
	}

	switch m.state {
	case dashStateBrowse:
		return m.updateBrowse(msg)
	case dashStateForm:
		return m.updateForm(msg)
	case dashStateConfirmDelete:
		return m.updateConfirmDelete(msg)
	case dashStateRange:
		return m.updateRange(msg)
	}

	return m, nil
}

func (m DashboardModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back

	case "ctrl+l":
		return m, m.logoutCmd()

	case "r":
		cmd := m.refresh()
		return m, cmd

	case "n":
		m.formState.BeginCreate()
		return m.openForm()

	case "e":
		tx, ok := m.selectedTx()
		if !ok {
			return m, nil
		}

		m.formState.BeginEdit(tx)

		return m.openForm()

	case "d":
		tx, ok := m.selectedTx()
		if !ok {
			return m, nil
		}

		m.deleteID = tx.ID
		m.confirmForm = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Key("confirm").
					Title(fmt.Sprintf("Delete %q?", tx.Name)).
					Affirmative("Delete").
					Negative("Keep"),
			),
		).WithShowHelp(false)
		m.state = dashStateConfirmDelete
		m.table.Blur()

		return m, m.confirmForm.Init()

	case "f":
		m.typeFilterIdx = (m.typeFilterIdx + 1) % len(typeFilters)
		m.pages.Page = 1
		cmd := m.refresh()

		return m, cmd

	case "c":
		m.categoryIdx = (m.categoryIdx + 1) % (len(budget.Categories()) + 1)
		m.pages.Page = 1
		cmd := m.refresh()

		return m, cmd

	case "t":
		m.rangePicker.Reset()
		m.state = dashStateRange
		m.table.Blur()

		return m, m.rangePicker.Init()

	case "left":
		if !m.pages.HasPrev() {
			return m, nil
		}

		m.pages.Page--
		cmd := m.refresh()

		return m, cmd

	case "right":
		if !m.pages.HasNext() {
			return m, nil
		}

		m.pages.Page++
		cmd := m.refresh()

		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m DashboardModel) openForm() (tea.Model, tea.Cmd) {
	m.form = buildForm(m.formState)
	m.state = dashStateForm
	m.table.Blur()

	return m, m.form.Init()
}

func (m DashboardModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			// Cancel always lands back in create mode with defaults.
			m.formState.BeginCreate()
			m.form = nil
			m.state = dashStateBrowse
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	draft, err := m.formState.Draft()
	if err != nil {
		// Field validators should have caught this already.
		m.setStatus(err.Error(), false)
		m.form = buildForm(m.formState)

		return m, tea.Batch(m.form.Init(), clearStatusTick(m.statusSeq))
	}

	return m, m.saveCmd(draft, m.formState.EditingID)
}

func (m DashboardModel) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			m.state = dashStateBrowse
			m.confirmForm = nil
			m.table.Focus()

			return m, nil
		}
	}

	form, cmd := m.confirmForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirmForm = f
	}

	if m.confirmForm.State != huh.StateCompleted {
		return m, cmd
	}

	// Read the answer back from the completed form: the form outlives the
	// model copy it was built over, so a field bound into that copy would
	// not.
	confirmed := m.confirmForm.GetBool("confirm")

	m.state = dashStateBrowse
	m.confirmForm = nil
	m.table.Focus()

	if !confirmed {
		return m, nil
	}

	return m, m.deleteCmd(m.deleteID)
}

func (m DashboardModel) updateRange(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc && m.rangePicker.IsSelecting() {
			m.state = dashStateBrowse
			m.table.Focus()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.rangePicker, cmd = m.rangePicker.Update(msg)

	return m, cmd
}

func (m DashboardModel) onListLoaded(msg listLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.listSeq {
		// A newer fetch is in flight or already landed.
		return m, nil
	}

	m.loading = false

	if msg.err != nil {
		if api.IsAuthError(msg.err) {
			return m, m.sessionExpiredCmd()
		}

		m.setStatus(apiMessage(msg.err), false)

		return m, clearStatusTick(m.statusSeq)
	}

	m.txs = msg.result.Transactions

	before := m.pages.Page
	m.pages.SetTotal(msg.result.Total)
	m.refreshTable()

	if m.pages.Page != before {
		// The server total shrank under us; fetch the page we were
		// clamped back to.
		cmd := m.refresh()
		return m, cmd
	}

	return m, nil
}

func (m DashboardModel) onSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsAuthError(msg.err) {
			return m, m.sessionExpiredCmd()
		}

		// Keep the entered values so the user can correct and resubmit.
		m.setStatus(apiMessage(msg.err), false)
		m.form = buildForm(m.formState)
		m.state = dashStateForm

		return m, tea.Batch(m.form.Init(), clearStatusTick(m.statusSeq))
	}

	if msg.wasEdit {
		m.setStatus("Transaction updated!", true)
	} else {
		m.setStatus("Transaction added!", true)
	}

	m.formState.BeginCreate()
	m.form = nil
	m.state = dashStateBrowse
	m.table.Focus()
	cmd := m.refresh()

	return m, tea.Batch(cmd, clearStatusTick(m.statusSeq))
}

func (m DashboardModel) onDeleted(msg deletedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.IsAuthError(msg.err) {
			return m, m.sessionExpiredCmd()
		}

		m.setStatus(apiMessage(msg.err), false)

		return m, clearStatusTick(m.statusSeq)
	}

	m.setStatus("Transaction deleted", true)

	// DropItem already clamps the page, so the single refresh below covers
	// both the in-place reload and the moved-back-a-page case.
	m.pages.DropItem()
	cmd := m.refresh()

	return m, tea.Batch(cmd, clearStatusTick(m.statusSeq))
}

func (m DashboardModel) View() string {
	left := m.summaryView()

	var right string

	switch m.state {
	case dashStateForm:
		right = m.panelView(m.formTitle(), m.form.View())
	case dashStateConfirmDelete:
		right = m.panelView("Delete Transaction", m.confirmForm.View())
	case dashStateRange:
		right = m.panelView("Date Range", m.rangePicker.View())
	default:
		right = m.tableView()
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	statusLine := ""
	if m.status != "" {
		style := errorStyle
		if m.statusOK {
			style = successStyle
		}

		statusLine = style.Render(m.status) + "\n"
	}

	help := faintStyle.Render(m.ShortHelp())

	return lipgloss.NewStyle().Padding(1).Render(statusLine + content + "\n" + help)
}

func (m DashboardModel) formTitle() string {
	if m.formState.IsEditing() {
		return "Edit Transaction"
	}

	return "Add Transaction"
}

func (m DashboardModel) summaryView() string {
	body := fmt.Sprintf(
		"Income    %s\nExpenses  %s\nBalance   %s",
		incomeStyle.Render(m.sum.TotalIncome.String()),
		expenseStyle.Render(m.sum.TotalExpense.String()),
		m.balanceStyle().Render(m.sum.NetBalance.String()),
	)

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2).
		MarginRight(2).
		Render("Summary\n\n" + body)
}

func (m DashboardModel) balanceStyle() lipgloss.Style {
	if m.sum.NetBalance < 0 {
		return expenseStyle
	}

	return incomeStyle
}

func (m DashboardModel) tableView() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	}

	filters := fmt.Sprintf(
		"[f] Type: %s | [c] Category: %s | [t] Range: %s",
		activeStyle(typeFilters[m.typeFilterIdx]),
		activeStyle(m.categoryLabel()),
		activeStyle(m.rangeFrameName),
	)

	tableBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(filters),
		tableBox,
		m.paginationView(),
	)
}

func (m DashboardModel) paginationView() string {
	prev := "← prev"
	if !m.pages.HasPrev() {
		prev = faintStyle.Render(prev)
	}

	next := "next →"
	if !m.pages.HasNext() {
		next = faintStyle.Render(next)
	}

	return fmt.Sprintf("%s  Page %d of %d  %s", prev, m.pages.Page, m.pages.MaxPage(), next)
}

func (m DashboardModel) panelView(title, body string) string {
	return lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Render(title + "\n\n" + body)
}

func (m DashboardModel) categoryLabel() string {
	if m.categoryIdx == 0 {
		return "all"
	}

	return string(budget.Categories()[m.categoryIdx-1])
}

func (m DashboardModel) categoryFilter() budget.Category {
	if m.categoryIdx == 0 {
		return ""
	}

	return budget.Categories()[m.categoryIdx-1]
}

func (m DashboardModel) selectedTx() (budget.Transaction, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return budget.Transaction{}, false
	}

	return m.txs[idx], true
}

func (m *DashboardModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.txs))
	for _, tx := range m.txs {
		rows = append(rows, table.Row{
			tx.Date.String(),
			tx.Name,
			tx.Description,
			string(tx.Category),
			SignedAmount(tx.Type, tx.Amount),
		})
	}

	m.table.SetRows(rows)
}

func (m *DashboardModel) setStatus(s string, ok bool) {
	m.status = s
	m.statusOK = ok
	m.statusSeq++
}

// query snapshots the active filter and pagination state for a list call.
func (m DashboardModel) query() api.ListQuery {
	return api.ListQuery{
		Page:     m.pages.Page,
		PageSize: m.pages.PageSize,
		Type:     typeFilters[m.typeFilterIdx],
		Category: m.categoryFilter(),
		Start:    m.startDate,
		End:      m.endDate,
	}
}

// refresh is the single re-fetch entry point used after every mutation and
// every filter or page change: one list fetch plus the unconditional,
// unfiltered summary fetch, both tagged with the same sequence number.
func (m *DashboardModel) refresh() tea.Cmd {
	m.listSeq++
	m.loading = true

	return tea.Batch(m.loadListCmd(m.listSeq), m.loadSummaryCmd(m.listSeq))
}

// Messages

type listLoadedMsg struct {
	seq    int
	result api.ListResult
	err    error
}

func (m DashboardModel) loadListCmd(seq int) tea.Cmd {
	client := m.api
	q := m.query()

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		result, err := client.List(ctx, q)

		return listLoadedMsg{seq: seq, result: result, err: err}
	}
}

type summaryLoadedMsg struct {
	seq     int
	summary budget.Summary
	err     error
}

func (m DashboardModel) loadSummaryCmd(seq int) tea.Cmd {
	client := m.api

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		sum, err := client.Summary(ctx)

		return summaryLoadedMsg{seq: seq, summary: sum, err: err}
	}
}

type savedMsg struct {
	wasEdit bool
	err     error
}

func (m DashboardModel) saveCmd(draft budget.Draft, editingID *int64) tea.Cmd {
	client := m.api

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		if editingID != nil {
			_, err := client.Update(ctx, *editingID, draft)
			return savedMsg{wasEdit: true, err: err}
		}

		_, err := client.Create(ctx, draft)

		return savedMsg{err: err}
	}
}

type deletedMsg struct {
	err error
}

func (m DashboardModel) deleteCmd(id int64) tea.Cmd {
	client := m.api

	return func() tea.Msg {
		ctx, cancel := ApiCtx()
		defer cancel()

		return deletedMsg{err: client.Delete(ctx, id)}
	}
}

func (m DashboardModel) logoutCmd() tea.Cmd {
	client := m.api

	return func() tea.Msg {
		_ = client.Logout()
		return LoggedOutMsg{}
	}
}

func (m DashboardModel) sessionExpiredCmd() tea.Cmd {
	client := m.api

	return func() tea.Msg {
		_ = client.Logout()
		return SessionExpiredMsg{}
	}
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}
