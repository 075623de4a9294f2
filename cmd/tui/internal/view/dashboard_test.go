package view

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"budgetbook/internal/api"
	"budgetbook/internal/budget"
)

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a single special key and returns the updated model.
func press[M tea.Model](t *testing.T, m M, keyType tea.KeyType) M {
	t.Helper()

	updated, _ := m.Update(tea.KeyMsg{Type: keyType})

	return updated.(M)
}

// typeText sends a string one rune at a time, the way a terminal delivers
// typed input.
func typeText[M tea.Model](t *testing.T, m M, s string) M {
	t.Helper()

	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(M)
	}

	return m
}

func newDashboard(t *testing.T) (DashboardModel, *MockAPI) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mock := NewMockAPI(ctrl)

	return NewDashboardModel(mock), mock
}

// openCreateForm presses "n" and runs the form's init command so the first
// field has focus, like the bubbletea runtime would.
func openCreateForm(t *testing.T, m DashboardModel) DashboardModel {
	t.Helper()

	updated, cmd := m.Update(key("n"))
	m = updated.(DashboardModel)
	require.Equal(t, dashStateForm, m.state)
	require.NotNil(t, cmd)
	cmd()

	return m
}

func TestDashboard_StaleListResponseDropped(t *testing.T) {
	m, _ := newDashboard(t)
	m.listSeq = 5
	m.txs = []budget.Transaction{{ID: 1, Name: "Keep"}}

	updated, _ := m.Update(listLoadedMsg{
		seq: 4,
		result: api.ListResult{
			Transactions: []budget.Transaction{{ID: 2, Name: "Stale"}},
			Total:        1,
		},
	})
	m = updated.(DashboardModel)

	require.Len(t, m.txs, 1)
	assert.Equal(t, "Keep", m.txs[0].Name)
}

func TestDashboard_ListLoadedUpdatesTotal(t *testing.T) {
	m, _ := newDashboard(t)

	updated, cmd := m.Update(listLoadedMsg{
		seq: m.listSeq,
		result: api.ListResult{
			Transactions: []budget.Transaction{{ID: 1, Name: "Coffee", Type: budget.TypeExpense}},
			Total:        16,
		},
	})
	m = updated.(DashboardModel)

	assert.Nil(t, cmd)
	assert.False(t, m.loading)
	assert.Equal(t, 16, m.pages.Total)
	assert.Equal(t, 2, m.pages.MaxPage())
}

func TestDashboard_ShrunkenTotalRefetchesClampedPage(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.SetTotal(45)
	m.pages.Page = 3
	seq := m.listSeq

	// The server total dropped while we were on page 3; the model clamps
	// back and issues exactly one follow-up fetch.
	updated, cmd := m.Update(listLoadedMsg{
		seq:    seq,
		result: api.ListResult{Total: 10},
	})
	m = updated.(DashboardModel)

	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.pages.Page)
	assert.Equal(t, seq+1, m.listSeq)
}

func TestDashboard_DeleteClampsAndRefreshesOnce(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.SetTotal(16)
	m.pages.Page = 2
	seq := m.listSeq

	updated, cmd := m.Update(deletedMsg{})
	m = updated.(DashboardModel)

	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.pages.Page)
	assert.Equal(t, 15, m.pages.Total)
	// One refresh covers both the count change and the page move.
	assert.Equal(t, seq+1, m.listSeq)
	assert.Equal(t, "Transaction deleted", m.status)
	assert.True(t, m.statusOK)
}

func TestDashboard_DeleteMidPageStaysPut(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.SetTotal(17)
	m.pages.Page = 2

	updated, _ := m.Update(deletedMsg{})
	m = updated.(DashboardModel)

	assert.Equal(t, 2, m.pages.Page)
	assert.Equal(t, 16, m.pages.Total)
}

func TestDashboard_FilterChangeResetsPage(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.SetTotal(45)
	m.pages.Page = 3
	seq := m.listSeq

	updated, cmd := m.Update(key("f"))
	m = updated.(DashboardModel)

	assert.NotNil(t, cmd)
	assert.Equal(t, 1, m.pages.Page)
	assert.Equal(t, seq+1, m.listSeq)
	assert.Equal(t, string(budget.TypeIncome), typeFilters[m.typeFilterIdx])

	// Cycling wraps back around to "all".
	updated, _ = m.Update(key("f"))
	m = updated.(DashboardModel)
	updated, _ = m.Update(key("f"))
	m = updated.(DashboardModel)
	assert.Equal(t, api.TypeAll, typeFilters[m.typeFilterIdx])
}

func TestDashboard_PageNavGuarded(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.SetTotal(15)
	seq := m.listSeq

	// Single page: neither direction does anything.
	updated, cmd := m.Update(key("right"))
	m = updated.(DashboardModel)
	assert.Nil(t, cmd)
	assert.Equal(t, seq, m.listSeq)

	updated, cmd = m.Update(key("left"))
	m = updated.(DashboardModel)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.pages.Page)
}

func TestDashboard_PageNavMoves(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.SetTotal(31)
	seq := m.listSeq

	updated, cmd := m.Update(key("right"))
	m = updated.(DashboardModel)
	assert.NotNil(t, cmd)
	assert.Equal(t, 2, m.pages.Page)
	assert.Equal(t, seq+1, m.listSeq)
}

func TestDashboard_QuerySnapshotsFilters(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.Page = 2
	m.typeFilterIdx = 2 // expense
	m.categoryIdx = 1   // first category

	q := m.query()
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, api.DefaultPageSize, q.PageSize)
	assert.Equal(t, "expense", q.Type)
	assert.Equal(t, budget.Categories()[0], q.Category)
	assert.True(t, q.Start.IsZero())
	assert.True(t, q.End.IsZero())
}

func TestDashboard_LoadListCallsAPI(t *testing.T) {
	m, mock := newDashboard(t)
	m.pages.Page = 2

	want := m.query()
	mock.EXPECT().
		List(gomock.Any(), want).
		Return(api.ListResult{Total: 16}, nil)

	msg := m.loadListCmd(m.listSeq)()
	loaded, ok := msg.(listLoadedMsg)
	require.True(t, ok)
	assert.NoError(t, loaded.err)
	assert.Equal(t, 16, loaded.result.Total)
	assert.Equal(t, m.listSeq, loaded.seq)
}

func TestDashboard_SummaryReplacedWholesale(t *testing.T) {
	m, _ := newDashboard(t)
	m.sum = budget.Summary{TotalIncome: 1, TotalExpense: 2, NetBalance: -1}

	updated, _ := m.Update(summaryLoadedMsg{
		seq:     m.listSeq,
		summary: budget.Summary{TotalIncome: 250000, TotalExpense: 100050, NetBalance: 149950},
	})
	m = updated.(DashboardModel)

	assert.Equal(t, budget.Cents(250000), m.sum.TotalIncome)
	assert.Equal(t, budget.Cents(149950), m.sum.NetBalance)
}

func TestDashboard_StaleSummaryResponseDropped(t *testing.T) {
	m, _ := newDashboard(t)
	m.listSeq = 5
	m.sum = budget.Summary{TotalIncome: 100, TotalExpense: 40, NetBalance: 60}

	// A summary fetched before the latest mutation lands after it; the
	// totals it carries no longer match the server state.
	updated, _ := m.Update(summaryLoadedMsg{
		seq:     4,
		summary: budget.Summary{TotalIncome: 999, TotalExpense: 999, NetBalance: 0},
	})
	m = updated.(DashboardModel)

	assert.Equal(t, budget.Cents(100), m.sum.TotalIncome)
	assert.Equal(t, budget.Cents(60), m.sum.NetBalance)

	updated, _ = m.Update(summaryLoadedMsg{
		seq:     5,
		summary: budget.Summary{TotalIncome: 200, TotalExpense: 40, NetBalance: 160},
	})
	m = updated.(DashboardModel)

	assert.Equal(t, budget.Cents(200), m.sum.TotalIncome)
}

func TestDashboard_CancelEditDiscardsForm(t *testing.T) {
	m, _ := newDashboard(t)
	m.txs = []budget.Transaction{{ID: 7, Name: "Rent", Amount: 85000, Type: budget.TypeExpense, Category: budget.CategoryHousing, Date: budget.Today()}}
	m.formState.BeginEdit(m.txs[0])
	m.form = buildForm(m.formState)
	m.state = dashStateForm
	seq := m.listSeq

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(DashboardModel)

	// No request goes out and the form is back at create defaults.
	assert.Nil(t, cmd)
	assert.Equal(t, seq, m.listSeq)
	assert.Equal(t, dashStateBrowse, m.state)
	assert.False(t, m.formState.IsEditing())
	assert.Empty(t, m.formState.Name)
}

func TestDashboard_SaveFailureKeepsFormValues(t *testing.T) {
	m, _ := newDashboard(t)
	m.formState.Name = "Rent"
	m.formState.Amount = "850"
	m.state = dashStateForm

	updated, _ := m.Update(savedMsg{err: &api.Error{Status: 422, Message: "Amount must be greater than 0"}})
	m = updated.(DashboardModel)

	assert.Equal(t, dashStateForm, m.state)
	assert.Equal(t, "Rent", m.formState.Name)
	assert.Equal(t, "850", m.formState.Amount)
	assert.Equal(t, "Amount must be greater than 0", m.status)
	assert.False(t, m.statusOK)
}

func TestDashboard_SaveSuccessResetsForm(t *testing.T) {
	m, _ := newDashboard(t)
	m.formState.Name = "Rent"
	m.state = dashStateForm
	seq := m.listSeq

	updated, cmd := m.Update(savedMsg{})
	m = updated.(DashboardModel)

	assert.NotNil(t, cmd)
	assert.Equal(t, dashStateBrowse, m.state)
	assert.Empty(t, m.formState.Name)
	assert.Equal(t, "Transaction added!", m.status)
	assert.Equal(t, seq+1, m.listSeq)

	updated, _ = m.Update(savedMsg{wasEdit: true})
	m = updated.(DashboardModel)
	assert.Equal(t, "Transaction updated!", m.status)
}

func TestDashboard_StatusClearedOnlyByLatestTimer(t *testing.T) {
	m, _ := newDashboard(t)
	m.setStatus("first", false)
	oldSeq := m.statusSeq
	m.setStatus("second", true)

	// The first timer firing must not wipe the newer message.
	updated, _ := m.Update(clearStatusMsg{seq: oldSeq})
	m = updated.(DashboardModel)
	assert.Equal(t, "second", m.status)

	updated, _ = m.Update(clearStatusMsg{seq: m.statusSeq})
	m = updated.(DashboardModel)
	assert.Empty(t, m.status)
}

func TestDashboard_AuthErrorTriggersSessionExpiry(t *testing.T) {
	m, mock := newDashboard(t)
	mock.EXPECT().Logout().Return(nil)

	_, cmd := m.Update(listLoadedMsg{
		seq: m.listSeq,
		err: &api.Error{Status: 401, Message: "Invalid token"},
	})
	require.NotNil(t, cmd)

	msg := cmd()
	assert.IsType(t, SessionExpiredMsg{}, msg)
}

func TestDashboard_RangeSelectedResetsPage(t *testing.T) {
	m, _ := newDashboard(t)
	m.pages.SetTotal(45)
	m.pages.Page = 3
	m.state = dashStateRange
	seq := m.listSeq

	start, err := budget.ParseDate("2024-01-01")
	require.NoError(t, err)
	end, err := budget.ParseDate("2024-01-31")
	require.NoError(t, err)

	updated, cmd := m.Update(RangeSelectedMsg{Start: start, End: end})
	m = updated.(DashboardModel)

	assert.NotNil(t, cmd)
	assert.Equal(t, dashStateBrowse, m.state)
	assert.Equal(t, 1, m.pages.Page)
	assert.Equal(t, seq+1, m.listSeq)
	assert.Equal(t, start, m.query().Start)
	assert.Equal(t, end, m.query().End)
}

// Drives the create form with real key input, through huh, to the API call.
// The values the user types must be the values the request carries.
func TestDashboard_TypedCreateReachesAPI(t *testing.T) {
	m, mock := newDashboard(t)
	m = openCreateForm(t, m)

	m = typeText(t, m, "Coffee")
	m = press(t, m, tea.KeyEnter) // name -> description
	m = press(t, m, tea.KeyEnter) // description left empty
	m = press(t, m, tea.KeyEnter) // category: other
	m = press(t, m, tea.KeyEnter) // type: income
	m = typeText(t, m, "42.50")
	m = press(t, m, tea.KeyEnter) // amount -> date (prefilled with today)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DashboardModel)
	require.NotNil(t, cmd)

	mock.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d budget.Draft) (budget.Transaction, error) {
			assert.Equal(t, "Coffee", d.Name)
			assert.Empty(t, d.Description)
			assert.Equal(t, budget.CategoryOther, d.Category)
			assert.Equal(t, budget.TypeIncome, d.Type)
			assert.Equal(t, budget.Cents(4250), d.Amount)
			assert.Equal(t, budget.Today(), d.Date)

			return budget.Transaction{ID: 1}, nil
		})

	msg := cmd()
	saved, ok := msg.(savedMsg)
	require.True(t, ok)
	require.NoError(t, saved.err)

	updated, cmd = m.Update(saved)
	m = updated.(DashboardModel)
	assert.NotNil(t, cmd)
	assert.Equal(t, dashStateBrowse, m.state)
	assert.Equal(t, "Transaction added!", m.status)
}

// A non-positive amount is caught by the field validator; no request is made
// (the mock has no Create expectation, so any call would fail the test).
func TestDashboard_NegativeAmountRejectedBeforeRequest(t *testing.T) {
	m, _ := newDashboard(t)
	m = openCreateForm(t, m)

	m = typeText(t, m, "Snack")
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyEnter)
	m = press(t, m, tea.KeyEnter)
	m = typeText(t, m, "-5")
	m = press(t, m, tea.KeyEnter)

	assert.Equal(t, dashStateForm, m.state)
	assert.NotEqual(t, huh.StateCompleted, m.form.State)
}

func TestDashboard_ConfirmDeleteViaKeys(t *testing.T) {
	m, mock := newDashboard(t)
	m.txs = []budget.Transaction{{ID: 7, Name: "Rent"}}
	m.pages.SetTotal(1)

	updated, cmd := m.Update(key("d"))
	m = updated.(DashboardModel)
	require.Equal(t, dashStateConfirmDelete, m.state)
	require.NotNil(t, cmd)
	cmd()

	// Toggle from Keep to Delete, then submit.
	m = press(t, m, tea.KeyLeft)

	mock.EXPECT().Delete(gomock.Any(), int64(7)).Return(nil)

	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DashboardModel)
	require.NotNil(t, cmd)
	assert.Equal(t, dashStateBrowse, m.state)

	msg := cmd()
	deleted, ok := msg.(deletedMsg)
	require.True(t, ok)
	assert.NoError(t, deleted.err)
}

func TestDashboard_DeclineDeleteViaKeys(t *testing.T) {
	m, _ := newDashboard(t)
	m.txs = []budget.Transaction{{ID: 7, Name: "Rent"}}
	m.pages.SetTotal(1)

	updated, cmd := m.Update(key("d"))
	m = updated.(DashboardModel)
	require.NotNil(t, cmd)
	cmd()

	// Submit with the default answer (Keep): no Delete call goes out.
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(DashboardModel)

	assert.Nil(t, cmd)
	assert.Equal(t, dashStateBrowse, m.state)
}
