package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"budgetbook/internal/budget"
)

const apiTimeout = 10 * time.Second

// statusTTL is how long transient success/error messages stay on screen.
const statusTTL = 3 * time.Second

var (
	incomeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	expenseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

// SignedAmount renders an amount with its direction sign and color.
func SignedAmount(t budget.Type, amount budget.Cents) string {
	if t == budget.TypeIncome {
		return incomeStyle.Render("+ " + amount.String())
	}

	return expenseStyle.Render("- " + amount.String())
}

// ApiCtx returns a context with a standard timeout for API calls.
func ApiCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}
