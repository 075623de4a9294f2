package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"budgetbook/internal/budget"
)

// FormState holds the draft transaction being entered. EditingID nil means
// submit creates a new transaction; set, it updates that transaction.
type FormState struct {
	Name        string
	Description string
	Category    budget.Category
	Type        budget.Type
	Amount      string
	Date        string

	EditingID *int64
}

// NewFormState starts in create mode with default field values. The state is
// heap-allocated because the huh fields built over it hold pointers into it;
// those bindings must survive the by-value model copies bubbletea makes.
func NewFormState() *FormState {
	f := &FormState{}
	f.BeginCreate()

	return f
}

// BeginCreate resets all fields to their defaults and clears the editing
// marker.
func (f *FormState) BeginCreate() {
	f.Name = ""
	f.Description = ""
	f.Category = budget.CategoryOther
	f.Type = budget.TypeIncome
	f.Amount = ""
	f.Date = budget.Today().String()
	f.EditingID = nil
}

// BeginEdit copies the transaction's fields into the form and marks it as
// the one being edited.
func (f *FormState) BeginEdit(tx budget.Transaction) {
	f.Name = tx.Name
	f.Description = tx.Description
	f.Category = tx.Category
	f.Type = tx.Type
	f.Amount = tx.Amount.String()
	f.Date = tx.Date.String()

	id := tx.ID
	f.EditingID = &id
}

// IsEditing reports whether submit will update rather than create.
func (f *FormState) IsEditing() bool {
	return f.EditingID != nil
}

// Draft converts the entered values into a create/update payload. The same
// checks back the input validators, so a draft that reaches the network is
// already locally valid.
func (f *FormState) Draft() (budget.Draft, error) {
	if strings.TrimSpace(f.Name) == "" {
		return budget.Draft{}, fmt.Errorf("name is required")
	}

	amount, err := validAmount(f.Amount)
	if err != nil {
		return budget.Draft{}, err
	}

	date, err := budget.ParseDate(f.Date)
	if err != nil {
		return budget.Draft{}, err
	}

	return budget.Draft{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Category:    f.Category,
		Type:        f.Type,
		Amount:      amount,
		Date:        date,
	}, nil
}

// validAmount enforces the minimum-value constraint locally, before any
// network call happens.
func validAmount(s string) (budget.Cents, error) {
	amount, err := budget.ParseAmount(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}

	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive")
	}

	return amount, nil
}

// buildForm binds a huh form to the state's fields.
func buildForm(f *FormState) *huh.Form {
	categoryOpts := make([]huh.Option[budget.Category], 0, len(budget.Categories()))
	for _, c := range budget.Categories() {
		categoryOpts = append(categoryOpts, huh.NewOption(string(c), c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("name").
				Title("Name").
				Value(&f.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),

			huh.NewInput().
				Key("description").
				Title("Description (optional)").
				Value(&f.Description),

			huh.NewSelect[budget.Category]().
				Key("category").
				Title("Category").
				Options(categoryOpts...).
				Value(&f.Category),

			huh.NewSelect[budget.Type]().
				Key("type").
				Title("Type").
				Options(
					huh.NewOption("income", budget.TypeIncome),
					huh.NewOption("expense", budget.TypeExpense),
				).
				Value(&f.Type),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Placeholder("0.00").
				Value(&f.Amount).
				Validate(func(s string) error {
					_, err := validAmount(s)
					return err
				}),

			huh.NewInput().
				Key("date").
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&f.Date).
				Validate(func(s string) error {
					_, err := budget.ParseDate(s)
					return err
				}),
		),
	).WithWidth(45).WithShowHelp(false)
}
