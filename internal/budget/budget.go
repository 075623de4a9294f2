package budget

import "errors"

// Type represents the direction of a transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category classifies a transaction into a fixed set of buckets.
type Category string

const (
	CategoryFood           Category = "food"
	CategoryTransportation Category = "transportation"
	CategoryHousing        Category = "housing"
	CategoryUtilities      Category = "utilities"
	CategoryEntertainment  Category = "entertainment"
	CategoryShopping       Category = "shopping"
	CategoryHealthcare     Category = "healthcare"
	CategorySalary         Category = "salary"
	CategoryOther          Category = "other"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransportation,
		CategoryHousing,
		CategoryUtilities,
		CategoryEntertainment,
		CategoryShopping,
		CategoryHealthcare,
		CategorySalary,
		CategoryOther,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}

	return false
}

// Transaction is a single recorded income or expense entry. The ID is
// assigned by the server and never guessed locally.
type Transaction struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Type        Type     `json:"type"`
	Amount      Cents    `json:"amount"`
	Date        Date     `json:"transaction_date"`
}

// Summary holds the aggregate totals for a user's transactions. It is always
// replaced wholesale from a server response.
type Summary struct {
	TotalIncome  Cents `json:"total_income"`
	TotalExpense Cents `json:"total_expense"`
	NetBalance   Cents `json:"net_balance"`
}

// Draft is the editable subset of a transaction, used as the payload for
// create and update calls.
type Draft struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Type        Type     `json:"type"`
	Amount      Cents    `json:"amount"`
	Date        Date     `json:"transaction_date"`
}

var (
	ErrNameRequired      = errors.New("name is required")
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrBadType           = errors.New("unknown transaction type")
	ErrBadCategory       = errors.New("unknown category")
)

// Validate checks the constraints every draft must satisfy before it is sent
// to (or accepted by) the server.
func (d Draft) Validate() error {
	if d.Name == "" {
		return ErrNameRequired
	}

	if d.Amount <= 0 {
		return ErrAmountNotPositive
	}

	if !d.Type.Valid() {
		return ErrBadType
	}

	if !d.Category.Valid() {
		return ErrBadCategory
	}

	return nil
}

// DraftOf copies a transaction's editable fields into a draft, as done when
// the user starts editing an existing entry.
func DraftOf(tx Transaction) Draft {
	return Draft{
		Name:        tx.Name,
		Description: tx.Description,
		Category:    tx.Category,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Date:        tx.Date,
	}
}
