// Package importer parses CSV statement exports into transaction drafts
// ready to be sent to the API.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"budgetbook/internal/budget"
	"budgetbook/internal/encoding"
)

// Column names recognized in the header row, compared case-insensitively.
const (
	colDate        = "date"
	colName        = "name"
	colDescription = "description"
	colCategory    = "category"
	colType        = "type"
	colAmount      = "amount"
)

// Parse reads a CSV export and returns one draft per data row. The file may
// be in any common encoding. Rows before the header, blank rows, and footer
// rows that do not parse as data are skipped; date, name, and amount columns
// are required.
func Parse(r io.Reader) ([]budget.Draft, error) {
	decoded, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	cols := columns{date: -1, name: -1, description: -1, category: -1, typ: -1, amount: -1}
	headerFound := false

	var drafts []budget.Draft

	for _, row := range rows {
		if !headerFound {
			if cols.fromHeader(row) {
				headerFound = true
			}

			continue
		}

		draft, ok := cols.parseRow(row)
		if !ok {
			continue
		}

		drafts = append(drafts, draft)
	}

	if !headerFound {
		return nil, fmt.Errorf("no header row found (need at least %s, %s and %s columns)", colDate, colName, colAmount)
	}

	return drafts, nil
}

type columns struct {
	date        int
	name        int
	description int
	category    int
	typ         int
	amount      int
}

// fromHeader maps column indices from a candidate header row. A row counts
// as the header when the three required columns are all present.
func (c *columns) fromHeader(row []string) bool {
	for i, cell := range row {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case colDate:
			c.date = i
		case colName:
			c.name = i
		case colDescription:
			c.description = i
		case colCategory:
			c.category = i
		case colType:
			c.typ = i
		case colAmount:
			c.amount = i
		}
	}

	return c.date != -1 && c.name != -1 && c.amount != -1
}

func (c columns) parseRow(row []string) (budget.Draft, bool) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}

		return strings.TrimSpace(row[idx])
	}

	dateStr := get(c.date)
	if dateStr == "" {
		return budget.Draft{}, false
	}

	date, err := budget.ParseDate(dateStr)
	if err != nil {
		// Probably a footer row.
		return budget.Draft{}, false
	}

	name := get(c.name)
	if name == "" {
		return budget.Draft{}, false
	}

	amount, err := budget.ParseAmount(get(c.amount))
	if err != nil {
		return budget.Draft{}, false
	}

	// Without an explicit type column a leading minus marks an expense.
	txType := budget.Type(strings.ToLower(get(c.typ)))
	if !txType.Valid() {
		txType = budget.TypeIncome
		if amount < 0 {
			txType = budget.TypeExpense
		}
	}

	if amount < 0 {
		amount = -amount
	}

	category := budget.Category(strings.ToLower(get(c.category)))
	if !category.Valid() {
		category = budget.CategoryOther
	}

	return budget.Draft{
		Name:        name,
		Description: get(c.description),
		Category:    category,
		Type:        txType,
		Amount:      amount,
		Date:        date,
	}, true
}
