// Package export writes the user's transactions to a CSV file, paging
// through the server-owned collection.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"budgetbook/internal/api"
	"budgetbook/internal/budget"
)

// pageSize for export fetches; larger than the dashboard page to keep the
// number of round trips down.
const pageSize = 100

// Lister is the slice of the API client the exporter needs.
type Lister interface {
	List(ctx context.Context, q api.ListQuery) (api.ListResult, error)
}

// Service exports transactions fetched through the API client.
type Service struct {
	api Lister
}

func NewService(client Lister) *Service {
	return &Service{api: client}
}

// Export writes all transactions within the date range (zero dates mean all
// time) to a CSV file at path and returns how many rows were written.
func (s *Service) Export(ctx context.Context, start, end budget.Date, path string) (int, error) {
	txs, err := s.fetchAll(ctx, start, end)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"date", "name", "description", "category", "type", "amount"}); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.String(),
			tx.Name,
			tx.Description,
			string(tx.Category),
			string(tx.Type),
			tx.Amount.String(),
		}
		if err := w.Write(record); err != nil {
			return 0, fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flushing writer: %w", err)
	}

	return len(txs), nil
}

func (s *Service) fetchAll(ctx context.Context, start, end budget.Date) ([]budget.Transaction, error) {
	var all []budget.Transaction

	for page := 1; ; page++ {
		result, err := s.api.List(ctx, api.ListQuery{
			Page:     page,
			PageSize: pageSize,
			Start:    start,
			End:      end,
		})
		if err != nil {
			return nil, fmt.Errorf("listing transactions: %w", err)
		}

		all = append(all, result.Transactions...)

		if len(all) >= result.Total || len(result.Transactions) == 0 {
			return all, nil
		}
	}
}
