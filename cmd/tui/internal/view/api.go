package view

import (
	"context"

	"budgetbook/internal/api"
	"budgetbook/internal/budget"
)

//go:generate mockgen -source=api.go -destination=api_mock.go -package=view

// API is the slice of the remote collection client the views depend on.
type API interface {
	List(ctx context.Context, q api.ListQuery) (api.ListResult, error)
	Summary(ctx context.Context) (budget.Summary, error)
	Create(ctx context.Context, draft budget.Draft) (budget.Transaction, error)
	Update(ctx context.Context, id int64, draft budget.Draft) (budget.Transaction, error)
	Delete(ctx context.Context, id int64) error
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, email, password string) error
	Logout() error
}
