package store

import (
	"context"

	"fintrack/internal/core"
)

// Ports implemented by the storage layer and consumed by the HTTP server.
type (
	TransactionStore interface {
		// ListTransactions returns transactions joined with their category
		// name, newest first, narrowed by the filter.
		ListTransactions(ctx context.Context, f core.TransactionFilter) ([]core.TransactionWithCategory, error)
		CreateTransaction(ctx context.Context, n core.NewTransaction) (core.Transaction, error)
		// UpdateTransaction applies a field-level patch; unset fields keep
		// their stored values.
		UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, name string) (core.Category, error)
		ListCategories(ctx context.Context) ([]core.Category, error)
		RenameCategory(ctx context.Context, id int64, name string) (core.Category, error)
	}

	// ReportStore provides the read-only aggregate reports.
	ReportStore interface {
		// MonthlySummary returns income/expense totals and the top expense
		// category for one calendar month.
		MonthlySummary(ctx context.Context, year int, month int) (core.MonthlySummary, error)
		// SpendingByCategory returns per-category expense sums for one
		// month, highest first; categories without expenses are omitted.
		SpendingByCategory(ctx context.Context, year int, month int) ([]core.CategorySpending, error)
	}
)
