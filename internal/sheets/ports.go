package sheets

import (
	"context"

	"expensetracker/internal/core"
	"expensetracker/internal/events"
)

// Ports for outbound spreadsheet adapters.
type (
	// EventAppender records ledger events as rows of an audit log.
	EventAppender interface {
		AppendEvent(ctx context.Context, e events.Event) (rowRef string, err error)
	}

	// ExpenseExporter replaces an export sheet with the current listing.
	ExpenseExporter interface {
		ExportExpenses(ctx context.Context, expenses []core.Expense, summary core.Summary) error
	}
)
