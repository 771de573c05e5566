package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/events"
	"expensetracker/internal/sheets"
)

const (
	seenCacheSize = 10000
	seenCacheTTL  = 24 * time.Hour
)

// AuditWorker mirrors consumed ledger events into a spreadsheet audit log.
type AuditWorker struct {
	appender sheets.EventAppender
	logger   *slog.Logger
	seen     *cache.LRUCache[struct{}]
}

func NewAuditWorker(appender sheets.EventAppender, logger *slog.Logger) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{
		appender: appender,
		logger:   logger,
		seen:     cache.NewLRUCache[struct{}](seenCacheSize, seenCacheTTL),
	}
}

// SeenCache exposes the redelivery cache so it can be swept periodically.
func (w *AuditWorker) SeenCache() cache.Cleaner {
	return w.seen
}

// HandleEvent appends the event as one audit row. Redelivered events that
// were already written by this worker are skipped.
func (w *AuditWorker) HandleEvent(ctx context.Context, e *events.Event) error {
	if e == nil {
		return errors.New("nil event")
	}
	if e.ID != "" && w.seen.Contains(e.ID) {
		w.logger.DebugContext(ctx, "Skipping duplicate event", "event_id", e.ID)
		return nil
	}

	ref, err := w.appender.AppendEvent(ctx, *e)
	if err != nil {
		return fmt.Errorf("append audit row: %w", err)
	}
	if e.ID != "" {
		w.seen.Set(e.ID, struct{}{})
	}

	level := slog.LevelInfo
	if e.Type == events.BudgetExceeded {
		level = slog.LevelWarn
	}
	w.logger.Log(ctx, level, "Ledger event recorded",
		"event_id", e.ID,
		"event_type", e.Type,
		"expense_id", e.ExpenseID,
		"total", e.Total.String(),
		"budget", e.Budget.String(),
		"ref", ref)
	return nil
}
