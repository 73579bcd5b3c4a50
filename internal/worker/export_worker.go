// Package worker exports transactions from storage to a spreadsheet. Events
// from the API process drive the fast path; startup and periodic scans of
// pending rows recover anything a lost message would otherwise strand.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/sheets"
	"kharcha/internal/storage/sqlite"
)

type ExportWorker struct {
	store     *sqlite.Store
	appender  sheets.RowAppender
	batchSize int
}

func NewExportWorker(store *sqlite.Store, appender sheets.RowAppender, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleEvent processes one transaction event from the queue. A transaction
// deleted between publish and delivery is treated as done, not an error, so
// the message is not requeued forever.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.TransactionEvent) error {
	t, err := w.store.GetTransaction(ctx, ev.ID)
	if core.IsNotFound(err) {
		slog.InfoContext(ctx, "Transaction gone before export, skipping", "id", ev.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction: %w", err)
	}

	return w.export(ctx, t)
}

// ProcessPending drives one batch of rows that never made it to the sheet.
// This is the backup path for lost events.
func (w *ExportWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.PendingTransactions(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, t := range pending {
		if err := w.export(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction", "id", t.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck drains a larger pending backlog once, to recover from worker
// downtime.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.PendingTransactions(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	synced, failed := 0, 0
	for _, t := range pending {
		if err := w.export(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to export transaction during startup",
				"id", t.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

// RunPendingScans calls ProcessPending on a fixed interval until ctx is
// cancelled.
func (w *ExportWorker) RunPendingScans(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending scan failed", "error", err)
			}
		}
	}
}

// export appends the transaction to the sheet and records the outcome. A
// deleted category degrades to an empty category cell rather than blocking
// the export.
func (w *ExportWorker) export(ctx context.Context, t core.Transaction) error {
	row := sheets.Row{
		Date:        t.Date,
		Type:        t.Type,
		Amount:      t.Amount,
		Description: t.Description,
	}
	if cat, err := w.store.GetCategory(ctx, t.CategoryID); err == nil {
		row.Category = cat.Name
	}

	ref, err := w.appender.AppendRow(ctx, row)
	if err != nil {
		if markErr := w.store.MarkExportError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("append row: %w", err)
	}

	if err := w.store.MarkSynced(ctx, t.ID); err != nil {
		// The append went through; a marking failure only costs a re-export.
		slog.ErrorContext(ctx, "Failed to mark transaction synced", "id", t.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", t.ID,
		"sheets_ref", ref,
		"amount", t.Amount)

	return nil
}
