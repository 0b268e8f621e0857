// Package worker moves committed transactions from SQLite into the
// Google Sheets journal. It is driven by AMQP change messages and backed
// by a periodic sweep that catches anything the broker lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

// TransactionWriter appends a transaction row to the journal.
// Implemented by export.SheetsWriter.
type TransactionWriter interface {
	Append(ctx context.Context, d core.TransactionDetail) error
}

// ExportStore is the slice of the repository the worker needs.
type ExportStore interface {
	GetTransactionDetail(ctx context.Context, id int64) (core.TransactionDetail, error)
	ListUnexported(ctx context.Context, limit int) ([]core.TransactionDetail, error)
	MarkExported(ctx context.Context, id int64) error
}

type ExportWorker struct {
	store     ExportStore
	writer    TransactionWriter
	batchSize int
}

func NewExportWorker(store ExportStore, writer TransactionWriter, batchSize int) *ExportWorker {
	return &ExportWorker{
		store:     store,
		writer:    writer,
		batchSize: batchSize,
	}
}

// HandleChangeMessage processes one change notification. Only
// transaction creations and updates produce journal rows; account and
// category changes carry no exportable data, and deletions stay out of
// an append-only journal.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ChangeMessage) error {
	if msg.Entity != amqp.EntityTransaction {
		return nil
	}
	if msg.Action == amqp.ActionDeleted {
		slog.InfoContext(ctx, "Skipping deleted transaction", "id", msg.ID)
		return nil
	}

	detail, err := w.store.GetTransactionDetail(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between publish and consume. Nothing to export.
		slog.WarnContext(ctx, "Transaction vanished before export", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction: %w", err)
	}

	return w.export(ctx, detail)
}

func (w *ExportWorker) export(ctx context.Context, detail core.TransactionDetail) error {
	if err := w.writer.Append(ctx, detail); err != nil {
		return fmt.Errorf("append to journal: %w", err)
	}
	if err := w.store.MarkExported(ctx, detail.ID); err != nil {
		// The row was written; failing here would re-append it on
		// retry. Log and move on, the sweep will not pick it up twice
		// once the mark eventually lands.
		slog.ErrorContext(ctx, "Failed to mark transaction exported", "id", detail.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported transaction",
		"id", detail.ID,
		"amount_cents", detail.Amount.Cents,
		"kind", string(detail.Kind))
	return nil
}

// Sweep exports a batch of transactions that never made it to the
// journal, oldest first. Returns the number of rows exported.
func (w *ExportWorker) Sweep(ctx context.Context) (int, error) {
	pending, err := w.store.ListUnexported(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list unexported: %w", err)
	}

	exported := 0
	for _, detail := range pending {
		if ctx.Err() != nil {
			return exported, ctx.Err()
		}
		if err := w.export(ctx, detail); err != nil {
			// Stop the batch; the next sweep retries from here.
			return exported, err
		}
		exported++
	}

	if exported > 0 {
		slog.InfoContext(ctx, "Sweep exported pending transactions", "count", exported)
	}
	return exported, nil
}

// RunSweeper runs Sweep on a fixed interval until ctx is done.
func (w *ExportWorker) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
				slog.ErrorContext(ctx, "Sweep failed", "error", err)
			}
		}
	}
}
