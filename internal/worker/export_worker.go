package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"fintrack/internal/amqp"
	"fintrack/internal/sheets"
)

// ErrDiscard is returned for messages that can never be exported.
var ErrDiscard = amqp.ErrDiscard

// ExportWorker copies created transactions to an external ledger.
type ExportWorker struct {
	exporter sheets.TransactionExporter
	exported atomic.Int64
	failed   atomic.Int64
}

func NewExportWorker(exporter sheets.TransactionExporter) *ExportWorker {
	return &ExportWorker{exporter: exporter}
}

// HandleCreated processes one transaction.created event.
func (w *ExportWorker) HandleCreated(ctx context.Context, msg *amqp.TransactionCreatedMessage) error {
	if msg == nil || msg.Event != amqp.EventTransactionCreated {
		return fmt.Errorf("unexpected event: %w", ErrDiscard)
	}
	t := msg.Transaction
	if t.ID == "" {
		return fmt.Errorf("transaction without id: %w", ErrDiscard)
	}

	ref, err := w.exporter.Export(ctx, t)
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("export transaction %s: %w", t.ID, err)
	}
	w.exported.Add(1)

	slog.InfoContext(ctx, "Transaction exported",
		"component", "worker",
		"operation", "export",
		"transaction_id", t.ID,
		"transaction_type", string(t.Type),
		"row_ref", ref)
	return nil
}

// Stats returns how many exports succeeded and failed.
func (w *ExportWorker) Stats() (exported, failed int64) {
	return w.exported.Load(), w.failed.Load()
}
