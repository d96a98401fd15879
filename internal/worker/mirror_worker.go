package worker

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

// Consumer delivers expense-recorded messages until ctx is done.
type Consumer interface {
	ConsumeExpenseRecorded(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker copies records announced on the queue into a second store,
// typically a Google Sheet, through the same append path the primary uses.
type MirrorWorker struct {
	mirror *services.LedgerService
}

func NewMirrorWorker(mirror *services.LedgerService) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// Run consumes messages until ctx is cancelled.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer) error {
	slog.InfoContext(ctx, "Mirror worker started")
	err := consumer.ConsumeExpenseRecorded(ctx, w.HandleMessage)
	slog.InfoContext(ctx, "Mirror worker stopped", "reason", err)
	return err
}

// HandleMessage appends the announced record unless the mirror already
// holds a record at that position. Returning an error requeues the message.
func (w *MirrorWorker) HandleMessage(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	slog.InfoContext(ctx, "Processing expense recorded message",
		"id", msg.ID,
		"position", msg.Position)

	e, err := msg.Expense()
	if err != nil {
		// Redelivery cannot fix a malformed record.
		slog.ErrorContext(ctx, "Dropping message with malformed record", "id", msg.ID, "error", err)
		return nil
	}

	l, err := w.mirror.Load(ctx)
	if err != nil {
		return fmt.Errorf("load mirror: %w", err)
	}

	if l.Len() > msg.Position {
		slog.InfoContext(ctx, "Record already mirrored, skipping",
			"id", msg.ID,
			"position", msg.Position,
			"mirror_records", l.Len())
		return nil
	}
	if l.Len() < msg.Position {
		slog.WarnContext(ctx, "Mirror is behind the primary ledger",
			"position", msg.Position,
			"mirror_records", l.Len())
	}

	if _, err := w.mirror.Append(ctx, l, e); err != nil {
		if core.IsValidation(err) {
			slog.ErrorContext(ctx, "Dropping invalid record", "id", msg.ID, "error", err)
			return nil
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored expense",
		"id", msg.ID,
		"position", msg.Position,
		"date", msg.Date,
		"amount", msg.Amount)
	return nil
}
