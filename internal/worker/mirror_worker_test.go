package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/memory"
	"expensetracker/internal/services"
)

func record(day int, amount int64) core.Expense {
	return core.Expense{Date: core.NewDate(2024, 2, day), Category: core.Travel, Amount: decimal.NewFromInt(amount), Note: "train"}
}

type brokenStore struct{}

func (brokenStore) Load(context.Context) (ledger.Ledger, error) {
	return ledger.Ledger{}, &core.StorageReadError{Backend: "sheets", Err: errors.New("quota exceeded")}
}
func (brokenStore) Save(context.Context, ledger.Ledger) error { return nil }

type fakeConsumer struct {
	msgs []*amqp.ExpenseRecordedMessage
	errs []error
}

func (c *fakeConsumer) ConsumeExpenseRecorded(ctx context.Context, handler amqp.Handler) error {
	for _, m := range c.msgs {
		c.errs = append(c.errs, handler(ctx, m))
	}
	return context.Canceled
}

func TestMirrorWorker_AppendsAndSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New(ledger.Ledger{})
	w := NewMirrorWorker(services.NewLedgerService(mirror, nil))

	first := amqp.NewExpenseRecordedMessage(0, record(1, 10))
	second := amqp.NewExpenseRecordedMessage(1, record(2, 20))

	for _, m := range []*amqp.ExpenseRecordedMessage{first, second, first} {
		if err := w.HandleMessage(ctx, m); err != nil {
			t.Fatalf("HandleMessage(%d): %v", m.Position, err)
		}
	}

	l, _ := mirror.Load(ctx)
	if l.Len() != 2 {
		t.Fatalf("mirror has %d records, want 2", l.Len())
	}
	if !l.At(1).Equal(record(2, 20)) {
		t.Fatalf("unexpected second record %+v", l.At(1))
	}
	if mirror.Saves() != 2 {
		t.Fatalf("duplicate delivery caused a save: %d saves", mirror.Saves())
	}
}

func TestMirrorWorker_DropsBadRecords(t *testing.T) {
	ctx := context.Background()
	mirror := memory.New(ledger.Ledger{})
	w := NewMirrorWorker(services.NewLedgerService(mirror, nil))

	malformed := amqp.NewExpenseRecordedMessage(0, record(1, 1))
	malformed.Date = "not a date"
	invalid := amqp.NewExpenseRecordedMessage(0, record(1, 1))
	invalid.Category = "Groceries"

	for _, m := range []*amqp.ExpenseRecordedMessage{malformed, invalid} {
		if err := w.HandleMessage(ctx, m); err != nil {
			t.Fatalf("bad record should be acknowledged, got %v", err)
		}
	}
	if mirror.Saves() != 0 {
		t.Fatalf("bad records reached the mirror")
	}
}

func TestMirrorWorker_StorageErrorRequeues(t *testing.T) {
	w := NewMirrorWorker(services.NewLedgerService(brokenStore{}, nil))
	err := w.HandleMessage(context.Background(), amqp.NewExpenseRecordedMessage(0, record(1, 1)))
	if !core.IsStorageRead(err) {
		t.Fatalf("expected storage read error, got %v", err)
	}
}

func TestMirrorWorker_Run(t *testing.T) {
	mirror := memory.New(ledger.Ledger{})
	w := NewMirrorWorker(services.NewLedgerService(mirror, nil))
	c := &fakeConsumer{msgs: []*amqp.ExpenseRecordedMessage{
		amqp.NewExpenseRecordedMessage(0, record(1, 5)),
		amqp.NewExpenseRecordedMessage(1, record(1, 6)),
	}}

	if err := w.Run(context.Background(), c); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}
	for i, err := range c.errs {
		if err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
	}
	if l, _ := mirror.Load(context.Background()); l.Len() != 2 {
		t.Fatalf("mirror has %d records", l.Len())
	}
}
