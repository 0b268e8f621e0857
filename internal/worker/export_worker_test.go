package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/storage"
)

type fakeExportStore struct {
	details  map[int64]core.TransactionDetail
	exported []int64
	markErr  error
}

func (f *fakeExportStore) GetTransactionDetail(_ context.Context, id int64) (core.TransactionDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return core.TransactionDetail{}, storage.ErrNotFound
	}
	return d, nil
}

func (f *fakeExportStore) ListUnexported(_ context.Context, limit int) ([]core.TransactionDetail, error) {
	var out []core.TransactionDetail
	for _, d := range f.details {
		if len(out) >= limit {
			break
		}
		if !contains(f.exported, d.ID) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeExportStore) MarkExported(_ context.Context, id int64) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.exported = append(f.exported, id)
	return nil
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type fakeWriter struct {
	rows     []core.TransactionDetail
	failWith error
}

func (f *fakeWriter) Append(_ context.Context, d core.TransactionDetail) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.rows = append(f.rows, d)
	return nil
}

func detail(id int64) core.TransactionDetail {
	return core.TransactionDetail{
		Transaction: core.Transaction{
			ID:        id,
			UserID:    "user-1",
			AccountID: 1,
			Amount:    core.Money{Cents: 1000},
			Kind:      core.KindExpense,
			Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		},
		Account: core.Account{ID: 1, Name: "Wallet", Currency: "PEN"},
	}
}

func TestHandleChangeMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("exports created transaction", func(t *testing.T) {
		store := &fakeExportStore{details: map[int64]core.TransactionDetail{42: detail(42)}}
		writer := &fakeWriter{}
		w := NewExportWorker(store, writer, 10)

		msg := amqp.NewChangeMessage(amqp.EntityTransaction, amqp.ActionCreated, 42, "user-1")
		if err := w.HandleChangeMessage(ctx, msg); err != nil {
			t.Fatalf("HandleChangeMessage() error = %v", err)
		}
		if len(writer.rows) != 1 || writer.rows[0].ID != 42 {
			t.Errorf("wrote %+v, want transaction 42", writer.rows)
		}
		if !contains(store.exported, 42) {
			t.Error("transaction was not marked exported")
		}
	})

	t.Run("ignores non-transaction entities", func(t *testing.T) {
		writer := &fakeWriter{}
		w := NewExportWorker(&fakeExportStore{}, writer, 10)

		msg := amqp.NewChangeMessage(amqp.EntityAccount, amqp.ActionCreated, 1, "user-1")
		if err := w.HandleChangeMessage(ctx, msg); err != nil {
			t.Fatalf("HandleChangeMessage() error = %v", err)
		}
		if len(writer.rows) != 0 {
			t.Errorf("account change produced %d rows", len(writer.rows))
		}
	})

	t.Run("ignores deletions", func(t *testing.T) {
		writer := &fakeWriter{}
		w := NewExportWorker(&fakeExportStore{}, writer, 10)

		msg := amqp.NewChangeMessage(amqp.EntityTransaction, amqp.ActionDeleted, 42, "user-1")
		if err := w.HandleChangeMessage(ctx, msg); err != nil {
			t.Fatalf("HandleChangeMessage() error = %v", err)
		}
		if len(writer.rows) != 0 {
			t.Errorf("deletion produced %d rows", len(writer.rows))
		}
	})

	t.Run("vanished transaction is not an error", func(t *testing.T) {
		w := NewExportWorker(&fakeExportStore{details: map[int64]core.TransactionDetail{}}, &fakeWriter{}, 10)

		msg := amqp.NewChangeMessage(amqp.EntityTransaction, amqp.ActionCreated, 99, "user-1")
		if err := w.HandleChangeMessage(ctx, msg); err != nil {
			t.Errorf("HandleChangeMessage() for missing row = %v, want nil", err)
		}
	})

	t.Run("writer failure propagates for requeue", func(t *testing.T) {
		store := &fakeExportStore{details: map[int64]core.TransactionDetail{42: detail(42)}}
		writer := &fakeWriter{failWith: errors.New("quota exceeded")}
		w := NewExportWorker(store, writer, 10)

		msg := amqp.NewChangeMessage(amqp.EntityTransaction, amqp.ActionCreated, 42, "user-1")
		if err := w.HandleChangeMessage(ctx, msg); err == nil {
			t.Error("HandleChangeMessage() should propagate writer errors")
		}
		if len(store.exported) != 0 {
			t.Error("failed export must not be marked exported")
		}
	})
}

func TestSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("exports pending rows", func(t *testing.T) {
		store := &fakeExportStore{details: map[int64]core.TransactionDetail{
			1: detail(1),
			2: detail(2),
		}}
		writer := &fakeWriter{}
		w := NewExportWorker(store, writer, 10)

		n, err := w.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep() error = %v", err)
		}
		if n != 2 {
			t.Errorf("Sweep() exported %d rows, want 2", n)
		}

		n, err = w.Sweep(ctx)
		if err != nil {
			t.Fatalf("second Sweep() error = %v", err)
		}
		if n != 0 {
			t.Errorf("second Sweep() exported %d rows, want 0", n)
		}
	})

	t.Run("respects batch size", func(t *testing.T) {
		store := &fakeExportStore{details: map[int64]core.TransactionDetail{
			1: detail(1),
			2: detail(2),
			3: detail(3),
		}}
		w := NewExportWorker(store, &fakeWriter{}, 2)

		n, err := w.Sweep(ctx)
		if err != nil {
			t.Fatalf("Sweep() error = %v", err)
		}
		if n != 2 {
			t.Errorf("Sweep() exported %d rows, want batch of 2", n)
		}
	})

	t.Run("stops batch on writer failure", func(t *testing.T) {
		store := &fakeExportStore{details: map[int64]core.TransactionDetail{1: detail(1)}}
		w := NewExportWorker(store, &fakeWriter{failWith: errors.New("quota exceeded")}, 10)

		if _, err := w.Sweep(ctx); err == nil {
			t.Error("Sweep() should surface writer errors")
		}
	})
}
