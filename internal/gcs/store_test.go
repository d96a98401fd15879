package gcs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
)

type fakeObject struct {
	data     []byte
	exists   bool
	readErr  error
	closeErr error
}

func (f *fakeObject) NewReader(context.Context) (io.ReadCloser, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if !f.exists {
		return nil, storage.ErrObjectNotExist
	}
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

func (f *fakeObject) NewWriter(context.Context) io.WriteCloser {
	return &fakeWriter{obj: f}
}

type fakeWriter struct {
	obj *fakeObject
	buf bytes.Buffer
}

func (w *fakeWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *fakeWriter) Close() error {
	if w.obj.closeErr != nil {
		return w.obj.closeErr
	}
	w.obj.data = w.buf.Bytes()
	w.obj.exists = true
	return nil
}

func newFakeStore(obj *fakeObject) *Store {
	return &Store{obj: obj, uri: "gs://bucket/expenses.csv"}
}

func TestStore_MissingObject(t *testing.T) {
	l, err := newFakeStore(&fakeObject{}).Load(context.Background())
	if err != nil || !l.IsEmpty() {
		t.Fatalf("expected empty ledger, got len=%d err=%v", l.Len(), err)
	}
}

func TestStore_SaveThenLoad(t *testing.T) {
	ctx := context.Background()
	obj := &fakeObject{}
	s := newFakeStore(obj)

	l := ledger.New(core.Expense{Date: core.NewDate(2024, 1, 15), Category: core.Food, Amount: decimal.NewFromInt(250), Note: "lunch"})
	if err := s.Save(ctx, l); err != nil {
		t.Fatalf("save: %v", err)
	}
	if string(obj.data) != "date,category,amount,note\n2024-01-15,Food,250.0,lunch\n" {
		t.Fatalf("unexpected object body %q", obj.data)
	}
	got, err := s.Load(ctx)
	if err != nil || !got.Equal(l) {
		t.Fatalf("round trip mismatch: %+v err=%v", got.Records(), err)
	}
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newFakeStore(&fakeObject{readErr: errors.New("permission denied")}).Load(ctx)
	if !core.IsStorageRead(err) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}

	_, err = newFakeStore(&fakeObject{exists: true, data: []byte("garbage\n")}).Load(ctx)
	if !core.IsStorageRead(err) {
		t.Fatalf("expected StorageReadError for malformed object, got %v", err)
	}

	obj := &fakeObject{exists: true, data: []byte("date,category,amount,note\n"), closeErr: errors.New("quota")}
	err = newFakeStore(obj).Save(ctx, ledger.Ledger{})
	if !core.IsStorageWrite(err) {
		t.Fatalf("expected StorageWriteError, got %v", err)
	}
	if string(obj.data) != "date,category,amount,note\n" {
		t.Fatalf("failed save must not change the object")
	}
}
