// Package gcs keeps the ledger as a single CSV object in a Cloud Storage
// bucket. The object holds exactly what the local CSV file would.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"

	"expensetracker/internal/core"
	"expensetracker/internal/csvledger"
	"expensetracker/internal/ledger"
)

const backendName = "gcs"

// object is the subset of *storage.ObjectHandle the store needs.
type object interface {
	NewReader(ctx context.Context) (io.ReadCloser, error)
	NewWriter(ctx context.Context) io.WriteCloser
}

type Store struct {
	client *storage.Client
	obj    object
	uri    string
}

// Open connects with Application Default Credentials.
func Open(ctx context.Context, bucket, objectName string) (*Store, error) {
	if bucket == "" {
		return nil, errors.New("missing GCS_BUCKET")
	}
	if objectName == "" {
		objectName = "expenses.csv"
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	s := &Store{
		client: client,
		obj:    handle{client.Bucket(bucket).Object(objectName)},
		uri:    fmt.Sprintf("gs://%s/%s", bucket, objectName),
	}
	slog.InfoContext(ctx, "GCS ledger ready", "uri", s.uri)
	return s, nil
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Load implements ports.LedgerReader. A missing object is an empty ledger.
func (s *Store) Load(ctx context.Context) (ledger.Ledger, error) {
	r, err := s.obj.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		slog.InfoContext(ctx, "Ledger object not found, starting empty", "uri", s.uri)
		return ledger.Ledger{}, nil
	}
	if err != nil {
		return ledger.Ledger{}, s.readErr(fmt.Errorf("open GCS object reader: %w", err))
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return ledger.Ledger{}, s.readErr(fmt.Errorf("read GCS object: %w", err))
	}

	l, err := csvledger.Decode(bytes.NewReader(data))
	if err != nil {
		return ledger.Ledger{}, s.readErr(err)
	}
	return l, nil
}

// Save implements ports.LedgerWriter. GCS object writes are atomic: the
// previous generation stays visible until Close succeeds.
func (s *Store) Save(ctx context.Context, l ledger.Ledger) error {
	var buf bytes.Buffer
	if err := csvledger.Encode(&buf, l); err != nil {
		return s.writeErr(err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.obj.NewWriter(ctx)
	if _, err := io.Copy(w, &buf); err != nil {
		_ = w.Close()
		return s.writeErr(fmt.Errorf("copy ledger to GCS writer: %w", err))
	}
	if err := w.Close(); err != nil {
		return s.writeErr(fmt.Errorf("finalize upload: %w", err))
	}

	slog.InfoContext(ctx, "Ledger saved to GCS", "uri", s.uri, "records", l.Len())
	return nil
}

func (s *Store) readErr(err error) error {
	return &core.StorageReadError{Backend: backendName, Location: s.uri, Err: err}
}

func (s *Store) writeErr(err error) error {
	return &core.StorageWriteError{Backend: backendName, Location: s.uri, Err: err}
}

// handle adapts *storage.ObjectHandle to object.
type handle struct {
	h *storage.ObjectHandle
}

func (h handle) NewReader(ctx context.Context) (io.ReadCloser, error) {
	return h.h.NewReader(ctx)
}

func (h handle) NewWriter(ctx context.Context) io.WriteCloser {
	w := h.h.NewWriter(ctx)
	w.ContentType = "text/csv"
	return w
}
