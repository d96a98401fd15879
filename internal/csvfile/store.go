// Package csvfile persists the ledger as a single CSV file on local disk.
//
// Every save rewrites the whole file. The new content goes to a temporary
// file in the same directory which is then renamed over the ledger, so a
// failed write leaves the previous file in place. The store is not safe for
// use by several processes at once: the last writer wins.
package csvfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
	"expensetracker/internal/csvledger"
	"expensetracker/internal/ledger"
)

const backendName = "csv"

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// Load implements ports.LedgerReader.
func (s *Store) Load(ctx context.Context) (ledger.Ledger, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.InfoContext(ctx, "Ledger file not found, starting empty", "path", s.path)
		return ledger.Ledger{}, nil
	}
	if err != nil {
		return ledger.Ledger{}, s.readErr(err)
	}

	l, err := csvledger.Decode(bytes.NewReader(data))
	if err != nil {
		return ledger.Ledger{}, s.readErr(err)
	}

	slog.DebugContext(ctx, "Ledger loaded", "path", s.path, "records", l.Len())
	return l, nil
}

// Save implements ports.LedgerWriter.
func (s *Store) Save(ctx context.Context, l ledger.Ledger) error {
	var buf bytes.Buffer
	if err := csvledger.Encode(&buf, l); err != nil {
		return s.writeErr(err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return s.writeErr(fmt.Errorf("create ledger directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return s.writeErr(fmt.Errorf("create temp file: %w", err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return s.writeErr(fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return s.writeErr(fmt.Errorf("sync temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return s.writeErr(fmt.Errorf("close temp file: %w", err))
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return s.writeErr(fmt.Errorf("replace ledger file: %w", err))
	}

	slog.InfoContext(ctx, "Ledger saved", "path", s.path, "records", l.Len())
	return nil
}

func (s *Store) readErr(err error) error {
	return &core.StorageReadError{Backend: backendName, Location: s.path, Err: err}
}

func (s *Store) writeErr(err error) error {
	return &core.StorageWriteError{Backend: backendName, Location: s.path, Err: err}
}
