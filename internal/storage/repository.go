package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"

	_ "modernc.org/sqlite"
)

const backendName = "sqlite"

// SQLiteRepository stores the ledger as one row per record, keyed by its
// position in append order. Amounts are kept as decimal text so they
// round-trip exactly.
type SQLiteRepository struct {
	db     *sql.DB
	dbPath string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, dbPath: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Load implements ports.LedgerReader
func (r *SQLiteRepository) Load(ctx context.Context) (ledger.Ledger, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, category, amount, note FROM expenses ORDER BY position`)
	if err != nil {
		return ledger.Ledger{}, r.readErr(fmt.Errorf("query expenses: %w", err))
	}
	defer rows.Close()

	var records []core.Expense
	for rows.Next() {
		var date, category, amount, note string
		if err := rows.Scan(&date, &category, &amount, &note); err != nil {
			return ledger.Ledger{}, r.readErr(fmt.Errorf("scan expense: %w", err))
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return ledger.Ledger{}, r.readErr(err)
		}
		amt, err := core.ParseStoredAmount(amount)
		if err != nil {
			return ledger.Ledger{}, r.readErr(err)
		}
		records = append(records, core.Expense{
			Date:     d,
			Category: core.Category(category),
			Amount:   amt,
			Note:     note,
		})
	}
	if err := rows.Err(); err != nil {
		return ledger.Ledger{}, r.readErr(fmt.Errorf("iterate expenses: %w", err))
	}

	return ledger.New(records...), nil
}

// Save implements ports.LedgerWriter. The table is replaced in a single
// transaction.
func (r *SQLiteRepository) Save(ctx context.Context, l ledger.Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return r.writeErr(fmt.Errorf("begin transaction: %w", err))
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return r.writeErr(fmt.Errorf("clear expenses: %w", err))
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO expenses (position, date, category, amount, note) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return r.writeErr(fmt.Errorf("prepare insert: %w", err))
	}
	defer stmt.Close()

	for i, e := range l.Records() {
		if _, err := stmt.ExecContext(ctx, i, e.Date.String(), e.Category.String(), core.FormatAmount(e.Amount), e.Note); err != nil {
			return r.writeErr(fmt.Errorf("insert expense %d: %w", i, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return r.writeErr(fmt.Errorf("commit: %w", err))
	}

	slog.InfoContext(ctx, "Ledger saved to SQLite", "db_path", r.dbPath, "records", l.Len())
	return nil
}

// Count returns the number of stored records.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) readErr(err error) error {
	return &core.StorageReadError{Backend: backendName, Location: r.dbPath, Err: err}
}

func (r *SQLiteRepository) writeErr(err error) error {
	return &core.StorageWriteError{Backend: backendName, Location: r.dbPath, Err: err}
}
