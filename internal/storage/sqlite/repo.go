// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Bulk loads run as batched INSERTs inside a single
// transaction; SQLite has no dedicated bulk-load API like Postgres COPY, but
// one transaction per batch keeps performance far ahead of per-row
// autocommit.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"logtop/internal/model"
)

// DefaultTable is the log table name used when Config.Table is empty.
const DefaultTable = "Log_Entries"

// Config holds SQLite repository configuration.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:logs.db?cache=shared"
	//   "logs.db"
	//   ":memory:"
	DSN string

	// Table is the log table name; empty means DefaultTable.
	Table string
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository opens a SQLite connection using the provided DSN and returns
// a Repository plus a close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Ping with a short timeout to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	closeFn := func() { db.Close() }
	return &Repository{db: db, table: table}, closeFn, nil
}

// EnsureSchema creates the log table and its client-address index if absent.
// Both statements use IF NOT EXISTS, so calling this on every start is safe.
// The index must exist before any bulk load for TopAddresses to be satisfied
// from the index rather than a full scan-and-sort.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  "LogID" INTEGER PRIMARY KEY AUTOINCREMENT,
  "IP_Address" TEXT NOT NULL,
  "Timestamp" TEXT,
  "Method" TEXT,
  "URL" TEXT,
  "Status_Code" INTEGER
);`, quoteIdent(r.table))
	if _, err := r.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("sqlite: create table %s: %w", r.table, err)
	}

	createIndex := fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS %s ON %s ("IP_Address");`,
		quoteIdent("idx_ip_"+r.table), quoteIdent(r.table),
	)
	if _, err := r.db.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("sqlite: create index on %s: %w", r.table, err)
	}
	return nil
}

// InsertEntries inserts all entries inside one transaction using a prepared
// statement. Any failure rolls the whole batch back, so a partial load is
// never left visible. Empty input is a no-op.
func (r *Repository) InsertEntries(ctx context.Context, entries []model.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	stmtSQL := fmt.Sprintf(
		`INSERT INTO %s ("IP_Address", "Timestamp", "Method", "URL", "Status_Code") VALUES (?, ?, ?, ?, ?)`,
		quoteIdent(r.table),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, e := range entries {
		if e.ClientAddr == "" {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: empty client address at row %d", inserted)
		}
		if _, err := stmt.ExecContext(ctx, e.ClientAddr, e.Timestamp, e.Method, e.Path, e.Status); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// TopAddresses runs the grouped frequency query. Grouping on IP_Address is
// satisfied from the secondary index created by EnsureSchema. Ties on the
// count are broken by the lowest first-inserted LogID, which makes the result
// order deterministic for a given load order.
//
// An empty table returns an empty slice; a table that was never created
// returns the underlying "no such table" error.
func (r *Repository) TopAddresses(ctx context.Context, limit int) ([]model.AddressCount, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("sqlite: top addresses: limit must be > 0, got %d", limit)
	}

	query := fmt.Sprintf(`SELECT "IP_Address", COUNT(*) AS cnt
FROM %s
GROUP BY "IP_Address"
ORDER BY cnt DESC, MIN("LogID") ASC
LIMIT ?;`, quoteIdent(r.table))

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: top addresses: %w", err)
	}
	defer rows.Close()

	out := make([]model.AddressCount, 0, limit)
	for rows.Next() {
		var ac model.AddressCount
		if err := rows.Scan(&ac.Addr, &ac.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: top addresses rows: %w", err)
	}
	return out, nil
}

// Exec executes an arbitrary SQL statement (typically test fixtures or DDL)
// using the underlying database/sql connection.
func (r *Repository) Exec(ctx context.Context, sqlStmt string) error {
	if strings.TrimSpace(sqlStmt) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sqlStmt); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
