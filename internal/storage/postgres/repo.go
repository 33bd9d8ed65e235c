// Package postgres implements a Postgres-backed storage.Repository using pgx
// v5. Bulk loads use the COPY protocol inside a transaction, which is the
// cheapest way to move a large batch into Postgres in one atomic step.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"logtop/internal/model"
	"logtop/internal/storage"
)

// DefaultTable is the log table name used when Config.Table is empty.
const DefaultTable = "log_entries"

// copyColumns is the insert column order; the identity key is omitted so the
// database assigns it.
var copyColumns = []string{"ip_address", "ts", "method", "url", "status_code"}

// Config holds Postgres repository configuration.
type Config struct {
	// DSN is the connection string for pgxpool (e.g. postgresql://...).
	DSN string

	// Table is the log table name, optionally schema-qualified
	// (e.g. "public.log_entries"); empty means DefaultTable.
	Table string
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool  *pgxpool.Pool
	table string
}

// NewRepository constructs a Repository and returns a close function for
// cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: pgxpool: %w", err)
	}
	closeFn := func() { pool.Close() }
	return &Repository{pool: pool, table: table}, closeFn, nil
}

// EnsureSchema creates the log table and its client-address index if absent.
// Safe to call on every start.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	createTable := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  log_id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
  ip_address TEXT NOT NULL,
  ts TEXT,
  method TEXT,
  url TEXT,
  status_code INTEGER
);`, pgFQN(r.table))
	if _, err := r.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", r.table, err)
	}

	createIndex := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS %s ON %s (ip_address);",
		pgIdent(indexName(r.table)), pgFQN(r.table),
	)
	if _, err := r.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("postgres: create index on %s: %w", r.table, err)
	}
	return nil
}

// InsertEntries loads all entries with COPY inside a single transaction.
// COPY is atomic per transaction, so a mid-batch failure leaves nothing
// behind. Empty input is a no-op.
func (r *Repository) InsertEntries(ctx context.Context, entries []model.Entry) (int64, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(entries))
	for i, e := range entries {
		if e.ClientAddr == "" {
			return 0, fmt.Errorf("postgres: insert: empty client address at row %d", i)
		}
		rows = append(rows, []any{e.ClientAddr, e.Timestamp, e.Method, e.Path, e.Status})
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	n, err := tx.CopyFrom(ctx, splitFQN(r.table), copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("postgres: copy: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: commit: %w", err)
	}
	return n, nil
}

// TopAddresses runs the grouped frequency query with the same deterministic
// tie-break as the SQLite backend: equal counts rank by lowest first-inserted
// log_id.
func (r *Repository) TopAddresses(ctx context.Context, limit int) ([]model.AddressCount, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("postgres: top addresses: limit must be > 0, got %d", limit)
	}

	query := fmt.Sprintf(`SELECT ip_address, COUNT(*) AS cnt
FROM %s
GROUP BY ip_address
ORDER BY cnt DESC, MIN(log_id) ASC
LIMIT $1;`, pgFQN(r.table))

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: top addresses: %w", err)
	}
	defer rows.Close()

	out := make([]model.AddressCount, 0, limit)
	for rows.Next() {
		var ac model.AddressCount
		if err := rows.Scan(&ac.Addr, &ac.Count); err != nil {
			return nil, fmt.Errorf("postgres: scan: %w", err)
		}
		out = append(out, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: top addresses rows: %w", err)
	}
	return out, nil
}

// pgIdent double-quotes a single identifier.
func pgIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// pgFQN quotes a possibly schema-qualified name segment by segment.
func pgFQN(fqn string) string {
	parts := strings.Split(fqn, ".")
	quoted := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			quoted = append(quoted, pgIdent(p))
		}
	}
	return strings.Join(quoted, ".")
}

// splitFQN converts "schema.table" into the pgx.Identifier form.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	out := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// indexName derives the idx_ip index name from the bare table name.
func indexName(fqn string) string {
	parts := strings.Split(fqn, ".")
	return "idx_ip_" + parts[len(parts)-1]
}

// wrappedRepo adds the factory Close method.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := NewRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})
}
