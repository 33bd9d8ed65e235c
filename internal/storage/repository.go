// Package storage contains the storage-agnostic repository contract and a
// small factory that backends register themselves with. The rest of the
// application depends only on this package; concrete stores (SQLite,
// Postgres) live in subpackages and are pulled in via blank imports of
// internal/storage/all.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"logtop/internal/model"
)

// Repository is the persistence contract for parsed log entries.
type Repository interface {
	// EnsureSchema creates the log table and its client-address index if they
	// do not exist yet. Safe to call on every start.
	EnsureSchema(ctx context.Context) error

	// InsertEntries persists all entries in one transaction and returns the
	// number inserted. A failure mid-batch rolls the whole batch back; an
	// empty slice is a no-op.
	InsertEntries(ctx context.Context, entries []model.Entry) (int64, error)

	// TopAddresses returns up to limit (address, count) pairs ordered by
	// count descending, ties broken by lowest first-inserted row id. An empty
	// table yields an empty slice and a nil error; a missing table is an
	// error.
	TopAddresses(ctx context.Context, limit int) ([]model.AddressCount, error)

	// Close releases the underlying connection resources.
	Close()
}

// Config selects and configures a backend.
type Config struct {
	// Kind selects the registered backend, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is the backend connection string (file path or URL for SQLite,
	// pgx connection string for Postgres).
	DSN string

	// Table overrides the log table name. Empty means the backend default.
	Table string
}

// OpenFn constructs a Repository for one backend kind.
type OpenFn func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu    sync.RWMutex
	backends = map[string]OpenFn{}
)

// Register registers (or replaces) a backend under the given kind. Typically
// called from backend packages' init functions.
func Register(kind string, fn OpenFn) {
	regMu.Lock()
	defer regMu.Unlock()
	backends[kind] = fn
}

// New opens a Repository for cfg.Kind. Unknown kinds are an error listing
// what is available.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := backends[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, ListKinds())
	}
	return fn(ctx, cfg)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(backends))
	for k := range backends {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
