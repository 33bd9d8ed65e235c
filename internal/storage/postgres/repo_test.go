package postgres

import (
	"context"
	"testing"
)

// TestNewRepository_EmptyDSN rejects a blank connection string before
// touching the network.
func TestNewRepository_EmptyDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

// TestPgFQN covers quoting of bare and schema-qualified names.
func TestPgFQN(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"log_entries", `"log_entries"`},
		{"public.log_entries", `"public"."log_entries"`},
		{`odd"name`, `"odd""name"`},
	}
	for _, tc := range cases {
		if got := pgFQN(tc.in); got != tc.want {
			t.Errorf("pgFQN(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

// TestSplitFQN checks the pgx.Identifier conversion keeps segments unquoted.
func TestSplitFQN(t *testing.T) {
	t.Parallel()

	id := splitFQN("public.log_entries")
	if len(id) != 2 || id[0] != "public" || id[1] != "log_entries" {
		t.Fatalf("splitFQN = %v", id)
	}
}

// TestIndexName derives from the bare table segment only.
func TestIndexName(t *testing.T) {
	t.Parallel()

	if got := indexName("public.log_entries"); got != "idx_ip_log_entries" {
		t.Fatalf("indexName = %q", got)
	}
	if got := indexName("log_entries"); got != "idx_ip_log_entries" {
		t.Fatalf("indexName = %q", got)
	}
}
