// Package config defines the canonical, JSON-serializable configuration model
// for the log analysis pipeline. It is intentionally small, explicit, and
// dependency-free so that run configurations can be loaded from disk (or other
// sources) and passed through the program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run files.
//  3. Minimalism: No third-party config libraries; decoding is performed by
//     the standard library.
//
// Example:
//
//	{
//	  "job":     "access-log-top",
//	  "source":  { "kind": "file", "file": { "path": "sample_access.log" } },
//	  "storage": { "kind": "sqlite", "db": { "dsn": "log_data.db" } },
//	  "runtime": { "workers": 0 },
//	  "report":  { "top_k": 10 }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"io"
)

// Pipeline describes one full analysis run. It is the top-level object
// decoded from a run configuration file.
type Pipeline struct {
	// Job names the run; it labels metrics and log lines.
	Job string `json:"job"`

	// Source describes where input lines come from.
	Source Source `json:"source"`

	// Storage describes where parsed entries are persisted and queried.
	Storage Storage `json:"storage"`

	// Runtime controls parse concurrency.
	Runtime RuntimeConfig `json:"runtime"`

	// Report controls the aggregation output.
	Report ReportConfig `json:"report"`
}

// Source identifies the line source. Additional kinds can be added over time.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the input log file.
	Path string `json:"path"`
}

// Storage selects the store used to persist and aggregate entries.
type Storage struct {
	// Kind selects the storage backend, e.g. "sqlite" or "postgres".
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the backend connection string (file path for SQLite, pgx URL
	// for Postgres).
	DSN string `json:"dsn"`

	// Table overrides the log table name; empty uses the backend default.
	Table string `json:"table"`
}

// RuntimeConfig controls parse-phase concurrency.
type RuntimeConfig struct {
	// Workers bounds the parse worker pool; 0 means one per available core.
	Workers int `json:"workers"`
}

// ReportConfig controls the aggregation result.
type ReportConfig struct {
	// TopK is the number of ranked addresses to return; 0 means 10.
	TopK int `json:"top_k"`
}

// DefaultTopK is the ranked-result size used when Report.TopK is 0.
const DefaultTopK = 10

// Decode reads one Pipeline from JSON.
func Decode(r io.Reader) (Pipeline, error) {
	var p Pipeline
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode pipeline config: %w", err)
	}
	return p, nil
}
