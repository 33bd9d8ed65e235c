// Package analyzer orchestrates one analysis run: read the line source, parse
// in parallel, ensure the schema, bulk-load, and execute the top-K frequency
// query. Storage is touched single-threaded, only after the parse results are
// fully merged.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"time"

	"logtop/internal/config"
	"logtop/internal/metrics"
	"logtop/internal/model"
	"logtop/internal/parser/accesslog"
	"logtop/internal/pipeline"
	"logtop/internal/source/file"
	"logtop/internal/storage"
)

// Report is the outcome of a successful run.
type Report struct {
	// Lines is the raw input line count; Entries how many of them parsed.
	Lines   int
	Entries int

	// Digest is the xxh3 fingerprint of the input line set.
	Digest uint64

	// Top holds the ranked (address, count) pairs, highest count first.
	Top []model.AddressCount

	// Per-phase wall-clock durations.
	ParseTime time.Duration
	LoadTime  time.Duration
	QueryTime time.Duration
}

// Run executes the full pipeline described by cfg against repo.
//
// Every failure other than a non-matching line is fatal to the run: the error
// is returned, nothing is retried, and the transactional load guarantees no
// partial batch is left behind.
func Run(ctx context.Context, cfg config.Pipeline, repo storage.Repository) (*Report, error) {
	if repo == nil {
		return nil, fmt.Errorf("analyzer: repository must not be nil")
	}

	rep := &Report{}

	// Read. The source failing to open or read aborts before any parsing.
	src := file.NewLocal(cfg.Source.File.Path)
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("analyzer: open source: %w", err)
	}
	ls, err := file.ReadLines(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("analyzer: read source: %w", err)
	}
	rep.Lines = len(ls.Lines)
	rep.Digest = ls.Digest
	metrics.RecordRows(cfg.Job, "lines", int64(rep.Lines))

	// Parse in parallel; mismatches are dropped silently, faults abort.
	parseStart := time.Now()
	entries, err := pipeline.ParseAll(ctx, accesslog.New(), ls.Lines, pipeline.Options{
		Workers: cfg.Runtime.Workers,
	})
	rep.ParseTime = time.Since(parseStart)
	metrics.RecordPhase(cfg.Job, "parse", err, rep.ParseTime)
	if err != nil {
		return nil, fmt.Errorf("analyzer: parse: %w", err)
	}
	rep.Entries = len(entries)
	metrics.RecordRows(cfg.Job, "parsed", int64(rep.Entries))
	log.Printf("parsed %d/%d lines in %s (input digest %016x)",
		rep.Entries, rep.Lines, rep.ParseTime.Truncate(time.Millisecond), rep.Digest)

	// Schema before load; a failure here is fatal with nothing written.
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("analyzer: ensure schema: %w", err)
	}

	// Bulk load, one transaction.
	loadStart := time.Now()
	inserted, err := repo.InsertEntries(ctx, entries)
	rep.LoadTime = time.Since(loadStart)
	metrics.RecordPhase(cfg.Job, "load", err, rep.LoadTime)
	if err != nil {
		return nil, fmt.Errorf("analyzer: load: %w", err)
	}
	metrics.RecordRows(cfg.Job, "inserted", inserted)
	log.Printf("loaded %d entries in %s", inserted, rep.LoadTime.Truncate(time.Millisecond))

	// Aggregate.
	topK := cfg.Report.TopK
	if topK == 0 {
		topK = config.DefaultTopK
	}
	queryStart := time.Now()
	top, err := repo.TopAddresses(ctx, topK)
	rep.QueryTime = time.Since(queryStart)
	metrics.RecordPhase(cfg.Job, "query", err, rep.QueryTime)
	if err != nil {
		return nil, fmt.Errorf("analyzer: top addresses: %w", err)
	}
	rep.Top = top
	log.Printf("aggregated top %d addresses in %s", len(top), rep.QueryTime.Truncate(time.Millisecond))

	return rep, nil
}
