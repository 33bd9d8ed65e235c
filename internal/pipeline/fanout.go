// Package pipeline implements the parallel parse stage: it fans a fixed,
// in-memory line collection out across a bounded worker pool and merges the
// per-worker results single-threaded once every worker has finished.
//
// Workers operate on disjoint contiguous shards of the input and append into
// private buffers, so the fan-out phase needs no locks and shares no mutable
// state. The merge happens on the calling goroutine after errgroup.Wait, which
// also guarantees that a cancellation never races a worker writing into a
// shared collection.
package pipeline

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"logtop/internal/model"
	"logtop/internal/parser/accesslog"
)

// Options controls the fan-out.
type Options struct {
	// Workers bounds the pool size; <= 0 means runtime.GOMAXPROCS(0).
	Workers int
}

// ParseAll applies the parser to every line and returns all entries from
// lines that matched. Parallelism never changes the result set, only its
// order: the merged output is in shard order, lines within a shard in input
// order.
//
// Every line is attempted before ParseAll returns. If any worker reports a
// parser fault, the context for the remaining workers is canceled and the
// fault is returned; no partial result is handed back in that case.
func ParseAll(ctx context.Context, p *accesslog.Parser, lines []string, opts Options) ([]model.Entry, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline: parser must not be nil")
	}
	if len(lines) == 0 {
		return nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(lines) {
		workers = len(lines)
	}

	// One private output buffer per shard; merged after Wait.
	outs := make([][]model.Entry, workers)

	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(lines) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(lines) {
			hi = len(lines)
		}
		if lo >= hi {
			break
		}
		w, shard := w, lines[lo:hi]
		g.Go(func() error {
			buf := make([]model.Entry, 0, len(shard))
			for _, line := range shard {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				e, ok, err := p.ParseLine(line)
				if err != nil {
					return fmt.Errorf("pipeline: worker %d: %w", w, err)
				}
				if ok {
					buf = append(buf, e)
				}
			}
			outs[w] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, o := range outs {
		total += len(o)
	}
	merged := make([]model.Entry, 0, total)
	for _, o := range outs {
		merged = append(merged, o...)
	}
	return merged, nil
}
