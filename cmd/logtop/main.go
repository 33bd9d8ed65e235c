// Command logtop parses an access-log file in parallel, bulk-loads the
// parsed entries into an indexed store, and prints the most frequent client
// addresses with per-phase timings.
//
// Typical use:
//
//	logtop -config configs/sample.json
//	logtop -log sample_access.log -db log_data.db -top 10
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"logtop/internal/analyzer"
	"logtop/internal/config"
	"logtop/internal/metrics"
	"logtop/internal/metrics/prompush"
	"logtop/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "logtop/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		logPath           string
		dbDSN             string
		storageKind       string
		workers           int
		topK              int
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (flags below override it)")
	flag.StringVar(&logPath, "log", "", "access log file to analyze")
	flag.StringVar(&dbDSN, "db", "", "database DSN (file path for sqlite)")
	flag.StringVar(&storageKind, "storage", "", "storage backend kind (default sqlite)")
	flag.IntVar(&workers, "workers", 0, "parse workers (0 = one per core)")
	flag.IntVar(&topK, "top", 0, "ranked addresses to report (0 = 10)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	p := loadPipeline(cfgPath)

	// Flags override the config file.
	if logPath != "" {
		p.Source.Kind = "file"
		p.Source.File.Path = logPath
	}
	if dbDSN != "" {
		p.Storage.DB.DSN = dbDSN
	}
	if storageKind != "" {
		p.Storage.Kind = storageKind
	}
	if p.Storage.Kind == "" {
		p.Storage.Kind = "sqlite"
	}
	if workers > 0 {
		p.Runtime.Workers = workers
	}
	if topK > 0 {
		p.Report.TopK = topK
	}
	if p.Job == "" {
		p.Job = "logtop"
	}

	// Validate the assembled configuration.
	issues := config.ValidatePipeline(p)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("configuration is invalid")
		os.Exit(1)
	}
	if validate {
		log.Printf("configuration is valid")
		os.Exit(0)
	}

	setupMetrics(p.Job, metricsBackendFlg, pushGatewayURLFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("run: source=%s storage=%s dsn=%s workers=%d",
			p.Source.File.Path, p.Storage.Kind, p.Storage.DB.DSN, p.Runtime.Workers)
	}

	repo, err := storage.New(ctx, storage.Config{
		Kind:  p.Storage.Kind,
		DSN:   p.Storage.DB.DSN,
		Table: p.Storage.DB.Table,
	})
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer repo.Close()

	rep, err := analyzer.Run(ctx, p, repo)
	if err != nil {
		log.Fatalf("%v", err)
	}

	printReport(rep)

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// loadPipeline decodes the config file, or returns an empty pipeline when no
// path was given (flags must then supply everything).
func loadPipeline(cfgPath string) config.Pipeline {
	if cfgPath == "" {
		return config.Pipeline{}
	}
	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	p, err := config.Decode(f)
	if err != nil {
		fatalf("decode config: %v", err)
	}
	return p
}

// setupMetrics decides the metrics backend: flag → env → default (none).
func setupMetrics(job, backendName, gwURL string, verbose bool) {
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}
		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job=%v", gwURL, backendName, job)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func printReport(rep *analyzer.Report) {
	fmt.Printf("parsed %d of %d lines (input digest %016x)\n", rep.Entries, rep.Lines, rep.Digest)
	fmt.Printf("timings: parse=%s load=%s query=%s\n",
		rep.ParseTime.Truncate(time.Microsecond),
		rep.LoadTime.Truncate(time.Microsecond),
		rep.QueryTime.Truncate(time.Microsecond),
	)
	fmt.Printf("top %d addresses by request count:\n", len(rep.Top))
	for _, ac := range rep.Top {
		fmt.Printf("- %s: %d requests\n", ac.Addr, ac.Count)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
