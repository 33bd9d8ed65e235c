// Command genlog writes a synthetic access-log file for testing the analysis
// pipeline. Generation is skipped when the target file already exists, so a
// hand-crafted fixture is never clobbered.
//
// Example:
//
//	genlog -out sample_access.log -lines 10000
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"logtop/internal/genlog"
)

func main() {
	var (
		out   string
		lines int
		force bool
	)
	flag.StringVar(&out, "out", "sample_access.log", "output log file path")
	flag.IntVar(&lines, "lines", 10000, "number of log lines to generate")
	flag.BoolVar(&force, "force", false, "overwrite an existing file")
	flag.Parse()

	if lines <= 0 {
		fmt.Fprintf(os.Stderr, "lines must be > 0, got %d\n", lines)
		os.Exit(1)
	}

	if !force {
		if _, err := os.Stat(out); err == nil {
			log.Printf("existing log file %q found, skipping generation (use -force to overwrite)", out)
			return
		}
	}

	f, err := os.Create(out)
	if err != nil {
		log.Fatalf("create %s: %v", out, err)
	}
	defer f.Close()

	if err := genlog.Write(f, lines, time.Now()); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("wrote %d lines to %s", lines, out)
}
