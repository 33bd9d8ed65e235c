// Package genlog writes synthetic access-log files for testing and
// benchmarking. The generated traffic is deterministic: addresses, URLs, and
// status codes rotate round-robin through fixed pools, and timestamps walk
// backwards one second per line from the supplied start time.
package genlog

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

var (
	addresses = []string{
		"192.168.1.1", "10.0.0.5", "172.16.0.2", "173.15.2.1", "192.162.1.1",
		"10.1.0.1", "152.63.8.1", "192.123.0.1", "198.33.0.0", "8.1.8.8",
		"9.8.0.0", "11.1.11.1", "192.68.1.1", "198.15.2.1", "198.63.1.1",
		"147.56.2.0", "123.69.1.1", "196.153.78.1",
	}
	urls = []string{
		"/home", "/product/view", "/about", "/api/data", "/images/logo.png",
	}
	statuses = []int{200, 200, 200, 404, 500, 200}
)

// timestampLayout matches the bracketed field of the wire format.
const timestampLayout = "02/Jan/2006:15:04:05 -0700"

// Line returns the i-th synthetic log line (without a trailing newline),
// stamped i seconds before start.
func Line(i int, start time.Time) string {
	ts := start.Add(-time.Duration(i) * time.Second).Format(timestampLayout)
	return fmt.Sprintf(`%s - - [%s] "GET %s HTTP/1.1" %d 1024`,
		addresses[i%len(addresses)],
		ts,
		urls[i%len(urls)],
		statuses[i%len(statuses)],
	)
}

// Write emits n synthetic log lines to w.
func Write(w io.Writer, n int, start time.Time) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		if _, err := bw.WriteString(Line(i, start)); err != nil {
			return fmt.Errorf("genlog: write line %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("genlog: write line %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("genlog: flush: %w", err)
	}
	return nil
}
