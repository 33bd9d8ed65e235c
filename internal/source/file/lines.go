package file

import (
	"bufio"
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
)

// maxLineBytes bounds a single line; access-log lines are short, but a
// corrupt input should fail loudly rather than OOM the scanner.
const maxLineBytes = 1 << 20 // 1 MiB

// LineSet is a fully materialized line collection plus a content fingerprint.
type LineSet struct {
	// Lines holds every input line with the trailing newline (and any '\r'
	// before it) stripped.
	Lines []string

	// Digest is a 64-bit xxh3 fingerprint over the stripped lines, each
	// followed by a single '\n'. Two inputs with the same logical line
	// sequence produce the same digest regardless of CRLF vs LF endings.
	Digest uint64
}

// ReadLines slurps all newline-delimited lines from r. The whole line set is
// held in memory; this pipeline parses a bounded file, not a stream.
func ReadLines(r io.Reader) (*LineSet, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), maxLineBytes)

	h := xxh3.New()
	var lines []string
	for sc.Scan() {
		line := sc.Text()
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, line)
		_, _ = h.WriteString(line)
		_, _ = h.Write([]byte{'\n'})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return &LineSet{Lines: lines, Digest: h.Sum64()}, nil
}
