package accesslog

import (
	"errors"
	"testing"
)

/*
Well-formed lines: every captured field must come through verbatim, with the
status converted to int.
*/

// TestParseLine_WellFormed checks the canonical example line field by field.
func TestParseLine_WellFormed(t *testing.T) {
	t.Parallel()

	p := New()
	e, ok, err := p.ParseLine(`10.0.0.1 - - [01/Jan/2024:00:00:00 +0000] "POST /api/data HTTP/1.1" 404 512`)
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if !ok {
		t.Fatal("ParseLine: no match for well-formed line")
	}
	if e.ClientAddr != "10.0.0.1" {
		t.Errorf("ClientAddr = %q, want 10.0.0.1", e.ClientAddr)
	}
	if e.Timestamp != "01/Jan/2024:00:00:00 +0000" {
		t.Errorf("Timestamp = %q", e.Timestamp)
	}
	if e.Method != "POST" {
		t.Errorf("Method = %q, want POST", e.Method)
	}
	if e.Path != "/api/data" {
		t.Errorf("Path = %q, want /api/data", e.Path)
	}
	if e.Status != 404 {
		t.Errorf("Status = %d, want 404", e.Status)
	}
}

// TestParseLine_Idempotent verifies that parsing the same line twice yields
// equal entries.
func TestParseLine_Idempotent(t *testing.T) {
	t.Parallel()

	p := New()
	line := `192.168.1.1 - - [01/Jan/2024:00:00:00 +0000] "GET /home HTTP/1.1" 200 1024`
	a, ok1, err1 := p.ParseLine(line)
	b, ok2, err2 := p.ParseLine(line)
	if err1 != nil || err2 != nil {
		t.Fatalf("errors: %v, %v", err1, err2)
	}
	if !ok1 || !ok2 {
		t.Fatal("expected both parses to match")
	}
	if a != b {
		t.Fatalf("entries differ: %+v vs %+v", a, b)
	}
}

// TestParseLine_Malformed runs the mismatch cases: each must produce no entry
// and no error.
func TestParseLine_Malformed(t *testing.T) {
	t.Parallel()

	p := New()
	cases := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"trailing whitespace", `192.168.1.1 - - [01/Jan/2024:00:00:00 +0000] "GET /home HTTP/1.1" 200 1024 `},
		{"missing brackets", `192.168.1.1 - - 01/Jan/2024:00:00:00 +0000 "GET /home HTTP/1.1" 200 1024`},
		{"missing quotes", `192.168.1.1 - - [01/Jan/2024:00:00:00 +0000] GET /home HTTP/1.1 200 1024`},
		{"non-numeric status", `192.168.1.1 - - [01/Jan/2024:00:00:00 +0000] "GET /home HTTP/1.1" abc 1024`},
		{"no trailing fields", `192.168.1.1 - - [01/Jan/2024:00:00:00 +0000] "GET /home HTTP/1.1"`},
		{"wrong field count", `192.168.1.1 - [01/Jan/2024:00:00:00 +0000] "GET /home HTTP/1.1" 200 1024`},
		{"plain text", "not a log line at all"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, ok, err := p.ParseLine(tc.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok {
				t.Fatalf("unexpected match: %+v", e)
			}
		})
	}
}

// TestParseLine_StatusRange covers negative and large-but-representable
// status codes, which must still parse, and a status too large for int,
// which is dropped without error.
func TestParseLine_StatusRange(t *testing.T) {
	t.Parallel()

	p := New()

	e, ok, err := p.ParseLine(`10.0.0.1 - - [t] "GET / HTTP/1.1" -500 0`)
	if err != nil || !ok {
		t.Fatalf("negative status: ok=%v err=%v", ok, err)
	}
	if e.Status != -500 {
		t.Errorf("Status = %d, want -500", e.Status)
	}

	e, ok, err = p.ParseLine(`10.0.0.1 - - [t] "GET / HTTP/1.1" 99999999 0`)
	if err != nil || !ok {
		t.Fatalf("huge status: ok=%v err=%v", ok, err)
	}
	if e.Status != 99999999 {
		t.Errorf("Status = %d, want 99999999", e.Status)
	}

	// 25 digits overflows int64; the line is dropped, not an error.
	_, ok, err = p.ParseLine(`10.0.0.1 - - [t] "GET / HTTP/1.1" 1234567890123456789012345 0`)
	if err != nil {
		t.Fatalf("overflow status: unexpected error: %v", err)
	}
	if ok {
		t.Fatal("overflow status: unexpected match")
	}
}

// TestParseLine_TimestampStopsAtBracket ensures the timestamp group ends at
// the first ']' rather than swallowing later brackets greedily.
func TestParseLine_TimestampStopsAtBracket(t *testing.T) {
	t.Parallel()

	p := New()
	// A second bracketed token where the request string should be: no match,
	// because the timestamp group cannot extend past the first ']'.
	_, ok, err := p.ParseLine(`10.0.0.1 - - [a][b] "GET / HTTP/1.1" 200 0`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("unexpected match for doubled brackets")
	}

	// Bracket text containing spaces is fine as long as there is one ']'.
	e, ok, err := p.ParseLine(`10.0.0.1 - - [01/Jan/2024 00:00:00] "GET / HTTP/1.1" 200 0`)
	if err != nil || !ok {
		t.Fatalf("spaced timestamp: ok=%v err=%v", ok, err)
	}
	if e.Timestamp != "01/Jan/2024 00:00:00" {
		t.Errorf("Timestamp = %q", e.Timestamp)
	}
}

// faultyMatcher always fails, standing in for a malfunctioning strategy.
type faultyMatcher struct{}

var errBroken = errors.New("broken matcher")

func (faultyMatcher) Match(string) ([]string, error) { return nil, errBroken }

// TestParseLine_MatcherFault verifies that a matcher fault propagates as an
// error and is distinguishable from a plain mismatch.
func TestParseLine_MatcherFault(t *testing.T) {
	t.Parallel()

	p := NewWithMatcher(faultyMatcher{})
	_, ok, err := p.ParseLine("anything")
	if ok {
		t.Fatal("unexpected match from faulty matcher")
	}
	if !errors.Is(err, errBroken) {
		t.Fatalf("err = %v, want wrapped errBroken", err)
	}
}

func BenchmarkParseLine(b *testing.B) {
	p := New()
	line := `192.168.1.1 - - [01/Jan/2024:00:00:00 +0000] "GET /home HTTP/1.1" 200 1024`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, ok, err := p.ParseLine(line); !ok || err != nil {
			b.Fatalf("ok=%v err=%v", ok, err)
		}
	}
}
