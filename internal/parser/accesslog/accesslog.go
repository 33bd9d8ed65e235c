// Package accesslog parses the common access-log line format
//
//	<addr> - - [<timestamp>] "<method> <path> <protocol>" <status> <size>
//
// into model.Entry values. Matching is done behind the Matcher interface so
// the strategy (compiled regexp today, a hand-rolled tokenizer tomorrow) can
// be swapped without touching callers.
//
// Behavior contract:
//
//   - A line that does not match the shape is a normal outcome, not an error:
//     ParseLine returns ok == false and a nil error.
//   - A matcher fault (the matching machinery itself failing) is an error and
//     is reported separately, never conflated with "no match".
package accesslog

import (
	"fmt"
	"regexp"
	"strconv"

	"logtop/internal/model"
)

// linePattern captures, in order: client address, timestamp text, method,
// path, status digits, size field. The remote-ident and remote-user fields,
// the protocol, and the size are matched but discarded. The timestamp group
// excludes ']' so it stops at the first closing bracket, and the pattern is
// anchored at both ends: trailing whitespace makes a line non-matching.
const linePattern = `^(\S+) \S+ \S+ \[([^\]]+)\] "(\S+) (\S+) \S+" (-?\d+) (\S+)$`

// groupCount is the full-match plus the six capture groups above.
const groupCount = 7

// Matcher matches one line against the access-log shape. On a match it
// returns the submatches (full match first, then capture groups); on a
// non-match it returns (nil, nil). A non-nil error means the matcher itself
// malfunctioned, not that the line was malformed.
type Matcher interface {
	Match(line string) ([]string, error)
}

// regexpMatcher is the default Matcher, backed by a compiled regexp.
type regexpMatcher struct {
	re *regexp.Regexp
}

func (m *regexpMatcher) Match(line string) ([]string, error) {
	return m.re.FindStringSubmatch(line), nil
}

// Parser turns raw lines into entries using its Matcher.
// The zero value is not usable; construct with New or NewWithMatcher.
type Parser struct {
	m Matcher
}

// New returns a Parser using the default compiled-regexp matcher.
func New() *Parser {
	return &Parser{m: &regexpMatcher{re: regexp.MustCompile(linePattern)}}
}

// NewWithMatcher returns a Parser using the provided matching strategy.
func NewWithMatcher(m Matcher) *Parser {
	return &Parser{m: m}
}

// ParseLine attempts to parse one line.
//
// Returns (entry, true, nil) on a match, (zero, false, nil) when the line does
// not have the recognized shape, and (zero, false, err) only when the matcher
// faults. A matched line whose status digits do not fit in int is treated as
// non-matching and dropped.
func (p *Parser) ParseLine(line string) (model.Entry, bool, error) {
	groups, err := p.m.Match(line)
	if err != nil {
		return model.Entry{}, false, fmt.Errorf("accesslog: match: %w", err)
	}
	if groups == nil {
		return model.Entry{}, false, nil
	}
	if len(groups) != groupCount {
		return model.Entry{}, false, fmt.Errorf("accesslog: matcher returned %d groups, want %d", len(groups), groupCount)
	}

	status, err := strconv.Atoi(groups[5])
	if err != nil {
		// Numeric per the pattern but not representable; drop the line.
		return model.Entry{}, false, nil
	}

	return model.Entry{
		ClientAddr: groups[1],
		Timestamp:  groups[2],
		Method:     groups[3],
		Path:       groups[4],
		Status:     status,
	}, true, nil
}
