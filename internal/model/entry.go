// Package model defines the canonical record types shared by the parser,
// pipeline, and storage layers. It is intentionally dependency-free so every
// layer can import it without pulling in parsing or database code.
package model

// Entry is one parsed access-log record, the unit persisted and queried.
//
// ClientAddr is required (a line without it never parses); Timestamp is kept
// as the raw text captured between the brackets, no date semantics attached.
type Entry struct {
	ClientAddr string
	Timestamp  string
	Method     string
	Path       string
	Status     int
}

// AddressCount is one row of the top-K frequency result: a client address and
// the number of persisted entries carrying it.
type AddressCount struct {
	Addr  string
	Count int64
}
