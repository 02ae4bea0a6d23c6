package models

import (
	"fmt"
	"time"
)

// ParseErrorKind classifies a record parse failure.
type ParseErrorKind string

const (
	// DateNotFound means the line has no date field, or the date could not be parsed.
	DateNotFound ParseErrorKind = "DateNotFound"
	// NoInterfaceData means the line has a date but no interface tuples.
	NoInterfaceData ParseErrorKind = "NoInterfaceData"
	// MalformedCounter means a counter token is not an unsigned 64-bit decimal.
	// The counter is recorded as 0 and the line is kept.
	MalformedCounter ParseErrorKind = "MalformedCounter"
)

// Fatal reports whether a parse error of this kind aborts the run.
func (k ParseErrorKind) Fatal() bool {
	return k == DateNotFound || k == NoInterfaceData
}

// ParseError represents an error encountered during parsing.
type ParseError struct {
	Line    int            `json:"line"`
	Kind    ParseErrorKind `json:"kind"`
	Content string         `json:"content"`
	Reason  string         `json:"reason"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// OrderError is returned by strict ingestion when a sample is older than its predecessor.
type OrderError struct {
	Line     int
	Previous time.Time
	Current  time.Time
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("line %d: timestamp %s is before previous sample at %s",
		e.Line, e.Current.Format(time.RFC3339), e.Previous.Format(time.RFC3339))
}
