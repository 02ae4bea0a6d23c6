// Package models contains domain types for the netstats delta analyzer.
package models

import "time"

// InterfaceCounters is one interface's cumulative byte counters as reported in a log line.
type InterfaceCounters struct {
	Name string `json:"name"`
	RX   uint64 `json:"rx"`
	TX   uint64 `json:"tx"`
}

// Sample is one log line's worth of data: a timestamp plus the counters of every
// interface listed on that line. Interface names are unique within a sample.
type Sample struct {
	Line       int                 `json:"line"`
	Timestamp  time.Time           `json:"timestamp"`
	Interfaces []InterfaceCounters `json:"interfaces"`
}

// Lookup returns the counters recorded for name in this sample.
func (s Sample) Lookup(name string) (InterfaceCounters, bool) {
	for _, ic := range s.Interfaces {
		if ic.Name == name {
			return ic, true
		}
	}
	return InterfaceCounters{}, false
}

// TimeRange represents a time window.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
