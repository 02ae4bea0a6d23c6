package models

import "time"

// Observation is one interface's cumulative counters at one sample's timestamp.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	RX        uint64    `json:"rx"`
	TX        uint64    `json:"tx"`
}

// Delta is the traffic accumulated between two consecutive observations.
// Timestamp is the earlier observation's time; Until is the later one.
type Delta struct {
	Timestamp time.Time `json:"timestamp"`
	Until     time.Time `json:"until"`
	RX        uint64    `json:"rx"`
	TX        uint64    `json:"tx"`
	// Reset is set when either counter went backwards between the two observations.
	Reset bool `json:"reset"`
}

// DeltaEntry is a Delta attributed to a named interface.
type DeltaEntry struct {
	Interface string `json:"interface"`
	Delta
}

// InterfaceSeries is the delta table of a single interface.
type InterfaceSeries struct {
	Interface    string       `json:"interface"`
	Observations int          `json:"observations"`
	Deltas       []DeltaEntry `json:"deltas"`
	Resets       int          `json:"resets"`
	TotalRX      uint64       `json:"totalRx"`
	TotalTX      uint64       `json:"totalTx"`
}

// Report is the result of analyzing one log file.
type Report struct {
	Source          string            `json:"source,omitempty"`
	Samples         int               `json:"samples"`
	Interfaces      []InterfaceSeries `json:"interfaces"`
	TimeRange       *TimeRange        `json:"timeRange,omitempty"`
	OrderViolations int               `json:"orderViolations,omitempty"`
}

// Series returns the series for the named interface.
func (r *Report) Series(name string) (*InterfaceSeries, bool) {
	for i := range r.Interfaces {
		if r.Interfaces[i].Interface == name {
			return &r.Interfaces[i], true
		}
	}
	return nil, false
}

// InterfaceNames returns the interface names in report order.
func (r *Report) InterfaceNames() []string {
	names := make([]string, 0, len(r.Interfaces))
	for _, s := range r.Interfaces {
		names = append(names, s.Interface)
	}
	return names
}
