package analysis

import "github.com/netstats-history/netdelta/internal/models"

// Options controls Analyze.
type Options struct {
	Order InterfaceOrder
	// Source is copied into the report, usually the input file name.
	Source string
}

// Analyze builds the delta table of every interface found in samples.
func Analyze(samples []models.Sample, opts Options) *models.Report {
	names := Discover(samples, opts.Order)

	report := &models.Report{
		Source:     opts.Source,
		Samples:    len(samples),
		Interfaces: make([]models.InterfaceSeries, 0, len(names)),
	}
	if len(samples) > 0 {
		report.TimeRange = timeRange(samples)
	}

	for _, name := range names {
		obs := BuildSeries(name, samples)
		deltas := ComputeDeltas(obs)

		series := models.InterfaceSeries{
			Interface:    name,
			Observations: len(obs),
			Deltas:       make([]models.DeltaEntry, 0, len(deltas)),
		}
		for _, d := range deltas {
			series.Deltas = append(series.Deltas, models.DeltaEntry{Interface: name, Delta: d})
			series.TotalRX += d.RX
			series.TotalTX += d.TX
			if d.Reset {
				series.Resets++
			}
		}
		report.Interfaces = append(report.Interfaces, series)
	}

	return report
}

// timeRange scans every sample since the log may not be strictly ordered.
func timeRange(samples []models.Sample) *models.TimeRange {
	tr := &models.TimeRange{Start: samples[0].Timestamp, End: samples[0].Timestamp}
	for _, s := range samples[1:] {
		if s.Timestamp.Before(tr.Start) {
			tr.Start = s.Timestamp
		}
		if s.Timestamp.After(tr.End) {
			tr.End = s.Timestamp
		}
	}
	return tr
}
