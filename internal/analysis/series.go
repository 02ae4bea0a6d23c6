package analysis

import "github.com/netstats-history/netdelta/internal/models"

// BuildSeries projects samples onto one interface. Samples that do not list
// the interface are skipped, so hot-plugged or renamed adapters produce a
// shorter series instead of pairing with another interface's counters.
func BuildSeries(name string, samples []models.Sample) []models.Observation {
	obs := make([]models.Observation, 0, len(samples))
	for _, s := range samples {
		ic, ok := s.Lookup(name)
		if !ok {
			continue
		}
		obs = append(obs, models.Observation{Timestamp: s.Timestamp, RX: ic.RX, TX: ic.TX})
	}
	return obs
}
