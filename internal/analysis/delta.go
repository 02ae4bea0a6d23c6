package analysis

import "github.com/netstats-history/netdelta/internal/models"

// ComputeDeltas returns one Delta per consecutive pair of observations, so N
// observations yield N-1 deltas and fewer than two yield none. Each delta is
// labelled with the earlier observation's timestamp.
//
// A counter that decreased is treated as reset to zero in between: the delta is
// the new value itself and the entry is flagged. RX and TX are handled independently.
func ComputeDeltas(obs []models.Observation) []models.Delta {
	if len(obs) < 2 {
		return []models.Delta{}
	}

	deltas := make([]models.Delta, 0, len(obs)-1)
	for i := 0; i+1 < len(obs); i++ {
		prev, next := obs[i], obs[i+1]
		rx, rxReset := counterDelta(prev.RX, next.RX)
		tx, txReset := counterDelta(prev.TX, next.TX)
		deltas = append(deltas, models.Delta{
			Timestamp: prev.Timestamp,
			Until:     next.Timestamp,
			RX:        rx,
			TX:        tx,
			Reset:     rxReset || txReset,
		})
	}
	return deltas
}

func counterDelta(prev, next uint64) (uint64, bool) {
	if next < prev {
		return next, true
	}
	return next - prev, false
}
