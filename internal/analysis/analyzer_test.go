package analysis

import (
	"testing"

	"github.com/netstats-history/netdelta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	samples := []models.Sample{
		{Line: 1, Timestamp: t1, Interfaces: []models.InterfaceCounters{{Name: "wlan0", RX: 100, TX: 50}, {Name: "eth0", RX: 1000, TX: 500}}},
		{Line: 2, Timestamp: t2, Interfaces: []models.InterfaceCounters{{Name: "wlan0", RX: 150, TX: 80}, {Name: "eth0", RX: 10, TX: 5}}},
		{Line: 3, Timestamp: t3, Interfaces: []models.InterfaceCounters{{Name: "wlan0", RX: 300, TX: 80}}},
	}

	report := Analyze(samples, Options{Order: OrderLexical, Source: "netstats.log"})

	assert.Equal(t, "netstats.log", report.Source)
	assert.Equal(t, 3, report.Samples)
	require.NotNil(t, report.TimeRange)
	assert.Equal(t, t1, report.TimeRange.Start)
	assert.Equal(t, t3, report.TimeRange.End)
	assert.Equal(t, []string{"eth0", "wlan0"}, report.InterfaceNames())

	eth0, ok := report.Series("eth0")
	require.True(t, ok)
	assert.Equal(t, 2, eth0.Observations)
	require.Len(t, eth0.Deltas, 1)
	assert.Equal(t, "eth0", eth0.Deltas[0].Interface)
	assert.True(t, eth0.Deltas[0].Reset)
	assert.Equal(t, 1, eth0.Resets)
	assert.Equal(t, uint64(10), eth0.TotalRX)

	wlan0, ok := report.Series("wlan0")
	require.True(t, ok)
	assert.Equal(t, 3, wlan0.Observations)
	assert.Len(t, wlan0.Deltas, 2)
	assert.Equal(t, uint64(200), wlan0.TotalRX)
	assert.Equal(t, uint64(30), wlan0.TotalTX)
	assert.Zero(t, wlan0.Resets)

	_, ok = report.Series("lo")
	assert.False(t, ok)
}

func TestAnalyze_Empty(t *testing.T) {
	report := Analyze(nil, Options{})
	assert.Zero(t, report.Samples)
	assert.Nil(t, report.TimeRange)
	assert.NotNil(t, report.Interfaces)
	assert.Empty(t, report.Interfaces)
}

func TestAnalyze_Idempotent(t *testing.T) {
	samples := []models.Sample{
		{Line: 1, Timestamp: t1, Interfaces: []models.InterfaceCounters{{Name: "eth0", RX: 1, TX: 1}}},
		{Line: 2, Timestamp: t2, Interfaces: []models.InterfaceCounters{{Name: "eth0", RX: 5, TX: 9}}},
	}
	assert.Equal(t, Analyze(samples, Options{}), Analyze(samples, Options{}))
}
