package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/netstats-history/netdelta/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	t1 = time.Date(2014, 10, 14, 10, 0, 0, 0, time.UTC)
	t2 = t1.Add(5 * time.Minute)
	t3 = t1.Add(10 * time.Minute)
)

func sampleReport() *models.Report {
	return &models.Report{
		Source:  "netstats.log",
		Samples: 3,
		Interfaces: []models.InterfaceSeries{
			{
				Interface:    "eth0",
				Observations: 3,
				Deltas: []models.DeltaEntry{
					{Interface: "eth0", Delta: models.Delta{Timestamp: t1, Until: t2, RX: 50, TX: 30}},
					{Interface: "eth0", Delta: models.Delta{Timestamp: t2, Until: t3, RX: 10, TX: 5, Reset: true}},
				},
				Resets:  1,
				TotalRX: 60,
				TotalTX: 35,
			},
			{Interface: "usb0", Observations: 1, Deltas: []models.DeltaEntry{}},
		},
		TimeRange: &models.TimeRange{Start: t1, End: t3},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "JSON": FormatJSON, " csv ": FormatCSV, "msgpack": FormatMsgpack} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	assert.ErrorIs(t, Write(&bytes.Buffer{}, sampleReport(), Format("yaml")), ErrUnknownFormat)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "Interface eth0: 3 observations, 2 deltas, 1 resets")
	assert.Contains(t, out, "Interface usb0: 1 observations, 0 deltas, 0 resets")
	assert.Contains(t, out, "2014-10-14T10:00:00Z")
	assert.Contains(t, out, "yes")

	lines := strings.Split(out, "\n")
	var total string
	for _, l := range lines {
		if strings.HasPrefix(l, "total") {
			total = l
		}
	}
	assert.Equal(t, []string{"total", "60", "35"}, strings.Fields(total))

	// eth0 comes before usb0.
	assert.Less(t, strings.Index(out, "eth0"), strings.Index(out, "usb0"))
}

func TestWriteTable_NoInterfaces(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, &models.Report{Samples: 0, Interfaces: []models.InterfaceSeries{}}))
	assert.Equal(t, "0 samples, no interfaces\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "netstats.log", decoded["source"])
	assert.NotContains(t, decoded, "orderViolations")

	ifaces := decoded["interfaces"].([]interface{})
	require.Len(t, ifaces, 2)
	eth0 := ifaces[0].(map[string]interface{})
	assert.Equal(t, float64(60), eth0["totalRx"])

	first := eth0["deltas"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "eth0", first["interface"])
	assert.Equal(t, "2014-10-14T10:00:00Z", first["timestamp"])
	assert.Equal(t, float64(50), first["rx"])
	assert.Equal(t, false, first["reset"])
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"interface", "timestamp", "until", "rx", "tx", "reset"}, records[0])
	assert.Equal(t, []string{"eth0", "2014-10-14T10:00:00Z", "2014-10-14T10:05:00Z", "50", "30", "false"}, records[1])
	assert.Equal(t, "true", records[2][5])
}

func TestWriteMsgpack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMsgpack(&buf, sampleReport()))

	data, err := MarshalMsgpack(sampleReport())
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), data)

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var got models.Report
	require.NoError(t, dec.Decode(&got))

	assert.Equal(t, []string{"eth0", "usb0"}, got.InterfaceNames())
	eth0, ok := got.Series("eth0")
	require.True(t, ok)
	require.Len(t, eth0.Deltas, 2)
	assert.Equal(t, uint64(10), eth0.Deltas[1].RX)
	assert.True(t, eth0.Deltas[1].Reset)
	assert.True(t, eth0.Deltas[0].Until.Equal(t2))
}
