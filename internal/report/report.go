// Package report renders a models.Report. Every format carries the same
// per-interface delta table.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/netstats-history/netdelta/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// Format names an output encoding.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatMsgpack Format = "msgpack"
)

// ErrUnknownFormat is returned for a format Write does not support.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatTable, FormatJSON, FormatCSV, FormatMsgpack:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Write encodes r to w in the given format.
func Write(w io.Writer, r *models.Report, format Format) error {
	switch format {
	case FormatTable:
		return WriteTable(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatMsgpack:
		return WriteMsgpack(w, r)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

const timeLayout = time.RFC3339

// WriteTable prints one aligned block per interface.
func WriteTable(w io.Writer, r *models.Report) error {
	if len(r.Interfaces) == 0 {
		_, err := fmt.Fprintf(w, "%d samples, no interfaces\n", r.Samples)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, s := range r.Interfaces {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "Interface %s: %d observations, %d deltas, %d resets\n",
			s.Interface, s.Observations, len(s.Deltas), s.Resets)
		if len(s.Deltas) == 0 {
			continue
		}
		fmt.Fprintln(tw, "timestamp\tuntil\trx\ttx\treset\t")
		for _, d := range s.Deltas {
			reset := ""
			if d.Reset {
				reset = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t\n",
				d.Timestamp.Format(timeLayout), d.Until.Format(timeLayout), d.RX, d.TX, reset)
		}
		fmt.Fprintf(tw, "total\t\t%d\t%d\t\t\n", s.TotalRX, s.TotalTX)
	}
	return tw.Flush()
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, r *models.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per delta entry with a fixed column order.
func WriteCSV(w io.Writer, r *models.Report) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{"interface", "timestamp", "until", "rx", "tx", "reset"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range r.Interfaces {
		for _, d := range s.Deltas {
			record := []string{
				d.Interface,
				d.Timestamp.Format(time.RFC3339Nano),
				d.Until.Format(time.RFC3339Nano),
				strconv.FormatUint(d.RX, 10),
				strconv.FormatUint(d.TX, 10),
				strconv.FormatBool(d.Reset),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteMsgpack encodes the report with msgpack, keyed by the JSON field names.
func WriteMsgpack(w io.Writer, r *models.Report) error {
	enc := msgpack.NewEncoder(w)
	enc.SetCustomStructTag("json")
	return enc.Encode(r)
}

// MarshalMsgpack returns the msgpack encoding of v, keyed by JSON field names.
func MarshalMsgpack(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
