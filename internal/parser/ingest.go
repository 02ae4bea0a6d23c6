package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/netstats-history/netdelta/internal/logging"
	"github.com/netstats-history/netdelta/internal/models"
)

// ProgressCallback is called periodically during ingestion to report progress.
type ProgressCallback func(linesProcessed int, bytesProcessed int64)

// SampleWriter receives parsed samples in file order.
type SampleWriter interface {
	Append(sample models.Sample) error
}

// IngestOptions tunes Ingest.
type IngestOptions struct {
	// StrictOrder aborts on a sample older than its predecessor instead of counting it.
	StrictOrder bool
	// ProgressEvery is the line interval between OnProgress calls. Zero disables progress.
	ProgressEvery int
	OnProgress    ProgressCallback
	Logger        *log.Logger
}

// IngestStats summarizes an ingestion run.
type IngestStats struct {
	Lines             int
	Samples           int
	MalformedCounters int
	OrderViolations   int
	Warnings          []*models.ParseError
}

const (
	maxScannerBuffer = 1024 * 1024
	ctxCheckInterval = 1024
)

// Ingest reads r line by line, parses each record and appends it to w.
// It stops at the first fatal parse error and returns it with its line number;
// the caller must then discard whatever w has accumulated.
func Ingest(ctx context.Context, r io.Reader, p *NetstatsParser, w SampleWriter, opts IngestOptions) (IngestStats, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	var stats IngestStats
	var bytesRead int64
	var prev *models.Sample

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScannerBuffer)

	for scanner.Scan() {
		stats.Lines++
		raw := scanner.Text()
		bytesRead += int64(len(raw)) + 1

		if stats.Lines%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return stats, err
			}
		}
		if opts.OnProgress != nil && opts.ProgressEvery > 0 && stats.Lines%opts.ProgressEvery == 0 {
			opts.OnProgress(stats.Lines, bytesRead)
		}

		// A blank line has no date and fails like any other malformed record.
		sample, warnings, err := p.ParseLine(strings.TrimSpace(raw), stats.Lines)
		if err != nil {
			return stats, err
		}
		for _, warn := range warnings {
			logger.Warnf("[Ingest] %v", warn)
		}
		stats.MalformedCounters += len(warnings)
		stats.Warnings = append(stats.Warnings, warnings...)

		if prev != nil && sample.Timestamp.Before(prev.Timestamp) {
			if opts.StrictOrder {
				return stats, &models.OrderError{Line: sample.Line, Previous: prev.Timestamp, Current: sample.Timestamp}
			}
			stats.OrderViolations++
			logger.Warnf("[Ingest] line %d: sample at %s is older than line %d at %s",
				sample.Line, sample.Timestamp, prev.Line, prev.Timestamp)
		}

		if err := w.Append(*sample); err != nil {
			return stats, fmt.Errorf("storing sample from line %d: %w", sample.Line, err)
		}
		stats.Samples++
		prev = sample
	}

	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("reading line %d: %w", stats.Lines+1, err)
	}

	if opts.OnProgress != nil && opts.ProgressEvery > 0 {
		opts.OnProgress(stats.Lines, bytesRead)
	}
	logger.Debugf("[Ingest] %d lines, %d samples, %d malformed counters, %d order violations",
		stats.Lines, stats.Samples, stats.MalformedCounters, stats.OrderViolations)

	return stats, nil
}
