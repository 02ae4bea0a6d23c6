// Package session runs one analysis of one log file: ingest into a store,
// freeze it, then compute the per-interface delta tables.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/netstats-history/netdelta/internal/analysis"
	"github.com/netstats-history/netdelta/internal/logging"
	"github.com/netstats-history/netdelta/internal/models"
	"github.com/netstats-history/netdelta/internal/parser"
	"github.com/netstats-history/netdelta/internal/storage"
)

// Options configures a run.
type Options struct {
	Backend       string
	Duck          storage.DuckStoreOptions
	DateLayouts   []string
	StrictOrder   bool
	Order         analysis.InterfaceOrder
	ProgressEvery int
	Logger        *log.Logger
}

// Result is a completed run.
type Result struct {
	ID          string
	GeneratedAt time.Time
	Duration    time.Duration
	Stats       parser.IngestStats
	Report      *models.Report
}

// shortID safely truncates an ID for logging.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// RunFile analyzes the log at path.
func RunFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer f.Close()

	return Run(ctx, f, path, opts)
}

// Run analyzes the log read from r. source names the input in the report.
// On a fatal parse error nothing is returned but the error: ingestion is all-or-nothing.
func Run(ctx context.Context, r io.Reader, source string, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	id := uuid.New().String()
	start := time.Now()
	logger.Infof("[Run %s] parsing %s", shortID(id), source)

	duckOpts := opts.Duck
	if duckOpts.Logger == nil {
		duckOpts.Logger = logger
	}
	store, err := storage.New(opts.Backend, duckOpts)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ingestOpts := parser.IngestOptions{
		StrictOrder:   opts.StrictOrder,
		ProgressEvery: opts.ProgressEvery,
		Logger:        logger,
	}
	if opts.ProgressEvery > 0 {
		ingestOpts.OnProgress = func(lines int, bytesRead int64) {
			logger.Infof("[Run %s] %d lines (%d bytes) read", shortID(id), lines, bytesRead)
		}
	}

	p := parser.NewNetstatsParser(opts.DateLayouts...)
	stats, err := parser.Ingest(ctx, r, p, store, ingestOpts)
	if err != nil {
		return nil, err
	}
	if err := store.Freeze(); err != nil {
		return nil, fmt.Errorf("freezing sample store: %w", err)
	}

	samples, err := store.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}

	report := analysis.Analyze(samples, analysis.Options{Order: opts.Order, Source: source})
	report.OrderViolations = stats.OrderViolations

	elapsed := time.Since(start)
	logger.Infof("[Run %s] %d samples, %d interfaces in %v", shortID(id), report.Samples, len(report.Interfaces), elapsed)

	return &Result{
		ID:          id,
		GeneratedAt: time.Now().UTC(),
		Duration:    elapsed,
		Stats:       stats,
		Report:      report,
	}, nil
}
