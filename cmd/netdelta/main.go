package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/netstats-history/netdelta/internal/analysis"
	"github.com/netstats-history/netdelta/internal/api"
	"github.com/netstats-history/netdelta/internal/config"
	"github.com/netstats-history/netdelta/internal/logging"
	"github.com/netstats-history/netdelta/internal/models"
	"github.com/netstats-history/netdelta/internal/report"
	"github.com/netstats-history/netdelta/internal/session"
	"github.com/netstats-history/netdelta/internal/storage"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const usage = `netdelta - per-interface traffic deltas from a netstats-history log

Usage:
  netdelta -i <file> [options]

Options:
  -i, --in <file>        log file to analyze (required)
  -c, --config <file>    YAML config file
  -f, --format <name>    table|json|csv|msgpack (default table)
  -o, --out <file>       write the report to a file instead of stdout
      --store <name>     memory|duckdb sample store (default memory)
      --serve <addr>     after the run, serve the report over HTTP on addr
      --log-level <lvl>  debug|info|warn|error|off
  -h, --help             this screen

Exit status is 0 on success, 1 when processing fails and 2 on usage errors.
`

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

type cliFlags struct {
	input    string
	config   string
	format   string
	out      string
	store    string
	serve    string
	logLevel string
	help     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var f cliFlags
	fs := flag.NewFlagSet("netdelta", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.input, "i", "", "input filename")
	fs.StringVar(&f.input, "in", "", "input filename")
	fs.StringVar(&f.config, "c", "", "config file")
	fs.StringVar(&f.config, "config", "", "config file")
	fs.StringVar(&f.format, "f", "", "output format")
	fs.StringVar(&f.format, "format", "", "output format")
	fs.StringVar(&f.out, "o", "", "output file")
	fs.StringVar(&f.out, "out", "", "output file")
	fs.StringVar(&f.store, "store", "", "sample store backend")
	fs.StringVar(&f.serve, "serve", "", "HTTP listen address")
	fs.StringVar(&f.logLevel, "log-level", "", "log level")
	fs.BoolVar(&f.help, "h", false, "this screen")
	fs.BoolVar(&f.help, "help", false, "this screen")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, "%v\n\n%s", err, usage)
		return exitUsage
	}
	if f.help {
		fmt.Fprint(stdout, usage)
		return exitOK
	}

	cfg, err := loadConfig(f.config)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	overrideConfig(cfg, f)
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if cfg.Input == "" {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	logger, err := logging.New("netdelta", cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	logger.SetOutput(stderr)

	result, err := analyze(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Processing failed: %s\n", describe(err))
		return exitFail
	}

	if err := writeReport(cfg.Output, result.Report, stdout); err != nil {
		fmt.Fprintf(stderr, "Writing report failed: %v\n", err)
		return exitFail
	}

	if cfg.Server.Listen != "" {
		if err := serve(ctx, cfg.Server, result, logger); err != nil {
			fmt.Fprintf(stderr, "Server failed: %v\n", err)
			return exitFail
		}
	}
	return exitOK
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := &config.Config{}
		cfg.ApplyEnvironmentOverrides()
		config.ApplyDefaults(cfg)
		return cfg, nil
	}
	return config.LoadConfig(path)
}

// overrideConfig applies flags on top of the file and environment.
func overrideConfig(cfg *config.Config, f cliFlags) {
	if f.input != "" {
		cfg.Input = f.input
	}
	if f.format != "" {
		cfg.Output.Format = f.format
	}
	if f.out != "" {
		cfg.Output.Path = f.out
	}
	if f.store != "" {
		cfg.Store.Backend = f.store
	}
	if f.serve != "" {
		cfg.Server.Listen = f.serve
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
}

func analyze(ctx context.Context, cfg *config.Config, logger *log.Logger) (*session.Result, error) {
	order, err := analysis.ParseInterfaceOrder(cfg.Analysis.InterfaceOrder)
	if err != nil {
		return nil, err
	}
	return session.RunFile(ctx, cfg.Input, session.Options{
		Backend: cfg.Store.Backend,
		Duck: storage.DuckStoreOptions{
			TempDir:     cfg.Store.TempDirectory,
			MemoryLimit: cfg.Store.DuckDBMemoryLimit,
			Threads:     cfg.Store.DuckDBThreads,
			BatchSize:   cfg.Store.BatchSize,
		},
		DateLayouts:   cfg.Parser.DateLayouts,
		StrictOrder:   cfg.Parser.StrictOrder,
		Order:         order,
		ProgressEvery: cfg.Parser.ProgressEvery,
		Logger:        logger,
	})
}

// describe turns a run error into the single message shown to the user.
func describe(err error) string {
	var parseErr *models.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Sprintf("syntax error in log file at line %d: %s (%s)", parseErr.Line, parseErr.Reason, parseErr.Kind)
	}
	var orderErr *models.OrderError
	if errors.As(err, &orderErr) {
		return fmt.Sprintf("samples out of order: %v", orderErr)
	}
	return err.Error()
}

func writeReport(out config.OutputConfig, r *models.Report, stdout io.Writer) error {
	format, err := report.ParseFormat(out.Format)
	if err != nil {
		return err
	}
	if out.Path == "" {
		return report.Write(stdout, r, format)
	}

	file, err := os.Create(out.Path)
	if err != nil {
		return err
	}
	if err := report.Write(file, r, format); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func serve(ctx context.Context, sc config.ServerConfig, result *session.Result, logger *log.Logger) error {
	e := api.NewEcho(result, Version, logger)
	srv := api.NewHTTPServer(e, api.ServerOptions{
		Addr:         sc.Listen,
		ReadTimeout:  time.Duration(sc.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(sc.WriteTimeoutSeconds) * time.Second,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("[API] netdelta %s (built %s) serving report %s on http://%s", Version, BuildTime, result.ID, sc.Listen)
		errCh <- e.StartServer(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// e.Shutdown would stop echo's own server, not srv.
		return srv.Shutdown(shutdownCtx)
	}
}
