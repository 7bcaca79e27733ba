package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"metricqa/internal/catalog"
	"metricqa/internal/config"
	"metricqa/internal/files"
	"metricqa/internal/infrastructure"
	"metricqa/internal/report"
	"metricqa/internal/services"
)

const (
	exitOK       = 0
	exitError    = 1
	exitFailures = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code, err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}

type options struct {
	data     string
	catalog  string
	out      string
	format   string
	sheet    string
	config   string
	parallel int
	expect   []string
	strict   bool
	verbose  bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("qualitycheck", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVarP(&opts.data, "data", "d", "", "dataset file or directory to validate; a directory yields its newest .csv/.xlsx (defaults to paths.data_dir)")
	fs.StringVarP(&opts.catalog, "catalog", "c", "", "metric catalog file (defaults to paths.catalog_file)")
	fs.StringVarP(&opts.out, "out", "o", "", "report output path (stdout when empty)")
	fs.StringVarP(&opts.format, "format", "f", "", "report format: json, csv or xlsx (defaults to the --out extension)")
	fs.StringVar(&opts.sheet, "sheet", "", "worksheet to read from an .xlsx dataset (first sheet when empty)")
	fs.StringVar(&opts.config, "config", "", "config.yaml path")
	fs.IntVarP(&opts.parallel, "parallel", "p", 0, "assets validated concurrently (0 uses validation.parallelism)")
	fs.StringSliceVar(&opts.expect, "expect", nil, "assets that must be present, comma separated")
	fs.BoolVar(&opts.strict, "strict", false, "exit with status 2 when any check fails")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose (debug) logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.parallel < 0 {
		return nil, fmt.Errorf("--parallel must be positive, got %d", opts.parallel)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK, nil
		}
		return exitError, err
	}

	cfg, err := config.Load(opts.config)
	if err != nil {
		return exitError, err
	}
	if opts.catalog != "" {
		cfg.Paths.CatalogFile = opts.catalog
	}
	if opts.parallel > 0 {
		cfg.Validation.Parallelism = opts.parallel
	}
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := infrastructure.NewLoggerWithWriter(cfg.Logging, stderr)
	if err != nil {
		return exitError, fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	paths, err := cfg.ResolvePaths()
	if err != nil {
		return exitError, err
	}
	paths.LogPathResolution(logger.Logger)

	if opts.data == "" {
		opts.data = paths.DataDir
	}
	dataPath, err := files.NewDiscovery(paths.BaseDir).ResolveDataset(opts.data)
	if err != nil {
		return exitError, err
	}

	format := report.FormatFromPath(opts.out)
	if opts.format != "" {
		if format, err = report.ParseFormat(opts.format); err != nil {
			return exitError, err
		}
	}

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger.Logger)
	if err != nil {
		return exitError, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer providers.Shutdown(context.Background())

	metrics, err := infrastructure.CreateQualityMetrics(providers.Meter)
	if err != nil {
		return exitError, fmt.Errorf("failed to create quality metrics: %w", err)
	}

	svcOpts := []services.ValidationOption{
		services.WithQualityMetrics(metrics),
		services.WithTracer(providers.Tracer),
	}
	if len(opts.expect) > 0 {
		svcOpts = append(svcOpts, services.WithExpectedAssets(opts.expect...))
	}
	svc := services.NewValidationService(cfg.Validation, catalog.FileSource{Path: paths.CatalogFile}, logger.Logger, svcOpts...)

	rep, err := svc.ValidateFile(infrastructure.EnsureTraceID(ctx), dataPath, opts.sheet)
	if err != nil {
		return exitError, err
	}

	if opts.out == "" {
		err = rep.Write(stdout, format)
	} else {
		err = rep.SaveToFile(opts.out, format)
	}
	if err != nil {
		return exitError, fmt.Errorf("failed to write report: %w", err)
	}

	logger.Info("Validation finished",
		slog.String("run_id", rep.RunID),
		slog.Int("assets", rep.Summary.Assets),
		slog.Int("passed", rep.Summary.Passed),
		slog.Int("failed", rep.Summary.Failed),
		slog.Int("insufficient", rep.Summary.Insufficient),
		slog.String("out", opts.out))

	if opts.strict && !rep.Passed() {
		return exitFailures, nil
	}
	return exitOK, nil
}
