// Command extractor reads financial statement spreadsheets and prints the
// per-year metrics found in them.
//
//	extractor [flags] <file|directory|glob>...
//
// Directories are searched (non-recursively) for .xlsx, .xlsm, .xls, .csv and
// .txt files. Files are merged in argument order; later files win on
// conflicting values.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"finextract/internal/config"
	"finextract/internal/exporter"
	"finextract/internal/extraction"
	"finextract/internal/files"
	"finextract/internal/infrastructure"
	"finextract/internal/services"
	"finextract/internal/validation"
	"finextract/internal/workbook"
	"finextract/pkg/contracts"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type options struct {
	out        string
	format     string
	configFile string
	workers    int
	scanRows   int
	encoding   string
	report     bool
	version    bool
	paths      []string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("extractor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.out, "out", "", "write output to this file instead of stdout")
	fs.StringVar(&opts.format, "format", "", "output format: "+strings.Join(exporter.Formats(), ", ")+" (default from -out extension, else json)")
	fs.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	fs.IntVar(&opts.workers, "workers", 0, "files parsed concurrently (overrides config)")
	fs.IntVar(&opts.scanRows, "scan-rows", 0, "leading rows searched for a header (overrides config)")
	fs.StringVar(&opts.encoding, "encoding", "", "CSV input encoding: auto, utf-8 or gb18030 (overrides config)")
	fs.BoolVar(&opts.report, "report", false, "print a per-sheet summary to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: extractor [flags] <file|directory|glob>...\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.paths = fs.Args()
	return opts, nil
}

// outputFormat picks the explicit format, then the -out extension, then JSON.
func (o *options) outputFormat() (exporter.Format, error) {
	if o.format != "" {
		return exporter.ParseFormat(o.format)
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(o.out)), "."); ext != "" {
		if f, err := exporter.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	return exporter.FormatJSON, nil
}

func loadConfig(o *options) (*config.Config, error) {
	if o.configFile != "" {
		os.Setenv(config.ConfigFileEnv, o.configFile)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if o.workers > 0 {
		cfg.Extraction.Workers = o.workers
	}
	if o.scanRows > 0 {
		cfg.Extraction.ScanRows = o.scanRows
	}
	if o.encoding != "" {
		cfg.Extraction.CSVEncoding = o.encoding
	}
	// Nothing scrapes a one-shot process.
	cfg.Telemetry.EnableMetrics = false

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		return exitUsage
	}

	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	}
	if len(opts.paths) == 0 {
		fmt.Fprintln(stderr, "extractor: no input files")
		return exitUsage
	}

	format, err := opts.outputFormat()
	if err != nil {
		fmt.Fprintf(stderr, "extractor: %v\n", err)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "extractor: %v\n", err)
		return exitUsage
	}

	logger := infrastructure.NewLoggerWithWriter(stderr, cfg.Logging)

	inputs, err := files.NewDiscovery("").Expand(opts.paths)
	if err != nil {
		logger.Error("Failed to resolve inputs", slog.String("error", err.Error()))
		return exitError
	}

	svc, shutdown, err := newService(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize extractor", slog.String("error", err.Error()))
		return exitError
	}
	defer shutdown()

	result, err := svc.ExtractPaths(ctx, files.Paths(inputs))
	if err != nil {
		logger.Error("Extraction failed", slog.String("error", err.Error()))
		return exitError
	}

	if opts.report {
		writeReport(stderr, result)
	}

	var buf bytes.Buffer
	if err := exporter.Write(&buf, format, result.Records); err != nil {
		logger.Error("Failed to encode output", slog.String("error", err.Error()))
		return exitError
	}

	if opts.out == "" {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return exitError
		}
		return exitOK
	}

	if err := files.NewManager("", logger).WriteFile(opts.out, buf.Bytes()); err != nil {
		logger.Error("Failed to write output",
			slog.String("path", opts.out),
			slog.String("error", err.Error()))
		return exitError
	}
	logger.Info("Output written",
		slog.String("path", opts.out),
		slog.String("format", string(format)),
		slog.Int("years", len(result.Records)))
	return exitOK
}

func newService(cfg *config.Config, logger *slog.Logger) (*services.ExtractionService, func(), error) {
	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() { providers.Shutdown(context.Background()) }

	metrics, err := infrastructure.NewMetrics(providers.Meter)
	if err != nil {
		shutdown()
		return nil, nil, err
	}

	ext := cfg.Extraction
	loader := workbook.NewLoader(workbook.LoaderOptions{CSVEncoding: ext.CSVEncoding}, logger)
	engine := extraction.NewExtractor(extraction.Config{ScanRows: ext.ScanRows, Workers: ext.Workers}, loader, logger)
	validator := validation.NewFileValidator(ext.MaxFileSize, ext.MaxFiles, logger)

	svc, err := services.NewExtractionService(engine, validator, providers.Tracer, metrics, logger)
	if err != nil {
		shutdown()
		return nil, nil, err
	}
	return svc, shutdown, nil
}

func writeReport(w io.Writer, result *services.ExtractionResult) {
	for _, s := range result.Sheets {
		strategy := string(s.Strategy)
		if s.Skipped() {
			strategy = "skipped"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\theader=%d\trows=%d\n", s.File, s.Sheet, strategy, s.HeaderRow, s.Rows)
	}
	fmt.Fprintf(w, "%d file(s), %d sheet(s), %d year(s) in %s\n",
		result.Files, len(result.Sheets), len(result.Records), result.Duration.Round(time.Millisecond))
}
