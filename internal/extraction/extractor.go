package extraction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finextract/internal/workbook"
	"finextract/pkg/contracts/domain"
)

// DefaultWorkers is the number of files parsed concurrently when Config.Workers
// is not set.
const DefaultWorkers = 4

// Loader reads a spreadsheet source into sheets.
type Loader interface {
	Load(ctx context.Context, src workbook.Source) (*workbook.Workbook, error)
}

// Config tunes an Extractor. Zero values select the defaults.
type Config struct {
	ScanRows int
	Workers  int
}

// SheetReport describes what happened to one sheet.
type SheetReport struct {
	File      string          `json:"file"`
	Sheet     string          `json:"sheet"`
	Strategy  domain.Strategy `json:"strategy"`
	HeaderRow int             `json:"headerRow"`
	Rows      int             `json:"rows"`
}

// Skipped reports whether the sheet contributed nothing.
func (r SheetReport) Skipped() bool {
	return r.Strategy == domain.StrategyNone || r.Rows == 0
}

// Result is the outcome of one extraction call.
type Result struct {
	Records []domain.YearRecord `json:"records"`
	Sheets  []SheetReport       `json:"sheets"`
}

// Extractor runs the extraction pipeline over whole files or raw sheets.
type Extractor struct {
	cfg    Config
	loader Loader
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil logger falls back to slog.Default.
func NewExtractor(cfg Config, loader Loader, logger *slog.Logger) *Extractor {
	if cfg.ScanRows <= 0 {
		cfg.ScanRows = DefaultScanRows
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		cfg:    cfg,
		loader: loader,
		logger: logger.With(slog.String("component", "extractor")),
	}
}

type fileOutcome struct {
	acc     *Accumulator
	reports []SheetReport
	err     error
	// cancelled marks a file abandoned after another file failed.
	cancelled bool
}

// ExtractFiles extracts year records from every sheet of every source. Files
// are parsed concurrently and merged in the order given, so later files win
// on conflicting values. The first unreadable file, in input order, fails the
// whole call with a *FileError and no records. A failure stops files that
// have not been loaded yet.
func (e *Extractor) ExtractFiles(ctx context.Context, sources []workbook.Source) (*Result, error) {
	start := time.Now()
	outcomes := make([]fileOutcome, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = fileOutcome{err: err, cancelled: true}
				return nil
			}
			out := e.extractFile(gctx, src)
			if out.err != nil && gctx.Err() != nil && errors.Is(out.err, context.Canceled) {
				out.cancelled = true
				outcomes[i] = out
				return nil
			}
			outcomes[i] = out
			return out.err
		})
	}
	waitErr := g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	acc := NewAccumulator()
	reports := make([]SheetReport, 0, len(sources))
	for i, out := range outcomes {
		if out.cancelled {
			continue
		}
		if out.err != nil {
			e.logger.WarnContext(ctx, "extraction aborted",
				slog.String("file", sources[i].Name()),
				slog.String("error", out.err.Error()))
			return nil, &FileError{File: sources[i].Name(), Err: out.err}
		}
		acc.Merge(out.acc)
		reports = append(reports, out.reports...)
	}
	if waitErr != nil {
		return nil, waitErr
	}

	result := &Result{Records: acc.Finalize(), Sheets: reports}
	e.logger.InfoContext(ctx, "extraction completed",
		slog.Int("files", len(sources)),
		slog.Int("sheets", len(reports)),
		slog.Int("years", len(result.Records)),
		slog.Duration("duration", time.Since(start)))
	return result, nil
}

func (e *Extractor) extractFile(ctx context.Context, src workbook.Source) fileOutcome {
	wb, err := e.loader.Load(ctx, src)
	if err != nil {
		return fileOutcome{err: err}
	}

	acc := NewAccumulator()
	reports := make([]SheetReport, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		reports = append(reports, e.extractSheet(ctx, src.Name(), sheet, acc))
	}
	return fileOutcome{acc: acc, reports: reports}
}

// ExtractSheets runs the pipeline over sheets that are already in memory, in
// order, as if they were the sheets of a single file called name.
func (e *Extractor) ExtractSheets(ctx context.Context, name string, sheets []workbook.Sheet) *Result {
	acc := NewAccumulator()
	reports := make([]SheetReport, 0, len(sheets))
	for _, sheet := range sheets {
		reports = append(reports, e.extractSheet(ctx, name, sheet, acc))
	}
	return &Result{Records: acc.Finalize(), Sheets: reports}
}

func (e *Extractor) extractSheet(ctx context.Context, file string, sheet workbook.Sheet, acc *Accumulator) SheetReport {
	report := SheetReport{File: file, Sheet: sheet.Name, HeaderRow: -1}

	strategy, header := DetectStrategy(sheet.Rows, e.cfg.ScanRows)
	report.Strategy = strategy
	report.HeaderRow = header

	switch strategy {
	case domain.StrategyHorizontal:
		report.Rows = extractHorizontal(sheet.Rows, header, acc)
	case domain.StrategyVertical:
		report.Rows = extractVertical(sheet.Rows, header, acc)
	default:
		e.logger.DebugContext(ctx, "sheet skipped, no header found",
			slog.String("file", file),
			slog.String("sheet", sheet.Name))
		return report
	}

	e.logger.DebugContext(ctx, "sheet extracted",
		slog.String("file", file),
		slog.String("sheet", sheet.Name),
		slog.String("strategy", string(strategy)),
		slog.Int("header_row", header),
		slog.Int("rows", report.Rows))
	return report
}

// IsFileError reports whether err was caused by an unreadable input file.
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}
