package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apierrors "finextract/internal/errors"
	"finextract/internal/extraction"
	"finextract/internal/infrastructure"
	"finextract/internal/workbook"
	api "finextract/pkg/contracts/api/v1"
	"finextract/pkg/contracts/domain"
)

// Call sources reported in metrics and spans.
const (
	SourceCLI  = "cli"
	SourceHTTP = "http"
	SourceRows = "rows"
)

// Engine is the extraction pipeline the service drives.
type Engine interface {
	ExtractFiles(ctx context.Context, sources []workbook.Source) (*extraction.Result, error)
	ExtractSheets(ctx context.Context, name string, sheets []workbook.Sheet) *extraction.Result
}

// Validator checks inputs before they reach the engine.
type Validator interface {
	ValidateCount(n int) error
	ValidateUpload(name string, size int64) error
	ValidateFiles(paths []string) error
}

// Upload is an in-memory spreadsheet received over the wire.
type Upload struct {
	Name string
	Data []byte
}

// ExtractionResult is the outcome of one service call.
type ExtractionResult struct {
	Records  []domain.YearRecord
	Sheets   []extraction.SheetReport
	Files    int
	Duration time.Duration
}

// Strategies lists the detected strategy of each sheet, in sheet order.
func (r *ExtractionResult) Strategies() []string {
	out := make([]string, len(r.Sheets))
	for i, s := range r.Sheets {
		out[i] = string(s.Strategy)
	}
	return out
}

// Response converts the result to its HTTP contract.
func (r *ExtractionResult) Response(requestID string) api.ExtractionResponse {
	records := r.Records
	if records == nil {
		records = []domain.YearRecord{}
	}
	sheets := make([]api.SheetSummary, len(r.Sheets))
	for i, s := range r.Sheets {
		sheets[i] = api.SheetSummary{
			File:      s.File,
			Sheet:     s.Sheet,
			Strategy:  s.Strategy,
			HeaderRow: s.HeaderRow,
			Rows:      s.Rows,
			Skipped:   s.Skipped(),
		}
	}
	return api.ExtractionResponse{
		RequestID:  requestID,
		Records:    records,
		Sheets:     sheets,
		Files:      r.Files,
		DurationMS: r.Duration.Milliseconds(),
	}
}

// ExtractionService validates inputs, runs the engine and records telemetry.
type ExtractionService struct {
	engine    Engine
	validator Validator
	tracer    trace.Tracer
	metrics   *infrastructure.Metrics
	logger    *slog.Logger
}

// NewExtractionService creates a service. Nil tracer, metrics and logger are
// replaced with no-op or default implementations; a nil validator skips input
// checks.
func NewExtractionService(engine Engine, validator Validator, tracer trace.Tracer, metrics *infrastructure.Metrics, logger *slog.Logger) (*ExtractionService, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{
		engine:    engine,
		validator: validator,
		tracer:    tracer,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "extraction_service")),
	}, nil
}

// ExtractPaths extracts records from spreadsheet files on disk, merged in the
// order given.
func (s *ExtractionService) ExtractPaths(ctx context.Context, paths []string) (*ExtractionResult, error) {
	if s.validator != nil {
		if err := s.validator.ValidateFiles(paths); err != nil {
			return nil, err
		}
	}
	sources := make([]workbook.Source, len(paths))
	for i, p := range paths {
		sources[i] = workbook.FileSource(p)
	}
	return s.extractSources(ctx, SourceCLI, sources)
}

// ExtractUploads extracts records from uploaded files, merged in the order
// given.
func (s *ExtractionService) ExtractUploads(ctx context.Context, uploads []Upload) (*ExtractionResult, error) {
	if s.validator != nil {
		if err := s.validator.ValidateCount(len(uploads)); err != nil {
			return nil, err
		}
		for _, u := range uploads {
			if err := s.validator.ValidateUpload(u.Name, int64(len(u.Data))); err != nil {
				return nil, err
			}
		}
	}
	sources := make([]workbook.Source, len(uploads))
	for i, u := range uploads {
		sources[i] = workbook.BytesSource(u.Name, u.Data)
	}
	return s.extractSources(ctx, SourceHTTP, sources)
}

// ExtractRows extracts records from sheets whose cells the caller already
// read, treating them as the sheets of one file called source. No sheets
// yields an empty result.
func (s *ExtractionService) ExtractRows(ctx context.Context, source string, sheets []workbook.Sheet) (*ExtractionResult, error) {
	ctx, span := s.tracer.Start(ctx, "extraction.rows",
		trace.WithAttributes(
			attribute.String("extraction.source", source),
			attribute.Int("extraction.sheets", len(sheets)),
		))
	defer span.End()

	start := time.Now()
	res := s.engine.ExtractSheets(ctx, source, sheets)
	result := &ExtractionResult{
		Records:  res.Records,
		Sheets:   res.Sheets,
		Duration: time.Since(start),
	}
	if len(sheets) > 0 {
		result.Files = 1
	}

	s.finish(ctx, span, SourceRows, result, nil)
	return result, nil
}

func (s *ExtractionService) extractSources(ctx context.Context, source string, sources []workbook.Source) (*ExtractionResult, error) {
	ctx, span := s.tracer.Start(ctx, "extraction.files",
		trace.WithAttributes(
			attribute.String("extraction.source", source),
			attribute.Int("extraction.files", len(sources)),
		))
	defer span.End()

	start := time.Now()
	res, err := s.engine.ExtractFiles(ctx, sources)
	if err != nil {
		err = s.translate(err)
		s.finish(ctx, span, source, &ExtractionResult{Files: len(sources), Duration: time.Since(start)}, err)
		return nil, err
	}

	result := &ExtractionResult{
		Records:  res.Records,
		Sheets:   res.Sheets,
		Files:    len(sources),
		Duration: time.Since(start),
	}
	s.finish(ctx, span, source, result, nil)
	return result, nil
}

func (s *ExtractionService) finish(ctx context.Context, span trace.Span, source string, result *ExtractionResult, err error) {
	s.metrics.RecordExtraction(ctx, source, result.Files, result.Strategies(), len(result.Records), result.Duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Extraction failed",
			slog.String("source", source),
			slog.Int("files", result.Files),
			slog.String("error", err.Error()))
		return
	}

	span.SetAttributes(
		attribute.Int("extraction.years", len(result.Records)),
		attribute.Int("extraction.sheets", len(result.Sheets)),
	)
	s.logger.InfoContext(ctx, "Extraction completed",
		slog.String("source", source),
		slog.Int("files", result.Files),
		slog.Int("sheets", len(result.Sheets)),
		slog.Int("years", len(result.Records)),
		slog.Duration("duration", result.Duration))
}

// translate maps engine failures onto application errors. Context errors pass
// through unchanged.
func (s *ExtractionService) translate(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var fe *extraction.FileError
	if errors.As(err, &fe) {
		return apierrors.NewParsingError(fmt.Sprintf("%s could not be read as a spreadsheet", fe.File), fe).
			WithContext("file", fe.File)
	}
	return apierrors.NewAppError(apierrors.ErrTypeParsing, "extraction failed", err)
}
