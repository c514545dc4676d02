package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	apierrors "finextract/internal/errors"
	"finextract/internal/extraction"
	"finextract/internal/infrastructure"
	"finextract/internal/shared/testutil"
	"finextract/internal/validation"
	"finextract/internal/workbook"
	"finextract/pkg/contracts/domain"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) ExtractFiles(ctx context.Context, sources []workbook.Source) (*extraction.Result, error) {
	args := m.Called(ctx, sources)
	res, _ := args.Get(0).(*extraction.Result)
	return res, args.Error(1)
}

func (m *mockEngine) ExtractSheets(ctx context.Context, name string, sheets []workbook.Sheet) *extraction.Result {
	args := m.Called(ctx, name, sheets)
	return args.Get(0).(*extraction.Result)
}

func newRealService(t *testing.T) (*ExtractionService, *testutil.BufferedSlogHandler) {
	t.Helper()
	logger, handler := testutil.NewTestLogger(t)
	engine := extraction.NewExtractor(extraction.Config{Workers: 2},
		workbook.NewLoader(workbook.LoaderOptions{}, logger), logger)
	metrics, err := infrastructure.NewMetrics(nil)
	require.NoError(t, err)
	svc, err := NewExtractionService(engine, validation.NewFileValidator(1<<20, 4, logger), nil, metrics, logger)
	require.NoError(t, err)
	return svc, handler
}

func TestNewExtractionService(t *testing.T) {
	_, err := NewExtractionService(nil, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNilEngine)

	svc, err := NewExtractionService(new(mockEngine), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc.tracer)
	assert.NotNil(t, svc.logger)
}

func TestExtractionService_ExtractUploads(t *testing.T) {
	svc, handler := newRealService(t)
	data := testutil.XLSXBytes(t, testutil.HorizontalStatement(), testutil.VerticalStatement())

	result, err := svc.ExtractUploads(context.Background(), []Upload{{Name: "report.xlsx", Data: data}})
	require.NoError(t, err)

	require.Len(t, result.Records, 4)
	years := make([]string, len(result.Records))
	for i, r := range result.Records {
		years[i] = r.Year
	}
	assert.Equal(t, []string{"2019", "2020", "2021", "2022"}, years)
	assert.Equal(t, 1200.0, result.Records[3].Revenue)
	assert.Equal(t, 5500.0, result.Records[3].TotalAssets)
	assert.Equal(t, 1, result.Files)
	assert.Equal(t, []string{"horizontal", "vertical"}, result.Strategies())

	testutil.AssertLogContains(t, handler, slog.LevelInfo, "Extraction completed")
}

func TestExtractionService_ExtractUploadsValidation(t *testing.T) {
	svc, _ := newRealService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		uploads  []Upload
		wantType apierrors.ErrorType
	}{
		{"no uploads", nil, apierrors.ErrTypeValidation},
		{"unsupported extension", []Upload{{Name: "notes.pdf", Data: []byte("x")}}, apierrors.ErrTypeValidation},
		{"empty file", []Upload{{Name: "a.csv"}}, apierrors.ErrTypeValidation},
		{"too many files", make([]Upload, 5), apierrors.ErrTypeLimit},
		{"oversized", []Upload{{Name: "big.csv", Data: make([]byte, 1<<20+1)}}, apierrors.ErrTypeLimit},
		{"unreadable workbook", []Upload{{Name: "bad.xlsx", Data: []byte("plain text")}}, apierrors.ErrTypeParsing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ExtractUploads(ctx, tt.uploads)
			require.Error(t, err)

			var appErr *apierrors.AppError
			require.True(t, errors.As(err, &appErr), "got %T", err)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}

func TestExtractionService_SentinelCauses(t *testing.T) {
	svc, _ := newRealService(t)
	ctx := context.Background()

	_, err := svc.ExtractUploads(ctx, make([]Upload, 5))
	assert.ErrorIs(t, err, ErrTooManyFiles)

	_, err = svc.ExtractUploads(ctx, []Upload{{Name: "big.csv", Data: make([]byte, 1<<20+1)}})
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestExtractionService_ParsingErrorCarriesFile(t *testing.T) {
	svc, _ := newRealService(t)

	_, err := svc.ExtractUploads(context.Background(), []Upload{{Name: "bad.xls", Data: []byte("nope")}})
	require.Error(t, err)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "bad.xls", appErr.Context["file"])
	assert.ErrorIs(t, err, workbook.ErrUnsupportedFormat)
	assert.True(t, extraction.IsFileError(err))
}

func TestExtractionService_ExtractPaths(t *testing.T) {
	svc, _ := newRealService(t)
	dir := t.TempDir()

	first := testutil.WriteFile(t, dir, "a.csv", testutil.CSVBytes(t, [][]string{
		{"项目", "2021", "2022"},
		{"营业收入", "100", "110"},
	}))
	second := testutil.WriteFile(t, dir, "b.csv", testutil.CSVBytes(t, [][]string{
		{"项目", "2021", "2022"},
		{"营业收入", "250", "300"},
	}))

	result, err := svc.ExtractPaths(context.Background(), []string{first, second})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 250.0, result.Records[0].Revenue, "later files win")
	assert.Equal(t, 300.0, result.Records[1].Revenue)
	assert.Equal(t, 2, result.Files)

	_, err = svc.ExtractPaths(context.Background(), []string{dir + "/missing.csv"})
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeNotFound, appErr.Type)
}

func TestExtractionService_ExtractRows(t *testing.T) {
	engine := new(mockEngine)
	want := &extraction.Result{
		Records: []domain.YearRecord{{Year: "2021", Revenue: 10}},
		Sheets:  []extraction.SheetReport{{File: "request", Sheet: "s", Strategy: domain.StrategyHorizontal, Rows: 1}},
	}
	engine.On("ExtractSheets", mock.Anything, "request", mock.MatchedBy(func(sheets []workbook.Sheet) bool {
		return len(sheets) == 1 && sheets[0].Name == "s"
	})).Return(want)

	svc, err := NewExtractionService(engine, nil, nil, nil, nil)
	require.NoError(t, err)

	sheets := []workbook.Sheet{{
		Name: "s",
		Rows: [][]workbook.Cell{workbook.TextRow("项目", "2021"), workbook.TextRow("营业收入", "10")},
	}}
	result, err := svc.ExtractRows(context.Background(), "request", sheets)
	require.NoError(t, err)
	assert.Equal(t, want.Records, result.Records)
	assert.Equal(t, 1, result.Files)
	engine.AssertExpectations(t)

}

func TestExtractionService_NoInputsYieldEmptyResult(t *testing.T) {
	svc, _ := newRealService(t)
	ctx := context.Background()

	uploads, err := svc.ExtractUploads(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, uploads.Records)
	assert.Zero(t, uploads.Files)

	paths, err := svc.ExtractPaths(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, paths.Records)

	rows, err := svc.ExtractRows(ctx, "request", nil)
	require.NoError(t, err)
	assert.Empty(t, rows.Records)
	assert.Empty(t, rows.Sheets)
	assert.Zero(t, rows.Files)

	resp := rows.Response("req-empty")
	assert.NotNil(t, resp.Records)
	assert.Empty(t, resp.Records)
}

func TestExtractionService_RecordsSpanError(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	engine := new(mockEngine)
	engine.On("ExtractFiles", mock.Anything, mock.Anything).
		Return(nil, &extraction.FileError{File: "bad.xlsx", Err: errors.New("zip: not a valid zip file")})

	svc, err := NewExtractionService(engine, nil, tp.Tracer("test"), nil, nil)
	require.NoError(t, err)

	_, err = svc.ExtractUploads(context.Background(), []Upload{{Name: "bad.xlsx", Data: []byte("x")}})
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "extraction.files", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Status.Description, "bad.xlsx")
	require.NotEmpty(t, spans[0].Events)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestExtractionService_ContextErrorsPassThrough(t *testing.T) {
	engine := new(mockEngine)
	engine.On("ExtractFiles", mock.Anything, mock.Anything).Return(nil, context.Canceled)

	svc, err := NewExtractionService(engine, nil, nil, nil, nil)
	require.NoError(t, err)

	_, err = svc.ExtractUploads(context.Background(), []Upload{{Name: "a.csv", Data: []byte("x")}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractionResult_Response(t *testing.T) {
	result := &ExtractionResult{
		Sheets: []extraction.SheetReport{
			{File: "f.xlsx", Sheet: "notes", HeaderRow: -1},
			{File: "f.xlsx", Sheet: "利润表", Strategy: domain.StrategyHorizontal, Rows: 3},
		},
		Files:    1,
		Duration: 1500 * time.Millisecond,
	}

	resp := result.Response("req-1")
	assert.Equal(t, "req-1", resp.RequestID)
	assert.NotNil(t, resp.Records, "records encode as an empty array")
	assert.Empty(t, resp.Records)
	require.Len(t, resp.Sheets, 2)
	assert.True(t, resp.Sheets[0].Skipped)
	assert.False(t, resp.Sheets[1].Skipped)
	assert.Equal(t, int64(1500), resp.DurationMS)
}
