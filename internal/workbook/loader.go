package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Format is the container format of a spreadsheet file.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// CSV encodings accepted by LoaderOptions.
const (
	EncodingAuto    = "auto"
	EncodingUTF8    = "utf-8"
	EncodingGB18030 = "gb18030"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither a workbook
	// nor comma-separated text.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	// ErrEmptyFile is returned for zero-length inputs.
	ErrEmptyFile = errors.New("file is empty")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// CSVEncoding selects the text encoding of CSV inputs: auto, utf-8 or gb18030.
	CSVEncoding string
}

// Loader reads spreadsheet sources into sheets of cells.
type Loader struct {
	opts   LoaderOptions
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger falls back to slog.Default.
func NewLoader(opts LoaderOptions, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CSVEncoding == "" {
		opts.CSVEncoding = EncodingAuto
	}
	return &Loader{
		opts:   opts,
		logger: logger.With(slog.String("component", "workbook_loader")),
	}
}

// Load reads every sheet of src.
func (l *Loader) Load(ctx context.Context, src Source) (*Workbook, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	format, err := DetectFormat(src.Name(), data)
	if err != nil {
		return nil, err
	}

	var sheets []Sheet
	switch format {
	case FormatXLSX:
		sheets, err = l.readXLSX(data)
	case FormatXLS:
		sheets, err = l.readXLS(data)
	case FormatCSV:
		sheets, err = l.readCSV(src.Name(), data)
	}
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "workbook loaded",
		slog.String("file", src.Name()),
		slog.String("format", string(format)),
		slog.Int("sheets", len(sheets)))

	return &Workbook{
		Name:   src.Name(),
		Format: format,
		Sheets: sheets,
	}, nil
}

// DetectFormat decides the container format from the leading bytes, falling
// back to the file extension for text formats.
func DetectFormat(name string, data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS, nil
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return "", fmt.Errorf("%w: content is not an xlsx package", ErrUnsupportedFormat)
	case ".xls":
		return "", fmt.Errorf("%w: content is not a BIFF workbook", ErrUnsupportedFormat)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// Extensions lists the file extensions Load understands, lower case with
// the leading dot.
func Extensions() []string {
	return []string{".xlsx", ".xlsm", ".xls", ".csv", ".txt"}
}

// IsSpreadsheetName reports whether name carries a supported extension and
// is not an office lock file such as "~$report.xlsx".
func IsSpreadsheetName(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range Extensions() {
		if ext == e {
			return true
		}
	}
	return false
}
