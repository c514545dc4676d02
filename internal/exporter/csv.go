package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"finextract/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOptions configures CSV output.
type CSVOptions struct {
	// BOMPrefix writes a UTF-8 byte order mark so spreadsheet tools detect
	// the encoding of metric labels and segment names.
	BOMPrefix bool
}

// WriteCSV writes a header row and one row per record.
func WriteCSV(w io.Writer, records []domain.YearRecord, opts CSVOptions) error {
	if opts.BOMPrefix {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, rec := range records {
		if err := writer.Write(Row(rec)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
