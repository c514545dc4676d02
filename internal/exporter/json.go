package exporter

import (
	"encoding/json"
	"io"

	"finextract/pkg/contracts/domain"
)

// WriteJSON writes records as an indented JSON array. A nil slice is
// written as [].
func WriteJSON(w io.Writer, records []domain.YearRecord) error {
	if records == nil {
		records = []domain.YearRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}

// Write encodes records in format f. CSV output carries a BOM.
func Write(w io.Writer, f Format, records []domain.YearRecord) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, records, CSVOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(w, records)
	default:
		return WriteJSON(w, records)
	}
}
