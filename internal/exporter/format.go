package exporter

import (
	"fmt"
	"strconv"
	"strings"

	"finextract/pkg/contracts/domain"
)

// Format names an output encoding for year records.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported output formats.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatCSV), string(FormatXLSX)}
}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (supported: %s)", s, strings.Join(Formats(), ", "))
}

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Extension returns the file extension of the format, with the leading dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// CompositionColumn is the header of the segment breakdown column.
const CompositionColumn = "businessComposition"

// Header returns the column names of a tabular export: year, every
// canonical metric in rule order, then the composition column.
func Header() []string {
	header := make([]string, 0, len(domain.CanonicalMetrics)+2)
	header = append(header, "year")
	for _, m := range domain.CanonicalMetrics {
		header = append(header, m.String())
	}
	return append(header, CompositionColumn)
}

// Row renders one record in Header order. Absent optional metrics are
// empty strings.
func Row(rec domain.YearRecord) []string {
	row := make([]string, 0, len(domain.CanonicalMetrics)+2)
	row = append(row, rec.Year)
	for _, m := range domain.CanonicalMetrics {
		if v, ok := rec.Value(m); ok {
			row = append(row, formatFloat(v))
		} else {
			row = append(row, "")
		}
	}
	return append(row, formatComposition(rec.BusinessComposition))
}

// formatFloat renders the shortest decimal that reads back as f.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatComposition renders items as "name:value;name:value", the same
// shape the composition parser reads.
func formatComposition(items []domain.BusinessCompositionItem) string {
	if len(items) == 0 {
		return ""
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Name + ":" + formatFloat(it.Value)
	}
	return strings.Join(parts, ";")
}
