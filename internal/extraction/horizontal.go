package extraction

import (
	"finextract/internal/workbook"
	"finextract/pkg/contracts/domain"
)

type yearColumn struct {
	col  int
	year string
}

// extractHorizontal walks a sheet whose header row lists years across
// columns and whose data rows are labelled in column 0 (or 1). It returns the
// number of rows that matched a metric.
func extractHorizontal(rows [][]workbook.Cell, header int, acc *Accumulator) int {
	var columns []yearColumn
	for col, c := range rows[header] {
		if y, ok := headerYear(c); ok {
			columns = append(columns, yearColumn{col: col, year: y})
		}
	}
	if len(columns) == 0 {
		return 0
	}

	matched := 0
	for _, row := range rows[header+1:] {
		label := workbook.At(row, 0).Trimmed()
		if label == "" {
			label = workbook.At(row, 1).Trimmed()
		}

		m, ok := Identify(label)
		if !ok || m == domain.MetricBusinessComposition {
			continue
		}

		for _, yc := range columns {
			acc.Set(yc.year, m, Normalize(workbook.At(row, yc.col)))
		}
		matched++
	}
	return matched
}
