package extraction

import (
	"finextract/internal/workbook"
	"finextract/pkg/contracts/domain"
)

type metricColumn struct {
	col    int
	metric domain.Metric
}

// extractVertical walks a sheet whose header row names metrics across
// columns and whose data rows start with a year. It returns the number of
// year rows read.
func extractVertical(rows [][]workbook.Cell, header int, acc *Accumulator) int {
	var columns []metricColumn
	for col, c := range rows[header] {
		if m, ok := Identify(c.Trimmed()); ok {
			columns = append(columns, metricColumn{col: col, metric: m})
		}
	}
	if len(columns) == 0 {
		return 0
	}

	matched := 0
	for _, row := range rows[header+1:] {
		year, ok := leadingRowYear(row)
		if !ok {
			continue
		}

		for _, mc := range columns {
			cell := workbook.At(row, mc.col)
			if mc.metric == domain.MetricBusinessComposition {
				acc.SetComposition(year, ParseComposition(cell.String()))
				continue
			}
			acc.Set(year, mc.metric, Normalize(cell))
		}
		matched++
	}
	return matched
}
