package extraction

import (
	"regexp"

	"finextract/internal/workbook"
	"finextract/pkg/contracts/domain"
)

// DefaultScanRows is how many leading rows DetectStrategy inspects.
const DefaultScanRows = 30

var (
	leadingYear = regexp.MustCompile(`^(19|20)\d{2}`)
	anyYear     = regexp.MustCompile(`\d{4}`)
	rowYear     = regexp.MustCompile(`^\d{4}`)
)

// DetectStrategy decides how years are laid out in rows and returns the
// header row index. It reports domain.StrategyNone with -1 when the first
// scanRows rows carry no usable header. A non-positive scanRows means
// DefaultScanRows.
//
// Rows are scanned top to bottom and the horizontal test runs before the
// vertical one on each row: two or more year cells make a horizontal header,
// three or more metric labels make a vertical one. If neither appears, a row
// with at least two metric labels that is followed by at least two
// year-leading rows is accepted as a vertical header, which covers narrow
// summary tables such as "year, revenue, net profit".
func DetectStrategy(rows [][]workbook.Cell, scanRows int) (domain.Strategy, int) {
	if scanRows <= 0 {
		scanRows = DefaultScanRows
	}
	limit := min(scanRows, len(rows))

	for i := 0; i < limit; i++ {
		if countYearCells(rows[i]) >= 2 {
			return domain.StrategyHorizontal, i
		}
		if countMetricCells(rows[i]) >= 3 {
			return domain.StrategyVertical, i
		}
	}

	for i := 0; i < limit; i++ {
		if countMetricCells(rows[i]) >= 2 && countYearRowsBelow(rows, i, limit) >= 2 {
			return domain.StrategyVertical, i
		}
	}

	return domain.StrategyNone, -1
}

func countYearCells(row []workbook.Cell) int {
	n := 0
	for _, c := range row {
		if leadingYear.MatchString(c.Trimmed()) {
			n++
		}
	}
	return n
}

func countMetricCells(row []workbook.Cell) int {
	n := 0
	for _, c := range row {
		if _, ok := identifyCanonical(c.Trimmed()); ok {
			n++
		}
	}
	return n
}

func countYearRowsBelow(rows [][]workbook.Cell, header, limit int) int {
	n := 0
	for i := header + 1; i < limit; i++ {
		if _, ok := leadingRowYear(rows[i]); ok {
			n++
		}
	}
	return n
}

// leadingRowYear returns the 4-digit year at the start of column 0.
func leadingRowYear(row []workbook.Cell) (string, bool) {
	y := rowYear.FindString(workbook.At(row, 0).Trimmed())
	return y, y != ""
}

// headerYear returns the first 4-digit group of a horizontal header cell that
// mentions a 19xx or 20xx year, as in "2021", "2021年" or "FY2021/12/31".
func headerYear(c workbook.Cell) (string, bool) {
	s := c.Trimmed()
	if !containsAny(s, []string{"20", "19"}) {
		return "", false
	}
	y := anyYear.FindString(s)
	return y, y != ""
}
