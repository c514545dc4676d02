package workbook

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/shakinm/xlsReader/xls"
)

// readXLS reads a legacy BIFF workbook. The reader only opens files by path,
// so the payload is spooled to a temporary file first.
func (l *Loader) readXLS(data []byte) ([]Sheet, error) {
	tmp, err := os.CreateTemp("", "finextract-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to spool workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to spool workbook: %w", err)
	}

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	count := book.GetNumberSheets()
	sheets := make([]Sheet, 0, count)
	for i := 0; i < count; i++ {
		sheet, err := book.GetSheet(i)
		if err != nil || sheet == nil {
			l.logger.Debug("skipping unreadable sheet", slog.Int("index", i))
			continue
		}

		var rows [][]Cell
		for _, r := range sheet.GetRows() {
			cols := r.GetCols()
			row := make([]Cell, len(cols))
			for j, c := range cols {
				row[j] = Text(c.GetString())
			}
			rows = append(rows, row)
		}
		sheets = append(sheets, Sheet{Name: sheet.GetName(), Rows: rows})
	}
	return sheets, nil
}
