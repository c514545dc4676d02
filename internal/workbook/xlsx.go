package workbook

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// readXLSX reads every worksheet with raw (unformatted) cell values so that
// display formats such as thousands separators or percent styles do not leak
// into the text.
func (l *Loader) readXLSX(data []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	names := f.GetSheetList()
	sheets := make([]Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			// Chart sheets and similar have no cell grid.
			l.logger.Debug("sheet has no readable rows",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		sheets = append(sheets, Sheet{Name: name, Rows: TextRows(rows)})
	}
	return sheets, nil
}
