package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"finextract/pkg/contracts/domain"
)

// Sheet names of the xlsx export.
const (
	RecordsSheet     = "Financials"
	CompositionSheet = "Composition"
)

// WriteXLSX writes records as a workbook. The Financials sheet mirrors the
// CSV layout with numeric cells; the Composition sheet lists one segment per
// row as year, name, value.
func WriteXLSX(w io.Writer, records []domain.YearRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeRecordsSheet(f, records); err != nil {
		return err
	}
	if err := writeCompositionSheet(f, records); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRecordsSheet(f *excelize.File, records []domain.YearRecord) error {
	sw, err := f.NewStreamWriter(RecordsSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	header := Header()
	headerCells := make([]interface{}, len(header))
	for i, h := range header {
		headerCells[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		cells := make([]interface{}, 0, len(header))
		cells = append(cells, rec.Year)
		for _, m := range domain.CanonicalMetrics {
			if v, ok := rec.Value(m); ok {
				cells = append(cells, v)
			} else {
				cells = append(cells, nil)
			}
		}
		cells = append(cells, formatComposition(rec.BusinessComposition))

		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Flush()
}

func writeCompositionSheet(f *excelize.File, records []domain.YearRecord) error {
	if _, err := f.NewSheet(CompositionSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(CompositionSheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	if err := sw.SetRow("A1", []interface{}{"year", "name", "value"}); err != nil {
		return err
	}
	row := 2
	for _, rec := range records {
		for _, item := range rec.BusinessComposition {
			axis, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := sw.SetRow(axis, []interface{}{rec.Year, item.Name, item.Value}); err != nil {
				return fmt.Errorf("failed to write composition row: %w", err)
			}
			row++
		}
	}
	return sw.Flush()
}
