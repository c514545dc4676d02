package testutil

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// FixtureSheet is a named grid used to build spreadsheet fixtures. Grid
// values are written as-is, so numbers stay numeric in xlsx output.
type FixtureSheet struct {
	Name string
	Grid [][]any
}

// HorizontalStatement is an income statement laid out with years across
// the header row.
func HorizontalStatement() FixtureSheet {
	return FixtureSheet{
		Name: "利润表",
		Grid: [][]any{
			{"项目", "2021", "2022"},
			{"营业收入", 1000, 1200},
			{"营业成本", 600, 700},
			{"归属于母公司所有者的净利润", 120, 150},
			{"资产总计", 5000, 5500},
		},
	}
}

// VerticalStatement is a summary sheet with metrics across the header row
// and one row per year.
func VerticalStatement() FixtureSheet {
	return FixtureSheet{
		Name: "摘要",
		Grid: [][]any{
			{"年份", "营业收入", "归属于母公司所有者的净利润", "总资产", "主营业务构成"},
			{"2019", 700, 60, 4000, "产品A:60;产品B:40"},
			{"2020", 800, 80, 4200, ""},
		},
	}
}

// XLSXBytes renders sheets into an xlsx document.
func XLSXBytes(t testing.TB, sheets ...FixtureSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range s.Grid {
			for c, v := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(s.Name, cell, v); err != nil {
					t.Fatalf("set cell %s: %v", cell, err)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

// CSVBytes renders a single grid as UTF-8 CSV.
func CSVBytes(t testing.TB, grid [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(grid); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return buf.Bytes()
}

// WriteFile stores data under dir and returns the full path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
