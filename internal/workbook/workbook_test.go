package workbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestCell_String(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"empty", Empty(), ""},
		{"text", Text(" 营业收入 "), " 营业收入 "},
		{"integer number", Number(2021), "2021"},
		{"fractional number", Number(1234.5), "1234.5"},
		{"negative number", Number(-0.125), "-0.125"},
		{"bool", Bool(true), "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
}

func TestCell_IsBlank(t *testing.T) {
	assert.True(t, Empty().IsBlank())
	assert.True(t, Text("   ").IsBlank())
	assert.False(t, Text("x").IsBlank())
	assert.False(t, Number(0).IsBlank())
	assert.True(t, Text("\ufeff").IsBlank())
}

func TestCell_TrimmedStripsByteOrderMark(t *testing.T) {
	assert.Equal(t, "2021", Text("\ufeff2021").Trimmed())
	assert.Equal(t, "营业收入", Text(" \ufeff营业收入\u3000").Trimmed())
}

func TestCell_UnmarshalJSON(t *testing.T) {
	var row []Cell
	err := json.Unmarshal([]byte(`["2021", 1200.5, true, null, {"a": 1}, [1, 2]]`), &row)
	require.NoError(t, err)
	require.Len(t, row, 6)

	assert.Equal(t, Text("2021"), row[0])
	assert.Equal(t, Number(1200.5), row[1])
	assert.Equal(t, Bool(true), row[2])
	assert.Equal(t, Empty(), row[3])
	assert.Equal(t, Empty(), row[4])
	assert.Equal(t, Empty(), row[5])
}

func TestCell_UnmarshalJSONRejectsMalformed(t *testing.T) {
	var c Cell
	assert.Error(t, c.UnmarshalJSON([]byte(`"unterminated`)))
	assert.Error(t, c.UnmarshalJSON([]byte(`12abc`)))
}

func TestCell_MarshalJSON(t *testing.T) {
	data, err := json.Marshal([]Cell{Text("a"), Number(2), Bool(false), Empty()})
	require.NoError(t, err)
	assert.JSONEq(t, `["a", 2, false, null]`, string(data))
}

func TestAt(t *testing.T) {
	row := TextRow("a", "b")
	assert.Equal(t, Text("b"), At(row, 1))
	assert.Equal(t, Empty(), At(row, 2))
	assert.Equal(t, Empty(), At(row, -1))
	assert.Equal(t, Empty(), At(nil, 0))
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		data    []byte
		want    Format
		wantErr bool
	}{
		{"zip magic", "report.bin", []byte("PK\x03\x04rest"), FormatXLSX, false},
		{"ole magic", "report", append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, 0), FormatXLS, false},
		{"csv extension", "report.CSV", []byte("a,b"), FormatCSV, false},
		{"txt extension", "report.txt", []byte("a,b"), FormatCSV, false},
		{"xlsx extension with text body", "report.xlsx", []byte("a,b"), "", true},
		{"xls extension with text body", "report.xls", []byte("a,b"), "", true},
		{"unknown extension", "report.pdf", []byte("%PDF"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.file, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestWorkbook(t *testing.T, sheets map[string][][]interface{}, order ...string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestLoader_LoadXLSX(t *testing.T) {
	data := newTestWorkbook(t, map[string][][]interface{}{
		"利润表": {
			{"项目", "2021", "2022"},
			{"营业收入", 1000, 1200.5},
			{nil, "空首列", nil, "D"},
		},
		"资产负债表": {
			{"项目", 2021},
		},
	}, "利润表", "资产负债表")

	loader := NewLoader(LoaderOptions{}, nil)
	wb, err := loader.Load(context.Background(), BytesSource("statements.xlsx", data))
	require.NoError(t, err)

	assert.Equal(t, "statements.xlsx", wb.Name)
	assert.Equal(t, FormatXLSX, wb.Format)
	require.Len(t, wb.Sheets, 2)
	assert.Equal(t, "利润表", wb.Sheets[0].Name)
	assert.Equal(t, "资产负债表", wb.Sheets[1].Name)

	rows := wb.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "营业收入", rows[1][0].String())
	assert.Equal(t, "1000", rows[1][1].String())
	assert.Equal(t, "1200.5", rows[1][2].String())

	// Leading and interior blanks keep their column.
	assert.True(t, rows[2][0].IsBlank())
	assert.Equal(t, "空首列", rows[2][1].String())
	assert.Equal(t, "D", At(rows[2], 3).String())

	assert.Equal(t, "2021", wb.Sheets[1].Rows[0][1].String())
}

func TestLoader_LoadXLSXFromFile(t *testing.T) {
	data := newTestWorkbook(t, map[string][][]interface{}{
		"Sheet1": {{"a", "b"}},
	}, "Sheet1")
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, os.WriteFile(path, data, 0644))

	wb, err := NewLoader(LoaderOptions{}, nil).Load(context.Background(), FileSource(path))
	require.NoError(t, err)
	assert.Equal(t, "book.xlsx", wb.Name)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "b", wb.Sheets[0].Rows[0][1].String())
}

func TestLoader_LoadCSV(t *testing.T) {
	content := "\xEF\xBB\xBF年份,营业收入,净利润\n2020,\"1,000\",80\n2021,900\n"

	wb, err := NewLoader(LoaderOptions{}, nil).Load(context.Background(), BytesSource("summary.csv", []byte(content)))
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, wb.Format)
	require.Len(t, wb.Sheets, 1)
	assert.Equal(t, "summary", wb.Sheets[0].Name)

	rows := wb.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "年份", rows[0][0].String(), "byte order mark must be stripped")
	assert.Equal(t, "1,000", rows[1][1].String())
	assert.Len(t, rows[2], 2, "ragged rows are accepted")
}

func TestLoader_LoadCSVGB18030(t *testing.T) {
	encoded, err := simplifiedchinese.GB18030.NewEncoder().String("科目,2021,2022\n营业收入,10,12\n")
	require.NoError(t, err)

	tests := []struct {
		name     string
		encoding string
	}{
		{"auto detects non utf-8", EncodingAuto},
		{"explicit gb18030", EncodingGB18030},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewLoader(LoaderOptions{CSVEncoding: tt.encoding}, nil)
			wb, err := loader.Load(context.Background(), BytesSource("gbk.csv", []byte(encoded)))
			require.NoError(t, err)
			assert.Equal(t, "科目", wb.Sheets[0].Rows[0][0].String())
			assert.Equal(t, "营业收入", wb.Sheets[0].Rows[1][0].String())
		})
	}
}

func TestLoader_LoadCSVUnknownEncoding(t *testing.T) {
	loader := NewLoader(LoaderOptions{CSVEncoding: "latin-9"}, nil)
	_, err := loader.Load(context.Background(), BytesSource("a.csv", []byte("a,b")))
	assert.Error(t, err)
}

func TestLoader_LoadFailures(t *testing.T) {
	loader := NewLoader(LoaderOptions{}, nil)
	ctx := context.Background()

	_, err := loader.Load(ctx, BytesSource("empty.csv", nil))
	assert.ErrorIs(t, err, ErrEmptyFile)

	_, err = loader.Load(ctx, BytesSource("notes.pdf", []byte("%PDF-1.4")))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = loader.Load(ctx, BytesSource("broken.xlsx", []byte("PK\x03\x04 truncated")))
	assert.Error(t, err)

	_, err = loader.Load(ctx, FileSource(filepath.Join(t.TempDir(), "missing.xlsx")))
	assert.Error(t, err)
}

func TestLoader_LoadHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader(LoaderOptions{}, nil).Load(ctx, BytesSource("a.csv", []byte("a")))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBytesSource_Open(t *testing.T) {
	src := BytesSource("x.csv", []byte("payload"))
	rc, err := src.Open()
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "x.csv", src.Name())
}

func TestIsSpreadsheetName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"report.xlsx", true},
		{"REPORT.XLS", true},
		{"macro.xlsm", true},
		{"dir/summary.csv", true},
		{"export.txt", true},
		{"~$report.xlsx", false},
		{".hidden.csv", false},
		{"notes.pdf", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSpreadsheetName(tt.name))
		})
	}
}
