package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"finextract/internal/extraction"
	"finextract/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func sampleRecords() []domain.YearRecord {
	return []domain.YearRecord{
		{
			Year:            "2020",
			Revenue:         800,
			NetProfitParent: 80,
			TotalAssets:     4200.5,
			Capex:           ptr(35),
			BusinessComposition: []domain.BusinessCompositionItem{
				{Name: "产品A", Value: 60},
				{Name: "产品B", Value: 40.5},
			},
		},
		{
			Year:            "2021",
			Revenue:         900,
			NetProfitParent: -12.25,
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{" xlsx ", FormatXLSX, false},
		{"pdf", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, ".csv", FormatCSV.Extension())
	assert.Contains(t, FormatXLSX.ContentType(), "spreadsheetml")
	assert.Equal(t, "application/json", FormatJSON.ContentType())
}

func TestHeaderAndRow(t *testing.T) {
	header := Header()
	require.Len(t, header, len(domain.CanonicalMetrics)+2)
	assert.Equal(t, "year", header[0])
	assert.Equal(t, "revenue", header[1])
	assert.Equal(t, CompositionColumn, header[len(header)-1])

	row := Row(sampleRecords()[0])
	require.Len(t, row, len(header))
	assert.Equal(t, "2020", row[0])
	assert.Equal(t, "800", row[1])
	assert.Equal(t, "4200.5", row[3])
	assert.Equal(t, "0", row[4], "equityParent defaults to zero")
	assert.Equal(t, "", row[5], "absent operating cash flow stays empty")
	assert.Equal(t, "35", row[6])
	assert.Equal(t, "产品A:60;产品B:40.5", row[len(row)-1])
}

func TestRow_CompositionRoundTrips(t *testing.T) {
	rec := sampleRecords()[0]
	row := Row(rec)
	assert.Equal(t, rec.BusinessComposition, extraction.ParseComposition(row[len(row)-1]))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords(), CSVOptions{BOMPrefix: true}))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, utf8BOM))

	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header(), rows[0])
	assert.Equal(t, "2021", rows[2][0])
	assert.Equal(t, "-12.25", rows[2][2])

	buf.Reset()
	require.NoError(t, WriteCSV(&buf, nil, CSVOptions{}))
	assert.False(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{RecordsSheet, CompositionSheet}, f.GetSheetList())

	rows, err := f.GetRows(RecordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header(), rows[0])
	assert.Equal(t, "2020", rows[1][0])

	raw, err := f.GetCellValue(RecordsSheet, "D2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "4200.5", raw)
	cellType, err := f.GetCellType(RecordsSheet, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType, "metric values stay numeric")

	comp, err := f.GetRows(CompositionSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"year", "name", "value"},
		{"2020", "产品A", "60"},
		{"2020", "产品B", "40.5"},
	}, comp)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, sampleRecords()))
	var decoded []domain.YearRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleRecords(), decoded)
	assert.Contains(t, buf.String(), "产品A", "non-ASCII names are not escaped")
}

func TestWrite_Dispatch(t *testing.T) {
	var csvBuf, xlsxBuf bytes.Buffer
	require.NoError(t, Write(&csvBuf, FormatCSV, sampleRecords()))
	require.NoError(t, Write(&xlsxBuf, FormatXLSX, sampleRecords()))

	assert.True(t, bytes.HasPrefix(csvBuf.Bytes(), utf8BOM))
	assert.True(t, bytes.HasPrefix(xlsxBuf.Bytes(), []byte("PK")))
}
