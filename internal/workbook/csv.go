package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readCSV reads comma-separated text as a single sheet named after the file.
func (l *Loader) readCSV(name string, data []byte) ([]Sheet, error) {
	decoded, err := l.decodeCSV(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	sheetName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return []Sheet{{Name: sheetName, Rows: TextRows(records)}}, nil
}

// decodeCSV returns a UTF-8 reader over data. In auto mode, payloads that are
// not valid UTF-8 are treated as GB18030, the usual encoding of exports from
// mainland Chinese terminals.
func (l *Loader) decodeCSV(data []byte) (io.Reader, error) {
	utf8Decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())

	switch strings.ToLower(l.opts.CSVEncoding) {
	case EncodingUTF8:
		return transform.NewReader(bytes.NewReader(data), utf8Decoder), nil
	case EncodingGB18030:
		return transform.NewReader(bytes.NewReader(data), simplifiedchinese.GB18030.NewDecoder()), nil
	case EncodingAuto, "":
		if utf8.Valid(data) {
			return transform.NewReader(bytes.NewReader(data), utf8Decoder), nil
		}
		return transform.NewReader(bytes.NewReader(data), simplifiedchinese.GB18030.NewDecoder()), nil
	}
	return nil, fmt.Errorf("unknown csv encoding %q", l.opts.CSVEncoding)
}
