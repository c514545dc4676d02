package workbook

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Sheet is one named table of rows. Cells keep their column position: blank
// cells inside a row are present as empty placeholders.
type Sheet struct {
	Name string   `json:"name"`
	Rows [][]Cell `json:"rows" validate:"required"`
}

// Workbook is the parsed content of one input file.
type Workbook struct {
	Name   string
	Format Format
	Sheets []Sheet
}

// Source is a named spreadsheet payload.
type Source interface {
	// Name identifies the source in logs and errors.
	Name() string
	// Open returns a reader over the raw file content.
	Open() (io.ReadCloser, error)
}

type fileSource struct {
	path string
}

// FileSource returns a Source reading from the file at path.
func FileSource(path string) Source {
	return fileSource{path: path}
}

func (s fileSource) Name() string { return filepath.Base(s.path) }

func (s fileSource) Open() (io.ReadCloser, error) { return os.Open(s.path) }

type bytesSource struct {
	name string
	data []byte
}

// BytesSource returns a Source over an in-memory payload, such as an upload.
func BytesSource(name string, data []byte) Source {
	return bytesSource{name: name, data: data}
}

func (s bytesSource) Name() string { return s.name }

func (s bytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}
