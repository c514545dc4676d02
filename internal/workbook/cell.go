package workbook

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"
)

// CellKind tags the variant held by a Cell.
type CellKind uint8

const (
	// CellEmpty is a missing or null cell. It is also used for values that are
	// neither text, number nor boolean.
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellBool
)

// Cell is a single spreadsheet value. Exactly one of Text, Number or Bool is
// meaningful, as selected by Kind.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Bool   bool
}

// Empty returns the empty placeholder cell.
func Empty() Cell { return Cell{} }

// Text returns a text cell.
func Text(s string) Cell { return Cell{Kind: CellText, Text: s} }

// Number returns a numeric cell.
func Number(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

// String returns the textual form of the cell. Numbers are rendered in their
// shortest exact decimal form so that a numeric 2021 reads as "2021".
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// Trimmed returns String with surrounding whitespace and byte order marks
// removed.
func (c Cell) Trimmed() string {
	return strings.TrimFunc(c.String(), isPadding)
}

func isPadding(r rune) bool {
	return unicode.IsSpace(r) || r == '\ufeff'
}

// IsBlank reports whether the cell carries no visible content.
func (c Cell) IsBlank() bool {
	return c.Trimmed() == ""
}

// UnmarshalJSON decodes a JSON scalar into the matching variant. Objects and
// arrays decode to an empty cell.
func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*c = Empty()
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Text(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*c = Bool(b)
	case 'n':
		*c = Empty()
	case '{', '[':
		var discard interface{}
		if err := json.Unmarshal(data, &discard); err != nil {
			return err
		}
		*c = Empty()
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*c = Number(v)
	}
	return nil
}

// MarshalJSON encodes the cell as the JSON scalar of its variant.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CellText:
		return json.Marshal(c.Text)
	case CellNumber:
		return json.Marshal(c.Number)
	case CellBool:
		return json.Marshal(c.Bool)
	default:
		return []byte("null"), nil
	}
}

// TextRow builds a row of text cells.
func TextRow(values ...string) []Cell {
	row := make([]Cell, len(values))
	for i, v := range values {
		row[i] = Text(v)
	}
	return row
}

// TextRows builds rows of text cells from a string grid.
func TextRows(grid [][]string) [][]Cell {
	rows := make([][]Cell, len(grid))
	for i, r := range grid {
		rows[i] = TextRow(r...)
	}
	return rows
}

// At returns the cell at column col, or an empty cell when the row is shorter.
func At(row []Cell, col int) Cell {
	if col < 0 || col >= len(row) {
		return Empty()
	}
	return row[col]
}
