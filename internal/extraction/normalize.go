package extraction

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"finextract/internal/workbook"
)

// Normalize converts a cell to a number. It never fails: anything that does
// not parse becomes 0.
//
//	"¥1,234.50" -> 1234.5
//	"(500)"     -> -500
//	"12.5%"     -> 0.125
//	"-", "—"    -> 0
func Normalize(c workbook.Cell) float64 {
	switch c.Kind {
	case workbook.CellNumber:
		return c.Number
	case workbook.CellText:
		return NormalizeText(c.Text)
	default:
		return 0
	}
}

// NormalizeText is Normalize for a plain string.
func NormalizeText(s string) float64 {
	v, _ := parseNumber(s)
	return v
}

// parseNumber is the shared core of the normalizer. ok is false when the text
// was not a number; placeholders ("", "-", "—") count as a valid zero.
func parseNumber(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '¥', '$', '£', '€', '￥', ',', '\ufeff':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	switch s {
	case "", "-", "—":
		return 0, true
	}

	if inner, ok := unwrapParens(s); ok {
		s = "-" + inner
	}

	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 100
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v / scale, true
}

func unwrapParens(s string) (string, bool) {
	for _, p := range [][2]string{{"(", ")"}, {"（", "）"}} {
		if strings.HasPrefix(s, p[0]) && strings.HasSuffix(s, p[1]) && len(s) >= len(p[0])+len(p[1]) {
			return s[len(p[0]) : len(s)-len(p[1])], true
		}
	}
	return "", false
}
