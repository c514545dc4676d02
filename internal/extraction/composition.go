package extraction

import (
	"strings"
	"unicode/utf8"

	"finextract/pkg/contracts/domain"
)

// ParseComposition parses a "name:value; name:value" breakdown cell. Both
// ASCII and full-width separators are accepted. Fragments without a name or a
// numeric value are dropped; the rest are returned in input order.
func ParseComposition(text string) []domain.BusinessCompositionItem {
	fragments := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == '；'
	})

	items := make([]domain.BusinessCompositionItem, 0, len(fragments))
	for _, frag := range fragments {
		i := strings.IndexAny(frag, ":：")
		if i < 0 {
			continue
		}
		_, width := utf8.DecodeRuneInString(frag[i:])

		name := strings.TrimSpace(frag[:i])
		if name == "" {
			continue
		}
		value, ok := parseNumber(frag[i+width:])
		if !ok {
			continue
		}
		items = append(items, domain.BusinessCompositionItem{Name: name, Value: value})
	}
	return items
}
