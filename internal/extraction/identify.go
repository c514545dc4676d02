package extraction

import (
	"strings"

	"finextract/pkg/contracts/domain"
)

// Identify returns the metric a label denotes. Breakdown section labels
// return domain.MetricBusinessComposition. ok is false when nothing matches.
func Identify(label string) (domain.Metric, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", false
	}
	if containsAny(label, compositionMarkers) {
		return domain.MetricBusinessComposition, true
	}
	for _, r := range ruleTable {
		if r.Matches(label) {
			return r.Metric, true
		}
	}
	return "", false
}

// identifyCanonical is Identify restricted to canonical metrics.
func identifyCanonical(label string) (domain.Metric, bool) {
	m, ok := Identify(label)
	if !ok || m == domain.MetricBusinessComposition {
		return "", false
	}
	return m, true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
