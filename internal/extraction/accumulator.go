package extraction

import (
	"math"
	"sort"
	"strconv"

	"finextract/pkg/contracts/domain"
)

type partial struct {
	values         map[domain.Metric]float64
	composition    []domain.BusinessCompositionItem
	hasComposition bool
}

// Accumulator collects metric values per year across sheets and files. Later
// writes for the same year and metric overwrite earlier ones. It is not safe
// for concurrent use; each extraction call owns its own.
type Accumulator struct {
	years map[string]*partial
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{years: make(map[string]*partial)}
}

func (a *Accumulator) year(y string) *partial {
	p, ok := a.years[y]
	if !ok {
		p = &partial{values: make(map[domain.Metric]float64)}
		a.years[y] = p
	}
	return p
}

// Set records v for (year, m). Capital expenditure is stored as a magnitude.
// Non-canonical metrics are ignored.
func (a *Accumulator) Set(year string, m domain.Metric, v float64) {
	if !m.IsCanonical() {
		return
	}
	if m == domain.MetricCapex {
		v = math.Abs(v)
	}
	a.year(year).values[m] = v
}

// SetComposition replaces the business composition of year.
func (a *Accumulator) SetComposition(year string, items []domain.BusinessCompositionItem) {
	p := a.year(year)
	p.composition = append([]domain.BusinessCompositionItem(nil), items...)
	p.hasComposition = true
}

// Merge applies every value of other on top of a, as if other's sheets had
// been processed after a's.
func (a *Accumulator) Merge(other *Accumulator) {
	for y, src := range other.years {
		dst := a.year(y)
		for m, v := range src.values {
			dst.values[m] = v
		}
		if src.hasComposition {
			dst.composition = append([]domain.BusinessCompositionItem(nil), src.composition...)
			dst.hasComposition = true
		}
	}
}

// Len returns the number of years seen so far, including ones that will be
// filtered out by Finalize.
func (a *Accumulator) Len() int {
	return len(a.years)
}

// Finalize returns the year records in ascending year order. Years with none
// of the required metrics are dropped; the four core metrics default to zero.
func (a *Accumulator) Finalize() []domain.YearRecord {
	records := make([]domain.YearRecord, 0, len(a.years))
	for y, p := range a.years {
		if !hasRequired(p) {
			continue
		}

		rec := domain.YearRecord{Year: y}
		for _, m := range domain.CanonicalMetrics {
			if v, ok := p.values[m]; ok {
				rec.Set(m, v)
			}
		}
		if len(p.composition) > 0 {
			rec.BusinessComposition = append([]domain.BusinessCompositionItem(nil), p.composition...)
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		yi, _ := strconv.Atoi(records[i].Year)
		yj, _ := strconv.Atoi(records[j].Year)
		if yi != yj {
			return yi < yj
		}
		return records[i].Year < records[j].Year
	})
	return records
}

func hasRequired(p *partial) bool {
	for _, m := range domain.RequiredMetrics {
		if _, ok := p.values[m]; ok {
			return true
		}
	}
	return false
}
