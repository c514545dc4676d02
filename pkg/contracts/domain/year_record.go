package domain

// BusinessCompositionItem is one named line of a revenue breakdown.
type BusinessCompositionItem struct {
	Name  string  `json:"name" validate:"required"`
	Value float64 `json:"value"`
}

// YearRecord holds the finalized metrics of one fiscal year.
//
// Revenue, NetProfitParent, TotalAssets and EquityParent are always set
// (defaulting to zero); the remaining metrics are nil when no source value was
// found.
type YearRecord struct {
	Year string `json:"year" validate:"required,len=4,numeric"`

	Revenue         float64 `json:"revenue"`
	NetProfitParent float64 `json:"netProfitParent"`
	TotalAssets     float64 `json:"totalAssets"`
	EquityParent    float64 `json:"equityParent"`

	OperatingCashFlow *float64 `json:"operatingCashFlow,omitempty"`
	Capex             *float64 `json:"capex,omitempty"`
	CostOfRevenue     *float64 `json:"costOfRevenue,omitempty"`
	SellingExpenses   *float64 `json:"sellingExpenses,omitempty"`
	AdminExpenses     *float64 `json:"adminExpenses,omitempty"`
	FinancialExpenses *float64 `json:"financialExpenses,omitempty"`
	RDExpenses        *float64 `json:"rdExpenses,omitempty"`
	IncomeTaxExpenses *float64 `json:"incomeTaxExpenses,omitempty"`

	BusinessComposition []BusinessCompositionItem `json:"businessComposition,omitempty"`
}

// Value returns the value stored for m and whether it is present.
// The four core metrics are always present on a finalized record.
func (r *YearRecord) Value(m Metric) (float64, bool) {
	switch m {
	case MetricRevenue:
		return r.Revenue, true
	case MetricNetProfitParent:
		return r.NetProfitParent, true
	case MetricTotalAssets:
		return r.TotalAssets, true
	case MetricEquityParent:
		return r.EquityParent, true
	}
	if p := r.optional(m); p != nil && *p != nil {
		return **p, true
	}
	return 0, false
}

// Set stores v under m. Setting MetricBusinessComposition or an unknown
// metric is a no-op.
func (r *YearRecord) Set(m Metric, v float64) {
	switch m {
	case MetricRevenue:
		r.Revenue = v
		return
	case MetricNetProfitParent:
		r.NetProfitParent = v
		return
	case MetricTotalAssets:
		r.TotalAssets = v
		return
	case MetricEquityParent:
		r.EquityParent = v
		return
	}
	if p := r.optional(m); p != nil {
		val := v
		*p = &val
	}
}

func (r *YearRecord) optional(m Metric) **float64 {
	switch m {
	case MetricOperatingCashFlow:
		return &r.OperatingCashFlow
	case MetricCapex:
		return &r.Capex
	case MetricCostOfRevenue:
		return &r.CostOfRevenue
	case MetricSellingExpenses:
		return &r.SellingExpenses
	case MetricAdminExpenses:
		return &r.AdminExpenses
	case MetricFinancialExpenses:
		return &r.FinancialExpenses
	case MetricRDExpenses:
		return &r.RDExpenses
	case MetricIncomeTax:
		return &r.IncomeTaxExpenses
	}
	return nil
}
