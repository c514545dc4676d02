package domain

// Metric identifies one of the financial quantities extracted from statements.
type Metric string

const (
	MetricRevenue           Metric = "revenue"
	MetricNetProfitParent   Metric = "netProfitParent"
	MetricTotalAssets       Metric = "totalAssets"
	MetricEquityParent      Metric = "equityParent"
	MetricOperatingCashFlow Metric = "operatingCashFlow"
	MetricCapex             Metric = "capex"
	MetricCostOfRevenue     Metric = "costOfRevenue"
	MetricSellingExpenses   Metric = "sellingExpenses"
	MetricAdminExpenses     Metric = "adminExpenses"
	MetricFinancialExpenses Metric = "financialExpenses"
	MetricRDExpenses        Metric = "rdExpenses"
	MetricIncomeTax         Metric = "incomeTaxExpenses"

	// MetricBusinessComposition marks a segment breakdown column. It is not a
	// canonical metric and never carries a numeric value.
	MetricBusinessComposition Metric = "businessComposition"
)

// CanonicalMetrics lists every canonical metric. The order is the order in
// which label rules are evaluated and must not change.
var CanonicalMetrics = []Metric{
	MetricRevenue,
	MetricNetProfitParent,
	MetricTotalAssets,
	MetricEquityParent,
	MetricOperatingCashFlow,
	MetricCapex,
	MetricCostOfRevenue,
	MetricSellingExpenses,
	MetricAdminExpenses,
	MetricFinancialExpenses,
	MetricRDExpenses,
	MetricIncomeTax,
}

// RequiredMetrics are the metrics of which at least one must be present for a
// year to survive finalization.
var RequiredMetrics = []Metric{
	MetricRevenue,
	MetricNetProfitParent,
	MetricTotalAssets,
}

// IsCanonical reports whether m belongs to the canonical metric set.
func (m Metric) IsCanonical() bool {
	for _, c := range CanonicalMetrics {
		if c == m {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (m Metric) String() string {
	return string(m)
}

// Strategy is the table orientation of a sheet.
type Strategy string

const (
	// StrategyNone means no orientation signal was found.
	StrategyNone Strategy = ""
	// StrategyHorizontal means years run across columns.
	StrategyHorizontal Strategy = "horizontal"
	// StrategyVertical means years run down rows.
	StrategyVertical Strategy = "vertical"
)
