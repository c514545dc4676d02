package extraction

import (
	"finextract/pkg/contracts/domain"
)

// Labels that open a revenue breakdown section. They take priority over every
// metric rule.
var compositionMarkers = []string{"主营业务构成", "Business Composition"}

// Rule decides whether a label names a metric. Exclude is checked before
// Include; matching is case-sensitive substring containment.
type Rule struct {
	Metric  domain.Metric
	Include []string
	Exclude []string
}

// Matches reports whether label satisfies the rule.
func (r Rule) Matches(label string) bool {
	if containsAny(label, r.Exclude) {
		return false
	}
	return containsAny(label, r.Include)
}

// ruleTable is evaluated in order and the first match wins, so a metric
// listed earlier takes a shared keyword away from later ones. The order
// follows domain.CanonicalMetrics.
var ruleTable = []Rule{
	{
		Metric: domain.MetricRevenue,
		Include: []string{
			"营业总收入", "营业收入", "主营业务收入",
			"Total revenue", "Total Revenue", "Operating revenue", "Revenue", "Net sales", "Sales",
		},
		Exclude: []string{
			"增长率", "同比", "环比", "占比", "比例", "成本", "费用", "率", "%",
			"Cost", "cost", "Growth", "growth", "YoY", "Deferred", "deferred",
			"per share", "expense", "Expense", "marketing", "Marketing",
		},
	},
	{
		Metric: domain.MetricNetProfitParent,
		Include: []string{
			"归属于母公司所有者的净利润", "归属于母公司股东的净利润", "归属于上市公司股东的净利润", "归母净利润", "净利润",
			"Net income attributable", "Net profit attributable", "Net income", "Net profit", "Profit attributable to owners",
		},
		Exclude: []string{
			"扣除非经常性损益", "扣非", "少数股东", "调节", "率", "同比", "占比", "%",
			"Minority", "minority", "Non-controlling", "non-controlling", "noncontrolling",
			"margin", "Margin", "Growth", "growth", "per share", "Per Share",
		},
	},
	{
		Metric:  domain.MetricTotalAssets,
		Include: []string{"资产总计", "资产总额", "总资产", "Total assets", "Total Assets"},
		Exclude: []string{
			"负债和", "负债及", "收益率", "周转率", "率", "增长", "同比", "%",
			"Return on", "return on", "turnover", "Turnover", "liabilities and", "Liabilities and",
		},
	},
	{
		// Totals that include minority interest are left out on purpose.
		Metric: domain.MetricEquityParent,
		Include: []string{
			"归属于母公司所有者权益合计", "归属于母公司股东权益合计", "归属于母公司所有者权益", "归属于母公司股东权益",
			"归属于上市公司股东的净资产", "归母净资产", "净资产",
			"Equity attributable", "equity attributable", "Total shareholders' equity", "Total stockholders' equity",
		},
		Exclude: []string{
			"负债和", "负债及", "少数股东", "收益率", "率", "每股", "同比", "%",
			"Liabilities and", "liabilities and", "Return on", "return on", "per share", "Per Share",
			"Minority", "minority", "Non-controlling", "non-controlling", "noncontrolling",
		},
	},
	{
		Metric: domain.MetricOperatingCashFlow,
		Include: []string{
			"经营活动产生的现金流量净额", "经营活动现金流量净额", "经营活动产生的现金流净额", "经营性现金流", "经营现金流",
			"Net cash provided by operating activities", "Net cash from operating activities",
			"Net cash generated from operating activities", "Cash flow from operations", "Operating cash flow",
		},
		Exclude: []string{
			"流入", "流出", "率", "同比", "%", "每股",
			"Inflow", "inflow", "Outflow", "outflow", "per share", "Per Share", "margin",
		},
	},
	{
		Metric: domain.MetricCapex,
		Include: []string{
			"购建固定资产、无形资产和其他长期资产支付的现金", "购建固定资产", "资本开支", "资本性支出", "资本支出",
			"Capital expenditure", "Capital Expenditure", "capital expenditure",
			"Purchase of property", "Purchases of property", "Payments for property", "CapEx", "Capex",
		},
		Exclude: []string{"处置", "收回", "Proceeds", "proceeds", "Disposal", "disposal", "Sale of", "率", "%"},
	},
	{
		Metric: domain.MetricCostOfRevenue,
		Include: []string{
			"营业成本", "主营业务成本",
			"Cost of revenue", "Cost of Revenue", "Cost of sales", "Cost of Sales", "Cost of goods sold", "Cost of Goods Sold",
		},
		Exclude: []string{"率", "占比", "比例", "%", "同比"},
	},
	{
		Metric: domain.MetricSellingExpenses,
		Include: []string{
			"销售费用", "营业费用",
			"Selling expenses", "Selling expense", "Selling and marketing", "Sales and marketing",
			"Selling and distribution", "Distribution costs",
		},
		Exclude: []string{"率", "占比", "比例", "%", "同比"},
	},
	{
		// SG&A lines stay unmatched rather than landing on either metric.
		Metric: domain.MetricAdminExpenses,
		Include: []string{
			"管理费用",
			"Administrative expenses", "Administrative expense", "General and administrative", "general and administrative",
		},
		Exclude: []string{"率", "占比", "比例", "%", "同比", "Selling"},
	},
	{
		Metric: domain.MetricFinancialExpenses,
		Include: []string{
			"财务费用",
			"Financial expenses", "Financial expense", "Finance costs", "Finance cost", "Interest expense", "Interest expenses",
		},
		Exclude: []string{"率", "占比", "比例", "%", "同比", "利息收入", "Interest income", "interest income"},
	},
	{
		Metric: domain.MetricRDExpenses,
		Include: []string{
			"研发费用", "研发投入", "研究与开发费用", "研究开发费用",
			"Research and development", "research and development", "R&D",
		},
		Exclude: []string{"率", "占比", "比例", "%", "同比", "资本化", "capitalized", "Capitalized"},
	},
	{
		Metric: domain.MetricIncomeTax,
		Include: []string{
			"所得税费用", "所得税",
			"Income tax expense", "Income tax expenses", "Income taxes", "Income tax", "Provision for income taxes", "Tax expense",
		},
		Exclude: []string{
			"递延", "应交", "税前", "扣除", "率", "%", "同比",
			"Deferred", "deferred", "before", "Before", "payable", "Payable",
		},
	},
}

// Rules returns a copy of the rule table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(ruleTable))
	for i, r := range ruleTable {
		out[i] = Rule{
			Metric:  r.Metric,
			Include: append([]string(nil), r.Include...),
			Exclude: append([]string(nil), r.Exclude...),
		}
	}
	return out
}

// CompositionMarkers returns the labels that open a business composition
// section.
func CompositionMarkers() []string {
	return append([]string(nil), compositionMarkers...)
}
