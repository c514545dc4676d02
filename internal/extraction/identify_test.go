package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finextract/pkg/contracts/domain"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		label  string
		want   domain.Metric
		wantOK bool
	}{
		{"营业收入", domain.MetricRevenue, true},
		{"  一、营业总收入  ", domain.MetricRevenue, true},
		{"Total revenue", domain.MetricRevenue, true},
		{"营业收入增长率", "", false},
		{"营业收入同比", "", false},
		{"归属于母公司所有者的净利润", domain.MetricNetProfitParent, true},
		{"净利润", domain.MetricNetProfitParent, true},
		{"扣除非经常性损益后的净利润", "", false},
		{"少数股东损益及净利润", "", false},
		{"Net income attributable to non-controlling interests", "", false},
		{"资产总计", domain.MetricTotalAssets, true},
		{"总资产", domain.MetricTotalAssets, true},
		{"负债和所有者权益总计", "", false},
		{"总资产收益率", "", false},
		{"归属于母公司所有者权益合计", domain.MetricEquityParent, true},
		{"Total shareholders' equity", domain.MetricEquityParent, true},
		{"净资产收益率", "", false},
		{"经营活动产生的现金流量净额", domain.MetricOperatingCashFlow, true},
		{"经营活动现金流入小计", "", false},
		{"购建固定资产、无形资产和其他长期资产支付的现金", domain.MetricCapex, true},
		{"Capital expenditure", domain.MetricCapex, true},
		{"处置固定资产收回的现金净额", "", false},
		{"营业成本", domain.MetricCostOfRevenue, true},
		{"Cost of revenue", domain.MetricCostOfRevenue, true},
		{"销售费用", domain.MetricSellingExpenses, true},
		{"Sales and marketing", domain.MetricSellingExpenses, true},
		{"管理费用", domain.MetricAdminExpenses, true},
		{"Selling, general and administrative expenses", "", false},
		{"财务费用", domain.MetricFinancialExpenses, true},
		{"研发费用", domain.MetricRDExpenses, true},
		{"Research and development", domain.MetricRDExpenses, true},
		{"所得税费用", domain.MetricIncomeTax, true},
		{"递延所得税资产", "", false},
		{"主营业务构成", domain.MetricBusinessComposition, true},
		{"Business Composition (segments)", domain.MetricBusinessComposition, true},
		{"主营业务构成之营业收入", domain.MetricBusinessComposition, true},
		{"项目", "", false},
		{"年份", "", false},
		{"", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := Identify(tt.label)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIdentify_CaseSensitive(t *testing.T) {
	_, ok := Identify("TOTAL ASSETS")
	assert.False(t, ok)

	m, ok := Identify("Total Assets")
	assert.True(t, ok)
	assert.Equal(t, domain.MetricTotalAssets, m)
}

func TestIdentify_FirstRuleWins(t *testing.T) {
	// Matches both revenue and cost of revenue keywords; revenue excludes
	// "成本" so cost of revenue takes it.
	m, ok := Identify("营业收入及营业成本")
	assert.True(t, ok)
	assert.Equal(t, domain.MetricCostOfRevenue, m)

	// Both net profit and total assets keywords; net profit is earlier.
	m, ok = Identify("净利润/总资产")
	assert.True(t, ok)
	assert.Equal(t, domain.MetricNetProfitParent, m)
}

func TestRules(t *testing.T) {
	rules := Rules()
	metrics := make([]domain.Metric, len(rules))
	for i, r := range rules {
		metrics[i] = r.Metric
		assert.NotEmpty(t, r.Include, r.Metric)
	}
	assert.Equal(t, domain.CanonicalMetrics, metrics)

	// Mutating the copy must not leak into identification.
	rules[0].Include[0] = "mutated"
	rules[0].Exclude = nil
	m, ok := Identify("营业总收入")
	assert.True(t, ok)
	assert.Equal(t, domain.MetricRevenue, m)
	_, ok = Identify("营业收入增长率")
	assert.False(t, ok)

	markers := CompositionMarkers()
	markers[0] = "mutated"
	m, _ = Identify("主营业务构成")
	assert.Equal(t, domain.MetricBusinessComposition, m)
}

func TestRule_Matches(t *testing.T) {
	r := Rule{Metric: domain.MetricRevenue, Include: []string{"收入"}, Exclude: []string{"率"}}
	assert.True(t, r.Matches("营业收入"))
	assert.False(t, r.Matches("收入增长率"))
	assert.False(t, r.Matches("利润"))
}
