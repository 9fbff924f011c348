package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtrack-app/subtrack/app/models"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sub(name, cost, cycle, category string, start time.Time) models.Subscription {
	return models.Subscription{
		ServiceName:  name,
		Cost:         decimal.RequireFromString(cost),
		Currency:     "USD",
		BillingCycle: cycle,
		StartDate:    start,
		Category:     category,
	}
}

func findByType(t *testing.T, out []models.Insight, insightType string) *models.Insight {
	t.Helper()
	for i := range out {
		if out[i].Type == insightType {
			return &out[i]
		}
	}
	return nil
}

func TestDuplicateCategoryRule(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("Netflix", "15.99", models.BillingCycleMonthly, "Video", date(2026, 1, 1)),
		sub("Disney+", "9.99", models.BillingCycleMonthly, "Video", date(2026, 2, 1)),
		sub("Spotify", "10.99", models.BillingCycleMonthly, "Music", date(2026, 3, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	ins := findByType(t, out, models.InsightTypeCategoryAnalysis)
	require.NotNil(t, ins)
	assert.Equal(t, "Video", ins.Subject)
	assert.Equal(t, models.InsightStatusActive, ins.Status)
	assert.NotNil(t, ins.ExpiresAt)
	assert.GreaterOrEqual(t, ins.ImpactScore, 6)
}

func TestDuplicateCategoryRuleBelowThreshold(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("A", "4.99", models.BillingCycleMonthly, "News", date(2026, 1, 1)),
		sub("B", "3.99", models.BillingCycleMonthly, "News", date(2026, 2, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	assert.Nil(t, findByType(t, out, models.InsightTypeCategoryAnalysis))
}

func TestCostOutlierRule(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("Adobe", "54.99", models.BillingCycleMonthly, "Software", date(2026, 1, 1)),
		sub("Spotify", "10.99", models.BillingCycleMonthly, "Music", date(2026, 2, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	ins := findByType(t, out, models.InsightTypeSpendingAlert)
	require.NotNil(t, ins)
	assert.Equal(t, "Adobe", ins.Subject)
	// 54.99 of 65.98 is above 60%, high severity
	assert.Equal(t, 9, ins.ImpactScore)
	assert.Equal(t, models.SeverityHigh, ins.Severity())
}

func TestCostOutlierRuleNeedsSecondSubscription(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("Adobe", "54.99", models.BillingCycleMonthly, "Software", date(2026, 1, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	assert.Nil(t, findByType(t, out, models.InsightTypeSpendingAlert))
}

func TestSavingOpportunityRule(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("Notion", "12", models.BillingCycleMonthly, "Software", date(2026, 1, 1)),
		sub("Prime", "120", models.BillingCycleYearly, "Shopping", date(2026, 1, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	ins := findByType(t, out, models.InsightTypeSavingOpportunity)
	require.NotNil(t, ins)
	// 12*12 * 2/12 = 24 per year, above the default floor
	assert.Equal(t, "Notion", ins.Subject)
	assert.Equal(t, 5, ins.ImpactScore)
	assert.Equal(t, models.SeverityInfo, ins.Severity())
}

func TestSavingOpportunityIgnoresYearlyPlans(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("Prime", "120", models.BillingCycleYearly, "Shopping", date(2026, 1, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	assert.Nil(t, findByType(t, out, models.InsightTypeSavingOpportunity))
}

func TestSpendingTrendRule(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("Netflix", "15.99", models.BillingCycleMonthly, "Video", date(2026, 1, 1)),
		// yearly renewal lands in September, spiking the latest month
		sub("Prime", "120", models.BillingCycleYearly, "Shopping", date(2025, 9, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	ins := findByType(t, out, models.InsightTypeTrendAnalysis)
	require.NotNil(t, ins)
	assert.Equal(t, "2026-09", ins.Subject)
	// 135.99 vs 15.99 is far more than doubled
	assert.Equal(t, 8, ins.ImpactScore)
}

func TestSpendingTrendNoBaseline(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		// started this month, prior month total is zero
		sub("Netflix", "15.99", models.BillingCycleMonthly, "Video", date(2026, 9, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	assert.Nil(t, findByType(t, out, models.InsightTypeTrendAnalysis))
}

func TestGenerateSkipsExistingKeys(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	subs := []models.Subscription{
		sub("Netflix", "15.99", models.BillingCycleMonthly, "Video", date(2026, 1, 1)),
		sub("Disney+", "9.99", models.BillingCycleMonthly, "Video", date(2026, 2, 1)),
	}

	first := gen.Generate(subs, nil, testNow)
	require.NotEmpty(t, first)

	skip := make(map[string]bool)
	for _, ins := range first {
		skip[DedupeKey(ins.Type, ins.Subject)] = true
	}

	second := gen.Generate(subs, skip, testNow)
	assert.Empty(t, second)
}

func TestGenerateIgnoresEndedSubscriptions(t *testing.T) {
	gen := NewGenerator(DefaultConfig())
	ended := sub("Old", "50", models.BillingCycleMonthly, "Video", date(2025, 1, 1))
	endDate := date(2026, 1, 1)
	ended.EndDate = &endDate
	subs := []models.Subscription{
		ended,
		sub("New", "40", models.BillingCycleMonthly, "Video", date(2026, 1, 1)),
	}

	out := gen.Generate(subs, nil, testNow)

	// only one active sub in Video, so no duplicate-category insight
	assert.Nil(t, findByType(t, out, models.InsightTypeCategoryAnalysis))
}

func TestSeverityMapping(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{10, models.SeverityHigh},
		{8, models.SeverityHigh},
		{7, models.SeverityMedium},
		{6, models.SeverityMedium},
		{5, models.SeverityInfo},
		{4, models.SeverityInfo},
		{3, models.SeverityNeutral},
		{0, models.SeverityNeutral},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, models.SeverityForScore(tt.score), "score %d", tt.score)
	}
}
