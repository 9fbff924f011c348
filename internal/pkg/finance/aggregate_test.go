package finance

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtrack-app/subtrack/app/models"
)

var testNow = date(2026, 9, 1)

func TestSummarizeEmptyInput(t *testing.T) {
	summary, breakdown := Summarize(nil, Window{}, testNow)

	assert.Equal(t, 0, summary.SubscriptionCount)
	assert.True(t, summary.MonthlyCost.IsZero())
	assert.True(t, summary.AnnualCost.IsZero())
	assert.Empty(t, breakdown)
}

func TestSummarizeMixedCycles(t *testing.T) {
	subs := []models.Subscription{
		sub("Spotify", "10", models.BillingCycleMonthly, "Music", date(2026, 1, 1), nil),
		sub("Tidal", "120", models.BillingCycleYearly, "Music", date(2026, 2, 1), nil),
	}

	summary, breakdown := Summarize(subs, Window{}, testNow)

	assert.Equal(t, 2, summary.SubscriptionCount)
	assert.True(t, summary.MonthlyCost.Equal(decimal.NewFromInt(20)), "monthly: %s", summary.MonthlyCost)
	// 10*12 + 120, accumulated per subscription, not monthly*12
	assert.True(t, summary.AnnualCost.Equal(decimal.NewFromInt(240)), "annual: %s", summary.AnnualCost)
	require.Contains(t, breakdown, "Music")
	assert.True(t, breakdown["Music"].Equal(decimal.NewFromInt(20)))
}

func TestSummarizeOrderIndependent(t *testing.T) {
	subs := []models.Subscription{
		sub("A", "15.99", models.BillingCycleMonthly, "Video", date(2026, 1, 1), nil),
		sub("B", "100", models.BillingCycleYearly, "Music", date(2026, 2, 1), nil),
		sub("C", "7.49", models.BillingCycleMonthly, "", date(2026, 3, 1), nil),
		sub("D", "59.88", models.BillingCycleYearly, "Video", date(2026, 4, 1), nil),
		sub("E", "3.33", models.BillingCycleMonthly, "News", date(2026, 5, 1), nil),
	}

	want, wantBreakdown := Summarize(subs, Window{}, testNow)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.Subscription, len(subs))
		copy(shuffled, subs)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, gotBreakdown := Summarize(shuffled, Window{}, testNow)

		assert.Equal(t, want.SubscriptionCount, got.SubscriptionCount)
		assert.True(t, want.MonthlyCost.Equal(got.MonthlyCost))
		assert.True(t, want.AnnualCost.Equal(got.AnnualCost))
		for k, v := range wantBreakdown {
			assert.True(t, v.Equal(gotBreakdown[k]), "category %s", k)
		}
	}
}

func TestSummarizeActiveStateFilter(t *testing.T) {
	ended := sub("Old", "9.99", models.BillingCycleMonthly, "Video", date(2025, 1, 1), datePtr(2026, 1, 1))
	running := sub("New", "4.99", models.BillingCycleMonthly, "Video", date(2025, 6, 1), nil)
	subs := []models.Subscription{ended, running}

	summary, _ := Summarize(subs, Window{}, testNow)
	assert.Equal(t, 1, summary.SubscriptionCount)
	assert.True(t, summary.MonthlyCost.Equal(decimal.RequireFromString("4.99")))

	summary, _ = Summarize(subs, Window{State: InactiveOnly}, testNow)
	assert.Equal(t, 1, summary.SubscriptionCount)
	assert.True(t, summary.MonthlyCost.Equal(decimal.RequireFromString("9.99")))

	summary, _ = Summarize(subs, Window{State: AllStates}, testNow)
	assert.Equal(t, 2, summary.SubscriptionCount)
}

func TestSummarizeDateRangeFiltersOnStartDate(t *testing.T) {
	subs := []models.Subscription{
		sub("Early", "10", models.BillingCycleMonthly, "", date(2025, 12, 1), nil),
		sub("InRange", "20", models.BillingCycleMonthly, "", date(2026, 2, 15), nil),
		sub("Late", "30", models.BillingCycleMonthly, "", date(2026, 6, 1), nil),
	}

	from := date(2026, 1, 1)
	to := date(2026, 3, 31)
	summary, _ := Summarize(subs, Window{From: &from, To: &to}, testNow)

	assert.Equal(t, 1, summary.SubscriptionCount)
	assert.True(t, summary.MonthlyCost.Equal(decimal.NewFromInt(20)))
}

func TestSummarizeCategoryFilter(t *testing.T) {
	subs := []models.Subscription{
		sub("Spotify", "10", models.BillingCycleMonthly, "Music", date(2026, 1, 1), nil),
		sub("Netflix", "15", models.BillingCycleMonthly, "Video", date(2026, 1, 1), nil),
	}

	summary, breakdown := Summarize(subs, Window{Category: "Music"}, testNow)

	assert.Equal(t, 1, summary.SubscriptionCount)
	assert.Len(t, breakdown, 1)
	assert.True(t, breakdown["Music"].Equal(decimal.NewFromInt(10)))

	// exact case-sensitive match, no normalization
	summary, _ = Summarize(subs, Window{Category: "music"}, testNow)
	assert.Equal(t, 0, summary.SubscriptionCount)
}

func TestSummarizeCategoryFilterMatchesOtherBucket(t *testing.T) {
	subs := []models.Subscription{
		sub("Mystery", "5", models.BillingCycleMonthly, "", date(2026, 1, 1), nil),
		sub("Netflix", "15", models.BillingCycleMonthly, "Video", date(2026, 1, 1), nil),
	}

	// the breakdown reports uncategorized rows under "Other", so filtering
	// by that same label must find them again
	summary, breakdown := Summarize(subs, Window{Category: models.DefaultCategory}, testNow)

	assert.Equal(t, 1, summary.SubscriptionCount)
	assert.True(t, summary.MonthlyCost.Equal(decimal.NewFromInt(5)))
	require.Contains(t, breakdown, models.DefaultCategory)
	assert.True(t, breakdown[models.DefaultCategory].Equal(decimal.NewFromInt(5)))

	// an explicit "Other" category matches the same filter
	subs[0].Category = models.DefaultCategory
	summary, _ = Summarize(subs, Window{Category: models.DefaultCategory}, testNow)
	assert.Equal(t, 1, summary.SubscriptionCount)
}

func TestSummarizeEmptyCategoryFoldsUnderOther(t *testing.T) {
	subs := []models.Subscription{
		sub("Mystery", "5", models.BillingCycleMonthly, "", date(2026, 1, 1), nil),
	}

	_, breakdown := Summarize(subs, Window{}, testNow)

	require.Contains(t, breakdown, models.DefaultCategory)
	assert.True(t, breakdown[models.DefaultCategory].Equal(decimal.NewFromInt(5)))
}

func TestBreakdownSumsToMonthlyCost(t *testing.T) {
	subs := []models.Subscription{
		sub("A", "15.99", models.BillingCycleMonthly, "Video", date(2026, 1, 1), nil),
		sub("B", "100", models.BillingCycleYearly, "Music", date(2026, 2, 1), nil),
		sub("C", "7.49", models.BillingCycleMonthly, "", date(2026, 3, 1), nil),
	}

	summary, breakdown := Summarize(subs, Window{}, testNow)

	total := decimal.Zero
	for _, v := range breakdown {
		total = total.Add(v)
	}
	assert.True(t, total.Equal(summary.MonthlyCost), "breakdown %s vs summary %s", total, summary.MonthlyCost)
}

func TestMonthlyTrend(t *testing.T) {
	subs := []models.Subscription{
		sub("Netflix", "15.99", models.BillingCycleMonthly, "Video", date(2026, 5, 10), nil),
		sub("Prime", "120", models.BillingCycleYearly, "Shopping", date(2025, 7, 1), nil),
	}

	points := MonthlyTrend(subs, 6, testNow)

	require.Len(t, points, 6)
	assert.Equal(t, "2026-04", points[0].MonthLabel)
	assert.Equal(t, "2026-09", points[5].MonthLabel)

	// April: nothing yet
	assert.True(t, points[0].Amount.IsZero())
	// May, June: Netflix only
	assert.True(t, points[1].Amount.Equal(decimal.RequireFromString("15.99")))
	assert.True(t, points[2].Amount.Equal(decimal.RequireFromString("15.99")))
	// July: Netflix plus the Prime renewal month
	assert.True(t, points[3].Amount.Equal(decimal.RequireFromString("135.99")))
	// August, September: back to Netflix only
	assert.True(t, points[4].Amount.Equal(decimal.RequireFromString("15.99")))
	assert.True(t, points[5].Amount.Equal(decimal.RequireFromString("15.99")))
}

func TestMonthlyTrendZeroMonths(t *testing.T) {
	points := MonthlyTrend(nil, 0, testNow)
	assert.Empty(t, points)
}
