package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-app/subtrack/app/models"
	"github.com/subtrack-app/subtrack/internal/pkg/finance"
)

// Config holds the rule thresholds. The exact cutoffs are tunable product
// knobs, not load-bearing behavior, so they are parameterized here instead
// of hardcoded in the rules.
type Config struct {
	// CategoryMonthlyThreshold is the combined monthly cost a category with
	// two or more services must exceed before the duplicate-category rule
	// fires.
	CategoryMonthlyThreshold decimal.Decimal
	// OutlierShare is the fraction of total monthly spend a single
	// subscription must account for to be flagged as a cost outlier.
	OutlierShare decimal.Decimal
	// YearlyDiscountRate is the assumed discount of an annual plan relative
	// to paying monthly. The default models "two months free".
	YearlyDiscountRate decimal.Decimal
	// MinAnnualSaving is the materiality floor for the saving-opportunity
	// rule.
	MinAnnualSaving decimal.Decimal
	// TrendIncrease is the relative month-over-month increase that triggers
	// the trend rule.
	TrendIncrease decimal.Decimal
	// TTL is how far in the future generated insights are marked to expire.
	TTL time.Duration
}

// DefaultConfig returns the thresholds the dashboard uses.
func DefaultConfig() Config {
	return Config{
		CategoryMonthlyThreshold: decimal.NewFromInt(20),
		OutlierShare:             decimal.NewFromFloat(0.4),
		YearlyDiscountRate:       decimal.NewFromFloat(2.0 / 12.0),
		MinAnnualSaving:          decimal.NewFromInt(10),
		TrendIncrease:            decimal.NewFromFloat(0.2),
		TTL:                      30 * 24 * time.Hour,
	}
}

// DedupeKey is the identity of an insight across regenerations for one
// owner. Regeneration skips a rule whose key already exists, whether the
// existing insight is active or dismissed, so dismissed insights never
// reappear.
func DedupeKey(insightType, subject string) string {
	return insightType + "|" + subject
}

// Generator evaluates the rule set over one owner's subscriptions.
type Generator struct {
	cfg Config
}

func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate runs every rule over the collection and returns the insights
// whose dedupe key is not in skip. Each rule fires at most once per pass.
// Only active subscriptions feed the rules; the caller passes the full
// collection and filtering happens here against now.
func (g *Generator) Generate(subs []models.Subscription, skip map[string]bool, now time.Time) []models.Insight {
	active := make([]models.Subscription, 0, len(subs))
	for _, s := range subs {
		if s.ActiveAt(now) {
			active = append(active, s)
		}
	}

	var out []models.Insight
	rules := []func([]models.Subscription, time.Time) *models.Insight{
		g.duplicateCategory,
		g.costOutlier,
		g.savingOpportunity,
		g.spendingTrend,
	}
	for _, rule := range rules {
		ins := rule(active, now)
		if ins == nil {
			continue
		}
		if skip[DedupeKey(ins.Type, ins.Subject)] {
			continue
		}
		ins.Status = models.InsightStatusActive
		if g.cfg.TTL > 0 {
			expires := now.Add(g.cfg.TTL)
			ins.ExpiresAt = &expires
		}
		out = append(out, *ins)
	}
	return out
}

// duplicateCategory fires when two or more active subscriptions share a
// category and the category's combined monthly cost exceeds the threshold.
// The most expensive qualifying category wins.
func (g *Generator) duplicateCategory(active []models.Subscription, now time.Time) *models.Insight {
	counts := make(map[string]int)
	totals := make(map[string]decimal.Decimal)
	for i := range active {
		label := active[i].CategoryLabel()
		counts[label]++
		monthly := finance.MonthlyEquivalent(&active[i])
		if existing, ok := totals[label]; ok {
			totals[label] = existing.Add(monthly)
		} else {
			totals[label] = monthly
		}
	}

	best := ""
	for label, n := range counts {
		if n < 2 || !totals[label].GreaterThan(g.cfg.CategoryMonthlyThreshold) {
			continue
		}
		if best == "" || totals[label].GreaterThan(totals[best]) {
			best = label
		}
	}
	if best == "" {
		return nil
	}

	score := 6
	if totals[best].GreaterThanOrEqual(g.cfg.CategoryMonthlyThreshold.Mul(decimal.NewFromInt(2))) {
		score = 8
	}
	return &models.Insight{
		Type:        models.InsightTypeCategoryAnalysis,
		Subject:     best,
		Title:       fmt.Sprintf("Multiple services in %s", best),
		Description: fmt.Sprintf("You have %d active subscriptions in %s totaling %s per month. Check whether they overlap.", counts[best], best, totals[best].StringFixed(2)),
		ImpactScore: score,
	}
}

// costOutlier fires when the single most expensive subscription (monthly
// equivalent) accounts for more than the configured share of total monthly
// spend.
func (g *Generator) costOutlier(active []models.Subscription, now time.Time) *models.Insight {
	if len(active) < 2 {
		return nil
	}

	total := decimal.Zero
	topIdx := 0
	topMonthly := decimal.Zero
	for i := range active {
		monthly := finance.MonthlyEquivalent(&active[i])
		total = total.Add(monthly)
		if monthly.GreaterThan(topMonthly) {
			topMonthly = monthly
			topIdx = i
		}
	}
	if total.IsZero() {
		return nil
	}

	share := topMonthly.Div(total)
	if !share.GreaterThan(g.cfg.OutlierShare) {
		return nil
	}

	score := 7
	if share.GreaterThanOrEqual(decimal.NewFromFloat(0.6)) {
		score = 9
	}
	top := active[topIdx]
	percent := share.Mul(decimal.NewFromInt(100)).StringFixed(0)
	return &models.Insight{
		Type:        models.InsightTypeSpendingAlert,
		Subject:     top.ServiceName,
		Title:       fmt.Sprintf("%s dominates your spending", top.ServiceName),
		Description: fmt.Sprintf("%s accounts for %s%% of your monthly subscription spend (%s of %s).", top.ServiceName, percent, topMonthly.StringFixed(2), total.StringFixed(2)),
		ImpactScore: score,
	}
}

// savingOpportunity fires for the monthly subscription with the largest
// estimated saving from switching to an annual plan, assuming the configured
// discount rate.
func (g *Generator) savingOpportunity(active []models.Subscription, now time.Time) *models.Insight {
	type candidate struct {
		name   string
		saving decimal.Decimal
	}
	var cands []candidate
	for i := range active {
		if active[i].BillingCycle != models.BillingCycleMonthly {
			continue
		}
		annual := finance.AnnualEquivalent(&active[i])
		saving := annual.Mul(g.cfg.YearlyDiscountRate)
		if saving.GreaterThanOrEqual(g.cfg.MinAnnualSaving) {
			cands = append(cands, candidate{name: active[i].ServiceName, saving: saving})
		}
	}
	if len(cands) == 0 {
		return nil
	}
	sort.Slice(cands, func(a, b int) bool {
		if !cands[a].saving.Equal(cands[b].saving) {
			return cands[a].saving.GreaterThan(cands[b].saving)
		}
		return cands[a].name < cands[b].name
	})

	best := cands[0]
	return &models.Insight{
		Type:        models.InsightTypeSavingOpportunity,
		Subject:     best.name,
		Title:       fmt.Sprintf("Switch %s to an annual plan", best.name),
		Description: fmt.Sprintf("Paying %s yearly instead of monthly could save around %s per year.", best.name, best.saving.StringFixed(2)),
		ImpactScore: 5,
	}
}

// spendingTrend compares the latest month-of-payment total to the prior
// month and fires when the increase exceeds the configured threshold. With
// no prior-month baseline the rule stays quiet.
func (g *Generator) spendingTrend(active []models.Subscription, now time.Time) *models.Insight {
	points := finance.MonthlyTrend(active, 2, now)
	if len(points) != 2 {
		return nil
	}
	prior, latest := points[0], points[1]
	if prior.Amount.IsZero() || !latest.Amount.GreaterThan(prior.Amount) {
		return nil
	}

	increase := latest.Amount.Sub(prior.Amount).Div(prior.Amount)
	if !increase.GreaterThan(g.cfg.TrendIncrease) {
		return nil
	}

	score := 6
	if increase.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		score = 8
	}
	percent := increase.Mul(decimal.NewFromInt(100)).StringFixed(0)
	return &models.Insight{
		Type:        models.InsightTypeTrendAnalysis,
		Subject:     latest.MonthLabel,
		Title:       "Spending is trending up",
		Description: fmt.Sprintf("Your subscription charges rose %s%% in %s compared to the month before (%s vs %s).", percent, latest.MonthLabel, latest.Amount.StringFixed(2), prior.Amount.StringFixed(2)),
		ImpactScore: score,
	}
}
