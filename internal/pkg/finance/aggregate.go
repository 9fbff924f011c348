package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-app/subtrack/app/models"
)

// ActiveState selects which subscriptions a window keeps with respect to
// their computed activity status.
type ActiveState string

const (
	ActiveOnly   ActiveState = "active"
	InactiveOnly ActiveState = "inactive"
	AllStates    ActiveState = "all"
)

// Window is the set of filters applied before aggregation. The date range
// filters on StartDate only, not on the full active interval; that matches
// the report filters this feeds and is intentional. An empty Category means
// no category filter. The zero State defaults to ActiveOnly.
type Window struct {
	From     *time.Time
	To       *time.Time
	Category string
	State    ActiveState
}

// Matches reports whether the subscription survives the window's filters at
// the given time.
func (w Window) Matches(s *models.Subscription, now time.Time) bool {
	switch w.State {
	case InactiveOnly:
		if s.ActiveAt(now) {
			return false
		}
	case AllStates:
	default:
		if !s.ActiveAt(now) {
			return false
		}
	}
	if w.From != nil && s.StartDate.Before(*w.From) {
		return false
	}
	if w.To != nil && s.StartDate.After(*w.To) {
		return false
	}
	// Compare against the effective label so uncategorized subscriptions,
	// reported under the "Other" bucket, are reachable by filtering for it.
	if w.Category != "" && s.CategoryLabel() != w.Category {
		return false
	}
	return true
}

// Summary holds the totals for one filtered subscription collection.
// MonthlyCost and AnnualCost are accumulated independently per subscription;
// AnnualCost is never derived as MonthlyCost*12 because the two
// normalizations differ per billing cycle.
type Summary struct {
	SubscriptionCount int             `json:"subscription_count"`
	MonthlyCost       decimal.Decimal `json:"monthly_cost"`
	AnnualCost        decimal.Decimal `json:"annual_cost"`
}

// Breakdown maps a category label to its combined monthly-equivalent cost.
type Breakdown map[string]decimal.Decimal

// Summarize folds the collection through the window's filters into totals
// and a per-category breakdown. The fold is order-independent and an empty
// input yields a zero summary with an empty breakdown, never an error.
func Summarize(subs []models.Subscription, w Window, now time.Time) (Summary, Breakdown) {
	summary := Summary{
		MonthlyCost: decimal.Zero,
		AnnualCost:  decimal.Zero,
	}
	breakdown := make(Breakdown)

	for i := range subs {
		s := &subs[i]
		if !w.Matches(s, now) {
			continue
		}
		monthly := MonthlyEquivalent(s)
		summary.SubscriptionCount++
		summary.MonthlyCost = summary.MonthlyCost.Add(monthly)
		summary.AnnualCost = summary.AnnualCost.Add(AnnualEquivalent(s))

		label := s.CategoryLabel()
		if existing, ok := breakdown[label]; ok {
			breakdown[label] = existing.Add(monthly)
		} else {
			breakdown[label] = monthly
		}
	}

	return summary, breakdown
}

// TrendPoint is one month of the spending trend, labelled "YYYY-MM".
type TrendPoint struct {
	MonthLabel string          `json:"month_label"`
	Amount     decimal.Decimal `json:"amount"`
}

// MonthlyTrend computes the month-of-payment totals for the last monthsBack
// calendar months including the current one, oldest first.
func MonthlyTrend(subs []models.Subscription, monthsBack int, now time.Time) []TrendPoint {
	if monthsBack <= 0 {
		return []TrendPoint{}
	}

	points := make([]TrendPoint, 0, monthsBack)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	for i := monthsBack - 1; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		total := decimal.Zero
		for j := range subs {
			total = total.Add(PaymentInMonth(&subs[j], month.Year(), month.Month()))
		}
		points = append(points, TrendPoint{
			MonthLabel: month.Format("2006-01"),
			Amount:     total,
		})
	}

	return points
}
