package finance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/subtrack-app/subtrack/app/models"
)

var monthsPerYear = decimal.NewFromInt(12)

// MonthlyEquivalent normalizes a subscription's cost to a per-month figure:
// monthly cost unchanged, yearly cost divided by 12. No rounding happens
// here; callers round only when formatting for display.
func MonthlyEquivalent(s *models.Subscription) decimal.Decimal {
	if s.BillingCycle == models.BillingCycleYearly {
		return s.Cost.Div(monthsPerYear)
	}
	return s.Cost
}

// AnnualEquivalent normalizes a subscription's cost to a per-year figure:
// yearly cost unchanged, monthly cost times 12.
func AnnualEquivalent(s *models.Subscription) decimal.Decimal {
	if s.BillingCycle == models.BillingCycleMonthly {
		return s.Cost.Mul(monthsPerYear)
	}
	return s.Cost
}

// PaymentInMonth returns the amount the subscription actually charges in the
// given calendar month. This is the month-of-payment policy used by the
// trend charts and is deliberately different from MonthlyEquivalent
// smoothing: a monthly subscription charges its full cost in every month it
// is running, a yearly subscription charges its full cost only in its
// renewal month (the calendar month of its start date, each year) and zero
// in all others.
func PaymentInMonth(s *models.Subscription, year int, month time.Month) decimal.Decimal {
	if !runningInMonth(s, year, month) {
		return decimal.Zero
	}
	if s.BillingCycle == models.BillingCycleYearly {
		if s.StartDate.Month() != month {
			return decimal.Zero
		}
		return s.Cost
	}
	return s.Cost
}

// runningInMonth reports whether the subscription overlaps any part of the
// given calendar month: it started no later than the month's last day and
// did not end before the month's first day.
func runningInMonth(s *models.Subscription, year int, month time.Month) bool {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)
	if !s.StartDate.Before(monthEnd) {
		return false
	}
	return s.EndDate == nil || !s.EndDate.Before(monthStart)
}
