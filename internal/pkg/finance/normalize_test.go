package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subtrack-app/subtrack/app/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func sub(name, cost, cycle, category string, start time.Time, end *time.Time) models.Subscription {
	return models.Subscription{
		ServiceName:  name,
		Cost:         decimal.RequireFromString(cost),
		Currency:     "USD",
		BillingCycle: cycle,
		StartDate:    start,
		EndDate:      end,
		Category:     category,
	}
}

func TestMonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name  string
		cost  string
		cycle string
		want  string
	}{
		{"monthly passes through", "15.99", models.BillingCycleMonthly, "15.99"},
		{"yearly divided by twelve", "120.00", models.BillingCycleYearly, "10"},
		{"yearly keeps precision", "100", models.BillingCycleYearly, "8.3333333333333333"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sub("Svc", tt.cost, tt.cycle, "", date(2026, 1, 1), nil)
			got := MonthlyEquivalent(&s)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", got, tt.want)
		})
	}
}

func TestAnnualEquivalent(t *testing.T) {
	tests := []struct {
		name  string
		cost  string
		cycle string
		want  string
	}{
		{"monthly times twelve", "15.99", models.BillingCycleMonthly, "191.88"},
		{"yearly passes through", "120.00", models.BillingCycleYearly, "120.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sub("Svc", tt.cost, tt.cycle, "", date(2026, 1, 1), nil)
			got := AnnualEquivalent(&s)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s want %s", got, tt.want)
		})
	}
}

func TestPaymentInMonthMonthlyCycle(t *testing.T) {
	s := sub("Netflix", "15.99", models.BillingCycleMonthly, "", date(2026, 3, 10), datePtr(2026, 6, 15))

	// full cost in every month it runs, including partial start and end months
	for _, m := range []time.Month{time.March, time.April, time.May, time.June} {
		got := PaymentInMonth(&s, 2026, m)
		assert.True(t, got.Equal(s.Cost), "month %s: got %s", m, got)
	}

	assert.True(t, PaymentInMonth(&s, 2026, time.February).IsZero())
	assert.True(t, PaymentInMonth(&s, 2026, time.July).IsZero())
}

func TestPaymentInMonthYearlyCycle(t *testing.T) {
	s := sub("Prime", "120.00", models.BillingCycleYearly, "", date(2025, 4, 20), nil)

	// full cost only in the renewal month
	require.True(t, PaymentInMonth(&s, 2025, time.April).Equal(s.Cost))
	assert.True(t, PaymentInMonth(&s, 2025, time.May).IsZero())
	assert.True(t, PaymentInMonth(&s, 2025, time.December).IsZero())

	// renewal month recurs the following year
	assert.True(t, PaymentInMonth(&s, 2026, time.April).Equal(s.Cost))

	// nothing before the start month
	assert.True(t, PaymentInMonth(&s, 2025, time.March).IsZero())
	assert.True(t, PaymentInMonth(&s, 2024, time.April).IsZero())
}

func TestPaymentInMonthEndedSubscription(t *testing.T) {
	s := sub("Prime", "120.00", models.BillingCycleYearly, "", date(2025, 4, 20), datePtr(2026, 1, 31))

	assert.True(t, PaymentInMonth(&s, 2025, time.April).Equal(s.Cost))
	assert.True(t, PaymentInMonth(&s, 2026, time.April).IsZero())
}
