package controllers

import (
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/subtrack-app/subtrack/internal/pkg/finance"
	"github.com/subtrack-app/subtrack/internal/pkg/statistics"
)

// HandleGetSummary returns the spending totals for the owner's subscriptions
// under the requested window.
func HandleGetSummary(c *fiber.Ctx) error {
	spaceID, err := spaceIDFromQuery(c)
	if err != nil {
		return jsonFieldError(c, "space_id", "must be a positive integer")
	}
	own, err := resolveOwner(c, spaceID)
	if err != nil {
		return respondError(c, err)
	}

	window, err := parseWindow(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	subs, err := own.loadSubscriptions()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load subscriptions")
	}

	summary, _ := finance.Summarize(subs, window, time.Now())

	return c.JSON(fiber.Map{
		"status": "ok",
		"summary": fiber.Map{
			"subscription_count": summary.SubscriptionCount,
			"monthly_cost":       summary.MonthlyCost.StringFixed(2),
			"annual_cost":        summary.AnnualCost.StringFixed(2),
		},
		"last_modified_at": formatTimePtr(statistics.LastModified(own.userID, own.spaceID)),
	})
}

// HandleGetCategoryBreakdown returns per-category monthly-equivalent totals,
// sorted by amount descending for stable chart ordering.
func HandleGetCategoryBreakdown(c *fiber.Ctx) error {
	spaceID, err := spaceIDFromQuery(c)
	if err != nil {
		return jsonFieldError(c, "space_id", "must be a positive integer")
	}
	own, err := resolveOwner(c, spaceID)
	if err != nil {
		return respondError(c, err)
	}

	window, err := parseWindow(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	subs, err := own.loadSubscriptions()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load subscriptions")
	}

	_, breakdown := finance.Summarize(subs, window, time.Now())

	type entry struct {
		Category    string `json:"category"`
		MonthlyCost string `json:"monthly_cost"`
	}
	entries := make([]entry, 0, len(breakdown))
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(a, b int) bool {
		if !breakdown[names[a]].Equal(breakdown[names[b]]) {
			return breakdown[names[a]].GreaterThan(breakdown[names[b]])
		}
		return names[a] < names[b]
	})
	for _, name := range names {
		entries = append(entries, entry{
			Category:    name,
			MonthlyCost: breakdown[name].StringFixed(2),
		})
	}

	return c.JSON(fiber.Map{
		"status":     "ok",
		"categories": entries,
	})
}

// HandleGetTrend returns the month-of-payment totals for the last 6 or 12
// calendar months.
func HandleGetTrend(c *fiber.Ctx) error {
	spaceID, err := spaceIDFromQuery(c)
	if err != nil {
		return jsonFieldError(c, "space_id", "must be a positive integer")
	}
	own, err := resolveOwner(c, spaceID)
	if err != nil {
		return respondError(c, err)
	}

	months := c.QueryInt("months", 6)
	if months != 6 && months != 12 {
		return jsonFieldError(c, "months", "must be 6 or 12")
	}

	subs, err := own.loadSubscriptions()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load subscriptions")
	}

	points := finance.MonthlyTrend(subs, months, time.Now())
	payload := make([]fiber.Map, 0, len(points))
	for _, p := range points {
		payload = append(payload, fiber.Map{
			"month_label": p.MonthLabel,
			"amount":      p.Amount.StringFixed(2),
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"trend":  payload,
	})
}
