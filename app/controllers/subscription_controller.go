package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/subtrack-app/subtrack/app/models"
	"github.com/subtrack-app/subtrack/app/repository"
	"github.com/subtrack-app/subtrack/internal/pkg/finance"
	"github.com/subtrack-app/subtrack/internal/pkg/statistics"
	"github.com/subtrack-app/subtrack/internal/pkg/usercontext"
)

// AddSubscriptionCommand is the payload for creating a subscription.
type AddSubscriptionCommand struct {
	ServiceName  string          `json:"service_name" validate:"required,min=1,max=150"`
	Cost         decimal.Decimal `json:"cost"`
	Currency     string          `json:"currency" validate:"required,len=3"`
	BillingCycle string          `json:"billing_cycle" validate:"required,oneof=monthly yearly"`
	StartDate    string          `json:"start_date" validate:"required"`
	EndDate      *string         `json:"end_date"`
	Category     string          `json:"category" validate:"max=100"`
	SpaceID      *uint           `json:"space_id"`
}

// UpdateSubscriptionCommand carries the full new state of a subscription.
// Updates are whole-record; concurrent edits resolve last-write-wins.
type UpdateSubscriptionCommand struct {
	ServiceName  string          `json:"service_name" validate:"required,min=1,max=150"`
	Cost         decimal.Decimal `json:"cost"`
	Currency     string          `json:"currency" validate:"required,len=3"`
	BillingCycle string          `json:"billing_cycle" validate:"required,oneof=monthly yearly"`
	StartDate    string          `json:"start_date" validate:"required"`
	EndDate      *string         `json:"end_date"`
	Category     string          `json:"category" validate:"max=100"`
}

// parseWindow builds the aggregation window from query parameters: from/to
// dates, category and state (active by default, or inactive / all).
func parseWindow(c *fiber.Ctx) (finance.Window, error) {
	w := finance.Window{Category: c.Query("category")}

	if raw := c.Query("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return w, errors.New("from must be a YYYY-MM-DD date")
		}
		w.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return w, errors.New("to must be a YYYY-MM-DD date")
		}
		w.To = &t
	}

	switch c.Query("state") {
	case "", "active":
		w.State = finance.ActiveOnly
	case "inactive":
		w.State = finance.InactiveOnly
	case "all":
		w.State = finance.AllStates
	default:
		return w, errors.New("state must be active, inactive or all")
	}

	return w, nil
}

// HandleListSubscriptions returns the owner's subscriptions surviving the
// requested window, plus the owner's change token.
func HandleListSubscriptions(c *fiber.Ctx) error {
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

	now := time.Now()
	payload := make([]fiber.Map, 0, len(subs))
	for i := range subs {
		if !window.Matches(&subs[i], now) {
			continue
		}
		payload = append(payload, subscriptionPayload(&subs[i], now))
	}

	return c.JSON(fiber.Map{
		"status":           "ok",
		"subscriptions":    payload,
		"last_modified_at": formatTimePtr(statistics.LastModified(own.userID, own.spaceID)),
	})
}

// HandleAddSubscription creates a subscription for the session user or, with
// space_id set, for a space the user can edit.
func HandleAddSubscription(c *fiber.Ctx) error {
	var cmd AddSubscriptionCommand
	if err := c.BodyParser(&cmd); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&cmd); err != nil {
		return jsonValidationError(c, err)
	}
	if !cmd.Cost.IsPositive() {
		return jsonFieldError(c, "cost", "must be a positive amount")
	}

	startDate, err := parseDate(cmd.StartDate)
	if err != nil {
		return jsonFieldError(c, "start_date", "must be a YYYY-MM-DD date")
	}
	endDate, err := parseOptionalEndDate(cmd.EndDate, startDate)
	if err != nil {
		return jsonFieldError(c, "end_date", err.Error())
	}

	own, err := resolveOwner(c, cmd.SpaceID)
	if err != nil {
		return respondError(c, err)
	}
	if !own.canEdit() {
		return jsonError(c, fiber.StatusForbidden, "role does not allow adding subscriptions")
	}

	sub := models.Subscription{
		UserID:       own.userID,
		SpaceID:      own.spaceID,
		ServiceName:  cmd.ServiceName,
		Cost:         cmd.Cost,
		Currency:     cmd.Currency,
		BillingCycle: cmd.BillingCycle,
		StartDate:    startDate,
		EndDate:      endDate,
		Category:     cmd.Category,
	}
	if own.spaceID != nil {
		addedBy := usercontext.GetUserID(c)
		sub.AddedByUserID = &addedBy
	}

	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Create(&sub); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create subscription")
	}
	statistics.Touch(own.userID, own.spaceID, sub.UpdatedAt)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":       "ok",
		"subscription": subscriptionPayload(&sub, time.Now()),
	})
}

// HandleUpdateSubscription replaces the mutable fields of a subscription.
func HandleUpdateSubscription(c *fiber.Ctx) error {
	var cmd UpdateSubscriptionCommand
	if err := c.BodyParser(&cmd); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&cmd); err != nil {
		return jsonValidationError(c, err)
	}
	if !cmd.Cost.IsPositive() {
		return jsonFieldError(c, "cost", "must be a positive amount")
	}

	startDate, err := parseDate(cmd.StartDate)
	if err != nil {
		return jsonFieldError(c, "start_date", "must be a YYYY-MM-DD date")
	}
	endDate, err := parseOptionalEndDate(cmd.EndDate, startDate)
	if err != nil {
		return jsonFieldError(c, "end_date", err.Error())
	}

	sub, own, err := loadOwnedSubscription(c, false)
	if err != nil {
		return respondError(c, err)
	}

	sub.ServiceName = cmd.ServiceName
	sub.Cost = cmd.Cost
	sub.Currency = cmd.Currency
	sub.BillingCycle = cmd.BillingCycle
	sub.StartDate = startDate
	sub.EndDate = endDate
	sub.Category = cmd.Category

	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Update(sub); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to update subscription")
	}
	statistics.Touch(own.userID, own.spaceID, sub.UpdatedAt)

	return c.JSON(fiber.Map{
		"status":       "ok",
		"subscription": subscriptionPayload(sub, time.Now()),
	})
}

// HandleEndSubscription sets the end date to now.
func HandleEndSubscription(c *fiber.Ctx) error {
	sub, own, err := loadOwnedSubscription(c, false)
	if err != nil {
		return respondError(c, err)
	}

	sub.End(time.Now())
	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Update(sub); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to end subscription")
	}
	statistics.Touch(own.userID, own.spaceID, sub.UpdatedAt)

	return c.JSON(fiber.Map{
		"status":       "ok",
		"subscription": subscriptionPayload(sub, time.Now()),
	})
}

// HandleReactivateSubscription clears the end date.
func HandleReactivateSubscription(c *fiber.Ctx) error {
	sub, own, err := loadOwnedSubscription(c, false)
	if err != nil {
		return respondError(c, err)
	}

	sub.Reactivate()
	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Update(sub); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to reactivate subscription")
	}
	statistics.Touch(own.userID, own.spaceID, sub.UpdatedAt)

	return c.JSON(fiber.Map{
		"status":       "ok",
		"subscription": subscriptionPayload(sub, time.Now()),
	})
}

// HandleDeleteSubscription removes a subscription outright. In spaces this
// needs the admin role.
func HandleDeleteSubscription(c *fiber.Ctx) error {
	sub, own, err := loadOwnedSubscription(c, true)
	if err != nil {
		return respondError(c, err)
	}

	if err := repository.GetGlobalFactory().GetSubscriptionRepository().Delete(sub.ID); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to delete subscription")
	}
	statistics.Touch(own.userID, own.spaceID, time.Now())

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// loadOwnedSubscription resolves the :uuid route param to a subscription the
// session user may mutate. Rows the user cannot see at all read as not
// found, not forbidden.
func loadOwnedSubscription(c *fiber.Ctx, needManage bool) (*models.Subscription, *owner, error) {
	sub, err := repository.GetGlobalFactory().GetSubscriptionRepository().GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, notFound("subscription not found")
		}
		return nil, nil, internal("failed to load subscription")
	}

	own, err := resolveOwner(c, sub.SpaceID)
	if err != nil {
		return nil, nil, err
	}
	if !own.ownsSubscription(sub) {
		return nil, nil, notFound("subscription not found")
	}
	if needManage {
		if !own.canManage() {
			return nil, nil, forbidden("role does not allow deleting subscriptions")
		}
	} else if !own.canEdit() {
		return nil, nil, forbidden("role does not allow changing subscriptions")
	}

	return sub, own, nil
}

func parseOptionalEndDate(raw *string, startDate time.Time) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := parseDate(*raw)
	if err != nil {
		return nil, errors.New("must be a YYYY-MM-DD date")
	}
	if t.Before(startDate) {
		return nil, errors.New("must not be before start_date")
	}
	return &t, nil
}

// subscriptionPayload shapes one subscription for JSON output. Rounding to
// two decimals happens only here, at presentation time.
func subscriptionPayload(s *models.Subscription, now time.Time) fiber.Map {
	return fiber.Map{
		"uuid":               s.UUID,
		"service_name":       s.ServiceName,
		"cost":               s.Cost.StringFixed(2),
		"currency":           s.Currency,
		"billing_cycle":      s.BillingCycle,
		"start_date":         s.StartDate.Format(dateLayout),
		"end_date":           formatDatePtr(s.EndDate),
		"category":           s.CategoryLabel(),
		"is_active":          s.ActiveAt(now),
		"monthly_equivalent": finance.MonthlyEquivalent(s).StringFixed(2),
		"annual_equivalent":  finance.AnnualEquivalent(s).StringFixed(2),
		"space_id":           s.SpaceID,
		"created_at":         s.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":         s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
