package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtrack-app/subtrack/app/models"
	"github.com/subtrack-app/subtrack/app/repository"
	"github.com/subtrack-app/subtrack/internal/pkg/insights"
)

var insightGenerator = insights.NewGenerator(insights.DefaultConfig())

// HandleGetInsights runs a generation pass for the owner and returns the
// active insights. The pass is idempotent: existing insights, dismissed ones
// included, suppress regeneration via their dedupe key.
func HandleGetInsights(c *fiber.Ctx) error {
	spaceID, err := spaceIDFromQuery(c)
	if err != nil {
		return jsonFieldError(c, "space_id", "must be a positive integer")
	}
	own, err := resolveOwner(c, spaceID)
	if err != nil {
		return respondError(c, err)
	}

	subs, err := own.loadSubscriptions()
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load subscriptions")
	}

	repo := repository.GetGlobalFactory().GetInsightRepository()
	active, err := insights.Refresh(repo, insightGenerator, own.userID, own.spaceID, subs, time.Now())
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to generate insights")
	}

	payload := make([]fiber.Map, 0, len(active))
	for i := range active {
		payload = append(payload, insightPayload(&active[i]))
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"insights": payload,
	})
}

// HandleDismissInsight marks an insight dismissed. Dismissal is terminal,
// and in shared spaces it hides the insight for every member, so it needs
// the same edit role as changing subscriptions.
func HandleDismissInsight(c *fiber.Ctx) error {
	repo := repository.GetGlobalFactory().GetInsightRepository()
	insight, err := repo.GetByUUID(c.Params("uuid"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonError(c, fiber.StatusNotFound, "insight not found")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to load insight")
	}

	own, err := resolveOwner(c, insight.SpaceID)
	if err != nil {
		return respondError(c, err)
	}
	if !own.ownsInsight(insight) {
		return jsonError(c, fiber.StatusNotFound, "insight not found")
	}
	if !own.canEdit() {
		return jsonError(c, fiber.StatusForbidden, "role does not allow dismissing insights")
	}

	insight.Dismiss()
	if err := repo.Update(insight); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to dismiss insight")
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func insightPayload(i *models.Insight) fiber.Map {
	return fiber.Map{
		"uuid":         i.UUID,
		"type":         i.Type,
		"title":        i.Title,
		"description":  i.Description,
		"impact_score": i.ImpactScore,
		"severity":     i.Severity(),
		"status":       i.Status,
		"expires_at":   formatTimePtr(i.ExpiresAt),
		"created_at":   i.CreatedAt.UTC().Format(time.RFC3339),
	}
}
