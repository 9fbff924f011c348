package controllers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtrack-app/subtrack/app/models"
	"github.com/subtrack-app/subtrack/app/repository"
	"github.com/subtrack-app/subtrack/internal/pkg/usercontext"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

// httpError carries an HTTP status alongside the message so helpers can
// signal failures without writing the response themselves. A fiber handler
// must write exactly one response, so helpers return this and the handler
// translates it via respondError.
type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string { return e.message }

func notFound(message string) *httpError {
	return &httpError{status: fiber.StatusNotFound, message: message}
}

func forbidden(message string) *httpError {
	return &httpError{status: fiber.StatusForbidden, message: message}
}

func internal(message string) *httpError {
	return &httpError{status: fiber.StatusInternalServerError, message: message}
}

// respondError writes a helper failure in the structured error shape.
// Unknown error values surface as a generic 500.
func respondError(c *fiber.Ctx, err error) error {
	var he *httpError
	if errors.As(err, &he) {
		return jsonError(c, he.status, he.message)
	}
	return jsonError(c, fiber.StatusInternalServerError, "internal error")
}

// jsonError writes the structured failure shape every endpoint uses:
// {status, message} plus an optional field-level errors map.
func jsonError(c *fiber.Ctx, httpStatus int, message string) error {
	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}

// jsonValidationError maps validator errors onto a field -> message map.
func jsonValidationError(c *fiber.Ctx, err error) error {
	fields := fiber.Map{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
	}
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":  "error",
		"message": "validation failed",
		"errors":  fields,
	})
}

// jsonFieldError reports a single hand-checked field failure in the same
// shape as jsonValidationError.
func jsonFieldError(c *fiber.Ctx, field, message string) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":  "error",
		"message": "validation failed",
		"errors":  fiber.Map{field: message},
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

// parseDate parses a YYYY-MM-DD query or payload value.
func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// formatTimePtr converts an optional timestamp to RFC3339 for JSON output.
func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

// formatDatePtr converts an optional date to YYYY-MM-DD for JSON output.
func formatDatePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

// owner identifies whose subscription set a request operates on: the
// session user's personal set, or a shared space the user is a member of.
type owner struct {
	userID  *uint
	spaceID *uint
	member  *models.SpaceMember
}

// resolveOwner decides the owner from the session plus an optional space id
// and enforces membership. With no space id the owner is the session user.
func resolveOwner(c *fiber.Ctx, spaceID *uint) (*owner, error) {
	userID := usercontext.GetUserID(c)
	if spaceID == nil {
		return &owner{userID: &userID}, nil
	}

	member, err := repository.GetGlobalFactory().GetSpaceRepository().GetMember(*spaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forbidden("not a member of this space")
		}
		return nil, internal("failed to check space membership")
	}
	return &owner{spaceID: spaceID, member: member}, nil
}

// canEdit reports whether the request may add, change or end subscriptions
// of this owner. Personal sets are always editable by their user.
func (o *owner) canEdit() bool {
	return o.member == nil || o.member.CanEdit()
}

// canManage reports whether the request may delete subscriptions of this
// owner.
func (o *owner) canManage() bool {
	return o.member == nil || o.member.CanManage()
}

// ownsSubscription reports whether the subscription belongs to this owner.
func (o *owner) ownsSubscription(s *models.Subscription) bool {
	if o.userID != nil {
		return s.UserID != nil && *s.UserID == *o.userID
	}
	return s.SpaceID != nil && *s.SpaceID == *o.spaceID
}

// ownsInsight reports whether the insight belongs to this owner.
func (o *owner) ownsInsight(i *models.Insight) bool {
	if o.userID != nil {
		return i.UserID != nil && *i.UserID == *o.userID
	}
	return i.SpaceID != nil && *i.SpaceID == *o.spaceID
}

// loadSubscriptions fetches the owner's full subscription set.
func (o *owner) loadSubscriptions() ([]models.Subscription, error) {
	repo := repository.GetGlobalFactory().GetSubscriptionRepository()
	if o.userID != nil {
		return repo.GetByUserID(*o.userID)
	}
	return repo.GetBySpaceID(*o.spaceID)
}

// spaceIDFromQuery reads the optional space_id query parameter.
func spaceIDFromQuery(c *fiber.Ctx) (*uint, error) {
	raw := c.Query("space_id")
	if raw == "" {
		return nil, nil
	}
	id := c.QueryInt("space_id")
	if id <= 0 {
		return nil, errors.New("invalid space_id")
	}
	v := uint(id)
	return &v, nil
}
