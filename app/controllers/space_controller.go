package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtrack-app/subtrack/app/models"
	"github.com/subtrack-app/subtrack/app/repository"
	"github.com/subtrack-app/subtrack/internal/pkg/usercontext"
)

// CreateSpaceCommand is the payload for creating a shared space.
type CreateSpaceCommand struct {
	Name string `json:"name" validate:"required,min=1,max=150"`
}

// AddSpaceMemberCommand is the payload for adding a member by email.
type AddSpaceMemberCommand struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=admin editor viewer"`
}

// HandleCreateSpace creates a space with the session user as admin.
func HandleCreateSpace(c *fiber.Ctx) error {
	var cmd CreateSpaceCommand
	if err := c.BodyParser(&cmd); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&cmd); err != nil {
		return jsonValidationError(c, err)
	}

	space := models.Space{
		Name:        cmd.Name,
		OwnerUserID: usercontext.GetUserID(c),
	}
	if err := repository.GetGlobalFactory().GetSpaceRepository().Create(&space); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create space")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"space":  spacePayload(&space),
	})
}

// HandleListSpaces returns every space the session user is a member of.
func HandleListSpaces(c *fiber.Ctx) error {
	spaces, err := repository.GetGlobalFactory().GetSpaceRepository().GetForUser(usercontext.GetUserID(c))
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to load spaces")
	}

	payload := make([]fiber.Map, 0, len(spaces))
	for i := range spaces {
		payload = append(payload, spacePayload(&spaces[i]))
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"spaces": payload,
	})
}

// HandleAddSpaceMember adds a user to a space by email. Admin only.
func HandleAddSpaceMember(c *fiber.Ctx) error {
	var cmd AddSpaceMemberCommand
	if err := c.BodyParser(&cmd); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&cmd); err != nil {
		return jsonValidationError(c, err)
	}

	space, err := loadManagedSpace(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := repository.GetGlobalFactory().GetUserRepository().GetByEmail(cmd.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return jsonFieldError(c, "email", "no account with this email")
		}
		return jsonError(c, fiber.StatusInternalServerError, "failed to look up user")
	}

	repo := repository.GetGlobalFactory().GetSpaceRepository()
	if _, err := repo.GetMember(space.ID, user.ID); err == nil {
		return jsonFieldError(c, "email", "is already a member")
	}

	newMember := models.SpaceMember{
		SpaceID: space.ID,
		UserID:  user.ID,
		Role:    cmd.Role,
	}
	if err := repo.AddMember(&newMember); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to add member")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"member": memberPayload(&newMember),
	})
}

// HandleRemoveSpaceMember removes a member from a space. Admin only; the
// space owner cannot be removed.
func HandleRemoveSpaceMember(c *fiber.Ctx) error {
	space, err := loadManagedSpace(c)
	if err != nil {
		return respondError(c, err)
	}

	targetID, _ := c.ParamsInt("user_id", 0)
	if targetID <= 0 {
		return jsonFieldError(c, "user_id", "must be a positive integer")
	}
	if uint(targetID) == space.OwnerUserID {
		return jsonError(c, fiber.StatusForbidden, "the space owner cannot be removed")
	}

	repo := repository.GetGlobalFactory().GetSpaceRepository()
	if _, err := repo.GetMember(space.ID, uint(targetID)); err != nil {
		return jsonError(c, fiber.StatusNotFound, "member not found")
	}
	if err := repo.RemoveMember(space.ID, uint(targetID)); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to remove member")
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// loadManagedSpace resolves the :id route param to a space the session user
// administers. Spaces the user is no member of read as not found.
func loadManagedSpace(c *fiber.Ctx) (*models.Space, error) {
	spaceID, _ := c.ParamsInt("id", 0)
	if spaceID <= 0 {
		return nil, &httpError{status: fiber.StatusUnprocessableEntity, message: "id must be a positive integer"}
	}

	repo := repository.GetGlobalFactory().GetSpaceRepository()
	space, err := repo.GetByID(uint(spaceID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("space not found")
		}
		return nil, internal("failed to load space")
	}

	member, err := repo.GetMember(space.ID, usercontext.GetUserID(c))
	if err != nil {
		return nil, notFound("space not found")
	}
	if !member.CanManage() {
		return nil, forbidden("admin role required")
	}

	return space, nil
}

func spacePayload(space *models.Space) fiber.Map {
	members := make([]fiber.Map, 0, len(space.Members))
	for i := range space.Members {
		members = append(members, memberPayload(&space.Members[i]))
	}
	return fiber.Map{
		"id":            space.ID,
		"name":          space.Name,
		"owner_user_id": space.OwnerUserID,
		"members":       members,
		"created_at":    space.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func memberPayload(m *models.SpaceMember) fiber.Map {
	return fiber.Map{
		"space_id": m.SpaceID,
		"user_id":  m.UserID,
		"role":     m.Role,
	}
}
