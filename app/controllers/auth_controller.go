package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/subtrack-app/subtrack/app/models"
	"github.com/subtrack-app/subtrack/app/repository"
	"github.com/subtrack-app/subtrack/internal/pkg/session"
	"github.com/subtrack-app/subtrack/internal/pkg/usercontext"
)

// RegisterCommand is the payload for account creation.
type RegisterCommand struct {
	Name     string `json:"name" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email,min=5,max=200"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginCommand is the payload for session login.
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister creates a new account and logs it in.
func HandleRegister(c *fiber.Ctx) error {
	var cmd RegisterCommand
	if err := c.BodyParser(&cmd); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&cmd); err != nil {
		return jsonValidationError(c, err)
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	if existing, err := repo.GetByEmail(cmd.Email); err == nil && existing != nil {
		return jsonFieldError(c, "email", "is already registered")
	}

	user, err := models.CreateUser(cmd.Name, cmd.Email, cmd.Password)
	if err != nil {
		return jsonValidationError(c, err)
	}
	if err := repo.Create(user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "failed to create account")
	}

	if err := startSession(c, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "account created but login failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "ok",
		"user":   userPayload(user),
	})
}

// HandleLogin authenticates by email and password and opens a session.
func HandleLogin(c *fiber.Ctx) error {
	var cmd LoginCommand
	if err := c.BodyParser(&cmd); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&cmd); err != nil {
		return jsonValidationError(c, err)
	}

	repo := repository.GetGlobalFactory().GetUserRepository()
	user, err := repo.GetByEmail(cmd.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// same message as a wrong password, no account enumeration
			return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
		}
		return jsonError(c, fiber.StatusInternalServerError, "login failed")
	}

	if !user.CheckPassword(cmd.Password) || !user.IsActive() {
		return jsonError(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := startSession(c, user); err != nil {
		return jsonError(c, fiber.StatusInternalServerError, "login failed")
	}

	now := time.Now()
	user.LastLoginAt = &now
	_ = repo.Update(user)

	return c.JSON(fiber.Map{
		"status": "ok",
		"user":   userPayload(user),
	})
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	c.Locals(usercontext.KeyFromProtected, false)

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func startSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	return sess.Save()
}

func userPayload(user *models.User) fiber.Map {
	return fiber.Map{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"created_at":    user.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at": formatTimePtr(user.LastLoginAt),
	}
}
