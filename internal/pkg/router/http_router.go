package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/subtrack-app/subtrack/app/controllers"
	"github.com/subtrack-app/subtrack/internal/pkg/middleware"
	"github.com/subtrack-app/subtrack/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Auth endpoints live outside the versioned API group so the SPA login
	// flow is independent of API versioning
	app.Post("/register", controllers.HandleRegister)
	app.Post("/login", controllers.HandleLogin)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleLogout)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
