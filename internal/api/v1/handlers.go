package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to the controllers to keep behavior consistent between the
	// versioned API surface and any future bindings
	"github.com/subtrack-app/subtrack/app/controllers"
)

// APIServer implements the versioned JSON API surface
type APIServer struct{}

// NewAPIServer creates a new API server instance
func NewAPIServer() *APIServer {
	return &APIServer{}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"ping": "pong",
	})
}

// Subscriptions

func (s *APIServer) GetSubscriptions(c *fiber.Ctx) error {
	return controllers.HandleListSubscriptions(c)
}

func (s *APIServer) PostSubscription(c *fiber.Ctx) error {
	return controllers.HandleAddSubscription(c)
}

func (s *APIServer) PutSubscription(c *fiber.Ctx) error {
	return controllers.HandleUpdateSubscription(c)
}

func (s *APIServer) PostSubscriptionEnd(c *fiber.Ctx) error {
	return controllers.HandleEndSubscription(c)
}

func (s *APIServer) PostSubscriptionReactivate(c *fiber.Ctx) error {
	return controllers.HandleReactivateSubscription(c)
}

func (s *APIServer) DeleteSubscription(c *fiber.Ctx) error {
	return controllers.HandleDeleteSubscription(c)
}

// Reports

func (s *APIServer) GetSummary(c *fiber.Ctx) error {
	return controllers.HandleGetSummary(c)
}

func (s *APIServer) GetCategoryBreakdown(c *fiber.Ctx) error {
	return controllers.HandleGetCategoryBreakdown(c)
}

func (s *APIServer) GetTrend(c *fiber.Ctx) error {
	return controllers.HandleGetTrend(c)
}

// Insights

func (s *APIServer) GetInsights(c *fiber.Ctx) error {
	return controllers.HandleGetInsights(c)
}

func (s *APIServer) PostInsightDismiss(c *fiber.Ctx) error {
	return controllers.HandleDismissInsight(c)
}

// Spaces

func (s *APIServer) GetSpaces(c *fiber.Ctx) error {
	return controllers.HandleListSpaces(c)
}

func (s *APIServer) PostSpace(c *fiber.Ctx) error {
	return controllers.HandleCreateSpace(c)
}

func (s *APIServer) PostSpaceMember(c *fiber.Ctx) error {
	return controllers.HandleAddSpaceMember(c)
}

func (s *APIServer) DeleteSpaceMember(c *fiber.Ctx) error {
	return controllers.HandleRemoveSpaceMember(c)
}

// RegisterHandlers wires the API server into the v1 route group. Everything
// except ping requires a logged-in session, enforced by the auth middleware
// the router attaches.
func RegisterHandlers(v1 fiber.Router, s *APIServer, requireAuth fiber.Handler) {
	v1.Get("/ping", s.GetPing)

	subs := v1.Group("/subscriptions", requireAuth)
	subs.Get("/", s.GetSubscriptions)
	subs.Post("/", s.PostSubscription)
	subs.Put("/:uuid", s.PutSubscription)
	subs.Post("/:uuid/end", s.PostSubscriptionEnd)
	subs.Post("/:uuid/reactivate", s.PostSubscriptionReactivate)
	subs.Delete("/:uuid", s.DeleteSubscription)

	summary := v1.Group("/summary", requireAuth)
	summary.Get("/", s.GetSummary)
	summary.Get("/categories", s.GetCategoryBreakdown)
	summary.Get("/trend", s.GetTrend)

	ins := v1.Group("/insights", requireAuth)
	ins.Get("/", s.GetInsights)
	ins.Post("/:uuid/dismiss", s.PostInsightDismiss)

	spaces := v1.Group("/spaces", requireAuth)
	spaces.Get("/", s.GetSpaces)
	spaces.Post("/", s.PostSpace)
	spaces.Post("/:id/members", s.PostSpaceMember)
	spaces.Delete("/:id/members/:user_id", s.DeleteSpaceMember)
}
