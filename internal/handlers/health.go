package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Devam42/Answerly-chatbot/internal/session"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	sessions *session.Store
}

func NewHealthHandler(sessions *session.Store) *HealthHandler {
	return &HealthHandler{sessions: sessions}
}

// Health handles GET /health.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":          "ok",
		"active_sessions": h.sessions.Count(),
	})
}
