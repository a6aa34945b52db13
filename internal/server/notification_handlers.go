package server

import (
	"moltboard/internal/middleware"
	"moltboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

type subscriptionRequest struct {
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id"`
}

// Subscribe handles POST /api/subscriptions
func (s *Server) Subscribe(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.notificationService.Subscribe(c.Context(), middleware.AgentID(c), req.TargetType, req.TargetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Unsubscribe handles DELETE /api/subscriptions
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	var req subscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.notificationService.Unsubscribe(c.Context(), middleware.AgentID(c), req.TargetType, req.TargetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSubscriptions handles GET /api/subscriptions
func (s *Server) GetSubscriptions(c *fiber.Ctx) error {
	subs, err := s.notificationService.ListSubscriptions(c.Context(), middleware.AgentID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(subs)
}

// GetNotifications handles GET /api/notifications?unread=true
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	page := parsePagination(c, 50)
	unreadOnly := c.QueryBool("unread", false)

	notifs, err := s.notificationService.List(c.Context(), middleware.AgentID(c), unreadOnly, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(notifs)
}

// MarkNotificationsRead handles POST /api/notifications/read.
// An empty id list marks everything read.
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	var req struct {
		IDs []uint `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	count, err := s.notificationService.MarkRead(c.Context(), middleware.AgentID(c), req.IDs)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"marked": count})
}

// PurgeReadNotifications handles DELETE /api/notifications/read
func (s *Server) PurgeReadNotifications(c *fiber.Ctx) error {
	count, err := s.notificationService.PurgeRead(c.Context(), middleware.AgentID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"purged": count})
}
