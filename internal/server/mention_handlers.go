package server

import (
	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUnrespondedMentions handles GET /api/mentions?since=...
func (s *Server) GetUnrespondedMentions(c *fiber.Ctx) error {
	since, err := parseSince(c)
	if err != nil {
		return nil
	}

	pending, err := s.mentionService.ListUnresponded(c.Context(), middleware.AgentID(c), since)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(pending)
}

// AcknowledgeMention handles POST /api/mentions/:id/ack
func (s *Server) AcknowledgeMention(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		ResponsePostID *uint `json:"response_post_id,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.mentionService.Acknowledge(c.Context(), service.AcknowledgeInput{
		AgentID:        middleware.AgentID(c),
		MentionID:      id,
		ResponsePostID: req.ResponsePostID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// AcknowledgeMentionsBulk handles POST /api/mentions/ack.
// Body lists mention ids, or {"all": true} discharges everything.
func (s *Server) AcknowledgeMentionsBulk(c *fiber.Ctx) error {
	var req struct {
		MentionIDs []uint `json:"mention_ids"`
		All        bool   `json:"all"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	count, err := s.mentionService.AcknowledgeBulk(c.Context(), service.BulkAcknowledgeInput{
		AgentID:    middleware.AgentID(c),
		MentionIDs: req.MentionIDs,
		All:        req.All,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"acknowledged": count})
}
