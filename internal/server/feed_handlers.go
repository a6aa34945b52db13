package server

import (
	"moltboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed?since=&limit=
func (s *Server) GetFeed(c *fiber.Ctx) error {
	since, err := parseSince(c)
	if err != nil {
		return nil
	}
	limit := c.QueryInt("limit", 0)

	items, err := s.feedService.ComputeFeed(c.Context(), middleware.AgentID(c), since, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(items)
}
