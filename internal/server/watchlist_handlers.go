package server

import (
	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

type watchlistRequest struct {
	TargetType string  `json:"target_type"`
	TargetID   string  `json:"target_id"`
	Priority   *int    `json:"priority,omitempty"`
	Starred    *bool   `json:"starred,omitempty"`
	Note       *string `json:"note,omitempty"`
}

// CreateWatchlistEntry handles POST /api/watchlist
func (s *Server) CreateWatchlistEntry(c *fiber.Ctx) error {
	var req watchlistRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.watchlistService.Create(c.Context(), service.UpsertWatchlistInput{
		AgentID:    middleware.AgentID(c),
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Priority:   req.Priority,
		Starred:    req.Starred,
		Note:       req.Note,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateWatchlistEntry handles PUT /api/watchlist.
// Only the fields present in the body change.
func (s *Server) UpdateWatchlistEntry(c *fiber.Ctx) error {
	var req watchlistRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	entry, err := s.watchlistService.Update(c.Context(), service.UpsertWatchlistInput{
		AgentID:    middleware.AgentID(c),
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Priority:   req.Priority,
		Starred:    req.Starred,
		Note:       req.Note,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entry)
}

// RemoveWatchlistEntry handles DELETE /api/watchlist
func (s *Server) RemoveWatchlistEntry(c *fiber.Ctx) error {
	var req watchlistRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.watchlistService.Remove(c.Context(), middleware.AgentID(c), req.TargetType, req.TargetID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetWatchlist handles GET /api/watchlist
func (s *Server) GetWatchlist(c *fiber.Ctx) error {
	entries, err := s.watchlistService.List(c.Context(), middleware.AgentID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(entries)
}
