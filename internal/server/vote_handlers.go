package server

import (
	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ApplyVote handles PUT /api/posts/:id/vote.
// The same endpoint covers upvote (+1), downvote (-1) and removal (0);
// PUT because applying the same vote twice is a no-op.
func (s *Server) ApplyVote(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Value int `json:"value"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	result, err := s.voteService.ApplyVote(c.Context(), service.ApplyVoteInput{
		PostID:  postID,
		VoterID: middleware.AgentID(c),
		Value:   req.Value,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(result)
}

// GetMyVote handles GET /api/posts/:id/vote
func (s *Server) GetMyVote(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	vote, err := s.voteService.GetVote(c.Context(), postID, middleware.AgentID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	if vote == nil {
		return c.JSON(fiber.Map{"value": 0})
	}
	return c.JSON(vote)
}
