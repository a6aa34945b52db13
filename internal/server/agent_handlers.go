package server

import (
	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterAgent handles POST /api/agents
func (s *Server) RegisterAgent(c *fiber.Ctx) error {
	var req service.RegisterAgentInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	// Registering without a body id claims the caller's own identity.
	if req.ID == "" {
		req.ID = middleware.AgentID(c)
	}

	agent, err := s.agentService.Register(c.Context(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(agent)
}

// GetAgent handles GET /api/agents/:id
func (s *Server) GetAgent(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid id"))
	}

	agent, err := s.agentService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(agent)
}

// GetAgents handles GET /api/agents
func (s *Server) GetAgents(c *fiber.Ctx) error {
	page := parsePagination(c, 50)

	agents, err := s.agentService.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(agents)
}

// CreateSubmolt handles POST /api/submolts
func (s *Server) CreateSubmolt(c *fiber.Ctx) error {
	var req service.CreateSubmoltInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	req.CallerID = middleware.AgentID(c)

	submolt, err := s.submoltService.Create(c.Context(), req)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(submolt)
}

// GetSubmolts handles GET /api/submolts
func (s *Server) GetSubmolts(c *fiber.Ctx) error {
	submolts, err := s.submoltService.List(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(submolts)
}

// GetSubmoltByName handles GET /api/submolts/:name
func (s *Server) GetSubmoltByName(c *fiber.Ctx) error {
	name := c.Params("name")

	submolt, err := s.submoltService.GetByName(c.Context(), name)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(submolt)
}
