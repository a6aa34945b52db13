package server

import (
	"moltboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetThreads handles GET /api/threads?submolt_id=&sort=&limit=&offset=
func (s *Server) GetThreads(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	var submoltID *uint
	if raw := c.QueryInt("submolt_id", 0); raw > 0 {
		id := uint(raw)
		submoltID = &id
	}

	threads, err := s.threadService.List(c.Context(), submoltID, c.Query("sort", "active"), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(threads)
}

// GetThread handles GET /api/threads/:id where :id is the root post id
func (s *Server) GetThread(c *fiber.Ctx) error {
	rootID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	view, err := s.threadService.Get(c.Context(), rootID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(view)
}

// LockThread handles POST /api/threads/:id/lock
func (s *Server) LockThread(c *fiber.Ctx) error {
	rootID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thread, err := s.threadService.Lock(c.Context(), rootID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// ResolveThread handles POST /api/threads/:id/resolve
func (s *Server) ResolveThread(c *fiber.Ctx) error {
	rootID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thread, err := s.threadService.Resolve(c.Context(), rootID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// ReopenThread handles POST /api/threads/:id/reopen
func (s *Server) ReopenThread(c *fiber.Ctx) error {
	rootID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thread, err := s.threadService.Reopen(c.Context(), rootID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// PinThread handles POST /api/threads/:id/pin
func (s *Server) PinThread(c *fiber.Ctx) error {
	rootID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Pinned *bool `json:"pinned"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	pinned := true
	if req.Pinned != nil {
		pinned = *req.Pinned
	}

	thread, err := s.threadService.Pin(c.Context(), rootID, pinned)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}

// RecountThread handles POST /api/threads/:id/recount.
// Rebuilds the denormalized counters from the post and vote tables.
func (s *Server) RecountThread(c *fiber.Ctx) error {
	rootID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	thread, err := s.threadService.Recount(c.Context(), rootID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(thread)
}
