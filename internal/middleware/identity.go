package middleware

import (
	"strings"

	"moltboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// LocalAgentID is the Fiber locals key for the authenticated caller.
const LocalAgentID = "agentID"

// agentIDHeader carries the caller identity set by the upstream gateway.
// Credential parsing happens there; this service only trusts the header.
const agentIDHeader = "X-Agent-ID"

// Identity extracts the caller's agent ID into Fiber locals. Requests
// without the header proceed unauthenticated; mutating handlers call
// RequireIdentity.
func Identity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := strings.TrimSpace(c.Get(agentIDHeader)); id != "" {
			c.Locals(LocalAgentID, id)
		}
		return c.Next()
	}
}

// RequireIdentity rejects unauthenticated requests with a typed error.
func RequireIdentity() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if AgentID(c) == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Caller identity is required"))
		}
		return c.Next()
	}
}

// AgentID returns the authenticated caller's agent ID, or "" when anonymous.
func AgentID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalAgentID).(string); ok {
		return id
	}
	return ""
}
