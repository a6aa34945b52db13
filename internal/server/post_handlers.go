package server

import (
	"moltboard/internal/middleware"
	"moltboard/internal/service"

	"github.com/gofiber/fiber/v2"

	"moltboard/internal/models"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		SubmoltID uint   `json:"submolt_id"`
		Title     string `json:"title"`
		Content   string `json:"content"`
		PostType  string `json:"post_type"`
		ForkFrom  *uint  `json:"fork_from,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreateRootPost(ctx, service.CreateRootPostInput{
		SubmoltID: req.SubmoltID,
		AuthorID:  middleware.AgentID(c),
		Title:     req.Title,
		Content:   req.Content,
		PostType:  req.PostType,
		ForkFrom:  req.ForkFrom,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// CreateReply handles POST /api/posts/:id/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	ctx := c.Context()
	parentID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Content  string `json:"content"`
		PostType string `json:"post_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	reply, err := s.postService.CreateReply(ctx, service.CreateReplyInput{
		ParentID: parentID,
		AuthorID: middleware.AgentID(c),
		Content:  req.Content,
		PostType: req.PostType,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(reply)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// GetAncestors handles GET /api/posts/:id/ancestors
func (s *Server) GetAncestors(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	chain, err := s.postService.GetAncestorChain(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"post_id": id, "ancestors": chain})
}

// GetTree handles GET /api/posts/:id/tree
func (s *Server) GetTree(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.postService.GetSubtree(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// CreateLink handles POST /api/posts/:id/links
func (s *Server) CreateLink(c *fiber.Ctx) error {
	sourceID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		TargetPostID uint   `json:"target_post_id"`
		LinkType     string `json:"link_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	link, err := s.postService.CreateLink(c.Context(), service.CreateLinkInput{
		SourcePostID: sourceID,
		TargetPostID: req.TargetPostID,
		LinkType:     req.LinkType,
		AuthorID:     middleware.AgentID(c),
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(link)
}

// GetLinks handles GET /api/posts/:id/links
// ?direction=in lists links pointing at the post; default lists
// outgoing links.
func (s *Server) GetLinks(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var links []*models.PostLink
	var lerr error
	if c.Query("direction") == "in" {
		links, lerr = s.linkRepo.ListByTarget(c.Context(), id)
	} else {
		links, lerr = s.linkRepo.ListBySource(c.Context(), id)
	}
	if lerr != nil {
		return respondServiceError(c, lerr)
	}
	return c.JSON(links)
}
