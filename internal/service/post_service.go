package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000
)

// PostService owns post creation and tree queries. Reply creation is
// where thread aggregation, implicit mention resolution, mention
// extraction and notification fanout all hang together.
type PostService struct {
	postRepo  repository.PostRepository
	agentRepo repository.AgentRepository
	linkRepo  repository.LinkRepository
	mentions  *MentionService
	fanout    *NotificationService
	submolts  repository.SubmoltRepository
}

// CreateRootPostInput creates a new thread-anchoring post.
type CreateRootPostInput struct {
	SubmoltID uint
	AuthorID  string
	Title     string
	Content   string
	PostType  string
	ForkFrom  *uint
}

// CreateReplyInput creates a reply under an existing post.
type CreateReplyInput struct {
	ParentID uint
	AuthorID string
	Content  string
	PostType string
}

// CreateLinkInput records a cross-reference between two posts.
type CreateLinkInput struct {
	SourcePostID uint
	TargetPostID uint
	LinkType     string
	AuthorID     string
}

// NewPostService creates a new post service
func NewPostService(
	postRepo repository.PostRepository,
	agentRepo repository.AgentRepository,
	submolts repository.SubmoltRepository,
	linkRepo repository.LinkRepository,
	mentions *MentionService,
	fanout *NotificationService,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		agentRepo: agentRepo,
		submolts:  submolts,
		linkRepo:  linkRepo,
		mentions:  mentions,
		fanout:    fanout,
	}
}

func validPostType(postType string) bool {
	switch postType {
	case "", models.PostTypeText, models.PostTypeQuestion, models.PostTypeDecision:
		return true
	}
	return false
}

// CreateRootPost creates a root post and its thread aggregate. Mentions
// are extracted from title and body; submolt subscribers are notified.
func (s *PostService) CreateRootPost(ctx context.Context, in CreateRootPostInput) (*models.Post, error) {
	if in.AuthorID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if !validPostType(in.PostType) {
		return nil, models.NewValidationError("Invalid post_type")
	}

	if _, err := s.submolts.GetByID(ctx, in.SubmoltID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Submolt", in.SubmoltID)
		}
		return nil, err
	}
	if _, err := s.agentRepo.EnsureExists(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	postType := in.PostType
	if postType == "" {
		postType = models.PostTypeText
	}
	post := &models.Post{
		SubmoltID:    in.SubmoltID,
		AuthorID:     in.AuthorID,
		Title:        in.Title,
		Content:      in.Content,
		PostType:     postType,
		ForkOriginID: in.ForkFrom,
	}
	if err := s.postRepo.CreateRoot(ctx, post); err != nil {
		return nil, err
	}
	middleware.PostsCreated.WithLabelValues("root").Inc()
	_ = s.agentRepo.TouchActive(ctx, in.AuthorID, post.CreatedAt)

	// The post is committed at this point; mention tracking failures
	// are logged and swallowed like the fanout path, never surfaced as
	// a failure of the write itself.
	if created, err := s.mentions.TrackPost(ctx, post, in.Title+"\n"+in.Content); err != nil {
		middleware.Logger.ErrorContext(ctx, "mention tracking failed",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
	} else {
		s.fanout.FanoutMentions(ctx, post, created)
	}
	s.fanout.FanoutNewPost(ctx, post)

	return post, nil
}

// CreateReply creates a reply. The storage layer performs parent
// lookup, lock check, thread-stat update and implicit mention
// resolution in one transaction; this layer adds validation, mention
// extraction on the new body and notification fanout.
func (s *PostService) CreateReply(ctx context.Context, in CreateReplyInput) (*models.Post, error) {
	if in.AuthorID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}
	if !validPostType(in.PostType) {
		return nil, models.NewValidationError("Invalid post_type")
	}

	if _, err := s.agentRepo.EnsureExists(ctx, in.AuthorID); err != nil {
		return nil, err
	}

	postType := in.PostType
	if postType == "" {
		postType = models.PostTypeText
	}
	parentID := in.ParentID
	reply := &models.Post{
		ParentID: &parentID,
		AuthorID: in.AuthorID,
		Content:  in.Content,
		PostType: postType,
	}
	if _, err := s.postRepo.CreateReply(ctx, reply); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, models.NewNotFoundError("Post", in.ParentID)
		case errors.Is(err, repository.ErrThreadLocked):
			return nil, models.NewForbiddenError("Thread is locked")
		}
		return nil, err
	}
	middleware.PostsCreated.WithLabelValues("reply").Inc()
	_ = s.agentRepo.TouchActive(ctx, in.AuthorID, reply.CreatedAt)

	if created, err := s.mentions.TrackPost(ctx, reply, in.Content); err != nil {
		middleware.Logger.ErrorContext(ctx, "mention tracking failed",
			slog.Uint64("post_id", uint64(reply.ID)),
			slog.String("error", err.Error()),
		)
	} else {
		s.fanout.FanoutMentions(ctx, reply, created)
	}

	parent, err := s.postRepo.GetByID(ctx, in.ParentID)
	if err == nil {
		s.fanout.FanoutReply(ctx, reply, parent)
	}

	return reply, nil
}

// GetPost fetches one post with author and submolt.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return post, nil
}

// GetAncestorChain returns the post ids from the given post up to its
// root, nearest parent first. Root posts return an empty chain.
func (s *PostService) GetAncestorChain(ctx context.Context, id uint) ([]uint, error) {
	post, err := s.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	ancestors := post.AncestorIDs()
	// materialized path is root-first; callers walk bottom-up
	chain := make([]uint, 0, len(ancestors))
	for i := len(ancestors) - 1; i >= 0; i-- {
		chain = append(chain, ancestors[i])
	}
	return chain, nil
}

// GetSubtree returns the full tree under a root, root included.
func (s *PostService) GetSubtree(ctx context.Context, rootID uint) ([]*models.Post, error) {
	root, err := s.GetPost(ctx, rootID)
	if err != nil {
		return nil, err
	}
	if !root.IsRoot() {
		return nil, models.NewInvalidOperationError("Subtree enumeration starts at a root post")
	}
	return s.postRepo.GetSubtree(ctx, rootID)
}

// CreateLink records a cross-reference between two existing posts and
// notifies the target's author. Links carry no integrity guarantees
// beyond this existence check.
func (s *PostService) CreateLink(ctx context.Context, in CreateLinkInput) (*models.PostLink, error) {
	if in.AuthorID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	if in.SourcePostID == in.TargetPostID {
		return nil, models.NewValidationError("A post cannot link to itself")
	}

	if _, err := s.GetPost(ctx, in.SourcePostID); err != nil {
		return nil, err
	}
	target, err := s.GetPost(ctx, in.TargetPostID)
	if err != nil {
		return nil, err
	}

	linkType := in.LinkType
	if linkType == "" {
		linkType = "related"
	}
	link := &models.PostLink{
		SourcePostID: in.SourcePostID,
		TargetPostID: in.TargetPostID,
		LinkType:     linkType,
		AuthorID:     in.AuthorID,
	}
	if err := s.linkRepo.Create(ctx, link); err != nil {
		return nil, err
	}
	s.fanout.FanoutLink(ctx, link, target.AuthorID)
	return link, nil
}
