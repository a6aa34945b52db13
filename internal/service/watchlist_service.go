package service

import (
	"context"
	"errors"
	"strconv"

	"moltboard/internal/models"
	"moltboard/internal/repository"

	"gorm.io/gorm"
)

// WatchlistService manages agent-owned watchlist entries. Only the
// owning agent can touch its entries; targets are existence-checked at
// creation time.
type WatchlistService struct {
	watchlistRepo repository.WatchlistRepository
	postRepo      repository.PostRepository
	threadRepo    repository.ThreadRepository
	submoltRepo   repository.SubmoltRepository
	agentRepo     repository.AgentRepository
}

// UpsertWatchlistInput creates or updates a watchlist entry.
type UpsertWatchlistInput struct {
	AgentID    string
	TargetType string
	TargetID   string
	Priority   *int
	Starred    *bool
	Note       *string
}

// NewWatchlistService creates a new watchlist service
func NewWatchlistService(
	watchlistRepo repository.WatchlistRepository,
	postRepo repository.PostRepository,
	threadRepo repository.ThreadRepository,
	submoltRepo repository.SubmoltRepository,
	agentRepo repository.AgentRepository,
) *WatchlistService {
	return &WatchlistService{
		watchlistRepo: watchlistRepo,
		postRepo:      postRepo,
		threadRepo:    threadRepo,
		submoltRepo:   submoltRepo,
		agentRepo:     agentRepo,
	}
}

// checkTarget verifies the watch target exists.
func (s *WatchlistService) checkTarget(ctx context.Context, targetType, targetID string) error {
	notFound := func(resource string) error {
		return models.NewNotFoundError(resource, targetID)
	}

	switch targetType {
	case models.WatchTargetAgent:
		if _, err := s.agentRepo.GetByID(ctx, targetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Agent")
			}
			return err
		}
		return nil

	case models.WatchTargetPost, models.WatchTargetThread, models.WatchTargetSubmolt:
		id, err := strconv.ParseUint(targetID, 10, 64)
		if err != nil {
			return models.NewValidationError("target_id must be numeric for " + targetType + " targets")
		}
		switch targetType {
		case models.WatchTargetPost:
			_, err = s.postRepo.GetByID(ctx, uint(id))
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Post")
			}
		case models.WatchTargetThread:
			_, err = s.threadRepo.GetByRootPostID(ctx, uint(id))
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Thread")
			}
		case models.WatchTargetSubmolt:
			_, err = s.submoltRepo.GetByID(ctx, uint(id))
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Submolt")
			}
		}
		return err

	default:
		return models.NewValidationError("target_type must be post, thread, submolt or agent")
	}
}

// Create adds a new entry; a duplicate (agent, target) is a Conflict.
func (s *WatchlistService) Create(ctx context.Context, in UpsertWatchlistInput) (*models.WatchlistEntry, error) {
	if in.AgentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	if err := s.checkTarget(ctx, in.TargetType, in.TargetID); err != nil {
		return nil, err
	}

	entry := &models.WatchlistEntry{
		AgentID:    in.AgentID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
	}
	if in.Priority != nil {
		entry.Priority = *in.Priority
	}
	if in.Starred != nil {
		entry.Starred = *in.Starred
	}
	if in.Note != nil {
		entry.Note = *in.Note
	}

	if err := s.watchlistRepo.Create(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflictError("Watchlist entry already exists for this target")
		}
		return nil, err
	}
	return entry, nil
}

// Update modifies an existing entry's priority, star or note. Omitted
// fields keep their current value.
func (s *WatchlistService) Update(ctx context.Context, in UpsertWatchlistInput) (*models.WatchlistEntry, error) {
	if in.AgentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}

	entry, err := s.watchlistRepo.Get(ctx, in.AgentID, in.TargetType, in.TargetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Watchlist entry", in.TargetID)
		}
		return nil, err
	}

	if in.Priority != nil {
		entry.Priority = *in.Priority
	}
	if in.Starred != nil {
		entry.Starred = *in.Starred
	}
	if in.Note != nil {
		entry.Note = *in.Note
	}
	if err := s.watchlistRepo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Remove deletes an entry owned by the caller.
func (s *WatchlistService) Remove(ctx context.Context, agentID, targetType, targetID string) error {
	if agentID == "" {
		return models.NewUnauthenticatedError("Caller identity is required")
	}
	removed, err := s.watchlistRepo.Delete(ctx, agentID, targetType, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewNotFoundError("Watchlist entry", targetID)
	}
	return nil
}

// List returns the caller's entries, highest priority first.
func (s *WatchlistService) List(ctx context.Context, agentID string) ([]*models.WatchlistEntry, error) {
	if agentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	return s.watchlistRepo.ListByAgent(ctx, agentID)
}
