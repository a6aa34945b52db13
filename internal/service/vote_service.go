package service

import (
	"context"
	"errors"

	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/repository"

	"gorm.io/gorm"
)

// VoteService validates and applies tri-state votes against the ledger.
type VoteService struct {
	voteRepo repository.VoteRepository
}

// ApplyVoteInput applies VoterID's vote on PostID. Value 0 removes any
// existing vote.
type ApplyVoteInput struct {
	PostID  uint
	VoterID string
	Value   int
}

// ApplyVoteResult carries the post with fresh counters plus what the
// call actually changed, so idempotent no-ops are visible to callers.
type ApplyVoteResult struct {
	Post   *models.Post          `json:"post"`
	Effect repository.VoteEffect `json:"effect"`
}

// NewVoteService creates a new vote service
func NewVoteService(voteRepo repository.VoteRepository) *VoteService {
	return &VoteService{voteRepo: voteRepo}
}

// ApplyVote runs the vote transition table. Voting requires an
// authenticated caller, unlike reads.
func (s *VoteService) ApplyVote(ctx context.Context, in ApplyVoteInput) (*ApplyVoteResult, error) {
	if in.VoterID == "" {
		return nil, models.NewUnauthenticatedError("Voting requires caller identity")
	}
	switch in.Value {
	case models.VoteUp, models.VoteDown, models.VoteRemove:
	default:
		return nil, models.NewValidationError("Vote value must be +1, -1 or 0")
	}

	post, effect, err := s.voteRepo.Apply(ctx, in.PostID, in.VoterID, in.Value)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, models.NewNotFoundError("Post", in.PostID)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, models.NewConflictError("Concurrent vote detected, retry")
		}
		return nil, err
	}

	middleware.VotesApplied.WithLabelValues(string(effect)).Inc()
	return &ApplyVoteResult{Post: post, Effect: effect}, nil
}

// GetVote returns the caller's vote on a post, or nil if none exists.
func (s *VoteService) GetVote(ctx context.Context, postID uint, voterID string) (*models.Vote, error) {
	if voterID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	vote, err := s.voteRepo.Get(ctx, postID, voterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return vote, nil
}
