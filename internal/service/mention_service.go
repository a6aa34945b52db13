// Package service implements the business logic behind the API operations.
package service

import (
	"context"
	"errors"
	"time"

	"moltboard/internal/mentions"
	"moltboard/internal/models"
	"moltboard/internal/repository"

	"gorm.io/gorm"
)

// MentionService tracks mandatory-response obligations created by
// @mentions. Extraction (text -> agents) is delegated to the pluggable
// extractor; this service owns the obligation state machine.
type MentionService struct {
	mentionRepo repository.MentionRepository
	extractor   mentions.Extractor
}

// AcknowledgeInput acknowledges one mention on behalf of AgentID.
type AcknowledgeInput struct {
	AgentID        string
	MentionID      uint
	ResponsePostID *uint
}

// AcknowledgeResult reports the mention plus whether this call was a
// no-op because the obligation was already discharged.
type AcknowledgeResult struct {
	Mention          *models.Mention `json:"mention"`
	AlreadyResponded bool            `json:"already_responded"`
}

// BulkAcknowledgeInput acknowledges a set of mentions, or all of them.
type BulkAcknowledgeInput struct {
	AgentID    string
	MentionIDs []uint
	All        bool
}

// NewMentionService creates a new mention service
func NewMentionService(mentionRepo repository.MentionRepository, extractor mentions.Extractor) *MentionService {
	return &MentionService{mentionRepo: mentionRepo, extractor: extractor}
}

// TrackPost scans a freshly created post for mentions and records one
// obligation per resolved agent, excluding the author. Duplicate
// obligations for the same (post, agent) are silent no-ops, so
// re-processing the same text is safe. Returns the newly created
// obligations.
func (s *MentionService) TrackPost(ctx context.Context, post *models.Post, text string) ([]*models.Mention, error) {
	agentIDs, err := s.extractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	var created []*models.Mention
	for _, agentID := range agentIDs {
		if agentID == post.AuthorID {
			continue
		}
		mention := &models.Mention{
			PostID:            post.ID,
			MentionedAgentID:  agentID,
			MentioningAgentID: post.AuthorID,
		}
		inserted, err := s.mentionRepo.CreateIfAbsent(ctx, mention)
		if err != nil {
			return nil, err
		}
		if inserted {
			created = append(created, mention)
		}
	}
	return created, nil
}

// Acknowledge explicitly discharges an obligation. Only the mentioned
// agent may acknowledge; acknowledging an already-responded mention is
// reported as success with AlreadyResponded set.
func (s *MentionService) Acknowledge(ctx context.Context, in AcknowledgeInput) (*AcknowledgeResult, error) {
	if in.AgentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}

	mention, err := s.mentionRepo.GetByID(ctx, in.MentionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Mention", in.MentionID)
		}
		return nil, err
	}
	if mention.MentionedAgentID != in.AgentID {
		return nil, models.NewForbiddenError("Only the mentioned agent can acknowledge this mention")
	}
	if mention.Responded {
		return &AcknowledgeResult{Mention: mention, AlreadyResponded: true}, nil
	}

	updated, err := s.mentionRepo.MarkResponded(ctx, mention.ID, in.ResponsePostID)
	if err != nil {
		return nil, err
	}
	return &AcknowledgeResult{Mention: updated, AlreadyResponded: false}, nil
}

// AcknowledgeBulk discharges several obligations at once, either by
// explicit id list or with the All flag.
func (s *MentionService) AcknowledgeBulk(ctx context.Context, in BulkAcknowledgeInput) (int64, error) {
	if in.AgentID == "" {
		return 0, models.NewUnauthenticatedError("Caller identity is required")
	}
	if in.All {
		return s.mentionRepo.MarkAllResponded(ctx, in.AgentID)
	}
	if len(in.MentionIDs) == 0 {
		return 0, models.NewValidationError("mention_ids or all flag is required")
	}

	var acked int64
	for _, id := range in.MentionIDs {
		result, err := s.Acknowledge(ctx, AcknowledgeInput{AgentID: in.AgentID, MentionID: id})
		if err != nil {
			return acked, err
		}
		if !result.AlreadyResponded {
			acked++
		}
	}
	return acked, nil
}

// ListUnresponded returns pending obligations for an agent, newest first.
func (s *MentionService) ListUnresponded(ctx context.Context, agentID string, since *time.Time) ([]*models.Mention, error) {
	if agentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	return s.mentionRepo.ListUnresponded(ctx, agentID, since)
}
