package repository

import (
	"context"
	"errors"

	"moltboard/internal/cache"
	"moltboard/internal/models"

	"gorm.io/gorm"
)

// VoteEffect describes what an Apply call actually did, so callers can
// distinguish idempotent no-ops from real mutations.
type VoteEffect string

const (
	EffectNone    VoteEffect = "none"
	EffectCreated VoteEffect = "created"
	EffectFlipped VoteEffect = "flipped"
	EffectRemoved VoteEffect = "removed"
)

// VoteRepository is the ledger of record for votes. Post counters are a
// cache over this table, mutated only here and only in the same
// transaction as the ledger row.
type VoteRepository interface {
	Apply(ctx context.Context, postID uint, voterID string, value int) (*models.Post, VoteEffect, error)
	Get(ctx context.Context, postID uint, voterID string) (*models.Vote, error)
	CountsFor(ctx context.Context, postID uint) (up int64, down int64, err error)
}

// voteRepository implements VoteRepository
type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

// Apply runs the tri-state vote transition in a single transaction with
// the post row locked, so the ledger row and the cached counters always
// commit together:
//
//	none  -> +1/-1  insert, bump counter
//	none  ->  0     no-op
//	v     ->  v     no-op (idempotent)
//	v     -> -v     update in place, move one count across
//	v     ->  0     delete, drop counter
//
// Returns gorm.ErrRecordNotFound if the post is absent.
func (r *voteRepository) Apply(ctx context.Context, postID uint, voterID string, value int) (*models.Post, VoteEffect, error) {
	var post models.Post
	effect := EffectNone

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			First(&post, postID).Error; err != nil {
			return err
		}

		var vote models.Vote
		err := tx.Where("post_id = ? AND voter_id = ?", postID, voterID).First(&vote).Error
		hasVote := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch {
		case !hasVote && value == models.VoteRemove:
			return nil

		case !hasVote:
			vote = models.Vote{PostID: postID, VoterID: voterID, Value: value}
			if err := tx.Create(&vote).Error; err != nil {
				if isUniqueViolation(err) {
					// Concurrent first-vote race: the other insert won,
					// and its counters committed with it.
					return ErrDuplicate
				}
				return err
			}
			bump(&post, value, +1)
			effect = EffectCreated

		case vote.Value == value:
			return nil

		case value == models.VoteRemove:
			if err := tx.Delete(&vote).Error; err != nil {
				return err
			}
			bump(&post, vote.Value, -1)
			effect = EffectRemoved

		default: // flip
			if err := tx.Model(&vote).Update("value", value).Error; err != nil {
				return err
			}
			bump(&post, vote.Value, -1)
			bump(&post, value, +1)
			effect = EffectFlipped
		}

		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Updates(map[string]interface{}{
				"upvotes":   post.Upvotes,
				"downvotes": post.Downvotes,
			}).Error
	})
	if err != nil {
		return nil, EffectNone, err
	}
	if effect != EffectNone {
		cache.InvalidatePost(ctx, post.ID)
	}
	return &post, effect, nil
}

// bump adjusts the counter matching a vote value by delta.
func bump(post *models.Post, voteValue, delta int) {
	if voteValue == models.VoteUp {
		post.Upvotes += delta
	} else if voteValue == models.VoteDown {
		post.Downvotes += delta
	}
}

func (r *voteRepository) Get(ctx context.Context, postID uint, voterID string) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND voter_id = ?", postID, voterID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// CountsFor recomputes the aggregate counts straight from the ledger.
// Used by the recount maintenance path and invariant tests.
func (r *voteRepository) CountsFor(ctx context.Context, postID uint) (int64, int64, error) {
	var up, down int64
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("post_id = ? AND value = ?", postID, models.VoteUp).
		Count(&up).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Vote{}).
		Where("post_id = ? AND value = ?", postID, models.VoteDown).
		Count(&down).Error; err != nil {
		return 0, 0, err
	}
	return up, down, nil
}
