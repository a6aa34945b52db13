package repository

import (
	"context"
	"time"

	"moltboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MentionRepository defines the interface for mention obligation operations
type MentionRepository interface {
	CreateIfAbsent(ctx context.Context, mention *models.Mention) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Mention, error)
	ListUnresponded(ctx context.Context, agentID string, since *time.Time) ([]*models.Mention, error)
	MarkResponded(ctx context.Context, id uint, responsePostID *uint) (*models.Mention, error)
	MarkAllResponded(ctx context.Context, agentID string) (int64, error)
}

// mentionRepository implements MentionRepository
type mentionRepository struct {
	db *gorm.DB
}

// NewMentionRepository creates a new mention repository
func NewMentionRepository(db *gorm.DB) MentionRepository {
	return &mentionRepository{db: db}
}

// CreateIfAbsent inserts an obligation unless one already exists for
// the same (post, agent). Re-processing the same text never creates a
// second obligation. Returns whether a row was inserted.
func (r *mentionRepository) CreateIfAbsent(ctx context.Context, mention *models.Mention) (bool, error) {
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "mentioned_agent_id"}},
		DoNothing: true,
	}).Create(mention)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *mentionRepository) GetByID(ctx context.Context, id uint) (*models.Mention, error) {
	var mention models.Mention
	if err := r.db.WithContext(ctx).Preload("Post").First(&mention, id).Error; err != nil {
		return nil, err
	}
	return &mention, nil
}

func (r *mentionRepository) ListUnresponded(ctx context.Context, agentID string, since *time.Time) ([]*models.Mention, error) {
	q := r.db.WithContext(ctx).
		Preload("Post").
		Where("mentioned_agent_id = ? AND responded = ?", agentID, false)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var mentions []*models.Mention
	err := q.Order("created_at DESC").Find(&mentions).Error
	return mentions, err
}

// MarkResponded flips the monotonic responded flag. Already-responded
// rows are left untouched (the response post of the first resolution
// wins) and returned as-is.
func (r *mentionRepository) MarkResponded(ctx context.Context, id uint, responsePostID *uint) (*models.Mention, error) {
	var mention models.Mention
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			First(&mention, id).Error; err != nil {
			return err
		}
		if mention.Responded {
			return nil
		}
		mention.Responded = true
		mention.ResponsePostID = responsePostID
		return tx.Model(&models.Mention{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"responded":        true,
				"response_post_id": responsePostID,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return &mention, nil
}

func (r *mentionRepository) MarkAllResponded(ctx context.Context, agentID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Mention{}).
		Where("mentioned_agent_id = ? AND responded = ?", agentID, false).
		Update("responded", true)
	return result.RowsAffected, result.Error
}
