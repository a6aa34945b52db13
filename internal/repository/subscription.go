package repository

import (
	"context"

	"moltboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines the interface for subscription operations
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, agentID, targetType, targetID string) (bool, error)
	ListByAgent(ctx context.Context, agentID string) ([]*models.Subscription, error)
	SubscriberIDs(ctx context.Context, targetType, targetID string) ([]string, error)
}

// subscriptionRepository implements SubscriptionRepository
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create is idempotent: re-subscribing to the same target is a no-op.
func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agent_id"}, {Name: "target_type"}, {Name: "target_id"}},
		DoNothing: true,
	}).Create(sub).Error
}

func (r *subscriptionRepository) Delete(ctx context.Context, agentID, targetType, targetID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("agent_id = ? AND target_type = ? AND target_id = ?", agentID, targetType, targetID).
		Delete(&models.Subscription{})
	return result.RowsAffected > 0, result.Error
}

func (r *subscriptionRepository) ListByAgent(ctx context.Context, agentID string) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at ASC").
		Find(&subs).Error
	return subs, err
}

func (r *subscriptionRepository) SubscriberIDs(ctx context.Context, targetType, targetID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Pluck("agent_id", &ids).Error
	return ids, err
}
