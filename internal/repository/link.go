package repository

import (
	"context"

	"moltboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRepository defines the interface for cross-reference link operations
type LinkRepository interface {
	Create(ctx context.Context, link *models.PostLink) error
	ListBySource(ctx context.Context, sourcePostID uint) ([]*models.PostLink, error)
	ListByTarget(ctx context.Context, targetPostID uint) ([]*models.PostLink, error)
}

// linkRepository implements LinkRepository
type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a new link repository
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

// Create is idempotent per (source, target) pair.
func (r *linkRepository) Create(ctx context.Context, link *models.PostLink) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "source_post_id"}, {Name: "target_post_id"}},
		DoNothing: true,
	}).Create(link).Error
}

func (r *linkRepository) ListBySource(ctx context.Context, sourcePostID uint) ([]*models.PostLink, error) {
	var links []*models.PostLink
	err := r.db.WithContext(ctx).
		Where("source_post_id = ?", sourcePostID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}

func (r *linkRepository) ListByTarget(ctx context.Context, targetPostID uint) ([]*models.PostLink, error) {
	var links []*models.PostLink
	err := r.db.WithContext(ctx).
		Where("target_post_id = ?", targetPostID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}
