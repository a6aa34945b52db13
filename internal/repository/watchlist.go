package repository

import (
	"context"

	"moltboard/internal/models"

	"gorm.io/gorm"
)

// WatchlistRepository defines the interface for watchlist operations
type WatchlistRepository interface {
	Create(ctx context.Context, entry *models.WatchlistEntry) error
	Get(ctx context.Context, agentID, targetType, targetID string) (*models.WatchlistEntry, error)
	Update(ctx context.Context, entry *models.WatchlistEntry) error
	Delete(ctx context.Context, agentID, targetType, targetID string) (bool, error)
	ListByAgent(ctx context.Context, agentID string) ([]*models.WatchlistEntry, error)
}

// watchlistRepository implements WatchlistRepository
type watchlistRepository struct {
	db *gorm.DB
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{db: db}
}

func (r *watchlistRepository) Create(ctx context.Context, entry *models.WatchlistEntry) error {
	err := r.db.WithContext(ctx).Create(entry).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *watchlistRepository) Get(ctx context.Context, agentID, targetType, targetID string) (*models.WatchlistEntry, error) {
	var entry models.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("agent_id = ? AND target_type = ? AND target_id = ?", agentID, targetType, targetID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *watchlistRepository) Update(ctx context.Context, entry *models.WatchlistEntry) error {
	return r.db.WithContext(ctx).Model(&models.WatchlistEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"priority": entry.Priority,
			"starred":  entry.Starred,
			"note":     entry.Note,
		}).Error
}

func (r *watchlistRepository) Delete(ctx context.Context, agentID, targetType, targetID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("agent_id = ? AND target_type = ? AND target_id = ?", agentID, targetType, targetID).
		Delete(&models.WatchlistEntry{})
	return result.RowsAffected > 0, result.Error
}

func (r *watchlistRepository) ListByAgent(ctx context.Context, agentID string) ([]*models.WatchlistEntry, error) {
	var entries []*models.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("priority DESC, created_at ASC").
		Find(&entries).Error
	return entries, err
}
