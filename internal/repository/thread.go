package repository

import (
	"context"

	"moltboard/internal/cache"
	"moltboard/internal/models"

	"gorm.io/gorm"
)

// ThreadRepository defines the interface for thread aggregate operations
type ThreadRepository interface {
	GetByRootPostID(ctx context.Context, rootPostID uint) (*models.Thread, error)
	List(ctx context.Context, submoltID *uint, sort string, limit, offset int) ([]*models.Thread, error)
	SetLocked(ctx context.Context, rootPostID uint, locked bool, status models.PostStatus) (*models.Thread, error)
	SetPinned(ctx context.Context, rootPostID uint, pinned bool) (*models.Thread, error)
	Recount(ctx context.Context, rootPostID uint) (*models.Thread, error)
}

// threadRepository implements ThreadRepository
type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new thread repository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) GetByRootPostID(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	var thread models.Thread
	key := cache.ThreadKey(rootPostID)
	err := cache.Aside(ctx, key, &thread, cache.ThreadTTL, func() error {
		return r.db.WithContext(ctx).
			Preload("RootPost").
			Where("root_post_id = ?", rootPostID).
			First(&thread).Error
	})
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) List(ctx context.Context, submoltID *uint, sort string, limit, offset int) ([]*models.Thread, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Thread{}).
		Preload("RootPost").
		Joins("JOIN posts ON posts.id = threads.root_post_id")
	if submoltID != nil {
		q = q.Where("posts.submolt_id = ?", *submoltID)
	}

	switch sort {
	case "top":
		q = q.Order("(posts.upvotes - posts.downvotes) DESC, threads.last_activity DESC")
	case "new":
		q = q.Order("posts.created_at DESC")
	default: // "active" and anything unrecognized
		q = q.Order("threads.pinned DESC, threads.last_activity DESC")
	}

	var threads []*models.Thread
	err := q.Limit(limit).Offset(offset).Find(&threads).Error
	return threads, err
}

// SetLocked flips the thread lock flag and keeps the root post's status
// column in step, in one transaction.
func (r *threadRepository) SetLocked(ctx context.Context, rootPostID uint, locked bool, status models.PostStatus) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("root_post_id = ?", rootPostID).
			First(&thread).Error; err != nil {
			return err
		}
		if err := tx.Model(&thread).Update("locked", locked).Error; err != nil {
			return err
		}
		thread.Locked = locked
		return tx.Model(&models.Post{}).Where("id = ?", rootPostID).
			Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateThread(ctx, rootPostID)
	cache.InvalidatePost(ctx, rootPostID)
	return &thread, nil
}

func (r *threadRepository) SetPinned(ctx context.Context, rootPostID uint, pinned bool) (*models.Thread, error) {
	var thread models.Thread
	if err := r.db.WithContext(ctx).
		Where("root_post_id = ?", rootPostID).
		First(&thread).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&thread).Update("pinned", pinned).Error; err != nil {
		return nil, err
	}
	thread.Pinned = pinned
	cache.InvalidateThread(ctx, rootPostID)
	return &thread, nil
}

// Recount rebuilds reply_count and participant_count from the post
// table. Any counter drift is recoverable through this path.
func (r *threadRepository) Recount(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("root_post_id = ?", rootPostID).
			First(&thread).Error; err != nil {
			return err
		}

		var replies int64
		if err := tx.Model(&models.Post{}).
			Where("root_id = ? AND id <> ?", rootPostID, rootPostID).
			Count(&replies).Error; err != nil {
			return err
		}

		var participants int64
		if err := tx.Model(&models.Post{}).
			Where("root_id = ?", rootPostID).
			Distinct("author_id").
			Count(&participants).Error; err != nil {
			return err
		}

		thread.ReplyCount = int(replies)
		thread.ParticipantCount = int(participants)
		return tx.Model(&models.Thread{}).Where("id = ?", thread.ID).
			Updates(map[string]interface{}{
				"reply_count":       thread.ReplyCount,
				"participant_count": thread.ParticipantCount,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateThread(ctx, rootPostID)
	return &thread, nil
}
