package repository

import (
	"context"

	"moltboard/internal/cache"
	"moltboard/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreateRoot(ctx context.Context, post *models.Post) error
	CreateReply(ctx context.Context, post *models.Post) (*models.Thread, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetSubtree(ctx context.Context, rootID uint) ([]*models.Post, error)
	ListBySubmolt(ctx context.Context, submoltID uint, rootsOnly bool, limit, offset int) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// CreateRoot inserts a root post and its Thread aggregate in one
// transaction. RootID is materialized to the post's own ID once the
// insert assigns it.
func (r *postRepository) CreateRoot(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post.ParentID = nil
		post.Path = ""
		post.Status = models.StatusOpen
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		post.RootID = post.ID
		if err := tx.Model(&models.Post{}).Where("id = ?", post.ID).
			Update("root_id", post.ID).Error; err != nil {
			return err
		}
		thread := &models.Thread{
			RootPostID:       post.ID,
			ReplyCount:       0,
			ParticipantCount: 1,
			LastActivity:     post.CreatedAt,
		}
		return tx.Create(thread).Error
	})
}

// CreateReply inserts a reply and updates the thread aggregate in one
// transaction keyed on the thread row (SELECT ... FOR UPDATE), so
// concurrent replies to the same tree cannot lose counter updates.
// Within the same transaction, any unresponded mention of the replying
// agent anywhere in the ancestor chain (the replied-to post included)
// is marked responded with this reply as the response post.
//
// The caller sets ParentID, AuthorID and Content; SubmoltID, RootID and
// Path are derived from the parent here and never re-derived later.
// Returns gorm.ErrRecordNotFound if the parent is absent and
// ErrThreadLocked if the thread is locked.
func (r *postRepository) CreateReply(ctx context.Context, post *models.Post) (*models.Thread, error) {
	var thread models.Thread
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent models.Post
		if err := tx.First(&parent, *post.ParentID).Error; err != nil {
			return err
		}

		if err := lockForUpdate(tx).
			Where("root_post_id = ?", parent.RootID).
			First(&thread).Error; err != nil {
			return err
		}
		if thread.Locked {
			return ErrThreadLocked
		}

		post.SubmoltID = parent.SubmoltID
		post.RootID = parent.RootID
		post.Path = parent.ChildPath()
		post.Status = models.StatusOpen
		if err := tx.Create(post).Error; err != nil {
			return err
		}

		// Participant test: has this agent any prior post in the tree?
		// Roots carry root_id = own id, so the root author is covered.
		var prior int64
		if err := tx.Model(&models.Post{}).
			Where("root_id = ? AND author_id = ? AND id <> ?", post.RootID, post.AuthorID, post.ID).
			Count(&prior).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"reply_count":   gorm.Expr("reply_count + 1"),
			"last_activity": post.CreatedAt,
		}
		if prior == 0 {
			updates["participant_count"] = gorm.Expr("participant_count + 1")
		}
		if err := tx.Model(&models.Thread{}).Where("id = ?", thread.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		// Implicit mention resolution over the full ancestor chain. A
		// single reply can discharge obligations at several depths.
		chain := append(parent.AncestorIDs(), parent.ID)
		if err := tx.Model(&models.Mention{}).
			Where("post_id IN ? AND mentioned_agent_id = ? AND responded = ?", chain, post.AuthorID, false).
			Updates(map[string]interface{}{
				"responded":        true,
				"response_post_id": post.ID,
			}).Error; err != nil {
			return err
		}

		// Reload the aggregate so callers see post-update counts.
		return tx.Where("id = ?", thread.ID).First(&thread).Error
	})
	if err != nil {
		return nil, err
	}
	cache.InvalidateThread(ctx, thread.RootPostID)
	return &thread, nil
}

// cachedPost is the cache-aside envelope for a post. The JSON view
// hides the materialized path; a cache round trip must preserve it or
// ancestor walks on cached replies come back empty.
type cachedPost struct {
	*models.Post
	Path string `json:"path"`
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	wrapped := cachedPost{Post: &post}
	err := cache.Aside(ctx, cache.PostKey(id), &wrapped, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Author").
			Preload("Submolt").
			First(&post, id).Error; err != nil {
			return err
		}
		wrapped.Path = post.Path
		return nil
	})
	if err != nil {
		return nil, err
	}
	post.Path = wrapped.Path
	return &post, nil
}

// GetSubtree returns every post in the tree anchored at rootID, the
// root included, ordered by creation. For a non-root subtree callers
// filter on Path prefixes; the heavy traversals this backend performs
// (participant counts, export) always start at roots.
func (r *postRepository) GetSubtree(ctx context.Context, rootID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("root_id = ?", rootID).
		Order("created_at ASC, id ASC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListBySubmolt(ctx context.Context, submoltID uint, rootsOnly bool, limit, offset int) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).
		Preload("Author").
		Where("submolt_id = ?", submoltID)
	if rootsOnly {
		q = q.Where("parent_id IS NULL")
	}
	var posts []*models.Post
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}
