package service

import (
	"context"
	"errors"

	"moltboard/internal/models"
	"moltboard/internal/repository"

	"gorm.io/gorm"
)

// ThreadService owns the per-thread state machine (open, locked,
// resolved) and thread aggregate reads. State transitions apply to
// root posts only.
type ThreadService struct {
	threadRepo repository.ThreadRepository
	postRepo   repository.PostRepository
}

// ThreadView bundles the aggregate with its posts for thread reads.
type ThreadView struct {
	Thread *models.Thread `json:"thread"`
	Posts  []*models.Post `json:"posts"`
}

// NewThreadService creates a new thread service
func NewThreadService(threadRepo repository.ThreadRepository, postRepo repository.PostRepository) *ThreadService {
	return &ThreadService{threadRepo: threadRepo, postRepo: postRepo}
}

// rootPost verifies the id names an existing root post.
func (s *ThreadService) rootPost(ctx context.Context, rootPostID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, rootPostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", rootPostID)
		}
		return nil, err
	}
	if !post.IsRoot() {
		return nil, models.NewInvalidOperationError("Thread operations apply to root posts only")
	}
	return post, nil
}

// Lock transitions open -> locked. Locking an already locked thread is
// a no-op success; locking a resolved thread is invalid.
func (s *ThreadService) Lock(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	post, err := s.rootPost(ctx, rootPostID)
	if err != nil {
		return nil, err
	}
	switch post.Status {
	case models.StatusLocked:
		return s.threadRepo.GetByRootPostID(ctx, rootPostID)
	case models.StatusResolved:
		return nil, models.NewInvalidOperationError("Cannot lock a resolved thread; reopen it first")
	}
	return s.threadRepo.SetLocked(ctx, rootPostID, true, models.StatusLocked)
}

// Resolve transitions open -> resolved.
func (s *ThreadService) Resolve(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	post, err := s.rootPost(ctx, rootPostID)
	if err != nil {
		return nil, err
	}
	switch post.Status {
	case models.StatusResolved:
		return s.threadRepo.GetByRootPostID(ctx, rootPostID)
	case models.StatusLocked:
		return nil, models.NewInvalidOperationError("Cannot resolve a locked thread; reopen it first")
	}
	return s.threadRepo.SetLocked(ctx, rootPostID, false, models.StatusResolved)
}

// Reopen transitions locked|resolved -> open.
func (s *ThreadService) Reopen(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	post, err := s.rootPost(ctx, rootPostID)
	if err != nil {
		return nil, err
	}
	if post.Status == models.StatusOpen {
		return s.threadRepo.GetByRootPostID(ctx, rootPostID)
	}
	return s.threadRepo.SetLocked(ctx, rootPostID, false, models.StatusOpen)
}

// Pin marks a thread pinned; Unpin reverses it.
func (s *ThreadService) Pin(ctx context.Context, rootPostID uint, pinned bool) (*models.Thread, error) {
	if _, err := s.rootPost(ctx, rootPostID); err != nil {
		return nil, err
	}
	return s.threadRepo.SetPinned(ctx, rootPostID, pinned)
}

// Get returns the aggregate plus the full post tree.
func (s *ThreadService) Get(ctx context.Context, rootPostID uint) (*ThreadView, error) {
	thread, err := s.threadRepo.GetByRootPostID(ctx, rootPostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Thread", rootPostID)
		}
		return nil, err
	}
	posts, err := s.postRepo.GetSubtree(ctx, rootPostID)
	if err != nil {
		return nil, err
	}
	return &ThreadView{Thread: thread, Posts: posts}, nil
}

// List returns thread aggregates, optionally scoped to a submolt.
// Sorts: active (default), top, new.
func (s *ThreadService) List(ctx context.Context, submoltID *uint, sort string, limit, offset int) ([]*models.Thread, error) {
	return s.threadRepo.List(ctx, submoltID, sort, limit, offset)
}

// Recount rebuilds a thread's counters from the post table.
func (s *ThreadService) Recount(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	if _, err := s.rootPost(ctx, rootPostID); err != nil {
		return nil, err
	}
	return s.threadRepo.Recount(ctx, rootPostID)
}
