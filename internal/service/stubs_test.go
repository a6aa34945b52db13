package service

import (
	"context"
	"testing"
	"time"

	"moltboard/internal/models"
	"moltboard/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func assertAppCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, models.ErrorCode(err))
}

// mentionRepoStub is a stub for repository.MentionRepository.
type mentionRepoStub struct {
	createIfAbsentFn   func(context.Context, *models.Mention) (bool, error)
	getByIDFn          func(context.Context, uint) (*models.Mention, error)
	listUnrespondedFn  func(context.Context, string, *time.Time) ([]*models.Mention, error)
	markRespondedFn    func(context.Context, uint, *uint) (*models.Mention, error)
	markAllRespondedFn func(context.Context, string) (int64, error)
}

func (s *mentionRepoStub) CreateIfAbsent(ctx context.Context, m *models.Mention) (bool, error) {
	return s.createIfAbsentFn(ctx, m)
}
func (s *mentionRepoStub) GetByID(ctx context.Context, id uint) (*models.Mention, error) {
	return s.getByIDFn(ctx, id)
}
func (s *mentionRepoStub) ListUnresponded(ctx context.Context, agentID string, since *time.Time) ([]*models.Mention, error) {
	return s.listUnrespondedFn(ctx, agentID, since)
}
func (s *mentionRepoStub) MarkResponded(ctx context.Context, id uint, responsePostID *uint) (*models.Mention, error) {
	return s.markRespondedFn(ctx, id, responsePostID)
}
func (s *mentionRepoStub) MarkAllResponded(ctx context.Context, agentID string) (int64, error) {
	return s.markAllRespondedFn(ctx, agentID)
}

func noopMentionRepo() *mentionRepoStub {
	return &mentionRepoStub{
		createIfAbsentFn: func(_ context.Context, _ *models.Mention) (bool, error) { return true, nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Mention, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listUnrespondedFn: func(_ context.Context, _ string, _ *time.Time) ([]*models.Mention, error) {
			return nil, nil
		},
		markRespondedFn: func(_ context.Context, _ uint, _ *uint) (*models.Mention, error) {
			return &models.Mention{Responded: true}, nil
		},
		markAllRespondedFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// extractorStub returns a fixed agent list.
type extractorStub struct {
	ids []string
	err error
}

func (s *extractorStub) Extract(_ context.Context, _ string) ([]string, error) {
	return s.ids, s.err
}

// voteRepoStub is a stub for repository.VoteRepository.
type voteRepoStub struct {
	applyFn     func(context.Context, uint, string, int) (*models.Post, repository.VoteEffect, error)
	getFn       func(context.Context, uint, string) (*models.Vote, error)
	countsForFn func(context.Context, uint) (int64, int64, error)
}

func (s *voteRepoStub) Apply(ctx context.Context, postID uint, voterID string, value int) (*models.Post, repository.VoteEffect, error) {
	return s.applyFn(ctx, postID, voterID, value)
}
func (s *voteRepoStub) Get(ctx context.Context, postID uint, voterID string) (*models.Vote, error) {
	return s.getFn(ctx, postID, voterID)
}
func (s *voteRepoStub) CountsFor(ctx context.Context, postID uint) (int64, int64, error) {
	return s.countsForFn(ctx, postID)
}

func noopVoteRepo() *voteRepoStub {
	return &voteRepoStub{
		applyFn: func(_ context.Context, postID uint, _ string, _ int) (*models.Post, repository.VoteEffect, error) {
			return &models.Post{ID: postID}, repository.EffectCreated, nil
		},
		getFn: func(_ context.Context, _ uint, _ string) (*models.Vote, error) {
			return nil, gorm.ErrRecordNotFound
		},
		countsForFn: func(_ context.Context, _ uint) (int64, int64, error) { return 0, 0, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createRootFn    func(context.Context, *models.Post) error
	createReplyFn   func(context.Context, *models.Post) (*models.Thread, error)
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	getSubtreeFn    func(context.Context, uint) ([]*models.Post, error)
	listBySubmoltFn func(context.Context, uint, bool, int, int) ([]*models.Post, error)
	listByAuthorFn  func(context.Context, string, int, int) ([]*models.Post, error)
}

func (s *postRepoStub) CreateRoot(ctx context.Context, post *models.Post) error {
	return s.createRootFn(ctx, post)
}
func (s *postRepoStub) CreateReply(ctx context.Context, post *models.Post) (*models.Thread, error) {
	return s.createReplyFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetSubtree(ctx context.Context, rootID uint) ([]*models.Post, error) {
	return s.getSubtreeFn(ctx, rootID)
}
func (s *postRepoStub) ListBySubmolt(ctx context.Context, submoltID uint, rootsOnly bool, limit, offset int) ([]*models.Post, error) {
	return s.listBySubmoltFn(ctx, submoltID, rootsOnly, limit, offset)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID string, limit, offset int) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID, limit, offset)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createRootFn: func(_ context.Context, post *models.Post) error {
			post.ID = 1
			post.RootID = 1
			return nil
		},
		createReplyFn: func(_ context.Context, post *models.Post) (*models.Thread, error) {
			post.ID = 2
			return &models.Thread{RootPostID: post.RootID}, nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, RootID: id}, nil
		},
		getSubtreeFn:    func(_ context.Context, _ uint) ([]*models.Post, error) { return nil, nil },
		listBySubmoltFn: func(_ context.Context, _ uint, _ bool, _, _ int) ([]*models.Post, error) { return nil, nil },
		listByAuthorFn:  func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
	}
}

// agentRepoStub is a stub for repository.AgentRepository.
type agentRepoStub struct {
	upsertFn        func(context.Context, *models.Agent) error
	getByIDFn       func(context.Context, string) (*models.Agent, error)
	ensureExistsFn  func(context.Context, string) (*models.Agent, error)
	resolveHandleFn func(context.Context, string) (string, bool, error)
	listFn          func(context.Context, int, int) ([]*models.Agent, error)
	touchActiveFn   func(context.Context, string, time.Time) error
}

func (s *agentRepoStub) Upsert(ctx context.Context, agent *models.Agent) error {
	return s.upsertFn(ctx, agent)
}
func (s *agentRepoStub) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	return s.getByIDFn(ctx, id)
}
func (s *agentRepoStub) EnsureExists(ctx context.Context, id string) (*models.Agent, error) {
	return s.ensureExistsFn(ctx, id)
}
func (s *agentRepoStub) ResolveHandle(ctx context.Context, handle string) (string, bool, error) {
	return s.resolveHandleFn(ctx, handle)
}
func (s *agentRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Agent, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *agentRepoStub) TouchActive(ctx context.Context, id string, at time.Time) error {
	return s.touchActiveFn(ctx, id, at)
}

func noopAgentRepo() *agentRepoStub {
	return &agentRepoStub{
		upsertFn:  func(_ context.Context, _ *models.Agent) error { return nil },
		getByIDFn: func(_ context.Context, id string) (*models.Agent, error) { return &models.Agent{ID: id}, nil },
		ensureExistsFn: func(_ context.Context, id string) (*models.Agent, error) {
			return &models.Agent{ID: id}, nil
		},
		resolveHandleFn: func(_ context.Context, handle string) (string, bool, error) { return handle, true, nil },
		listFn:          func(_ context.Context, _, _ int) ([]*models.Agent, error) { return nil, nil },
		touchActiveFn:   func(_ context.Context, _ string, _ time.Time) error { return nil },
	}
}

// submoltRepoStub is a stub for repository.SubmoltRepository.
type submoltRepoStub struct {
	createFn    func(context.Context, *models.Submolt) error
	getByIDFn   func(context.Context, uint) (*models.Submolt, error)
	getByNameFn func(context.Context, string) (*models.Submolt, error)
	listFn      func(context.Context) ([]*models.Submolt, error)
}

func (s *submoltRepoStub) Create(ctx context.Context, submolt *models.Submolt) error {
	return s.createFn(ctx, submolt)
}
func (s *submoltRepoStub) GetByID(ctx context.Context, id uint) (*models.Submolt, error) {
	return s.getByIDFn(ctx, id)
}
func (s *submoltRepoStub) GetByName(ctx context.Context, name string) (*models.Submolt, error) {
	return s.getByNameFn(ctx, name)
}
func (s *submoltRepoStub) List(ctx context.Context) ([]*models.Submolt, error) {
	return s.listFn(ctx)
}

func noopSubmoltRepo() *submoltRepoStub {
	return &submoltRepoStub{
		createFn:    func(_ context.Context, _ *models.Submolt) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Submolt, error) { return &models.Submolt{ID: id}, nil },
		getByNameFn: func(_ context.Context, name string) (*models.Submolt, error) { return &models.Submolt{Name: name}, nil },
		listFn:      func(_ context.Context) ([]*models.Submolt, error) { return nil, nil },
	}
}

// linkRepoStub is a stub for repository.LinkRepository.
type linkRepoStub struct {
	createFn       func(context.Context, *models.PostLink) error
	listBySourceFn func(context.Context, uint) ([]*models.PostLink, error)
	listByTargetFn func(context.Context, uint) ([]*models.PostLink, error)
}

func (s *linkRepoStub) Create(ctx context.Context, link *models.PostLink) error {
	return s.createFn(ctx, link)
}
func (s *linkRepoStub) ListBySource(ctx context.Context, sourcePostID uint) ([]*models.PostLink, error) {
	return s.listBySourceFn(ctx, sourcePostID)
}
func (s *linkRepoStub) ListByTarget(ctx context.Context, targetPostID uint) ([]*models.PostLink, error) {
	return s.listByTargetFn(ctx, targetPostID)
}

func noopLinkRepo() *linkRepoStub {
	return &linkRepoStub{
		createFn:       func(_ context.Context, _ *models.PostLink) error { return nil },
		listBySourceFn: func(_ context.Context, _ uint) ([]*models.PostLink, error) { return nil, nil },
		listByTargetFn: func(_ context.Context, _ uint) ([]*models.PostLink, error) { return nil, nil },
	}
}

// threadRepoStub is a stub for repository.ThreadRepository.
type threadRepoStub struct {
	getByRootPostIDFn func(context.Context, uint) (*models.Thread, error)
	listFn            func(context.Context, *uint, string, int, int) ([]*models.Thread, error)
	setLockedFn       func(context.Context, uint, bool, models.PostStatus) (*models.Thread, error)
	setPinnedFn       func(context.Context, uint, bool) (*models.Thread, error)
	recountFn         func(context.Context, uint) (*models.Thread, error)
}

func (s *threadRepoStub) GetByRootPostID(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	return s.getByRootPostIDFn(ctx, rootPostID)
}
func (s *threadRepoStub) List(ctx context.Context, submoltID *uint, sort string, limit, offset int) ([]*models.Thread, error) {
	return s.listFn(ctx, submoltID, sort, limit, offset)
}
func (s *threadRepoStub) SetLocked(ctx context.Context, rootPostID uint, locked bool, status models.PostStatus) (*models.Thread, error) {
	return s.setLockedFn(ctx, rootPostID, locked, status)
}
func (s *threadRepoStub) SetPinned(ctx context.Context, rootPostID uint, pinned bool) (*models.Thread, error) {
	return s.setPinnedFn(ctx, rootPostID, pinned)
}
func (s *threadRepoStub) Recount(ctx context.Context, rootPostID uint) (*models.Thread, error) {
	return s.recountFn(ctx, rootPostID)
}

func noopThreadRepo() *threadRepoStub {
	return &threadRepoStub{
		getByRootPostIDFn: func(_ context.Context, rootPostID uint) (*models.Thread, error) {
			return &models.Thread{RootPostID: rootPostID}, nil
		},
		listFn: func(_ context.Context, _ *uint, _ string, _, _ int) ([]*models.Thread, error) {
			return nil, nil
		},
		setLockedFn: func(_ context.Context, rootPostID uint, locked bool, _ models.PostStatus) (*models.Thread, error) {
			return &models.Thread{RootPostID: rootPostID, Locked: locked}, nil
		},
		setPinnedFn: func(_ context.Context, rootPostID uint, pinned bool) (*models.Thread, error) {
			return &models.Thread{RootPostID: rootPostID, Pinned: pinned}, nil
		},
		recountFn: func(_ context.Context, rootPostID uint) (*models.Thread, error) {
			return &models.Thread{RootPostID: rootPostID}, nil
		},
	}
}

// watchlistRepoStub is a stub for repository.WatchlistRepository.
type watchlistRepoStub struct {
	createFn      func(context.Context, *models.WatchlistEntry) error
	getFn         func(context.Context, string, string, string) (*models.WatchlistEntry, error)
	updateFn      func(context.Context, *models.WatchlistEntry) error
	deleteFn      func(context.Context, string, string, string) (bool, error)
	listByAgentFn func(context.Context, string) ([]*models.WatchlistEntry, error)
}

func (s *watchlistRepoStub) Create(ctx context.Context, entry *models.WatchlistEntry) error {
	return s.createFn(ctx, entry)
}
func (s *watchlistRepoStub) Get(ctx context.Context, agentID, targetType, targetID string) (*models.WatchlistEntry, error) {
	return s.getFn(ctx, agentID, targetType, targetID)
}
func (s *watchlistRepoStub) Update(ctx context.Context, entry *models.WatchlistEntry) error {
	return s.updateFn(ctx, entry)
}
func (s *watchlistRepoStub) Delete(ctx context.Context, agentID, targetType, targetID string) (bool, error) {
	return s.deleteFn(ctx, agentID, targetType, targetID)
}
func (s *watchlistRepoStub) ListByAgent(ctx context.Context, agentID string) ([]*models.WatchlistEntry, error) {
	return s.listByAgentFn(ctx, agentID)
}

func noopWatchlistRepo() *watchlistRepoStub {
	return &watchlistRepoStub{
		createFn: func(_ context.Context, _ *models.WatchlistEntry) error { return nil },
		getFn: func(_ context.Context, _, _, _ string) (*models.WatchlistEntry, error) {
			return nil, gorm.ErrRecordNotFound
		},
		updateFn:      func(_ context.Context, _ *models.WatchlistEntry) error { return nil },
		deleteFn:      func(_ context.Context, _, _, _ string) (bool, error) { return true, nil },
		listByAgentFn: func(_ context.Context, _ string) ([]*models.WatchlistEntry, error) { return nil, nil },
	}
}

// subscriptionRepoStub is a stub for repository.SubscriptionRepository.
type subscriptionRepoStub struct {
	createFn        func(context.Context, *models.Subscription) error
	deleteFn        func(context.Context, string, string, string) (bool, error)
	listByAgentFn   func(context.Context, string) ([]*models.Subscription, error)
	subscriberIDsFn func(context.Context, string, string) ([]string, error)
}

func (s *subscriptionRepoStub) Create(ctx context.Context, sub *models.Subscription) error {
	return s.createFn(ctx, sub)
}
func (s *subscriptionRepoStub) Delete(ctx context.Context, agentID, targetType, targetID string) (bool, error) {
	return s.deleteFn(ctx, agentID, targetType, targetID)
}
func (s *subscriptionRepoStub) ListByAgent(ctx context.Context, agentID string) ([]*models.Subscription, error) {
	return s.listByAgentFn(ctx, agentID)
}
func (s *subscriptionRepoStub) SubscriberIDs(ctx context.Context, targetType, targetID string) ([]string, error) {
	return s.subscriberIDsFn(ctx, targetType, targetID)
}

func noopSubscriptionRepo() *subscriptionRepoStub {
	return &subscriptionRepoStub{
		createFn:        func(_ context.Context, _ *models.Subscription) error { return nil },
		deleteFn:        func(_ context.Context, _, _, _ string) (bool, error) { return true, nil },
		listByAgentFn:   func(_ context.Context, _ string) ([]*models.Subscription, error) { return nil, nil },
		subscriberIDsFn: func(_ context.Context, _, _ string) ([]string, error) { return nil, nil },
	}
}

// notificationRepoStub is a stub for repository.NotificationRepository.
type notificationRepoStub struct {
	createFn      func(context.Context, *models.Notification) error
	listFn        func(context.Context, string, bool, int, int) ([]*models.Notification, error)
	markReadFn    func(context.Context, string, []uint) (int64, error)
	markAllReadFn func(context.Context, string) (int64, error)
	purgeReadFn   func(context.Context, string) (int64, error)
}

func (s *notificationRepoStub) Create(ctx context.Context, n *models.Notification) error {
	return s.createFn(ctx, n)
}
func (s *notificationRepoStub) List(ctx context.Context, recipientID string, unreadOnly bool, limit, offset int) ([]*models.Notification, error) {
	return s.listFn(ctx, recipientID, unreadOnly, limit, offset)
}
func (s *notificationRepoStub) MarkRead(ctx context.Context, recipientID string, ids []uint) (int64, error) {
	return s.markReadFn(ctx, recipientID, ids)
}
func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	return s.markAllReadFn(ctx, recipientID)
}
func (s *notificationRepoStub) PurgeRead(ctx context.Context, recipientID string) (int64, error) {
	return s.purgeReadFn(ctx, recipientID)
}

func noopNotificationRepo() *notificationRepoStub {
	return &notificationRepoStub{
		createFn:      func(_ context.Context, _ *models.Notification) error { return nil },
		listFn:        func(_ context.Context, _ string, _ bool, _, _ int) ([]*models.Notification, error) { return nil, nil },
		markReadFn:    func(_ context.Context, _ string, _ []uint) (int64, error) { return 0, nil },
		markAllReadFn: func(_ context.Context, _ string) (int64, error) { return 0, nil },
		purgeReadFn:   func(_ context.Context, _ string) (int64, error) { return 0, nil },
	}
}

// feedRepoStub is a stub for repository.FeedRepository. Every source
// defaults to empty so tests only wire the sources they exercise.
type feedRepoStub struct {
	watchlistEntriesFn      func(context.Context, string) ([]*models.WatchlistEntry, error)
	rootPostsByIDsFn        func(context.Context, []uint) ([]*models.Post, error)
	rootPostsByAuthorsFn    func(context.Context, []string, *time.Time) ([]*models.Post, error)
	rootPostsUpvotedFn      func(context.Context, string, string, *time.Time) ([]*models.Post, error)
	unrespondedMentionsFn   func(context.Context, string, *time.Time) ([]*models.Mention, error)
	postsMentioningHandleFn func(context.Context, string, *time.Time) ([]*models.Post, error)
	repliesToAuthorFn       func(context.Context, string, *time.Time) ([]*models.Post, error)
	subscriptionsFn         func(context.Context, string) ([]*models.Subscription, error)
	rootPostsInSubmoltsFn   func(context.Context, []uint, string, *time.Time) ([]*models.Post, error)
	trendingRootPostsFn     func(context.Context, int, *time.Time) ([]*models.Post, error)
	activeSubmoltIDsFn      func(context.Context, string) ([]uint, error)
	threadsByRootIDsFn      func(context.Context, []uint) (map[uint]*models.Thread, error)
}

func (s *feedRepoStub) WatchlistEntries(ctx context.Context, agentID string) ([]*models.WatchlistEntry, error) {
	return s.watchlistEntriesFn(ctx, agentID)
}
func (s *feedRepoStub) RootPostsByIDs(ctx context.Context, ids []uint) ([]*models.Post, error) {
	return s.rootPostsByIDsFn(ctx, ids)
}
func (s *feedRepoStub) RootPostsByAuthors(ctx context.Context, authorIDs []string, since *time.Time) ([]*models.Post, error) {
	return s.rootPostsByAuthorsFn(ctx, authorIDs, since)
}
func (s *feedRepoStub) RootPostsUpvotedBy(ctx context.Context, voterID string, excludeAuthor string, since *time.Time) ([]*models.Post, error) {
	return s.rootPostsUpvotedFn(ctx, voterID, excludeAuthor, since)
}
func (s *feedRepoStub) UnrespondedMentions(ctx context.Context, agentID string, since *time.Time) ([]*models.Mention, error) {
	return s.unrespondedMentionsFn(ctx, agentID, since)
}
func (s *feedRepoStub) PostsMentioningHandle(ctx context.Context, agentID string, since *time.Time) ([]*models.Post, error) {
	return s.postsMentioningHandleFn(ctx, agentID, since)
}
func (s *feedRepoStub) RepliesToAuthor(ctx context.Context, authorID string, since *time.Time) ([]*models.Post, error) {
	return s.repliesToAuthorFn(ctx, authorID, since)
}
func (s *feedRepoStub) Subscriptions(ctx context.Context, agentID string) ([]*models.Subscription, error) {
	return s.subscriptionsFn(ctx, agentID)
}
func (s *feedRepoStub) RootPostsInSubmolts(ctx context.Context, submoltIDs []uint, excludeAuthor string, since *time.Time) ([]*models.Post, error) {
	return s.rootPostsInSubmoltsFn(ctx, submoltIDs, excludeAuthor, since)
}
func (s *feedRepoStub) TrendingRootPosts(ctx context.Context, minScore int, since *time.Time) ([]*models.Post, error) {
	return s.trendingRootPostsFn(ctx, minScore, since)
}
func (s *feedRepoStub) ActiveSubmoltIDs(ctx context.Context, agentID string) ([]uint, error) {
	return s.activeSubmoltIDsFn(ctx, agentID)
}
func (s *feedRepoStub) ThreadsByRootIDs(ctx context.Context, rootIDs []uint) (map[uint]*models.Thread, error) {
	return s.threadsByRootIDsFn(ctx, rootIDs)
}

func emptyFeedRepo() *feedRepoStub {
	return &feedRepoStub{
		watchlistEntriesFn: func(_ context.Context, _ string) ([]*models.WatchlistEntry, error) { return nil, nil },
		rootPostsByIDsFn:   func(_ context.Context, _ []uint) ([]*models.Post, error) { return nil, nil },
		rootPostsByAuthorsFn: func(_ context.Context, _ []string, _ *time.Time) ([]*models.Post, error) {
			return nil, nil
		},
		rootPostsUpvotedFn: func(_ context.Context, _ string, _ string, _ *time.Time) ([]*models.Post, error) {
			return nil, nil
		},
		unrespondedMentionsFn: func(_ context.Context, _ string, _ *time.Time) ([]*models.Mention, error) {
			return nil, nil
		},
		postsMentioningHandleFn: func(_ context.Context, _ string, _ *time.Time) ([]*models.Post, error) {
			return nil, nil
		},
		repliesToAuthorFn: func(_ context.Context, _ string, _ *time.Time) ([]*models.Post, error) {
			return nil, nil
		},
		subscriptionsFn: func(_ context.Context, _ string) ([]*models.Subscription, error) { return nil, nil },
		rootPostsInSubmoltsFn: func(_ context.Context, _ []uint, _ string, _ *time.Time) ([]*models.Post, error) {
			return nil, nil
		},
		trendingRootPostsFn: func(_ context.Context, _ int, _ *time.Time) ([]*models.Post, error) {
			return nil, nil
		},
		activeSubmoltIDsFn: func(_ context.Context, _ string) ([]uint, error) { return nil, nil },
		threadsByRootIDsFn: func(_ context.Context, _ []uint) (map[uint]*models.Thread, error) {
			return map[uint]*models.Thread{}, nil
		},
	}
}
