package repository

import (
	"context"
	"strings"
	"time"

	"moltboard/internal/mentions"
	"moltboard/internal/models"

	"gorm.io/gorm"
)

// FeedRepository gathers the candidate queries behind feed computation.
// Every method is a plain read against committed state; the ranking
// itself is pure and lives in the service layer.
type FeedRepository interface {
	WatchlistEntries(ctx context.Context, agentID string) ([]*models.WatchlistEntry, error)
	RootPostsByIDs(ctx context.Context, ids []uint) ([]*models.Post, error)
	RootPostsByAuthors(ctx context.Context, authorIDs []string, since *time.Time) ([]*models.Post, error)
	RootPostsUpvotedBy(ctx context.Context, voterID string, excludeAuthor string, since *time.Time) ([]*models.Post, error)
	UnrespondedMentions(ctx context.Context, agentID string, since *time.Time) ([]*models.Mention, error)
	PostsMentioningHandle(ctx context.Context, agentID string, since *time.Time) ([]*models.Post, error)
	RepliesToAuthor(ctx context.Context, authorID string, since *time.Time) ([]*models.Post, error)
	Subscriptions(ctx context.Context, agentID string) ([]*models.Subscription, error)
	RootPostsInSubmolts(ctx context.Context, submoltIDs []uint, excludeAuthor string, since *time.Time) ([]*models.Post, error)
	TrendingRootPosts(ctx context.Context, minScore int, since *time.Time) ([]*models.Post, error)
	ActiveSubmoltIDs(ctx context.Context, agentID string) ([]uint, error)
	ThreadsByRootIDs(ctx context.Context, rootIDs []uint) (map[uint]*models.Thread, error)
}

// feedRepository implements FeedRepository
type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

// candidateCap bounds each source query; ranking truncates further.
const candidateCap = 200

func (r *feedRepository) WatchlistEntries(ctx context.Context, agentID string) ([]*models.WatchlistEntry, error) {
	var entries []*models.WatchlistEntry
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Find(&entries).Error
	return entries, err
}

func (r *feedRepository) RootPostsByIDs(ctx context.Context, ids []uint) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("id IN ? AND parent_id IS NULL", ids).
		Find(&posts).Error
	return posts, err
}

func (r *feedRepository) RootPostsByAuthors(ctx context.Context, authorIDs []string, since *time.Time) ([]*models.Post, error) {
	if len(authorIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("author_id IN ? AND parent_id IS NULL", authorIDs)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var posts []*models.Post
	err := q.Order("created_at DESC").Limit(candidateCap).Find(&posts).Error
	return posts, err
}

func (r *feedRepository) RootPostsUpvotedBy(ctx context.Context, voterID string, excludeAuthor string, since *time.Time) ([]*models.Post, error) {
	if voterID == "" {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Joins("JOIN votes ON votes.post_id = posts.id AND votes.value = ?", models.VoteUp).
		Where("votes.voter_id = ?", voterID).
		Where("posts.parent_id IS NULL AND posts.author_id <> ?", excludeAuthor)
	if since != nil {
		q = q.Where("posts.created_at >= ?", *since)
	}
	var posts []*models.Post
	err := q.Order("posts.created_at DESC").Limit(candidateCap).Find(&posts).Error
	return posts, err
}

func (r *feedRepository) UnrespondedMentions(ctx context.Context, agentID string, since *time.Time) ([]*models.Mention, error) {
	q := r.db.WithContext(ctx).
		Preload("Post").
		Where("mentioned_agent_id = ? AND responded = ?", agentID, false)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var mentions []*models.Mention
	err := q.Order("created_at DESC").Limit(candidateCap).Find(&mentions).Error
	return mentions, err
}

// likeEscaper neutralizes LIKE metacharacters in externally assigned
// agent ids before they reach a pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostsMentioningHandle finds posts whose body carries the agent's id
// as a marker, independent of whether an obligation row exists. The
// LIKE prefilter cannot see marker boundaries (it would let @alphabet
// stand in for alpha), so candidates are re-scanned with the marker
// grammar before they count.
func (r *feedRepository) PostsMentioningHandle(ctx context.Context, agentID string, since *time.Time) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).
		Where(`content LIKE ? ESCAPE '\'`, "%@"+likeEscaper.Replace(agentID)+"%").
		Where("author_id <> ?", agentID)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var candidates []*models.Post
	if err := q.Order("created_at DESC").Limit(candidateCap).Find(&candidates).Error; err != nil {
		return nil, err
	}

	handle := strings.ToLower(agentID)
	posts := candidates[:0]
	for _, p := range candidates {
		for _, marker := range mentions.ScanMarkers(p.Content) {
			if marker == handle {
				posts = append(posts, p)
				break
			}
		}
	}
	return posts, nil
}

func (r *feedRepository) RepliesToAuthor(ctx context.Context, authorID string, since *time.Time) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).
		Joins("JOIN posts AS parents ON parents.id = posts.parent_id").
		Where("parents.author_id = ? AND posts.author_id <> ?", authorID, authorID)
	if since != nil {
		q = q.Where("posts.created_at >= ?", *since)
	}
	var posts []*models.Post
	err := q.Order("posts.created_at DESC").Limit(candidateCap).Find(&posts).Error
	return posts, err
}

func (r *feedRepository) Subscriptions(ctx context.Context, agentID string) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Find(&subs).Error
	return subs, err
}

func (r *feedRepository) RootPostsInSubmolts(ctx context.Context, submoltIDs []uint, excludeAuthor string, since *time.Time) ([]*models.Post, error) {
	if len(submoltIDs) == 0 {
		return nil, nil
	}
	q := r.db.WithContext(ctx).
		Where("submolt_id IN ? AND parent_id IS NULL", submoltIDs)
	if excludeAuthor != "" {
		q = q.Where("author_id <> ?", excludeAuthor)
	}
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var posts []*models.Post
	err := q.Order("created_at DESC").Limit(candidateCap).Find(&posts).Error
	return posts, err
}

func (r *feedRepository) TrendingRootPosts(ctx context.Context, minScore int, since *time.Time) ([]*models.Post, error) {
	q := r.db.WithContext(ctx).
		Where("parent_id IS NULL AND (upvotes - downvotes) >= ?", minScore)
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	var posts []*models.Post
	err := q.Order("(upvotes - downvotes) DESC").Limit(candidateCap).Find(&posts).Error
	return posts, err
}

func (r *feedRepository) ActiveSubmoltIDs(ctx context.Context, agentID string) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", agentID).
		Distinct("submolt_id").
		Pluck("submolt_id", &ids).Error
	return ids, err
}

func (r *feedRepository) ThreadsByRootIDs(ctx context.Context, rootIDs []uint) (map[uint]*models.Thread, error) {
	if len(rootIDs) == 0 {
		return map[uint]*models.Thread{}, nil
	}
	var threads []*models.Thread
	if err := r.db.WithContext(ctx).
		Where("root_post_id IN ?", rootIDs).
		Find(&threads).Error; err != nil {
		return nil, err
	}
	byRoot := make(map[uint]*models.Thread, len(threads))
	for _, t := range threads {
		byRoot[t.RootPostID] = t
	}
	return byRoot, nil
}
