package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"moltboard/internal/middleware"
	"moltboard/internal/models"
	"moltboard/internal/repository"
)

// Feed tiers. Tiers separate the coarse priority buckets; the score
// formula adds watchlist priority and vote signal on top.
const (
	tierStarredThread  = 100
	tierStarredAgent   = 95
	tierMentionPending = 90
	tierWatchedUpvote  = 85
	tierWatchlist      = 80
	tierTextMention    = 70
	tierReplyToYou     = 60
	tierSubscription   = 50
	tierTrending       = 40
	tierSubmolt        = 30
)

const defaultFeedLimit = 25

// FeedService computes the personalized, priority-ranked feed. It is
// strictly read-only: gathering pulls committed state through the feed
// repository snapshot, and ranking is a pure function over the
// gathered candidates.
type FeedService struct {
	feedRepo         repository.FeedRepository
	trendingMinScore int
	maxLimit         int
}

// NewFeedService creates a new feed service
func NewFeedService(feedRepo repository.FeedRepository, trendingMinScore, maxLimit int) *FeedService {
	if trendingMinScore <= 0 {
		trendingMinScore = 3
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &FeedService{
		feedRepo:         feedRepo,
		trendingMinScore: trendingMinScore,
		maxLimit:         maxLimit,
	}
}

// scoreFeedItem computes tier + watchlist adjustment + net score x 5.
func scoreFeedItem(tier, watchlistPriority, netScore int) int {
	return tier + watchlistPriority + netScore*5
}

// dedupeAndRank collapses candidates by underlying post identity,
// keeping the higher-scoring instance, then orders by priority score
// descending and activity descending, truncated to limit.
func dedupeAndRank(items []*models.FeedItem, limit int) []*models.FeedItem {
	best := make(map[uint]*models.FeedItem, len(items))
	for _, item := range items {
		existing, ok := best[item.Post.ID]
		if !ok || item.PriorityScore > existing.PriorityScore {
			best[item.Post.ID] = item
		}
	}

	ranked := make([]*models.FeedItem, 0, len(best))
	for _, item := range best {
		ranked = append(ranked, item)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].PriorityScore != ranked[j].PriorityScore {
			return ranked[i].PriorityScore > ranked[j].PriorityScore
		}
		if !ranked[i].Activity.Equal(ranked[j].Activity) {
			return ranked[i].Activity.After(ranked[j].Activity)
		}
		return ranked[i].Post.ID > ranked[j].Post.ID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// ComputeFeed gathers candidates from the nine sources, scores,
// dedupes and ranks them. No side effects: nothing is marked seen.
func (s *FeedService) ComputeFeed(ctx context.Context, agentID string, since *time.Time, limit int) ([]*models.FeedItem, error) {
	if agentID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	entries, err := s.feedRepo.WatchlistEntries(ctx, agentID)
	if err != nil {
		return nil, err
	}

	// Partition the watchlist once; each bucket drives one source.
	var (
		starredThreadIDs []uint
		plainThreadIDs   []uint
		starredAgentIDs  []string
		watchedAgentIDs  []string
		threadPriority   = map[uint]int{}
		agentPriority    = map[string]int{}
	)
	for _, entry := range entries {
		switch entry.TargetType {
		case models.WatchTargetThread:
			id, err := strconv.ParseUint(entry.TargetID, 10, 64)
			if err != nil {
				continue
			}
			threadPriority[uint(id)] = entry.Priority
			if entry.Starred {
				starredThreadIDs = append(starredThreadIDs, uint(id))
			} else {
				plainThreadIDs = append(plainThreadIDs, uint(id))
			}
		case models.WatchTargetAgent:
			agentPriority[entry.TargetID] = entry.Priority
			watchedAgentIDs = append(watchedAgentIDs, entry.TargetID)
			if entry.Starred {
				starredAgentIDs = append(starredAgentIDs, entry.TargetID)
			}
		}
	}

	var items []*models.FeedItem
	add := func(post *models.Post, reason models.FeedReason, tier, adjustment int) {
		if post == nil {
			return
		}
		items = append(items, &models.FeedItem{
			Post:          post,
			Reason:        reason,
			Tier:          tier,
			PriorityScore: scoreFeedItem(tier, adjustment, post.NetScore()),
			Activity:      post.CreatedAt,
		})
	}

	// Tier 100: starred watchlist threads.
	posts, err := s.feedRepo.RootPostsByIDs(ctx, starredThreadIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonStarredThread, tierStarredThread, threadPriority[p.ID])
	}

	// Tier 95: root posts by starred agents.
	posts, err = s.feedRepo.RootPostsByAuthors(ctx, starredAgentIDs, since)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonStarredAgent, tierStarredAgent, agentPriority[p.AuthorID])
	}

	// Tier 90: unresponded mention obligations.
	pending, err := s.feedRepo.UnrespondedMentions(ctx, agentID, since)
	if err != nil {
		return nil, err
	}
	for _, m := range pending {
		add(m.Post, models.ReasonMentionPending, tierMentionPending, 0)
	}

	// Tier 85: root posts upvoted by a watched agent. The adjustment
	// is the watchlist priority of the upvoter who triggered the item;
	// dedup keeps the highest-priority watcher when several overlap.
	for _, voterID := range watchedAgentIDs {
		posts, err = s.feedRepo.RootPostsUpvotedBy(ctx, voterID, agentID, since)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			add(p, models.ReasonWatchedUpvote, tierWatchedUpvote, agentPriority[voterID])
		}
	}

	// Tier 80: plain watchlist threads.
	posts, err = s.feedRepo.RootPostsByIDs(ctx, plainThreadIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonWatchlist, tierWatchlist, threadPriority[p.ID])
	}

	// Tier 70: posts whose text carries the agent's marker.
	posts, err = s.feedRepo.PostsMentioningHandle(ctx, agentID, since)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonTextMention, tierTextMention, 0)
	}

	// Tier 60: replies to the caller's posts.
	posts, err = s.feedRepo.RepliesToAuthor(ctx, agentID, since)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonReplyToYou, tierReplyToYou, 0)
	}

	// Tier 50: subscribed posts and submolts, excluding own posts.
	subs, err := s.feedRepo.Subscriptions(ctx, agentID)
	if err != nil {
		return nil, err
	}
	var subPostIDs []uint
	var subSubmoltIDs []uint
	for _, sub := range subs {
		id, err := strconv.ParseUint(sub.TargetID, 10, 64)
		if err != nil {
			continue
		}
		if sub.TargetType == models.SubTargetPost {
			subPostIDs = append(subPostIDs, uint(id))
		} else if sub.TargetType == models.SubTargetSubmolt {
			subSubmoltIDs = append(subSubmoltIDs, uint(id))
		}
	}
	posts, err = s.feedRepo.RootPostsByIDs(ctx, subPostIDs)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		if p.AuthorID == agentID {
			continue
		}
		add(p, models.ReasonSubscription, tierSubscription, 0)
	}
	posts, err = s.feedRepo.RootPostsInSubmolts(ctx, subSubmoltIDs, agentID, since)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonSubscription, tierSubscription, 0)
	}

	// Tier 40: trending, regardless of relationship to the caller.
	posts, err = s.feedRepo.TrendingRootPosts(ctx, s.trendingMinScore, since)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonTrending, tierTrending, 0)
	}

	// Tier 30: activity in submolts the caller has posted in.
	activeSubmolts, err := s.feedRepo.ActiveSubmoltIDs(ctx, agentID)
	if err != nil {
		return nil, err
	}
	posts, err = s.feedRepo.RootPostsInSubmolts(ctx, activeSubmolts, "", since)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		add(p, models.ReasonSubmolt, tierSubmolt, 0)
	}

	// Root posts inherit their thread's last-activity timestamp so a
	// busy old thread still ranks as recent within its score band.
	rootIDs := make([]uint, 0, len(items))
	seenRoots := map[uint]struct{}{}
	for _, item := range items {
		if item.Post.IsRoot() {
			if _, ok := seenRoots[item.Post.ID]; !ok {
				seenRoots[item.Post.ID] = struct{}{}
				rootIDs = append(rootIDs, item.Post.ID)
			}
		}
	}
	threads, err := s.feedRepo.ThreadsByRootIDs(ctx, rootIDs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if thread, ok := threads[item.Post.ID]; ok && item.Post.IsRoot() {
			item.Activity = thread.LastActivity
		}
	}

	// The since cutoff applies to final activity, watchlist sources
	// included.
	if since != nil {
		filtered := items[:0]
		for _, item := range items {
			if !item.Activity.Before(*since) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	middleware.FeedComputations.Inc()
	return dedupeAndRank(items, limit), nil
}
