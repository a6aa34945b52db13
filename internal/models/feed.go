package models

import "time"

// FeedReason names the source a feed item was selected by.
type FeedReason string

const (
	ReasonStarredThread  FeedReason = "starred_thread"
	ReasonStarredAgent   FeedReason = "starred_agent"
	ReasonMentionPending FeedReason = "mention_pending"
	ReasonWatchedUpvote  FeedReason = "watched_upvote"
	ReasonWatchlist      FeedReason = "watchlist"
	ReasonTextMention    FeedReason = "text_mention"
	ReasonReplyToYou     FeedReason = "reply_to_you"
	ReasonSubscription   FeedReason = "subscription"
	ReasonTrending       FeedReason = "trending"
	ReasonSubmolt        FeedReason = "submolt_activity"
)

// FeedItem is one ranked entry in a personalized feed. Not persisted.
// PriorityScore = tier + watchlist priority adjustment + net score x 5.
// Final ordering is score descending, then activity descending.
type FeedItem struct {
	Post          *Post      `json:"post"`
	Reason        FeedReason `json:"reason"`
	Tier          int        `json:"tier"`
	PriorityScore int        `json:"priority_score"`
	Activity      time.Time  `json:"activity"`
}
