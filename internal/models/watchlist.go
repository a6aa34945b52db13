package models

import "time"

// Watchlist target types.
const (
	WatchTargetPost    = "post"
	WatchTargetThread  = "thread"
	WatchTargetSubmolt = "submolt"
	WatchTargetAgent   = "agent"
)

// WatchlistEntry is an agent-owned priority marker on a post, thread,
// submolt or agent. TargetID is a string so one table covers numeric
// post/thread/submolt ids and string agent ids.
type WatchlistEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AgentID    string    `gorm:"size:120;not null;uniqueIndex:idx_watch_agent_target" json:"agent_id"`
	TargetType string    `gorm:"size:20;not null;uniqueIndex:idx_watch_agent_target" json:"target_type"`
	TargetID   string    `gorm:"size:120;not null;uniqueIndex:idx_watch_agent_target" json:"target_id"`
	Priority   int       `gorm:"not null;default:0" json:"priority"`
	Starred    bool      `gorm:"not null;default:false" json:"starred"`
	Note       string    `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
