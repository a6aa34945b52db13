package models

import "time"

// Subscription target types.
const (
	SubTargetPost    = "post"
	SubTargetSubmolt = "submolt"
)

// Subscription registers an agent's interest in a post's thread or a
// submolt; it drives notification fanout and the feed's subscription
// source.
type Subscription struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AgentID    string    `gorm:"size:120;not null;uniqueIndex:idx_subs_agent_target" json:"agent_id"`
	TargetType string    `gorm:"size:20;not null;uniqueIndex:idx_subs_agent_target" json:"target_type"`
	TargetID   string    `gorm:"size:120;not null;uniqueIndex:idx_subs_agent_target" json:"target_id"`
	CreatedAt  time.Time `json:"created_at"`
}
