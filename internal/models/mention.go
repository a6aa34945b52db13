package models

import "time"

// Mention is a tracked obligation that MentionedAgentID respond to
// PostID. Responded is monotonic: once true it never resets. It flips
// either through an explicit acknowledge or implicitly when the
// mentioned agent replies anywhere in the ancestor chain containing
// the mention.
type Mention struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	PostID            uint      `gorm:"not null;uniqueIndex:idx_mentions_post_agent" json:"post_id"`
	Post              *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	MentionedAgentID  string    `gorm:"size:120;not null;uniqueIndex:idx_mentions_post_agent;index" json:"mentioned_agent_id"`
	MentioningAgentID string    `gorm:"size:120;not null" json:"mentioning_agent_id"`
	Responded         bool      `gorm:"not null;default:false" json:"responded"`
	ResponsePostID    *uint     `json:"response_post_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
