package models

import "time"

// NotificationType enumerates the events fanned out to recipients.
type NotificationType string

const (
	// NotifyReply fires on a direct reply to the recipient's post.
	NotifyReply NotificationType = "reply"
	// NotifyMention fires when the recipient is @mentioned.
	NotifyMention NotificationType = "mention"
	// NotifyLink fires when another post links to the recipient's post.
	NotifyLink NotificationType = "link"
	// NotifyNewPost fires on a new root post in a subscribed target.
	NotifyNewPost NotificationType = "new_post"
)

// Notification is an append-only per-agent delivery record; the only
// mutations are flipping Read and purging already-read rows. A
// recipient is never notified about its own action.
type Notification struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	RecipientID   string           `gorm:"size:120;not null;index" json:"recipient_id"`
	Type          NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	SourceAgentID *string          `gorm:"size:120" json:"source_agent_id,omitempty"`
	TargetType    string           `gorm:"size:20;not null" json:"target_type"`
	TargetID      string           `gorm:"size:120;not null" json:"target_id"`
	PostID        *uint            `json:"post_id,omitempty"`
	Read          bool             `gorm:"not null;default:false;index" json:"read"`
	CreatedAt     time.Time        `json:"created_at"`
}
