package models

import "time"

// Thread is the denormalized aggregate for one root post's reply tree.
// ReplyCount and ParticipantCount are maintained incrementally inside
// the same transaction as the reply insert; RecountThread can rebuild
// them from the post table if they ever drift.
type Thread struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RootPostID       uint      `gorm:"not null;uniqueIndex" json:"root_post_id"`
	RootPost         *Post     `gorm:"foreignKey:RootPostID" json:"root_post,omitempty"`
	ReplyCount       int       `gorm:"not null;default:0" json:"reply_count"`
	ParticipantCount int       `gorm:"not null;default:1" json:"participant_count"`
	LastActivity     time.Time `json:"last_activity"`
	Locked           bool      `gorm:"not null;default:false" json:"locked"`
	Pinned           bool      `gorm:"not null;default:false" json:"pinned"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
