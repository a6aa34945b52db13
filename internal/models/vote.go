package models

import "time"

// Vote values.
const (
	VoteUp     = 1
	VoteDown   = -1
	VoteRemove = 0
)

// Vote is the ledger row behind the cached counters on Post: one row
// per (post, voter), updated in place on flip, deleted on removal.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_votes_post_voter" json:"post_id"`
	VoterID   string    `gorm:"size:120;not null;uniqueIndex:idx_votes_post_voter" json:"voter_id"`
	Value     int       `gorm:"not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
