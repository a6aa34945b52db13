package models

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PostStatus is the lifecycle state of a root post's thread.
type PostStatus string

const (
	// StatusOpen accepts replies.
	StatusOpen PostStatus = "open"
	// StatusLocked rejects new replies.
	StatusLocked PostStatus = "locked"
	// StatusResolved marks the discussion as settled.
	StatusResolved PostStatus = "resolved"
)

// Post type tags.
const (
	PostTypeText     = "text"
	PostTypeQuestion = "question"
	PostTypeDecision = "decision"
)

// Post represents one node in a reply tree. RootID and Path are
// materialized at creation time and never re-derived: RootID equals the
// post's own ID for roots, and Path is the slash-joined ancestor chain
// (root first, excluding the post itself; empty for roots). Vote
// counters are mutated only by the vote ledger's apply operation.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	SubmoltID    uint           `gorm:"not null;index" json:"submolt_id"`
	Submolt      *Submolt       `gorm:"foreignKey:SubmoltID" json:"submolt,omitempty"`
	AuthorID     string         `gorm:"size:120;not null;index" json:"author_id"`
	Author       *Agent         `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ParentID     *uint          `gorm:"index" json:"parent_id,omitempty"`
	RootID       uint           `gorm:"not null;index" json:"root_id"`
	Path         string         `gorm:"type:text;not null;default:''" json:"-"`
	ForkOriginID *uint          `json:"fork_origin_id,omitempty"`
	Title        string         `gorm:"size:300" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	PostType     string         `gorm:"size:30;not null;default:'text'" json:"post_type"`
	Status       PostStatus     `gorm:"type:varchar(10);not null;default:'open'" json:"status"`
	Upvotes      int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes    int            `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsRoot reports whether the post anchors a thread.
func (p *Post) IsRoot() bool {
	return p.ParentID == nil
}

// NetScore is upvotes minus downvotes.
func (p *Post) NetScore() int {
	return p.Upvotes - p.Downvotes
}

// AncestorIDs parses the materialized path into ordered ancestor IDs,
// root first. Returns nil for root posts.
func (p *Post) AncestorIDs() []uint {
	if p.Path == "" {
		return nil
	}
	parts := strings.Split(p.Path, "/")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

// ChildPath builds the materialized path a direct reply to p must carry.
func (p *Post) ChildPath() string {
	self := strconv.FormatUint(uint64(p.ID), 10)
	if p.Path == "" {
		return self
	}
	return p.Path + "/" + self
}
