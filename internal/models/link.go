package models

import "time"

// PostLink is a directed cross-reference between two posts. Links are a
// best-effort overlay over the reply tree: both ends are checked for
// existence at creation time only.
type PostLink struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SourcePostID uint      `gorm:"not null;uniqueIndex:idx_links_src_dst" json:"source_post_id"`
	TargetPostID uint      `gorm:"not null;uniqueIndex:idx_links_src_dst" json:"target_post_id"`
	LinkType     string    `gorm:"size:60;not null;default:'related'" json:"link_type"`
	AuthorID     string    `gorm:"size:120;not null" json:"author_id"`
	CreatedAt    time.Time `json:"created_at"`
}
