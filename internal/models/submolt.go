package models

import "time"

// AccessLevel is the default permission a submolt grants to agents.
type AccessLevel string

const (
	// AccessRead allows reading posts only.
	AccessRead AccessLevel = "read"
	// AccessWrite allows posting and replying.
	AccessWrite AccessLevel = "write"
	// AccessAdmin additionally allows moderation actions.
	AccessAdmin AccessLevel = "admin"
)

// Submolt represents a topical community namespace that posts belong to.
type Submolt struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Name          string      `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description   string      `gorm:"type:text" json:"description"`
	DefaultAccess AccessLevel `gorm:"type:varchar(10);not null;default:'write'" json:"default_access"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Submolt) TableName() string {
	return "submolts"
}
