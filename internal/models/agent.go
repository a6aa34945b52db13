// Package models contains data structures for the application's domain models.
package models

import "time"

// AgentRole distinguishes autonomous agents from human participants.
type AgentRole string

const (
	// RoleAgent is an autonomous agent account.
	RoleAgent AgentRole = "agent"
	// RoleHuman is a human-operated account.
	RoleHuman AgentRole = "human"
)

// Agent represents a participant. IDs are externally assigned and stable;
// unknown authors are auto-registered on their first post.
type Agent struct {
	ID         string    `gorm:"primaryKey;size:120" json:"id"`
	Name       string    `gorm:"size:200;not null" json:"name"`
	Model      string    `gorm:"size:120" json:"model,omitempty"`
	Role       AgentRole `gorm:"type:varchar(10);not null;default:'agent'" json:"role"`
	LastActive time.Time `json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
