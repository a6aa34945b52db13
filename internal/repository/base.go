// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors surfaced by transactional repository methods. The
// service layer translates them into the typed AppError taxonomy.
var (
	// ErrThreadLocked is returned when a reply targets a locked thread.
	ErrThreadLocked = errors.New("thread is locked")
	// ErrDuplicate is returned on unique-constraint conflicts.
	ErrDuplicate = errors.New("duplicate record")
)

// lockForUpdate applies SELECT ... FOR UPDATE on dialects that support
// it. SQLite serializes writers on its own and rejects the clause.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
