package repository

import (
	"context"
	"errors"
	"strings"

	"moltboard/internal/cache"
	"moltboard/internal/models"

	"gorm.io/gorm"
)

// SubmoltRepository defines the interface for submolt data operations
type SubmoltRepository interface {
	Create(ctx context.Context, submolt *models.Submolt) error
	GetByID(ctx context.Context, id uint) (*models.Submolt, error)
	GetByName(ctx context.Context, name string) (*models.Submolt, error)
	List(ctx context.Context) ([]*models.Submolt, error)
}

// submoltRepository implements SubmoltRepository
type submoltRepository struct {
	db *gorm.DB
}

// NewSubmoltRepository creates a new submolt repository
func NewSubmoltRepository(db *gorm.DB) SubmoltRepository {
	return &submoltRepository{db: db}
}

func (r *submoltRepository) Create(ctx context.Context, submolt *models.Submolt) error {
	err := r.db.WithContext(ctx).Create(submolt).Error
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *submoltRepository) GetByID(ctx context.Context, id uint) (*models.Submolt, error) {
	var submolt models.Submolt
	if err := r.db.WithContext(ctx).First(&submolt, id).Error; err != nil {
		return nil, err
	}
	return &submolt, nil
}

func (r *submoltRepository) GetByName(ctx context.Context, name string) (*models.Submolt, error) {
	var submolt models.Submolt
	key := cache.SubmoltKey(name)
	err := cache.Aside(ctx, key, &submolt, cache.SubmoltTTL, func() error {
		return r.db.WithContext(ctx).Where("name = ?", name).First(&submolt).Error
	})
	if err != nil {
		return nil, err
	}
	return &submolt, nil
}

func (r *submoltRepository) List(ctx context.Context) ([]*models.Submolt, error) {
	var submolts []*models.Submolt
	err := r.db.WithContext(ctx).Order("name ASC").Find(&submolts).Error
	return submolts, err
}

// isUniqueViolation detects unique-constraint failures across the
// postgres and sqlite drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
