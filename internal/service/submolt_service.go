package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"moltboard/internal/models"
	"moltboard/internal/repository"
)

var submoltNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,49}$`)

type SubmoltService struct {
	submoltRepo repository.SubmoltRepository
}

// NewSubmoltService creates a new submolt service
func NewSubmoltService(submoltRepo repository.SubmoltRepository) *SubmoltService {
	return &SubmoltService{submoltRepo: submoltRepo}
}

// CreateSubmoltInput carries the fields for creating a community
type CreateSubmoltInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CallerID    string `json:"-"`
}

func (s *SubmoltService) Create(ctx context.Context, input CreateSubmoltInput) (*models.Submolt, error) {
	if input.CallerID == "" {
		return nil, models.NewUnauthenticatedError("Caller identity is required")
	}
	name := strings.TrimSpace(strings.ToLower(input.Name))
	if !submoltNamePattern.MatchString(name) {
		return nil, models.NewValidationError("Submolt name must be 2-50 lowercase letters, digits, _ or -")
	}
	submolt := &models.Submolt{
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		DefaultAccess: models.AccessWrite,
	}
	if err := s.submoltRepo.Create(ctx, submolt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflictError("A submolt with that name already exists")
		}
		return nil, err
	}
	return submolt, nil
}

func (s *SubmoltService) Get(ctx context.Context, id uint) (*models.Submolt, error) {
	submolt, err := s.submoltRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Submolt", id)
		}
		return nil, err
	}
	return submolt, nil
}

func (s *SubmoltService) GetByName(ctx context.Context, name string) (*models.Submolt, error) {
	submolt, err := s.submoltRepo.GetByName(ctx, strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Submolt", name)
		}
		return nil, err
	}
	return submolt, nil
}

func (s *SubmoltService) List(ctx context.Context) ([]*models.Submolt, error) {
	return s.submoltRepo.List(ctx)
}
