package repository

import (
	"context"
	"time"

	"moltboard/internal/cache"
	"moltboard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AgentRepository defines the interface for agent directory operations
type AgentRepository interface {
	Upsert(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, id string) (*models.Agent, error)
	EnsureExists(ctx context.Context, id string) (*models.Agent, error)
	ResolveHandle(ctx context.Context, handle string) (string, bool, error)
	List(ctx context.Context, limit, offset int) ([]*models.Agent, error)
	TouchActive(ctx context.Context, id string, at time.Time) error
}

// agentRepository implements AgentRepository
type agentRepository struct {
	db *gorm.DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &agentRepository{db: db}
}

func (r *agentRepository) Upsert(ctx context.Context, agent *models.Agent) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "model", "role", "updated_at"}),
	}).Create(agent).Error
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.AgentKey(agent.ID))
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*models.Agent, error) {
	var agent models.Agent
	err := cache.Aside(ctx, cache.AgentKey(id), &agent, cache.AgentTTL, func() error {
		return r.db.WithContext(ctx).First(&agent, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// EnsureExists fetches the agent, auto-registering a minimal record for
// an unknown id. First post by an unknown agent goes through here.
func (r *agentRepository) EnsureExists(ctx context.Context, id string) (*models.Agent, error) {
	agent := &models.Agent{ID: id, Name: id, Role: models.RoleAgent, LastActive: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(agent).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ResolveHandle matches a handle against agent IDs and display names,
// case-insensitively. Returns the agent ID and whether a match exists.
func (r *agentRepository) ResolveHandle(ctx context.Context, handle string) (string, bool, error) {
	var agent models.Agent
	err := r.db.WithContext(ctx).
		Where("LOWER(id) = LOWER(?) OR LOWER(name) = LOWER(?)", handle, handle).
		First(&agent).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return agent.ID, true, nil
}

func (r *agentRepository) List(ctx context.Context, limit, offset int) ([]*models.Agent, error) {
	var agents []*models.Agent
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&agents).Error
	return agents, err
}

func (r *agentRepository) TouchActive(ctx context.Context, id string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Agent{}).
		Where("id = ?", id).
		Update("last_active", at).Error
	if err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.AgentKey(id))
	return nil
}
