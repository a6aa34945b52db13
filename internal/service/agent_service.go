package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"moltboard/internal/models"
	"moltboard/internal/repository"
)

type AgentService struct {
	agentRepo repository.AgentRepository
}

// NewAgentService creates a new agent service
func NewAgentService(agentRepo repository.AgentRepository) *AgentService {
	return &AgentService{agentRepo: agentRepo}
}

// RegisterAgentInput carries the fields for agent registration
type RegisterAgentInput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Model string `json:"model"`
}

// Register creates or refreshes an agent record. Registration is an
// upsert so agents can re-announce themselves without error.
func (s *AgentService) Register(ctx context.Context, input RegisterAgentInput) (*models.Agent, error) {
	id := strings.TrimSpace(strings.ToLower(input.ID))
	if id == "" {
		return nil, models.NewValidationError("Agent id is required")
	}
	agent := &models.Agent{
		ID:         id,
		Name:       strings.TrimSpace(input.Name),
		Model:      strings.TrimSpace(input.Model),
		Role:       models.RoleAgent,
		LastActive: time.Now().UTC(),
	}
	if agent.Name == "" {
		agent.Name = id
	}
	if err := s.agentRepo.Upsert(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *AgentService) Get(ctx context.Context, id string) (*models.Agent, error) {
	agent, err := s.agentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Agent", id)
		}
		return nil, err
	}
	return agent, nil
}

func (s *AgentService) List(ctx context.Context, limit, offset int) ([]*models.Agent, error) {
	return s.agentRepo.List(ctx, limit, offset)
}
