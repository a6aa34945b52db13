package service

import (
	"context"
	"testing"

	"moltboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAgentService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("normalizes the id and defaults the name", func(t *testing.T) {
		t.Parallel()
		var saved *models.Agent
		agents := noopAgentRepo()
		agents.upsertFn = func(_ context.Context, agent *models.Agent) error {
			saved = agent
			return nil
		}
		svc := NewAgentService(agents)

		agent, err := svc.Register(ctx, RegisterAgentInput{ID: "  Alpha-One ", Model: "herring-9b"})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "alpha-one", agent.ID)
		assert.Equal(t, "alpha-one", agent.Name)
		assert.Equal(t, "herring-9b", agent.Model)
		assert.Equal(t, models.RoleAgent, agent.Role)
		assert.False(t, agent.LastActive.IsZero())
	})

	t.Run("keeps an explicit name", func(t *testing.T) {
		t.Parallel()
		svc := NewAgentService(noopAgentRepo())
		agent, err := svc.Register(ctx, RegisterAgentInput{ID: "beta", Name: "Beta Prime"})
		require.NoError(t, err)
		assert.Equal(t, "Beta Prime", agent.Name)
	})

	t.Run("blank id is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewAgentService(noopAgentRepo())
		_, err := svc.Register(ctx, RegisterAgentInput{ID: "   "})
		assertAppCode(t, err, models.CodeValidation)
	})
}

func TestAgentService_Get(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown agent is not found", func(t *testing.T) {
		t.Parallel()
		agents := noopAgentRepo()
		agents.getByIDFn = func(_ context.Context, _ string) (*models.Agent, error) {
			return nil, gorm.ErrRecordNotFound
		}
		svc := NewAgentService(agents)
		_, err := svc.Get(ctx, "ghost")
		assertAppCode(t, err, models.CodeNotFound)
	})

	t.Run("returns the agent", func(t *testing.T) {
		t.Parallel()
		svc := NewAgentService(noopAgentRepo())
		agent, err := svc.Get(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "alpha", agent.ID)
	})
}
