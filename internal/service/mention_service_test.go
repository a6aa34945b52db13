package service

import (
	"context"
	"testing"

	"moltboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMentionService_TrackPost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("records obligations for extracted agents", func(t *testing.T) {
		t.Parallel()
		var created []*models.Mention
		repo := noopMentionRepo()
		repo.createIfAbsentFn = func(_ context.Context, m *models.Mention) (bool, error) {
			created = append(created, m)
			return true, nil
		}
		svc := NewMentionService(repo, &extractorStub{ids: []string{"beta", "gamma"}})

		got, err := svc.TrackPost(ctx, &models.Post{ID: 1, AuthorID: "alpha"}, "@beta @gamma hello")
		require.NoError(t, err)
		assert.Len(t, got, 2)
		require.Len(t, created, 2)
		assert.Equal(t, "beta", created[0].MentionedAgentID)
		assert.Equal(t, "alpha", created[0].MentioningAgentID)
	})

	t.Run("self mention is skipped", func(t *testing.T) {
		t.Parallel()
		repo := noopMentionRepo()
		calls := 0
		repo.createIfAbsentFn = func(_ context.Context, _ *models.Mention) (bool, error) {
			calls++
			return true, nil
		}
		svc := NewMentionService(repo, &extractorStub{ids: []string{"alpha", "beta"}})

		got, err := svc.TrackPost(ctx, &models.Post{ID: 1, AuthorID: "alpha"}, "text")
		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, 1, calls)
	})

	t.Run("duplicates are not reported as created", func(t *testing.T) {
		t.Parallel()
		repo := noopMentionRepo()
		repo.createIfAbsentFn = func(_ context.Context, _ *models.Mention) (bool, error) {
			return false, nil
		}
		svc := NewMentionService(repo, &extractorStub{ids: []string{"beta"}})

		got, err := svc.TrackPost(ctx, &models.Post{ID: 1, AuthorID: "alpha"}, "text")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestMentionService_Acknowledge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	pending := &models.Mention{ID: 7, PostID: 1, MentionedAgentID: "beta", MentioningAgentID: "alpha"}

	t.Run("happy path", func(t *testing.T) {
		t.Parallel()
		repo := noopMentionRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Mention, error) {
			m := *pending
			return &m, nil
		}
		repo.markRespondedFn = func(_ context.Context, id uint, _ *uint) (*models.Mention, error) {
			m := *pending
			m.Responded = true
			return &m, nil
		}
		svc := NewMentionService(repo, &extractorStub{})

		result, err := svc.Acknowledge(ctx, AcknowledgeInput{AgentID: "beta", MentionID: 7})
		require.NoError(t, err)
		assert.False(t, result.AlreadyResponded)
		assert.True(t, result.Mention.Responded)
	})

	t.Run("only the mentioned agent may acknowledge", func(t *testing.T) {
		t.Parallel()
		repo := noopMentionRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Mention, error) {
			m := *pending
			return &m, nil
		}
		svc := NewMentionService(repo, &extractorStub{})

		_, err := svc.Acknowledge(ctx, AcknowledgeInput{AgentID: "gamma", MentionID: 7})
		assertAppCode(t, err, models.CodeForbidden)
	})

	t.Run("already responded is a reported no-op", func(t *testing.T) {
		t.Parallel()
		repo := noopMentionRepo()
		repo.getByIDFn = func(_ context.Context, _ uint) (*models.Mention, error) {
			m := *pending
			m.Responded = true
			return &m, nil
		}
		svc := NewMentionService(repo, &extractorStub{})

		result, err := svc.Acknowledge(ctx, AcknowledgeInput{AgentID: "beta", MentionID: 7})
		require.NoError(t, err)
		assert.True(t, result.AlreadyResponded)
	})

	t.Run("unknown mention", func(t *testing.T) {
		t.Parallel()
		svc := NewMentionService(noopMentionRepo(), &extractorStub{})
		_, err := svc.Acknowledge(ctx, AcknowledgeInput{AgentID: "beta", MentionID: 404})
		assertAppCode(t, err, models.CodeNotFound)
	})

	t.Run("missing identity", func(t *testing.T) {
		t.Parallel()
		svc := NewMentionService(noopMentionRepo(), &extractorStub{})
		_, err := svc.Acknowledge(ctx, AcknowledgeInput{MentionID: 7})
		assertAppCode(t, err, models.CodeUnauthenticated)
	})
}

func TestMentionService_AcknowledgeBulk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("all flag delegates to bulk repo path", func(t *testing.T) {
		t.Parallel()
		repo := noopMentionRepo()
		repo.markAllRespondedFn = func(_ context.Context, agentID string) (int64, error) {
			assert.Equal(t, "beta", agentID)
			return 5, nil
		}
		svc := NewMentionService(repo, &extractorStub{})

		count, err := svc.AcknowledgeBulk(ctx, BulkAcknowledgeInput{AgentID: "beta", All: true})
		require.NoError(t, err)
		assert.EqualValues(t, 5, count)
	})

	t.Run("empty id list without all flag", func(t *testing.T) {
		t.Parallel()
		svc := NewMentionService(noopMentionRepo(), &extractorStub{})
		_, err := svc.AcknowledgeBulk(ctx, BulkAcknowledgeInput{AgentID: "beta"})
		assertAppCode(t, err, models.CodeValidation)
	})
}
