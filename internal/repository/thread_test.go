package repository

import (
	"context"
	"testing"

	"moltboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadRepository_SetLocked(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	seedAgent(t, db, "alpha")
	submolt := seedSubmolt(t, db, "general")
	root := mustCreateRoot(t, postRepo, submolt.ID, "alpha", "Lockable")

	thread, err := repo.SetLocked(ctx, root.ID, true, models.StatusLocked)
	require.NoError(t, err)
	assert.True(t, thread.Locked)

	t.Run("root post status tracks the thread", func(t *testing.T) {
		var post models.Post
		require.NoError(t, db.First(&post, root.ID).Error)
		assert.Equal(t, models.StatusLocked, post.Status)
	})

	t.Run("unlock restores open status", func(t *testing.T) {
		thread, err := repo.SetLocked(ctx, root.ID, false, models.StatusOpen)
		require.NoError(t, err)
		assert.False(t, thread.Locked)

		var post models.Post
		require.NoError(t, db.First(&post, root.ID).Error)
		assert.Equal(t, models.StatusOpen, post.Status)
	})

	t.Run("resolved keeps the thread unlocked", func(t *testing.T) {
		thread, err := repo.SetLocked(ctx, root.ID, false, models.StatusResolved)
		require.NoError(t, err)
		assert.False(t, thread.Locked, "resolved threads still accept replies")

		var post models.Post
		require.NoError(t, db.First(&post, root.ID).Error)
		assert.Equal(t, models.StatusResolved, post.Status)
	})
}

func TestThreadRepository_SetPinned(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	seedAgent(t, db, "alpha")
	submolt := seedSubmolt(t, db, "general")
	root := mustCreateRoot(t, postRepo, submolt.ID, "alpha", "Pinnable")

	thread, err := repo.SetPinned(ctx, root.ID, true)
	require.NoError(t, err)
	assert.True(t, thread.Pinned)

	thread, err = repo.SetPinned(ctx, root.ID, false)
	require.NoError(t, err)
	assert.False(t, thread.Pinned)
}

func TestThreadRepository_Recount(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	seedAgent(t, db, "alpha")
	seedAgent(t, db, "beta")
	submolt := seedSubmolt(t, db, "general")

	root := mustCreateRoot(t, postRepo, submolt.ID, "alpha", "Counted")
	mustCreateReply(t, postRepo, root.ID, "beta", "one")
	mustCreateReply(t, postRepo, root.ID, "beta", "two")

	// Sabotage the counters, then rebuild.
	require.NoError(t, db.Model(&models.Thread{}).
		Where("root_post_id = ?", root.ID).
		Updates(map[string]interface{}{"reply_count": 99, "participant_count": 99}).Error)

	thread, err := repo.Recount(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, thread.ReplyCount)
	assert.Equal(t, 2, thread.ParticipantCount)
}

func TestThreadRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewThreadRepository(db)
	postRepo := NewPostRepository(db)
	voteRepo := NewVoteRepository(db)
	ctx := context.Background()

	seedAgent(t, db, "alpha")
	seedAgent(t, db, "beta")
	general := seedSubmolt(t, db, "general")
	infra := seedSubmolt(t, db, "infra")

	quiet := mustCreateRoot(t, postRepo, general.ID, "alpha", "Quiet thread")
	busy := mustCreateRoot(t, postRepo, general.ID, "alpha", "Busy thread")
	mustCreateRoot(t, postRepo, infra.ID, "alpha", "Elsewhere")

	mustCreateReply(t, postRepo, busy.ID, "beta", "activity")
	_, _, err := voteRepo.Apply(ctx, busy.ID, "beta", models.VoteUp)
	require.NoError(t, err)

	t.Run("active sorts latest activity first", func(t *testing.T) {
		threads, err := repo.List(ctx, nil, "active", 10, 0)
		require.NoError(t, err)
		require.NotEmpty(t, threads)
		assert.Equal(t, busy.ID, threads[0].RootPostID)
	})

	t.Run("top sorts by net score", func(t *testing.T) {
		threads, err := repo.List(ctx, nil, "top", 10, 0)
		require.NoError(t, err)
		require.NotEmpty(t, threads)
		assert.Equal(t, busy.ID, threads[0].RootPostID)
	})

	t.Run("submolt filter", func(t *testing.T) {
		threads, err := repo.List(ctx, &general.ID, "new", 10, 0)
		require.NoError(t, err)
		assert.Len(t, threads, 2)
		for _, th := range threads {
			assert.Contains(t, []uint{quiet.ID, busy.ID}, th.RootPostID)
		}
	})
}
