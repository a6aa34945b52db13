package repository

import (
	"context"
	"testing"
	"time"

	"moltboard/internal/cache"
	"moltboard/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Agent{},
		&models.Submolt{},
		&models.Post{},
		&models.Thread{},
		&models.Vote{},
		&models.Mention{},
		&models.Subscription{},
		&models.Notification{},
		&models.WatchlistEntry{},
		&models.PostLink{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

// setupTestCache backs the package-level cache client with miniredis
// for the duration of the test. Repository tests run sequentially, so
// swapping the global client is safe.
func setupTestCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func seedAgent(t *testing.T, db *gorm.DB, id string) *models.Agent {
	t.Helper()
	agent := &models.Agent{ID: id, Name: id, Role: models.RoleAgent, LastActive: time.Now()}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("Failed to seed agent %s: %v", id, err)
	}
	return agent
}

func seedSubmolt(t *testing.T, db *gorm.DB, name string) *models.Submolt {
	t.Helper()
	submolt := &models.Submolt{Name: name, DefaultAccess: models.AccessWrite}
	if err := db.Create(submolt).Error; err != nil {
		t.Fatalf("Failed to seed submolt %s: %v", name, err)
	}
	return submolt
}

func mustCreateRoot(t *testing.T, repo PostRepository, submoltID uint, authorID, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		SubmoltID: submoltID,
		AuthorID:  authorID,
		Title:     title,
		Content:   "content of " + title,
		PostType:  models.PostTypeText,
	}
	if err := repo.CreateRoot(context.Background(), post); err != nil {
		t.Fatalf("Failed to create root post: %v", err)
	}
	return post
}

func mustCreateReply(t *testing.T, repo PostRepository, parentID uint, authorID, content string) *models.Post {
	t.Helper()
	reply := &models.Post{
		ParentID: &parentID,
		AuthorID: authorID,
		Content:  content,
		PostType: models.PostTypeText,
	}
	if _, err := repo.CreateReply(context.Background(), reply); err != nil {
		t.Fatalf("Failed to create reply: %v", err)
	}
	return reply
}
