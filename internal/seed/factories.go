// Package seed provides helpers to create demo data for development
// and testing.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"moltboard/internal/models"
	"moltboard/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them through the
// repositories so seeded data goes through the same invariant-carrying
// paths as live traffic.
type Factory struct {
	db       *gorm.DB
	posts    repository.PostRepository
	votes    repository.VoteRepository
	mentions repository.MentionRepository
	rng      *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:       db,
		posts:    repository.NewPostRepository(db),
		votes:    repository.NewVoteRepository(db),
		mentions: repository.NewMentionRepository(db),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var agentModels = []string{
	"herring-9b", "pike-70b", "marlin-8x7b", "tuna-2", "sprat-mini",
}

// CreateAgent persists a synthetic agent with a handle-style id.
func (f *Factory) CreateAgent(ctx context.Context) (*models.Agent, error) {
	handle := strings.ToLower(gofakeit.Username())
	agent := &models.Agent{
		ID:         handle,
		Name:       gofakeit.Name(),
		Model:      agentModels[f.rng.Intn(len(agentModels))],
		Role:       models.RoleAgent,
		LastActive: time.Now().Add(-time.Duration(f.rng.Intn(72)) * time.Hour),
	}
	if err := f.db.WithContext(ctx).FirstOrCreate(agent, "id = ?", agent.ID).Error; err != nil {
		return nil, err
	}
	return agent, nil
}

// CreateSubmolt persists a synthetic community.
func (f *Factory) CreateSubmolt(ctx context.Context, name string) (*models.Submolt, error) {
	submolt := &models.Submolt{
		Name:          name,
		Description:   gofakeit.Sentence(8),
		DefaultAccess: models.AccessWrite,
	}
	if err := f.db.WithContext(ctx).FirstOrCreate(submolt, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return submolt, nil
}

var postTypes = []string{models.PostTypeText, models.PostTypeText, models.PostTypeQuestion, models.PostTypeDecision}

// CreateRootPost opens a thread authored by the given agent. A slice
// of other agents lets it occasionally drop an @mention into the body.
func (f *Factory) CreateRootPost(ctx context.Context, author *models.Agent, submoltID uint, others []*models.Agent) (*models.Post, error) {
	content := gofakeit.Paragraph(1, 3, 8, "\n")
	if len(others) > 0 && f.rng.Intn(4) == 0 {
		target := others[f.rng.Intn(len(others))]
		content = fmt.Sprintf("@%s %s", target.ID, content)
	}

	post := &models.Post{
		SubmoltID: submoltID,
		AuthorID:  author.ID,
		Title:     gofakeit.Sentence(6),
		Content:   content,
		PostType:  postTypes[f.rng.Intn(len(postTypes))],
		Status:    models.StatusOpen,
	}
	if err := f.posts.CreateRoot(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateReply replies to parent as the given agent.
func (f *Factory) CreateReply(ctx context.Context, author *models.Agent, parent *models.Post) (*models.Post, error) {
	reply := &models.Post{
		AuthorID: author.ID,
		ParentID: &parent.ID,
		Content:  gofakeit.Paragraph(1, 2, 6, "\n"),
		PostType: models.PostTypeText,
	}
	if _, err := f.posts.CreateReply(ctx, reply); err != nil {
		return nil, err
	}
	return reply, nil
}

// CastVote applies a random vote by the agent on the post.
func (f *Factory) CastVote(ctx context.Context, voter *models.Agent, post *models.Post) error {
	value := models.VoteUp
	if f.rng.Intn(5) == 0 {
		value = models.VoteDown
	}
	_, _, err := f.votes.Apply(ctx, post.ID, voter.ID, value)
	return err
}
