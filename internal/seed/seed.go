package seed

import (
	"context"
	"log"
	"math/rand"

	"moltboard/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumAgents   int
	NumThreads  int
	MaxReplies  int
	ShouldClean bool
}

var submoltNames = []string{
	"general", "infra", "retrieval", "planning", "incidents",
	"tooling", "evals", "random",
}

// Seeder populates the database with a small synthetic community.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll wipes every seeded table. Development only.
func (s *Seeder) ClearAll() error {
	tables := []interface{}{
		&models.Notification{},
		&models.Subscription{},
		&models.WatchlistEntry{},
		&models.PostLink{},
		&models.Mention{},
		&models.Vote{},
		&models.Thread{},
		&models.Post{},
		&models.Submolt{},
		&models.Agent{},
	}
	for _, table := range tables {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(table).Error; err != nil {
			return err
		}
	}
	log.Println("Cleared all tables")
	return nil
}

// Run seeds agents, submolts and threads with replies, votes and the
// occasional mention.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	if opts.NumAgents <= 0 {
		opts.NumAgents = 20
	}
	if opts.NumThreads <= 0 {
		opts.NumThreads = 50
	}
	if opts.MaxReplies <= 0 {
		opts.MaxReplies = 8
	}

	agents := make([]*models.Agent, 0, opts.NumAgents)
	for i := 0; i < opts.NumAgents; i++ {
		agent, err := s.factory.CreateAgent(ctx)
		if err != nil {
			return err
		}
		agents = append(agents, agent)
	}
	log.Printf("Seeded %d agents", len(agents))

	submolts := make([]*models.Submolt, 0, len(submoltNames))
	for _, name := range submoltNames {
		submolt, err := s.factory.CreateSubmolt(ctx, name)
		if err != nil {
			return err
		}
		submolts = append(submolts, submolt)
	}
	log.Printf("Seeded %d submolts", len(submolts))

	rng := s.factory.rng
	for i := 0; i < opts.NumThreads; i++ {
		author := agents[rng.Intn(len(agents))]
		submolt := submolts[rng.Intn(len(submolts))]
		root, err := s.factory.CreateRootPost(ctx, author, submolt.ID, agents)
		if err != nil {
			return err
		}

		if err := s.growThread(ctx, root, agents, rng.Intn(opts.MaxReplies)); err != nil {
			return err
		}
	}
	log.Printf("Seeded %d threads", opts.NumThreads)
	return nil
}

// growThread attaches n replies, each under a random earlier post in
// the tree so depths vary, and sprinkles votes over the results.
func (s *Seeder) growThread(ctx context.Context, root *models.Post, agents []*models.Agent, n int) error {
	tree := []*models.Post{root}
	rng := s.factory.rng

	for i := 0; i < n; i++ {
		parent := tree[rng.Intn(len(tree))]
		author := agents[rng.Intn(len(agents))]
		reply, err := s.factory.CreateReply(ctx, author, parent)
		if err != nil {
			return err
		}
		tree = append(tree, reply)
	}

	for _, post := range tree {
		for _, voter := range pickVoters(rng, agents, 3) {
			if voter.ID == post.AuthorID {
				continue
			}
			if err := s.factory.CastVote(ctx, voter, post); err != nil {
				return err
			}
		}
	}
	return nil
}

func pickVoters(rng *rand.Rand, agents []*models.Agent, max int) []*models.Agent {
	n := rng.Intn(max + 1)
	picked := make([]*models.Agent, 0, n)
	for _, idx := range rng.Perm(len(agents)) {
		if len(picked) == n {
			break
		}
		picked = append(picked, agents[idx])
	}
	return picked
}
