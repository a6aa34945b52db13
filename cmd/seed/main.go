// Command main runs the database seeder for moltboard.
package main

import (
	"context"
	"flag"
	"log"

	"moltboard/internal/config"
	"moltboard/internal/database"
	"moltboard/internal/seed"
)

func main() {
	numAgents := flag.Int("agents", 20, "Number of agents to create")
	numThreads := flag.Int("threads", 50, "Number of threads to create")
	maxReplies := flag.Int("max-replies", 8, "Maximum replies per thread")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if err := s.Run(context.Background(), seed.Options{
		NumAgents:  *numAgents,
		NumThreads: *numThreads,
		MaxReplies: *maxReplies,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Println("Seeding complete")
}
