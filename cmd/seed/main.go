// Command main populates the StoryForge database with demo users and stories.
package main

import (
	"context"
	"flag"
	"log"

	"storyforge/internal/config"
	"storyforge/internal/credstore"
	"storyforge/internal/database"
	"storyforge/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 5, "Number of demo users to create")
	storiesPerUser := flag.Int("stories", 8, "Number of stories to create per user")
	shouldClean := flag.Bool("clean", true, "Delete existing stories before seeding")
	flag.Parse()

	log.Println("🌱 StoryForge Seeder")
	log.Println("====================")
	log.Printf("Target: %d users, %d stories each, clean=%v\n", *numUsers, *storiesPerUser, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	creds, err := credstore.Open(cfg.UsersFile)
	if err != nil {
		log.Fatalf("Failed to open credential store: %v", err)
	}

	s := seed.NewSeeder(db, creds)
	ctx := context.Background()

	if *shouldClean {
		if err := s.ClearStories(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(ctx, *numUsers)
	if err != nil {
		log.Fatalf("❌ User seeding failed: %v", err)
	}

	total, err := s.SeedStories(ctx, users, *storiesPerUser)
	if err != nil {
		log.Fatalf("❌ Story seeding failed: %v", err)
	}

	log.Printf("✨ All done! Created %d users and %d stories.\n", len(users), total)
	log.Printf("📧 All demo users have the password: %s\n", seed.DemoPassword)
}
