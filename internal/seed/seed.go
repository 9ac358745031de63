// Package seed provides helpers to create demo data for the application
// database and credential store. These helpers are intended for development
// and testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"storyforge/internal/credstore"
	"storyforge/internal/models"
	"storyforge/internal/synth"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DemoPassword is the shared password every seeded account gets.
const DemoPassword = "storytime"

// Seeder creates demo users and stories.
type Seeder struct {
	db    *gorm.DB
	creds *credstore.Store
	rng   *rand.Rand
}

// NewSeeder creates a Seeder bound to the database and credential store.
func NewSeeder(db *gorm.DB, creds *credstore.Store) *Seeder {
	seed := time.Now().UnixNano()
	gofakeit.Seed(seed)
	return &Seeder{
		db:    db,
		creds: creds,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// ClearStories drops all seeded story rows. Credentials are left alone;
// the users file is small and easy to delete by hand.
func (s *Seeder) ClearStories() error {
	return s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Story{}).Error
}

// SeedUsers registers numUsers demo accounts and their profile rows.
// Every account uses DemoPassword.
func (s *Seeder) SeedUsers(ctx context.Context, numUsers int) ([]models.User, error) {
	users := make([]models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		email := strings.ToLower(gofakeit.Username()) + "@example.com"
		name := gofakeit.Name()

		summary, err := s.creds.Register(email, DemoPassword, name)
		if err != nil {
			// Random usernames can collide; skip and keep going.
			log.Printf("seed: skipping %s: %v", email, err)
			continue
		}

		user := models.User{
			ID:          summary.UserID,
			Email:       summary.Email,
			DisplayName: summary.DisplayName,
			LastLogin:   time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, fmt.Errorf("create user %s: %w", email, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedStories generates storiesPerUser stories for each user through the
// local generation tiers, spread over the past 90 days.
func (s *Seeder) SeedStories(ctx context.Context, users []models.User, storiesPerUser int) (int, error) {
	gen := synth.NewWithChain(synth.NewTemplateGenerator(), synth.NewFragmentGenerator(s.rng.Int63()))

	total := 0
	for _, user := range users {
		for i := 0; i < storiesPerUser; i++ {
			genre := models.Genres[s.rng.Intn(len(models.Genres))]
			prompt := strings.ToLower(gofakeit.HipsterSentence(6))
			target := 100 + s.rng.Intn(500)
			creativity := 0.1 + s.rng.Float64()*0.9

			content := gen.Generate(ctx, synth.Request{
				Prompt:      prompt,
				Genre:       genre,
				Creativity:  creativity,
				TargetWords: target,
			})

			createdAt := time.Now().Add(-time.Duration(s.rng.Intn(90*24)) * time.Hour)
			story := models.Story{
				UserID:     user.ID,
				Title:      gofakeit.BookTitle(),
				Prompt:     prompt,
				Content:    content,
				Genre:      genre,
				Creativity: creativity,
				WordCount:  models.CountWords(content),
				CreatedAt:  createdAt,
				UpdatedAt:  createdAt,
				IsFavorite: s.rng.Intn(5) == 0,
				Tags:       s.randomTags(),
			}
			if err := s.db.WithContext(ctx).Create(&story).Error; err != nil {
				return total, fmt.Errorf("create story for %s: %w", user.Email, err)
			}
			total++
		}
	}
	return total, nil
}

func (s *Seeder) randomTags() models.TagList {
	pool := []string{"epic", "short", "experiment", "favorite-prompt", "late-night", "draft", "polished"}
	n := s.rng.Intn(3)
	if n == 0 {
		return nil
	}
	tags := make(models.TagList, 0, n)
	for _, idx := range s.rng.Perm(len(pool))[:n] {
		tags = append(tags, pool[idx])
	}
	return tags
}
