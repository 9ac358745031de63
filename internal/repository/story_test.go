package repository

import (
	"context"
	"encoding/json"
	"testing"

	"storyforge/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStoryDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Story{}))
	return db
}

func seedStory(t *testing.T, repo StoryRepository, userID, title, content, genre string, favorite bool) *models.Story {
	t.Helper()
	story := &models.Story{
		UserID:     userID,
		Title:      title,
		Prompt:     "a prompt about " + title,
		Content:    content,
		Genre:      genre,
		Creativity: 0.7,
		IsFavorite: favorite,
	}
	require.NoError(t, repo.Create(context.Background(), story))
	return story
}

func TestStoryRepository_CreateComputesWordCount(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))
	ctx := context.Background()

	story := seedStory(t, repo, "user-a", "The Lighthouse", "one two three four five", "Mystery", false)
	assert.NotZero(t, story.ID)

	got, err := repo.GetByID(ctx, "user-a", story.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.WordCount)
	assert.Equal(t, "Mystery", got.Genre)
}

func TestStoryRepository_OwnershipIsolation(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))
	ctx := context.Background()

	story := seedStory(t, repo, "user-a", "Private", "secret content here", "Drama", false)

	_, err := repo.GetByID(ctx, "user-b", story.ID)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))

	err = repo.Delete(ctx, "user-b", story.ID)
	assert.True(t, models.IsCode(err, "NOT_FOUND"))

	// The real owner still sees it.
	got, err := repo.GetByID(ctx, "user-a", story.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private", got.Title)

	stories, err := repo.List(ctx, "user-b", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, stories)
}

func TestStoryRepository_ToggleFavoriteRoundTrip(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))
	ctx := context.Background()

	story := seedStory(t, repo, "user-a", "Flip", "some words", "Comedy", false)

	flipped, err := repo.ToggleFavorite(ctx, "user-a", story.ID)
	require.NoError(t, err)
	assert.True(t, flipped.IsFavorite)

	back, err := repo.ToggleFavorite(ctx, "user-a", story.ID)
	require.NoError(t, err)
	assert.False(t, back.IsFavorite)
}

func TestStoryRepository_UpdatePartial(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))
	ctx := context.Background()

	story := seedStory(t, repo, "user-a", "Before", "old content words", "Horror", false)

	newTitle := "After"
	newContent := "entirely new content with more words now"
	updated, err := repo.Update(ctx, "user-a", story.ID, StoryUpdate{
		Title:   &newTitle,
		Content: &newContent,
	})
	require.NoError(t, err)

	assert.Equal(t, "After", updated.Title)
	assert.Equal(t, newContent, updated.Content)
	assert.Equal(t, models.CountWords(newContent), updated.WordCount)
	// Untouched fields survive.
	assert.Equal(t, "Horror", updated.Genre)
	assert.Equal(t, story.Prompt, updated.Prompt)

	// Empty update is a no-op, not an error.
	same, err := repo.Update(ctx, "user-a", story.ID, StoryUpdate{})
	require.NoError(t, err)
	assert.Equal(t, "After", same.Title)
}

func TestStoryRepository_UpdateTags(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))
	ctx := context.Background()

	story := seedStory(t, repo, "user-a", "Tagged", "content", "Fantasy", false)

	tags := models.TagList{"dragons", "quests"}
	updated, err := repo.Update(ctx, "user-a", story.ID, StoryUpdate{Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, models.TagList{"dragons", "quests"}, updated.Tags)

	got, err := repo.GetByID(ctx, "user-a", story.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TagList{"dragons", "quests"}, got.Tags)
}

func TestStoryRepository_Search(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))
	ctx := context.Background()

	seedStory(t, repo, "user-a", "Dragon Keep", "a castle full of dragons", "Fantasy", true)
	seedStory(t, repo, "user-a", "Starship Log", "the crew charted nebulae", "Sci-Fi", false)
	seedStory(t, repo, "user-a", "Quiet Town", "dragons were only a rumor here", "Mystery", false)
	seedStory(t, repo, "user-b", "Dragon Diary", "not visible to user-a", "Fantasy", false)

	tests := []struct {
		name       string
		query      SearchQuery
		wantTitles []string
	}{
		{
			name:       "Text Matches Title And Content",
			query:      SearchQuery{Text: "dragon"},
			wantTitles: []string{"Dragon Keep", "Quiet Town"},
		},
		{
			name:       "Genre Filter",
			query:      SearchQuery{Genre: "Sci-Fi"},
			wantTitles: []string{"Starship Log"},
		},
		{
			name:       "Favorites Only",
			query:      SearchQuery{FavoriteOnly: true},
			wantTitles: []string{"Dragon Keep"},
		},
		{
			name:       "Text Plus Genre",
			query:      SearchQuery{Text: "dragon", Genre: "Mystery"},
			wantTitles: []string{"Quiet Town"},
		},
		{
			name:       "No Match",
			query:      SearchQuery{Text: "submarine"},
			wantTitles: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stories, err := repo.Search(ctx, "user-a", tt.query)
			require.NoError(t, err)

			titles := make([]string, 0, len(stories))
			for _, s := range stories {
				titles = append(titles, s.Title)
			}
			assert.ElementsMatch(t, tt.wantTitles, titles)
		})
	}
}

func TestStoryRepository_Stats(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))
	ctx := context.Background()

	seedStory(t, repo, "user-a", "One", "alpha beta gamma", "Fantasy", true)
	seedStory(t, repo, "user-a", "Two", "delta epsilon", "Fantasy", false)
	seedStory(t, repo, "user-a", "Three", "zeta", "Horror", true)
	seedStory(t, repo, "user-b", "Other", "should not count", "Fantasy", false)

	stats, err := repo.Stats(ctx, "user-a")
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalStories)
	assert.Equal(t, int64(6), stats.TotalWords)
	assert.Equal(t, int64(2), stats.FavoriteCount)
	assert.Equal(t, int64(2), stats.GenreCount)
	assert.InDelta(t, 2.0, stats.AverageWords, 0.001)

	require.Len(t, stats.Genres, 2)
	assert.Equal(t, GenreCount{Genre: "Fantasy", Count: 2}, stats.Genres[0])
	assert.Equal(t, GenreCount{Genre: "Horror", Count: 1}, stats.Genres[1])

	// The API response carries the distinct-genre total under its own key.
	payload, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"genre_count":2`)
}

func TestStoryRepository_StatsEmptyLibrary(t *testing.T) {
	repo := NewStoryRepository(setupStoryDB(t))

	stats, err := repo.Stats(context.Background(), "nobody")
	require.NoError(t, err)

	assert.Zero(t, stats.TotalStories)
	assert.Zero(t, stats.TotalWords)
	assert.Zero(t, stats.GenreCount)
	assert.Zero(t, stats.AverageWords)
	assert.Empty(t, stats.Genres)
}
