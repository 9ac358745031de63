package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"storyforge/internal/models"
	"storyforge/internal/observability"

	"gorm.io/gorm"
)

// StoryUpdate carries the mutable story fields for a partial update. Nil
// pointers mean "leave unchanged".
type StoryUpdate struct {
	Title      *string
	Content    *string
	Genre      *string
	Tags       *models.TagList
	IsFavorite *bool
}

// SearchQuery holds the filters for a story search. Zero values disable the
// corresponding filter.
type SearchQuery struct {
	Text         string
	Genre        string
	FavoriteOnly bool
	Limit        int
}

// GenreCount is one row of the per-genre breakdown in UserStats.
type GenreCount struct {
	Genre string `json:"genre"`
	Count int64  `json:"count"`
}

// UserStats aggregates a user's story library.
type UserStats struct {
	TotalStories  int64        `json:"total_stories"`
	TotalWords    int64        `json:"total_words"`
	FavoriteCount int64        `json:"favorite_count"`
	GenreCount    int64        `json:"genre_count"`
	AverageWords  float64      `json:"average_words"`
	Genres        []GenreCount `json:"genres"`
}

// StoryRepository defines persistence operations for stories. Every method
// takes the owning user's ID and never exposes another user's rows.
type StoryRepository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, userID string, id uint) (*models.Story, error)
	List(ctx context.Context, userID string, limit, offset int) ([]models.Story, error)
	Update(ctx context.Context, userID string, id uint, update StoryUpdate) (*models.Story, error)
	Delete(ctx context.Context, userID string, id uint) error
	ToggleFavorite(ctx context.Context, userID string, id uint) (*models.Story, error)
	Search(ctx context.Context, userID string, q SearchQuery) ([]models.Story, error)
	Stats(ctx context.Context, userID string) (*UserStats, error)
}

type storyRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewStoryRepository returns a new StoryRepository implementation.
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db, log: observability.NewRepoLogger("story")}
}

func (r *storyRepository) Create(ctx context.Context, story *models.Story) error {
	story.WordCount = models.CountWords(story.Content)
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "create", map[string]any{"story_id": story.ID, "genre": story.Genre})
	observability.StoriesSaved.WithLabelValues(story.Genre).Inc()
	return nil
}

func (r *storyRepository) GetByID(ctx context.Context, userID string, id uint) (*models.Story, error) {
	var story models.Story
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&story, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Story", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &story, nil
}

func (r *storyRepository) List(ctx context.Context, userID string, limit, offset int) ([]models.Story, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	var stories []models.Story
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&stories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

// Update applies a partial update and returns the refreshed row. A content
// change recomputes word_count so the stored figure never drifts from the
// text.
func (r *storyRepository) Update(ctx context.Context, userID string, id uint, update StoryUpdate) (*models.Story, error) {
	story, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if update.Title != nil {
		changes["title"] = *update.Title
	}
	if update.Content != nil {
		changes["content"] = *update.Content
		changes["word_count"] = models.CountWords(*update.Content)
	}
	if update.Genre != nil {
		changes["genre"] = *update.Genre
	}
	if update.Tags != nil {
		changes["tags"] = *update.Tags
	}
	if update.IsFavorite != nil {
		changes["is_favorite"] = *update.IsFavorite
	}
	if len(changes) == 0 {
		return story, nil
	}
	changes["updated_at"] = time.Now()

	err = r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("story_id = ? AND user_id = ?", id, userID).
		Updates(changes).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return nil, models.NewInternalError(err)
	}
	r.log.LogWrite(ctx, "update", map[string]any{"story_id": id})
	return r.GetByID(ctx, userID, id)
}

func (r *storyRepository) Delete(ctx context.Context, userID string, id uint) error {
	res := r.db.WithContext(ctx).
		Where("story_id = ? AND user_id = ?", id, userID).
		Delete(&models.Story{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Story", id)
	}
	r.log.LogWrite(ctx, "delete", map[string]any{"story_id": id})
	return nil
}

func (r *storyRepository) ToggleFavorite(ctx context.Context, userID string, id uint) (*models.Story, error) {
	story, err := r.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	flipped := !story.IsFavorite
	err = r.db.WithContext(ctx).
		Model(&models.Story{}).
		Where("story_id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_favorite": flipped, "updated_at": time.Now()}).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	story.IsFavorite = flipped
	return story, nil
}

func (r *storyRepository) Search(ctx context.Context, userID string, q SearchQuery) ([]models.Story, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if q.Text != "" {
		like := "%" + q.Text + "%"
		query = query.Where("title LIKE ? OR content LIKE ? OR prompt LIKE ?", like, like, like)
	}
	if q.Genre != "" {
		query = query.Where("genre = ?", q.Genre)
	}
	if q.FavoriteOnly {
		query = query.Where("is_favorite = ?", true)
	}

	var stories []models.Story
	if err := query.Order("created_at DESC").Limit(limit).Find(&stories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return stories, nil
}

func (r *storyRepository) Stats(ctx context.Context, userID string) (*UserStats, error) {
	stats := &UserStats{Genres: []GenreCount{}}

	type totalsRow struct {
		TotalStories  int64
		TotalWords    int64
		FavoriteCount int64
	}
	var totals totalsRow
	err := r.db.WithContext(ctx).
		Model(&models.Story{}).
		Select("COUNT(*) AS total_stories, COALESCE(SUM(word_count), 0) AS total_words, COALESCE(SUM(CASE WHEN is_favorite THEN 1 ELSE 0 END), 0) AS favorite_count").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	stats.TotalStories = totals.TotalStories
	stats.TotalWords = totals.TotalWords
	stats.FavoriteCount = totals.FavoriteCount
	if stats.TotalStories > 0 {
		stats.AverageWords = float64(stats.TotalWords) / float64(stats.TotalStories)
	}

	err = r.db.WithContext(ctx).
		Model(&models.Story{}).
		Select("genre, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("genre").
		Scan(&stats.Genres).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	stats.GenreCount = int64(len(stats.Genres))

	// Largest genres first, ties broken alphabetically for a stable response.
	sort.Slice(stats.Genres, func(i, j int) bool {
		if stats.Genres[i].Count != stats.Genres[j].Count {
			return stats.Genres[i].Count > stats.Genres[j].Count
		}
		return stats.Genres[i].Genre < stats.Genres[j].Genre
	})

	return stats, nil
}
