package service

import (
	"context"
	"fmt"
	"strings"

	"storyforge/internal/models"
	"storyforge/internal/repository"
	"storyforge/internal/synth"
)

// StoryService orchestrates story generation and the story library.
type StoryService struct {
	storyRepo repository.StoryRepository
	synth     *synth.Synthesizer
}

// GenerateInput carries everything needed to generate and save a story.
type GenerateInput struct {
	UserID      string
	Title       string
	Prompt      string
	Genre       string
	Creativity  float64
	TargetWords int
	Tags        models.TagList
}

// UpdateInput mirrors repository.StoryUpdate at the transport boundary.
type UpdateInput struct {
	Title      *string
	Content    *string
	Genre      *string
	Tags       *models.TagList
	IsFavorite *bool
}

// Export is a story rendered for download.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// NewStoryService returns a StoryService over the given repository and
// generation chain.
func NewStoryService(storyRepo repository.StoryRepository, s *synth.Synthesizer) *StoryService {
	return &StoryService{storyRepo: storyRepo, synth: s}
}

// Generate runs the tier chain for the prompt and persists the result as a
// new story owned by the caller.
func (s *StoryService) Generate(ctx context.Context, in GenerateInput) (*models.Story, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Prompt = strings.TrimSpace(in.Prompt)

	if in.Title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Prompt == "" {
		return nil, models.NewValidationError("Prompt is required")
	}
	if !models.ValidGenre(in.Genre) {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown genre %q", in.Genre))
	}

	// Clamp up front so the saved row records the values actually used.
	req := synth.Clamp(synth.Request{
		Prompt:      in.Prompt,
		Genre:       in.Genre,
		Creativity:  in.Creativity,
		TargetWords: in.TargetWords,
	})
	content := s.synth.Generate(ctx, req)
	if content == "" {
		return nil, models.NewInternalError(fmt.Errorf("generation produced no text"))
	}

	story := &models.Story{
		UserID:     in.UserID,
		Title:      in.Title,
		Prompt:     in.Prompt,
		Content:    content,
		Genre:      in.Genre,
		Creativity: req.Creativity,
		Tags:       in.Tags,
	}
	if err := s.storyRepo.Create(ctx, story); err != nil {
		return nil, err
	}
	return story, nil
}

// List returns the caller's stories, newest first.
func (s *StoryService) List(ctx context.Context, userID string, limit, offset int) ([]models.Story, error) {
	return s.storyRepo.List(ctx, userID, limit, offset)
}

// Get returns one of the caller's stories.
func (s *StoryService) Get(ctx context.Context, userID string, id uint) (*models.Story, error) {
	return s.storyRepo.GetByID(ctx, userID, id)
}

// Update applies a partial edit to one of the caller's stories.
func (s *StoryService) Update(ctx context.Context, userID string, id uint, in UpdateInput) (*models.Story, error) {
	if in.Genre != nil && !models.ValidGenre(*in.Genre) {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown genre %q", *in.Genre))
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, models.NewValidationError("Content cannot be empty")
	}
	return s.storyRepo.Update(ctx, userID, id, repository.StoryUpdate{
		Title:      in.Title,
		Content:    in.Content,
		Genre:      in.Genre,
		Tags:       in.Tags,
		IsFavorite: in.IsFavorite,
	})
}

// Delete removes one of the caller's stories.
func (s *StoryService) Delete(ctx context.Context, userID string, id uint) error {
	return s.storyRepo.Delete(ctx, userID, id)
}

// ToggleFavorite flips the favorite flag and returns the updated story.
func (s *StoryService) ToggleFavorite(ctx context.Context, userID string, id uint) (*models.Story, error) {
	return s.storyRepo.ToggleFavorite(ctx, userID, id)
}

// Search filters the caller's library by text, genre, and favorite status.
func (s *StoryService) Search(ctx context.Context, userID string, q repository.SearchQuery) ([]models.Story, error) {
	if q.Genre != "" && !models.ValidGenre(q.Genre) {
		return nil, models.NewValidationError(fmt.Sprintf("Unknown genre %q", q.Genre))
	}
	return s.storyRepo.Search(ctx, userID, q)
}

// Stats aggregates the caller's library.
func (s *StoryService) Stats(ctx context.Context, userID string) (*repository.UserStats, error) {
	return s.storyRepo.Stats(ctx, userID)
}

// ExportMarkdown renders one of the caller's stories as a downloadable
// markdown document.
func (s *StoryService) ExportMarkdown(ctx context.Context, userID string, id uint) (*Export, error) {
	story, err := s.storyRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", story.Title)
	fmt.Fprintf(&sb, "**Genre:** %s  \n", story.Genre)
	fmt.Fprintf(&sb, "**Prompt:** %s  \n", story.Prompt)
	fmt.Fprintf(&sb, "**Words:** %d  \n", story.WordCount)
	fmt.Fprintf(&sb, "**Created:** %s\n\n", story.CreatedAt.Format("2006-01-02"))
	if len(story.Tags) > 0 {
		fmt.Fprintf(&sb, "**Tags:** %s\n\n", strings.Join(story.Tags, ", "))
	}
	sb.WriteString("---\n\n")
	sb.WriteString(story.Content)
	sb.WriteString("\n")

	return &Export{
		Filename:    story.ExportFilename(),
		ContentType: "text/markdown; charset=utf-8",
		Body:        []byte(sb.String()),
	}, nil
}
