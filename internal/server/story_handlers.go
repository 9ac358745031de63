package server

import (
	"fmt"

	"storyforge/internal/models"
	"storyforge/internal/repository"
	"storyforge/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GenerateStory handles POST /api/stories/generate. It runs the generation
// chain and saves the result in one step.
func (s *Server) GenerateStory(c *fiber.Ctx) error {
	var req struct {
		Title      string         `json:"title"`
		Prompt     string         `json:"prompt"`
		Genre      string         `json:"genre"`
		Creativity float64        `json:"creativity"`
		WordCount  int            `json:"word_count"`
		Tags       models.TagList `json:"tags"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.storyService.Generate(c.Context(), service.GenerateInput{
		UserID:      currentUserID(c),
		Title:       req.Title,
		Prompt:      req.Prompt,
		Genre:       req.Genre,
		Creativity:  req.Creativity,
		TargetWords: req.WordCount,
		Tags:        req.Tags,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"story": story,
	})
}

// GetStories handles GET /api/stories
func (s *Server) GetStories(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	stories, err := s.storyService.List(c.Context(), currentUserID(c), p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	if stories == nil {
		stories = []models.Story{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"stories": stories,
		"count":   len(stories),
	})
}

// SearchStories handles GET /api/stories/search
func (s *Server) SearchStories(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	query := repository.SearchQuery{
		Text:         c.Query("q"),
		Genre:        c.Query("genre"),
		FavoriteOnly: c.QueryBool("favorite", false),
		Limit:        p.Limit,
	}

	stories, err := s.storyService.Search(c.Context(), currentUserID(c), query)
	if err != nil {
		return respondServiceError(c, err)
	}
	if stories == nil {
		stories = []models.Story{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"stories": stories,
		"count":   len(stories),
	})
}

// GetStats handles GET /api/stories/stats
func (s *Server) GetStats(c *fiber.Ctx) error {
	stats, err := s.storyService.Stats(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(stats)
}

// GetStory handles GET /api/stories/:id
func (s *Server) GetStory(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	story, err := s.storyService.Get(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"story": story,
	})
}

// UpdateStory handles PUT /api/stories/:id. Only fields present in the body
// are touched.
func (s *Server) UpdateStory(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title      *string         `json:"title"`
		Content    *string         `json:"content"`
		Genre      *string         `json:"genre"`
		Tags       *models.TagList `json:"tags"`
		IsFavorite *bool           `json:"is_favorite"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	story, err := s.storyService.Update(c.Context(), currentUserID(c), id, service.UpdateInput{
		Title:      req.Title,
		Content:    req.Content,
		Genre:      req.Genre,
		Tags:       req.Tags,
		IsFavorite: req.IsFavorite,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"story": story,
	})
}

// DeleteStory handles DELETE /api/stories/:id
func (s *Server) DeleteStory(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	if err := s.storyService.Delete(c.Context(), currentUserID(c), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Story deleted",
	})
}

// ToggleFavorite handles POST /api/stories/:id/favorite
func (s *Server) ToggleFavorite(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	story, err := s.storyService.ToggleFavorite(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"story": story,
	})
}

// DownloadStory handles GET /api/stories/:id/download, serving the story as
// a markdown attachment.
func (s *Server) DownloadStory(c *fiber.Ctx) error {
	id, err := s.parseID(c)
	if err != nil {
		return nil
	}

	export, err := s.storyService.ExportMarkdown(c.Context(), currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename))
	return c.Status(fiber.StatusOK).Send(export.Body)
}
