package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Genres is the fixed set of story genres accepted by the API.
var Genres = []string{
	"Fantasy", "Sci-Fi", "Mystery", "Romance", "Horror",
	"Adventure", "Comedy", "Drama", "Thriller",
}

// ValidGenre reports whether g is one of the supported genres.
func ValidGenre(g string) bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}

// TagList is an ordered list of story tags. It is stored as a JSON array
// inside a text column; callers only ever see the []string form.
type TagList []string

// Value implements driver.Valuer, encoding the list for storage.
func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner, decoding the stored JSON form.
// Unparseable or empty values scan as an empty list rather than an error,
// matching how the rest of the app treats missing tags.
func (t *TagList) Scan(src any) error {
	*t = nil
	if src == nil {
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("decode tags: unsupported type %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	*t = tags
	return nil
}

// Story represents a generated story owned by a single user.
type Story struct {
	ID         uint      `gorm:"primaryKey;column:story_id" json:"story_id"`
	UserID     string    `gorm:"size:36;not null;index:idx_user_stories,priority:1;index:idx_story_favorite,priority:1" json:"user_id"`
	Title      string    `gorm:"not null" json:"title"`
	Prompt     string    `gorm:"type:text;not null" json:"prompt"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Genre      string    `gorm:"index:idx_story_genre" json:"genre"`
	Creativity float64   `json:"creativity"`
	WordCount  int       `json:"word_count"`
	CreatedAt  time.Time `gorm:"index:idx_user_stories,priority:2" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	IsFavorite bool      `gorm:"default:false;index:idx_story_favorite,priority:2" json:"is_favorite"`
	Tags       TagList   `gorm:"type:text" json:"tags"`
}

// TableName specifies the table name for GORM.
func (Story) TableName() string {
	return "stories"
}

// CountWords returns the number of whitespace-delimited tokens in s.
// It is the single definition of "word count" used across the app.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// ExportFilename converts a story title into a filesystem-safe markdown
// filename, replacing spaces with underscores.
func (s *Story) ExportFilename() string {
	return strings.ReplaceAll(s.Title, " ", "_") + ".md"
}
