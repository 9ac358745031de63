// Package models contains data structures for the application's domain models.
package models

import "time"

// User represents an account that owns stories. The ID is a random UUID
// assigned at registration; it is never derived from the email address.
type User struct {
	ID          string    `gorm:"primaryKey;size:36" json:"user_id"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLogin   time.Time `json:"last_login"`
	Stories     []Story   `gorm:"foreignKey:UserID" json:"stories,omitempty"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
