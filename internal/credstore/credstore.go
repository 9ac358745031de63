// Package credstore persists user credentials in a flat JSON file keyed by
// email. The whole file is rewritten on every mutation, which is fine for the
// low write volume this app sees; a transactional store would replace it at
// scale.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrAlreadyExists is returned when registering an email that is taken.
	ErrAlreadyExists = errors.New("email already registered")
	// ErrInvalidCredentials is returned when the email is unknown or the
	// password does not match. Callers cannot tell which.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Record is one stored credential entry.
type Record struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	DisplayName  string    `json:"display_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the identity handed back to callers after a successful
// authentication or lookup. It never contains the password hash.
type UserSummary struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Store is a flat-file credential store.
type Store struct {
	path string

	mu    sync.Mutex
	users map[string]Record
}

// Open loads (or creates) the credential file at path.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		users: make(map[string]Record),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.flush()
	}
	if err != nil {
		return fmt.Errorf("read users file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &s.users); err != nil {
		return fmt.Errorf("parse users file %s: %w", s.path, err)
	}
	return nil
}

// flush rewrites the entire file. Writes go through a temp file followed by
// a rename so a crash mid-write cannot leave a truncated store.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.users, "", "  ")
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil && filepath.Dir(s.path) != "." {
		return fmt.Errorf("create users dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return nil
}

// Register creates a new credential record and persists it immediately.
// The user ID is a random UUID, not derived from the email.
func (s *Store) Register(email, password, displayName string) (*UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	rec := Record{
		UserID:       uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[email] = rec

	if err := s.flush(); err != nil {
		// Keep the in-memory map consistent with what is on disk.
		delete(s.users, email)
		return nil, err
	}

	return &UserSummary{
		UserID:      rec.UserID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
	}, nil
}

// Authenticate checks the email/password pair against the stored hash.
func (s *Store) Authenticate(email, password string) (*UserSummary, error) {
	s.mu.Lock()
	rec, exists := s.users[email]
	s.mu.Unlock()

	if !exists {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &UserSummary{
		UserID:      rec.UserID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
	}, nil
}

// Lookup returns the summary for an email, or nil when unknown.
func (s *Store) Lookup(email string) *UserSummary {
	s.mu.Lock()
	rec, exists := s.users[email]
	s.mu.Unlock()

	if !exists {
		return nil
	}
	return &UserSummary{
		UserID:      rec.UserID,
		Email:       rec.Email,
		DisplayName: rec.DisplayName,
	}
}
