package service

import (
	"context"
	"errors"
	"time"

	"storyforge/internal/credstore"
	"storyforge/internal/models"
	"storyforge/internal/repository"
	"storyforge/internal/session"
	"storyforge/internal/validation"

	"github.com/golang-jwt/jwt/v5"
)

// AuthService coordinates the credential store, the session registry, and the
// user profile table.
type AuthService struct {
	creds     *credstore.Store
	sessions  *session.Manager
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// SignupInput carries new account details.
type SignupInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Token     string
	SessionID string
	User      *models.User
}

// NewAuthService wires the authentication dependencies together.
func NewAuthService(creds *credstore.Store, sessions *session.Manager, userRepo repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		creds:     creds,
		sessions:  sessions,
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  24 * time.Hour,
	}
}

// Signup validates the input, registers the credentials, and creates the
// profile row. It does not log the user in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if in.DisplayName == "" {
		in.DisplayName = in.Email
	}
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	summary, err := s.creds.Register(in.Email, in.Password, in.DisplayName)
	if err != nil {
		if errors.Is(err, credstore.ErrAlreadyExists) {
			return nil, models.NewConflictError("An account with this email already exists")
		}
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ID:          summary.UserID,
		Email:       summary.Email,
		DisplayName: summary.DisplayName,
		LastLogin:   time.Now(),
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates against the credential store, opens a session, and
// mints a JWT carrying the session ID.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	summary, err := s.creds.Authenticate(email, password)
	if err != nil {
		if errors.Is(err, credstore.ErrInvalidCredentials) {
			return nil, models.NewUnauthorizedError("Invalid email or password")
		}
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ID:          summary.UserID,
		Email:       summary.Email,
		DisplayName: summary.DisplayName,
		LastLogin:   time.Now(),
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, err
	}

	sid, err := s.sessions.Issue(ctx, session.Identity{
		UserID:      summary.UserID,
		Email:       summary.Email,
		DisplayName: summary.DisplayName,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	token, err := s.mintToken(summary.UserID, sid)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &LoginResult{Token: token, SessionID: sid, User: user}, nil
}

// Logout revokes the session. The JWT becomes useless immediately.
func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	s.sessions.Revoke(ctx, sessionID)
}

// CurrentUser loads the profile for an authenticated user ID.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) mintToken(userID, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"sid": sessionID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
