package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"storyforge/internal/credstore"
	"storyforge/internal/models"
	"storyforge/internal/repository"
	"storyforge/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key"

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn        func(context.Context, string) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	upsertFn         func(context.Context, *models.User) error
	touchLastLoginFn func(context.Context, string) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Upsert(ctx context.Context, user *models.User) error {
	return s.upsertFn(ctx, user)
}
func (s *userRepoStub) TouchLastLogin(ctx context.Context, id string) error {
	return s.touchLastLoginFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:        func(_ context.Context, id string) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		upsertFn:         func(_ context.Context, _ *models.User) error { return nil },
		touchLastLoginFn: func(_ context.Context, _ string) error { return nil },
	}
}

var _ repository.UserRepository = (*userRepoStub)(nil)

func newAuthService(t *testing.T) (*AuthService, *session.Manager) {
	t.Helper()
	creds, err := credstore.Open(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)

	sessions := session.NewManager(nil)
	return NewAuthService(creds, sessions, noopUserRepo(), testJWTSecret), sessions
}

func TestAuthService_Signup(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, SignupInput{
		Email:       "reader@example.com",
		Password:    "secret12",
		DisplayName: "Reader",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, "Reader", user.DisplayName)

	// Same email again is a conflict.
	_, err = svc.Signup(ctx, SignupInput{
		Email:    "reader@example.com",
		Password: "another1",
	})
	assert.True(t, models.IsCode(err, "ALREADY_EXISTS"))
}

func TestAuthService_SignupValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input SignupInput
	}{
		{"Bad Email", SignupInput{Email: "not-an-email", Password: "secret12"}},
		{"Short Password", SignupInput{Email: "a@b.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.input)
			assert.True(t, models.IsCode(err, "VALIDATION_ERROR"))
		})
	}
}

func TestAuthService_SignupDefaultsDisplayName(t *testing.T) {
	svc, _ := newAuthService(t)

	user, err := svc.Signup(context.Background(), SignupInput{
		Email:    "plain@example.com",
		Password: "secret12",
	})
	require.NoError(t, err)
	assert.Equal(t, "plain@example.com", user.DisplayName)
}

func TestAuthService_LoginIssuesSessionBackedToken(t *testing.T) {
	svc, sessions := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{
		Email:       "reader@example.com",
		Password:    "secret12",
		DisplayName: "Reader",
	})
	require.NoError(t, err)

	result, err := svc.Login(ctx, "reader@example.com", "secret12")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.SessionID)

	// The JWT verifies under the configured secret and points at the session.
	token, err := jwt.Parse(result.Token, func(_ *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, result.SessionID, claims["sid"])
	assert.Equal(t, result.User.ID, claims["sub"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))

	// The session registry recognizes the session.
	ident, ok := sessions.Get(ctx, result.SessionID)
	require.True(t, ok)
	assert.Equal(t, "reader@example.com", ident.Email)
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "reader@example.com", Password: "secret12"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "reader@example.com", "wrong-password")
	assert.True(t, models.IsCode(err, "UNAUTHORIZED"))

	_, err = svc.Login(ctx, "unknown@example.com", "secret12")
	assert.True(t, models.IsCode(err, "UNAUTHORIZED"))
}

func TestAuthService_LogoutRevokesSession(t *testing.T) {
	svc, sessions := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Email: "reader@example.com", Password: "secret12"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, "reader@example.com", "secret12")
	require.NoError(t, err)
	require.True(t, sessions.IsAuthenticated(ctx, result.SessionID))

	svc.Logout(ctx, result.SessionID)
	assert.False(t, sessions.IsAuthenticated(ctx, result.SessionID))

	// Logging out twice is harmless.
	svc.Logout(ctx, result.SessionID)
}
