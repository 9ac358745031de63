package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"storyforge/internal/config"
	"storyforge/internal/credstore"
	"storyforge/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer wires a complete server over an in-memory database and a
// throwaway credential file.
func newTestServer(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Story{}))

	creds, err := credstore.Open(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)

	cfg := &config.Config{
		Port:      "0",
		JWTSecret: "integration-test-secret",
		DBDriver:  "sqlite",
		DBPath:    ":memory:",
		UsersFile: "unused",
		Env:       "test",
	}

	s, err := NewServerWithDeps(cfg, db, nil, creds)
	require.NoError(t, err)

	app := fiber.New()
	s.SetupRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body map[string]any, token string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestAuthFlow(t *testing.T) {
	app := newTestServer(t)

	// Signup
	resp := postJSON(t, app, "/api/auth/signup", map[string]any{
		"email":        "reader@example.com",
		"password":     "secret12",
		"display_name": "Reader",
	}, "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Mismatched confirmation is rejected before the credential store
	resp = postJSON(t, app, "/api/auth/signup", map[string]any{
		"email":            "other@example.com",
		"password":         "secret12",
		"confirm_password": "secret13",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Duplicate signup conflicts
	resp = postJSON(t, app, "/api/auth/signup", map[string]any{
		"email":    "reader@example.com",
		"password": "secret12",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong password is rejected
	resp = postJSON(t, app, "/api/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Login
	resp = postJSON(t, app, "/api/auth/login", map[string]any{
		"email":    "reader@example.com",
		"password": "secret12",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)
	assert.NotEmpty(t, login.User.ID)

	// Authenticated profile lookup
	resp = getJSON(t, app, "/api/auth/me", login.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// No token, no access
	resp = getJSON(t, app, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Logout revokes the session behind the still-valid JWT
	resp = postJSON(t, app, "/api/auth/logout", nil, login.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = getJSON(t, app, "/api/auth/me", login.Token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestStoryFlow(t *testing.T) {
	app := newTestServer(t)

	resp := postJSON(t, app, "/api/auth/signup", map[string]any{
		"email":    "writer@example.com",
		"password": "secret12",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, app, "/api/auth/login", map[string]any{
		"email":    "writer@example.com",
		"password": "secret12",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))

	// Generate a story; with no inference token configured the deterministic
	// template tier produces the text.
	resp = postJSON(t, app, "/api/stories/generate", map[string]any{
		"title":      "Robot Dreams",
		"prompt":     "a robot who discovers emotions",
		"genre":      "Sci-Fi",
		"creativity": 0.7,
		"word_count": 300,
		"tags":       []string{"robots", "emotions"},
	}, login.Token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Story models.Story `json:"story"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.NotZero(t, created.Story.ID)
	assert.NotEmpty(t, created.Story.Content)
	assert.LessOrEqual(t, created.Story.WordCount, 300)
	assert.Equal(t, models.TagList{"robots", "emotions"}, created.Story.Tags)

	// The story shows up in the library
	resp = getJSON(t, app, "/api/stories", login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listing struct {
		Stories []models.Story `json:"stories"`
		Count   int            `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	assert.Equal(t, 1, listing.Count)

	// Stats reflect it
	resp = getJSON(t, app, "/api/stories/stats", login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Download carries the markdown attachment headers
	resp = getJSON(t, app, "/api/stories/1/download", login.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "Robot_Dreams.md")

	// Anonymous callers cannot touch the library
	resp = getJSON(t, app, "/api/stories", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
