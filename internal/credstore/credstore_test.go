package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.json")
	store, err := Open(path)
	require.NoError(t, err)
	return store, path
}

func TestRegisterAndAuthenticate(t *testing.T) {
	store, _ := openTestStore(t)

	summary, err := store.Register("reader@example.com", "secret12", "Reader")
	require.NoError(t, err)
	assert.NotEmpty(t, summary.UserID)
	assert.Equal(t, "reader@example.com", summary.Email)
	assert.Equal(t, "Reader", summary.DisplayName)

	got, err := store.Authenticate("reader@example.com", "secret12")
	require.NoError(t, err)
	assert.Equal(t, summary.UserID, got.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store, _ := openTestStore(t)

	original, err := store.Register("reader@example.com", "secret12", "Reader")
	require.NoError(t, err)

	_, err = store.Register("reader@example.com", "different", "Other")
	assert.True(t, errors.Is(err, ErrAlreadyExists))

	// The failed attempt must not touch the stored record: the original
	// password still authenticates and the identity is unchanged.
	got, err := store.Authenticate("reader@example.com", "secret12")
	require.NoError(t, err)
	assert.Equal(t, original.UserID, got.UserID)
	assert.Equal(t, "Reader", got.DisplayName)

	_, err = store.Authenticate("reader@example.com", "different")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestAuthenticateFailures(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.Register("reader@example.com", "secret12", "Reader")
	require.NoError(t, err)

	// Wrong password and unknown email fail identically.
	_, err = store.Authenticate("reader@example.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = store.Authenticate("nobody@example.com", "secret12")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestUserIDsAreRandom(t *testing.T) {
	store, _ := openTestStore(t)

	a, err := store.Register("a@example.com", "secret12", "A")
	require.NoError(t, err)
	b, err := store.Register("b@example.com", "secret12", "B")
	require.NoError(t, err)

	assert.NotEqual(t, a.UserID, b.UserID)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	store, path := openTestStore(t)

	summary, err := store.Register("reader@example.com", "secret12", "Reader")
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)

	got, err := reopened.Authenticate("reader@example.com", "secret12")
	require.NoError(t, err)
	assert.Equal(t, summary.UserID, got.UserID)
}

func TestStoredFileNeverHoldsPlaintext(t *testing.T) {
	store, path := openTestStore(t)

	_, err := store.Register("reader@example.com", "super-secret-password", "Reader")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-password")

	// The file is a plain JSON document.
	var decoded map[string]Record
	assert.NoError(t, json.Unmarshal(raw, &decoded))
}

func TestLookup(t *testing.T) {
	store, _ := openTestStore(t)

	_, err := store.Register("reader@example.com", "secret12", "Reader")
	require.NoError(t, err)

	assert.NotNil(t, store.Lookup("reader@example.com"))
	assert.Nil(t, store.Lookup("nobody@example.com"))
}
