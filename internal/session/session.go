// Package session tracks which users are currently authenticated. A session
// moves from Anonymous to Authenticated on login and back on logout; there is
// no expiry, so a session lives until it is explicitly revoked or the process
// (or Redis key space) goes away.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:%s"

// Identity is the authenticated user bound to a session.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Manager issues and validates session tokens. When a Redis client is
// provided the registry is shared across processes; otherwise sessions are
// held in an in-process map.
type Manager struct {
	rdb *redis.Client

	mu    sync.RWMutex
	local map[string]Identity
}

// NewManager creates a session manager. rdb may be nil.
func NewManager(rdb *redis.Client) *Manager {
	return &Manager{
		rdb:   rdb,
		local: make(map[string]Identity),
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf(keyPrefix, id)
}

// Issue registers a new authenticated session for the given identity and
// returns its opaque session ID.
func (m *Manager) Issue(ctx context.Context, ident Identity) (string, error) {
	id := uuid.NewString()

	if m.rdb != nil {
		payload, err := json.Marshal(ident)
		if err != nil {
			return "", fmt.Errorf("encode session: %w", err)
		}
		// Sessions have no modeled expiry; they live until logout.
		if err := m.rdb.Set(ctx, sessionKey(id), payload, 0).Err(); err != nil {
			return "", fmt.Errorf("store session: %w", err)
		}
		return id, nil
	}

	m.mu.Lock()
	m.local[id] = ident
	m.mu.Unlock()
	return id, nil
}

// Get returns the identity bound to the session ID, or false when the
// session is unknown or has been revoked.
func (m *Manager) Get(ctx context.Context, id string) (*Identity, bool) {
	if id == "" {
		return nil, false
	}

	if m.rdb != nil {
		payload, err := m.rdb.Get(ctx, sessionKey(id)).Result()
		if err != nil {
			return nil, false
		}
		var ident Identity
		if err := json.Unmarshal([]byte(payload), &ident); err != nil {
			return nil, false
		}
		return &ident, true
	}

	m.mu.RLock()
	ident, ok := m.local[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return &ident, true
}

// IsAuthenticated reports whether the session ID refers to a live session.
func (m *Manager) IsAuthenticated(ctx context.Context, id string) bool {
	_, ok := m.Get(ctx, id)
	return ok
}

// Revoke ends the session. Revoking an unknown session is a no-op.
func (m *Manager) Revoke(ctx context.Context, id string) {
	if id == "" {
		return
	}

	if m.rdb != nil {
		m.rdb.Del(ctx, sessionKey(id))
		return
	}

	m.mu.Lock()
	delete(m.local, id)
	m.mu.Unlock()
}
