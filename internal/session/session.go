// Package session implements the login flow. It is a display-name
// placeholder, not a security boundary: any name logs in. Tokens are
// random, shown once, and stored only as a bcrypt hash keyed by their
// prefix, so session durability lives in Redis instead of browser storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agroscan/agroscan/internal/cache"
	"github.com/agroscan/agroscan/pkg/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenPrefixLen = 13 // "sess_" + 8 chars

var ErrInvalidSession = errors.New("invalid or expired session")

// Manager issues, validates, and revokes sessions.
type Manager struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewManager creates a Manager. Sessions expire after ttl.
func NewManager(c cache.Cache, ttl time.Duration) *Manager {
	return &Manager{cache: c, ttl: ttl}
}

// Login issues a new session for the given display name and returns the
// raw token. The raw token is never stored.
func (m *Manager) Login(ctx context.Context, userName string) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", fmt.Errorf("user name is required")
	}

	token := "sess_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash token: %w", err)
	}

	stored := storedSession{
		TokenPrefix: token[:tokenPrefixLen],
		TokenHash:   string(hash),
		UserName:    userName,
		CreatedAt:   time.Now().UTC(),
	}

	blob, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}

	if err := m.cache.Set(ctx, cache.SessionKey(stored.TokenPrefix), blob, m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// storedSession is the Redis representation; the hash never leaves the
// package in API responses.
type storedSession struct {
	TokenPrefix string    `json:"token_prefix"`
	TokenHash   string    `json:"token_hash"`
	UserName    string    `json:"user_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Authenticate resolves a raw token to its session, or ErrInvalidSession.
func (m *Manager) Authenticate(ctx context.Context, rawToken string) (*models.Session, error) {
	if len(rawToken) < tokenPrefixLen {
		return nil, ErrInvalidSession
	}
	prefix := rawToken[:tokenPrefixLen]

	blob, ok, err := m.cache.Get(ctx, cache.SessionKey(prefix))
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil, ErrInvalidSession
	}

	var stored storedSession
	if err := json.Unmarshal(blob, &stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(stored.TokenHash), []byte(rawToken)) != nil {
		return nil, ErrInvalidSession
	}

	return &models.Session{
		TokenPrefix: stored.TokenPrefix,
		TokenHash:   stored.TokenHash,
		UserName:    stored.UserName,
		CreatedAt:   stored.CreatedAt,
	}, nil
}

// Logout revokes a session. Revoking an unknown token is not an error.
// Stored inspections are untouched; logout only ends the view session.
func (m *Manager) Logout(ctx context.Context, rawToken string) error {
	if len(rawToken) < tokenPrefixLen {
		return nil
	}
	return m.cache.Delete(ctx, cache.SessionKey(rawToken[:tokenPrefixLen]))
}
