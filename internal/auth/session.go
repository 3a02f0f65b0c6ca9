package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/iliyamo/client-portal/internal/model"
	"github.com/iliyamo/client-portal/internal/repository"
)

// DefaultSessionTTL is one week.
const DefaultSessionTTL = 7 * 24 * time.Hour

// ErrInvalidSession is returned for unknown, expired and revoked
// tokens alike; callers must not be able to tell these apart.
var ErrInvalidSession = errors.New("invalid session")

// SessionManager issues and validates opaque session tokens. Only the
// SHA-256 digest of a token is persisted; the raw value exists solely
// in the client's hands.
type SessionManager struct {
	store repository.Store
	ttl   time.Duration
}

// NewSessionManager binds a manager to a store. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewSessionManager(store repository.Store, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{store: store, ttl: ttl}
}

// HashToken returns the hex SHA-256 digest of a raw session token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// newToken generates 32 random bytes as a 64-char hex string.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Issue creates a session for userID and returns the raw token, the
// caller's sole proof of identity on subsequent requests.
func (m *SessionManager) Issue(ctx context.Context, userID uint64) (string, error) {
	raw, err := newToken()
	if err != nil {
		return "", err
	}
	sess := &model.Session{
		UserID:    userID,
		TokenHash: HashToken(raw),
		ExpiresAt: time.Now().UTC().Add(m.ttl),
	}
	if err := m.store.CreateSession(ctx, sess); err != nil {
		return "", err
	}
	return raw, nil
}

// Resolve maps a raw token to its user record. Expired sessions are
// lazily deleted on first touch; there is no background sweeper.
func (m *SessionManager) Resolve(ctx context.Context, raw string) (*model.User, error) {
	if raw == "" {
		return nil, ErrInvalidSession
	}
	hash := HashToken(raw)
	sess, err := m.store.GetSessionByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		_ = m.store.DeleteSessionByTokenHash(ctx, hash)
		return nil, ErrInvalidSession
	}
	u, err := m.store.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// User was deleted out from under the session.
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return u, nil
}

// Revoke removes the durable session record immediately. Revoking an
// unknown token is not an error.
func (m *SessionManager) Revoke(ctx context.Context, raw string) error {
	err := m.store.DeleteSessionByTokenHash(ctx, HashToken(raw))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}
