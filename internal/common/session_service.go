package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"buddhist-lent/pledgeboard/internal/constants"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionData is the server-side half of a cookie session.
type SessionData struct {
	SessionID string    `json:"session_id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService manages user sessions in the cache backend.
type SessionService struct {
	cache CacheInterface
	ttl   time.Duration
}

func NewSessionService(cache CacheInterface, ttl time.Duration) *SessionService {
	return &SessionService{cache: cache, ttl: ttl}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func sessionKey(id string) string {
	return string(constants.CachePrefixSession) + id
}

// CreateSession stores a new session and returns it.
func (s *SessionService) CreateSession(ctx context.Context, userID uint, name string) (*SessionData, error) {
	now := time.Now()
	session := &SessionData{
		SessionID: uuid.New().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession retrieves a live session. Expired sessions are removed.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*SessionData, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}
	raw, found := s.cache.Get(ctx, sessionKey(sessionID))
	if !found {
		return nil, ErrSessionNotFound
	}

	var session SessionData
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		s.DeleteSession(ctx, sessionID)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) {
	s.cache.Delete(ctx, sessionKey(sessionID))
}

// RefreshSession slides the expiry of an active session. It writes only once
// less than half the TTL remains and reports whether it did, so callers know
// when to reissue the cookie.
func (s *SessionService) RefreshSession(ctx context.Context, session *SessionData) (bool, error) {
	now := time.Now()
	if session.ExpiresAt.Sub(now) > s.ttl/2 {
		return false, nil
	}
	session.ExpiresAt = now.Add(s.ttl)
	if err := s.store(ctx, session); err != nil {
		return false, err
	}
	return true, nil
}

// SessionCookie builds the cookie carrying a session id. An empty value with
// a zero expiry clears it.
func SessionCookie(name, value string, expires time.Time, secure bool) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.Expires = time.Time{}
		c.MaxAge = -1
	}
	return c
}

func (s *SessionService) store(ctx context.Context, session *SessionData) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	s.cache.Set(ctx, sessionKey(session.SessionID), data, time.Until(session.ExpiresAt))
	return nil
}
