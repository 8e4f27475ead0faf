// Package services – SessionService
//
// Browsing sessions are server-side rows keyed by an opaque token held in a
// cookie. Each session owns a viewer id that feeds the like fingerprint; the
// viewer id is fixed for the life of the session. Expired sessions are
// discarded lazily when they are looked up.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/repo"
)

// DefaultSessionTTL is used when SessionService.TTL is not positive.
const DefaultSessionTTL = 14 * 24 * time.Hour

// SessionService creates and resolves browsing sessions.
type SessionService struct {
	DB  *gorm.DB
	TTL time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewSessionService constructs a SessionService.
func NewSessionService(db *gorm.DB, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{DB: db, TTL: ttl, Now: time.Now}
}

func (s *SessionService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// Lookup returns the live session for token. Missing, blank or expired
// tokens yield ErrNoSession; expired rows are deleted on the way out.
func (s *SessionService) Lookup(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrNoSession
	}
	sess, err := repo.GetSession(ctx, s.DB, token)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	if sess.Expired(s.now()) {
		if err := repo.DeleteSession(ctx, s.DB, token); err != nil {
			return nil, err
		}
		return nil, ErrNoSession
	}
	return sess, nil
}

// Ensure returns the live session for token, creating a fresh one when the
// token is unknown or expired. created reports whether a new session (and
// therefore a new token) was issued.
func (s *SessionService) Ensure(ctx context.Context, token string) (sess *domain.Session, created bool, err error) {
	sess, err = s.Lookup(ctx, token)
	if err == nil {
		return sess, false, nil
	}
	if !errors.Is(err, ErrNoSession) {
		return nil, false, err
	}

	now := s.now()
	sess = &domain.Session{
		Token:     uuid.NewString(),
		ViewerID:  uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := repo.CreateSession(ctx, s.DB, sess); err != nil {
		return nil, false, err
	}
	return sess, true, nil
}

// Purge deletes every expired session and returns how many were removed.
func (s *SessionService) Purge(ctx context.Context) (int64, error) {
	return repo.DeleteExpiredSessions(ctx, s.DB, s.now())
}
