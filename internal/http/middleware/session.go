// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file binds the browsing-session cookie to server-side session rows.
// The public page runs in create mode and issues a cookie on first visit;
// the like routes run in load mode and only resolve an existing session, so
// a client that never loaded the page cannot like anything.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/services"
)

// DefaultSessionCookie is the cookie carrying the session token.
const DefaultSessionCookie = "ministry_session"

const ctxKeySession = "session"

// SessionStore is the subset of services.SessionService the middleware needs.
type SessionStore interface {
	Lookup(ctx context.Context, token string) (*domain.Session, error)
	Ensure(ctx context.Context, token string) (*domain.Session, bool, error)
}

// SessionOptions configures Session.
type SessionOptions struct {
	CookieName string        // defaults to DefaultSessionCookie
	TTL        time.Duration // cookie Max-Age; defaults to services.DefaultSessionTTL
	Secure     bool
	Create     bool // issue a session when the request has none
}

// Session resolves the session cookie and stores the session for SessionFrom.
//
// In load mode a missing, unknown or expired token leaves the request without
// a session. Store failures other than services.ErrNoSession abort with 500.
func Session(store SessionStore, opts SessionOptions) gin.HandlerFunc {
	name := opts.CookieName
	if name == "" {
		name = DefaultSessionCookie
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = services.DefaultSessionTTL
	}

	return func(c *gin.Context) {
		token, _ := c.Cookie(name)
		ctx := c.Request.Context()

		var (
			sess    *domain.Session
			created bool
			err     error
		)
		if opts.Create {
			sess, created, err = store.Ensure(ctx, token)
		} else {
			sess, err = store.Lookup(ctx, token)
			if errors.Is(err, services.ErrNoSession) {
				sess, err = nil, nil
			}
		}
		if err != nil {
			LoggerFrom(c).Error().Err(err).Msg("session lookup failed")
			rid, _ := c.Get(requestIDKey)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": asString(rid),
				"code":       "internal_error",
				"message":    "internal server error",
			})
			return
		}

		if sess != nil {
			c.Set(ctxKeySession, sess)
			if created {
				c.SetSameSite(http.SameSiteLaxMode)
				c.SetCookie(name, sess.Token, int(ttl.Seconds()), "/", "", opts.Secure, true)
			}
		}
		c.Next()
	}
}

// SessionFrom returns the session resolved by Session, if any.
func SessionFrom(c *gin.Context) (*domain.Session, bool) {
	v, ok := c.Get(ctxKeySession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*domain.Session)
	return s, ok && s != nil
}
