// Package services – LikeService
//
// This file implements the like flow for scripture posts. A like is counted
// at most once per (post, visitor) where the visitor is the fingerprint of
// the request IP, user agent and session viewer id.
//
// Concurrency & atomicity:
//   - Likes on the same post are serialized in-process by a per-post mutex.
//   - Each attempt runs look-up, insert and increment in one transaction.
//   - The unique (post_id, fingerprint) index is the final arbiter across
//     processes; a conflict is re-checked once and then surfaced as
//     ErrLikeConflict. The counter is never bumped without a new row.
package services

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/fingerprint"
	"github.com/tbourn/go-ministry-site/internal/repo"
)

// RequestContext carries the request attributes that identify a visitor.
// SessionID is the session's viewer id, not the cookie token.
type RequestContext struct {
	IP        string
	UserAgent string
	SessionID string
}

// LikeResult reports the post's counter after a like attempt.
type LikeResult struct {
	PostID   uint
	Likes    int
	Accepted bool
}

// AlreadyLiked reports whether the visitor had liked the post before.
func (r LikeResult) AlreadyLiked() bool { return !r.Accepted }

// LikeService registers likes on scripture posts.
type LikeService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	// OnAccepted, when set, runs after a new like has been committed.
	OnAccepted func(postID uint)

	locks sync.Map // uint -> *sync.Mutex
}

// NewLikeService constructs a LikeService.
func NewLikeService(db *gorm.DB) *LikeService {
	return &LikeService{DB: db}
}

// RegisterLike counts a like on postID for the visitor described by rc.
//
// Errors:
//   - ErrMissingPostID when postID is zero.
//   - ErrNoSession when rc has no session id.
//   - ErrPostNotFound when the post is missing or inactive.
//   - ErrLikeConflict when a persistence conflict survives one retry.
func (s *LikeService) RegisterLike(ctx context.Context, postID uint, rc RequestContext) (LikeResult, error) {
	tr := otel.Tracer("services/LikeService")
	ctx, span := tr.Start(ctx, "RegisterLike",
		trace.WithAttributes(attribute.Int64("post.id", int64(postID))),
	)
	defer span.End()

	if postID == 0 {
		return LikeResult{}, ErrMissingPostID
	}
	if rc.SessionID == "" {
		return LikeResult{}, ErrNoSession
	}
	fp := fingerprint.Of(rc.IP, rc.UserAgent, rc.SessionID)

	mu := s.lockFor(postID)
	mu.Lock()
	defer mu.Unlock()

	res, err := s.attempt(ctx, postID, fp)
	if errors.Is(err, repo.ErrDuplicate) {
		span.AddEvent("like.retry")
		res, err = s.attempt(ctx, postID, fp)
		if errors.Is(err, repo.ErrDuplicate) {
			err = ErrLikeConflict
		}
	}
	if err != nil {
		if !errors.Is(err, ErrPostNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return LikeResult{}, err
	}

	span.SetAttributes(
		attribute.Bool("like.accepted", res.Accepted),
		attribute.Int("post.likes", res.Likes),
	)
	if res.Accepted && s.OnAccepted != nil {
		s.OnAccepted(postID)
	}
	return res, nil
}

// attempt runs one check-then-act pass inside a transaction. A concurrent
// writer that wins the unique index surfaces as repo.ErrDuplicate.
func (s *LikeService) attempt(ctx context.Context, postID uint, fp string) (LikeResult, error) {
	var out LikeResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := repo.GetActivePost(ctx, tx, postID)
		if err != nil {
			if isNotFound(err) {
				return ErrPostNotFound
			}
			return err
		}

		if _, err := repo.FindLike(ctx, tx, postID, fp); err == nil {
			out = LikeResult{PostID: postID, Likes: post.Likes, Accepted: false}
			return nil
		} else if !isNotFound(err) {
			return err
		}

		if _, err := repo.CreateLike(ctx, tx, postID, fp); err != nil {
			return err
		}
		likes, err := repo.IncrementLikes(ctx, tx, postID)
		if err != nil {
			if isNotFound(err) {
				return ErrPostNotFound
			}
			return err
		}
		out = LikeResult{PostID: postID, Likes: likes, Accepted: true}
		return nil
	})
	return out, err
}

func (s *LikeService) lockFor(postID uint) *sync.Mutex {
	if mu, ok := s.locks.Load(postID); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := s.locks.LoadOrStore(postID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// isNotFound treats repo-level not found sentinels as "not found" in a
// driver-agnostic way.
func isNotFound(err error) bool {
	return errors.Is(err, repo.ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
