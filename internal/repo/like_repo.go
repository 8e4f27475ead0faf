// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the repository functions behind the
// like flow: active-post lookup, like-record lookup/insert, and the atomic
// counter increment.
//
// Error semantics:
//   - A second like for the same (post_id, fingerprint) trips the unique
//     index and is returned as ErrDuplicate regardless of driver.
//   - Missing posts yield ErrNotFound.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/domain"
)

// ErrDuplicate indicates that a row violating a unique index already exists.
var ErrDuplicate = errors.New("duplicate")

// GetActivePost fetches a scripture post that is flagged active. Inactive or
// missing posts both yield ErrNotFound.
func GetActivePost(ctx context.Context, db *gorm.DB, id uint) (*domain.ScripturePost, error) {
	var p domain.ScripturePost
	err := db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindLike returns the like record for (postID, fingerprint), or ErrNotFound.
func FindLike(ctx context.Context, db *gorm.DB, postID uint, fingerprint string) (*domain.LikeRecord, error) {
	var rec domain.LikeRecord
	err := db.WithContext(ctx).
		Where("post_id = ? AND fingerprint = ?", postID, fingerprint).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateLike inserts a like record and returns ErrDuplicate when the visitor
// has already liked the post.
func CreateLike(ctx context.Context, db *gorm.DB, postID uint, fingerprint string) (*domain.LikeRecord, error) {
	rec := &domain.LikeRecord{
		ID:          uuid.NewString(),
		PostID:      postID,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if IsDuplicate(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// IncrementLikes adds exactly one to the post's like counter in a single
// UPDATE and returns the new value. It returns ErrNotFound if the post row
// vanished.
func IncrementLikes(ctx context.Context, db *gorm.DB, postID uint) (int, error) {
	res := db.WithContext(ctx).
		Model(&domain.ScripturePost{}).
		Where("id = ?", postID).
		UpdateColumn("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	var likes int
	err := db.WithContext(ctx).
		Model(&domain.ScripturePost{}).
		Where("id = ?", postID).
		Select("likes").
		Scan(&likes).Error
	return likes, err
}

// CountLikes returns the number of like records stored for a post.
func CountLikes(ctx context.Context, db *gorm.DB, postID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.LikeRecord{}).
		Where("post_id = ?", postID).
		Count(&n).Error
	return n, err
}

// IsDuplicate detects unique-constraint violations across drivers that may
// not map them to gorm.ErrDuplicatedKey.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// SQLite typically: "UNIQUE constraint failed"
	// Postgres typically: "duplicate key value violates unique constraint"
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
