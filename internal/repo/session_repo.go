// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for server-side
// browsing sessions.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/domain"
)

// CreateSession inserts a session row.
func CreateSession(ctx context.Context, db *gorm.DB, s *domain.Session) error {
	return db.WithContext(ctx).Create(s).Error
}

// GetSession fetches a session by token, or ErrNotFound. Expiry is not
// checked here; callers decide what to do with stale rows.
func GetSession(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var s domain.Session
	if err := db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session by token. Missing rows are not an error.
func DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{}).Error
}

// DeleteExpiredSessions removes every session that expired at or before now
// and returns how many rows were deleted.
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
