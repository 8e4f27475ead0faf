// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (e.g., ETag generation) in the HTTP
// layer. Each function is context-aware and safe to call from services or
// handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/domain"
)

// ContentStats summarizes the content tables for cache validation.
//
// Likes is tracked separately because the like counter is bumped with a raw
// column update that leaves updated_at untouched.
type ContentStats struct {
	Count        int64
	MaxUpdatedAt *time.Time
	Likes        int64
}

// TableStats returns the number of rows of T and the greatest UpdatedAt among
// them. When the table is empty, count is 0 and maxUpdatedAt is nil.
func TableStats[T any](ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = db.WithContext(ctx).Model(new(T)).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	err = db.WithContext(ctx).Model(new(T)).
		Select("updated_at").
		Order("updated_at DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// SiteContentStats aggregates TableStats over every content table and adds
// the sum of scripture post likes.
func SiteContentStats(ctx context.Context, db *gorm.DB) (ContentStats, error) {
	var out ContentStats
	steps := []func(context.Context, *gorm.DB) (int64, *time.Time, error){
		TableStats[domain.HeroSlide],
		TableStats[domain.Leader],
		TableStats[domain.ScripturePost],
		TableStats[domain.Announcement],
		TableStats[domain.Testimony],
		TableStats[domain.MinistryUnit],
		TableStats[domain.Belief],
		TableStats[domain.ContactInfo],
	}
	for _, step := range steps {
		n, ts, err := step(ctx, db)
		if err != nil {
			return ContentStats{}, err
		}
		out.Count += n
		if ts != nil && (out.MaxUpdatedAt == nil || ts.After(*out.MaxUpdatedAt)) {
			t := *ts
			out.MaxUpdatedAt = &t
		}
	}

	var likes struct{ Total int64 }
	err := db.WithContext(ctx).
		Model(&domain.ScripturePost{}).
		Select("COALESCE(SUM(likes), 0) AS total").
		Scan(&likes).Error
	if err != nil {
		return ContentStats{}, err
	}
	out.Likes = likes.Total
	return out, nil
}
