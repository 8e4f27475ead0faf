// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides generic CRUD helpers shared by every
// content model (hero slides, leaders, posts, announcements, testimonies,
// ministry units, beliefs, contact info).
//
// All functions are context-aware and accept a *gorm.DB handle, so they work
// unchanged inside transactions. They follow the "thin repository" approach:
// no business rules, only persistence and query composition.
//
// Error semantics:
//   - Missing rows yield ErrNotFound (gorm.ErrRecordNotFound).
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Filter narrows a content query.
//
// FlagColumn names the boolean publishing column ("is_active" or
// "is_approved"); Flag, when non-nil, restricts rows to that value. Order is
// a list of "column [asc|desc]" terms applied in sequence.
type Filter struct {
	FlagColumn string
	Flag       *bool
	Extra      map[string]any
	Order      []string
}

func (f Filter) apply(q *gorm.DB) *gorm.DB {
	if f.FlagColumn != "" && f.Flag != nil {
		q = q.Where(clause.Eq{Column: clause.Column{Name: f.FlagColumn}, Value: *f.Flag})
	}
	for col, v := range f.Extra {
		q = q.Where(clause.Eq{Column: clause.Column{Name: col}, Value: v})
	}
	for _, o := range f.Order {
		col, desc := parseOrder(o)
		if col == "" {
			continue
		}
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc})
	}
	return q
}

// parseOrder splits "created_at desc" into its column and direction.
func parseOrder(term string) (col string, desc bool) {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return "", false
	}
	col = fields[0]
	if len(fields) > 1 && strings.EqualFold(fields[1], "desc") {
		desc = true
	}
	return col, desc
}

// ListRecords returns all rows of T matching f.
func ListRecords[T any](ctx context.Context, db *gorm.DB, f Filter) ([]T, error) {
	out := []T{}
	err := f.apply(db.WithContext(ctx).Model(new(T))).Find(&out).Error
	return out, err
}

// ListRecordsPage returns a window of rows of T matching f.
func ListRecordsPage[T any](ctx context.Context, db *gorm.DB, f Filter, offset, limit int) ([]T, error) {
	out := []T{}
	err := f.apply(db.WithContext(ctx).Model(new(T))).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CountRecords returns the number of rows of T matching f (ordering ignored).
func CountRecords[T any](ctx context.Context, db *gorm.DB, f Filter) (int64, error) {
	var total int64
	f.Order = nil
	err := f.apply(db.WithContext(ctx).Model(new(T))).Count(&total).Error
	return total, err
}

// FirstRecord returns the lowest-id row of T, or ErrNotFound when the table
// is empty.
func FirstRecord[T any](ctx context.Context, db *gorm.DB) (*T, error) {
	var rec T
	if err := db.WithContext(ctx).Order("id asc").First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecord fetches a single row of T by primary key, or ErrNotFound.
func GetRecord[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var rec T
	if err := db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateRecord inserts rec. The auto-increment ID and timestamps are written
// back into rec.
func CreateRecord[T any](ctx context.Context, db *gorm.DB, rec *T) error {
	return db.WithContext(ctx).Create(rec).Error
}

// SaveRecord updates every column of rec (including zero values). rec must
// carry the primary key of an existing row.
func SaveRecord[T any](ctx context.Context, db *gorm.DB, rec *T) error {
	return db.WithContext(ctx).Save(rec).Error
}

// DeleteRecord removes the row of T with the given id. It returns ErrNotFound
// when no row was affected.
func DeleteRecord[T any](ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsAny reports whether the table of T has at least one row.
func ExistsAny[T any](ctx context.Context, db *gorm.DB) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(new(T)).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
