package domain

import "time"

// LikeRecord records that a visitor (identified by a fingerprint digest) has
// liked a scripture post. A visitor can like a post at most once, which the
// unique index on (post_id, fingerprint) enforces at the storage layer.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - PostID: the liked post; cascade-deleted with it.
//   - Fingerprint: hex SHA-256 of IP + user agent + session viewer id.
//   - CreatedAt: when the like was accepted.
type LikeRecord struct {
	ID          string    `json:"id"          gorm:"type:char(36);primaryKey"`
	PostID      uint      `json:"post_id"     gorm:"not null;index;uniqueIndex:ux_like_post_fingerprint,priority:1"`
	Fingerprint string    `json:"fingerprint" gorm:"type:char(64);not null;uniqueIndex:ux_like_post_fingerprint,priority:2"`
	CreatedAt   time.Time `json:"created_at"`

	Post ScripturePost `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for LikeRecord.
func (LikeRecord) TableName() string { return "like_records" }

// Session is server-side browsing-session state. The client holds only Token
// (in a cookie); ViewerID is the opaque per-session identifier that feeds the
// like fingerprint and is never regenerated while the session is live.
type Session struct {
	Token     string    `json:"-"         gorm:"type:char(36);primaryKey"`
	ViewerID  string    `json:"viewer_id" gorm:"type:char(36);not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool { return !now.Before(s.ExpiresAt) }
