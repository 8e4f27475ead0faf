package domain

import "time"

// Idempotency remembers the outcome of an admin create request, keyed by
// (actor, resource, key). A retried request carrying the same Idempotency-Key
// gets the originally created record back instead of a duplicate row.
type Idempotency struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Actor     string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_actor_resource_key,priority:1"`
	Resource  string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_actor_resource_key,priority:2"`
	Key       string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_actor_resource_key,priority:3"`
	RecordID  uint      `gorm:"not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
