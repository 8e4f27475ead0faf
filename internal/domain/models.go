// Package domain defines the persistence models for the ministry site: the
// content records edited by administrators and rendered on the public page,
// plus the bookkeeping tables behind likes, sessions and idempotent writes.
// These types are mapped with GORM and shared by the repository, service and
// HTTP layers.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Record is implemented by every administrator-managed content type.
//
// RecordID exposes the primary key without reflection, and SearchFields
// returns the text fields the admin list search matches against.
type Record interface {
	RecordID() uint
	SearchFields() []string
}

// HeroSlide is a banner shown at the top of the public page.
type HeroSlide struct {
	ID         uint      `json:"id"         gorm:"primaryKey"`
	Title      string    `json:"title"      gorm:"type:varchar(200);not null"`
	Subtitle   string    `json:"subtitle"   gorm:"type:text;not null"`
	Image      string    `json:"image"      gorm:"type:varchar(500);not null"`
	ButtonText string    `json:"btn_text"   gorm:"type:varchar(50);not null"`
	ButtonLink string    `json:"btn_link"   gorm:"type:varchar(200);not null"`
	IsActive   bool      `json:"is_active"  gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (HeroSlide) TableName() string        { return "hero_slides" }
func (h HeroSlide) RecordID() uint         { return h.ID }
func (h HeroSlide) SearchFields() []string { return []string{h.Title, h.Subtitle} }

// Leader is a member of the ministry leadership. Counselors are leaders that
// are additionally listed in the counseling section.
type Leader struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	Name        string    `json:"name"         gorm:"type:varchar(100);not null"`
	Position    string    `json:"position"     gorm:"type:varchar(100);not null"`
	Description string    `json:"description"  gorm:"type:text;not null"`
	Image       string    `json:"image"        gorm:"type:varchar(500);not null"`
	Order       int       `json:"order"        gorm:"column:sort_order;not null;index"`
	IsActive    bool      `json:"is_active"    gorm:"not null;index"`
	IsCounselor bool      `json:"is_counselor" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Leader) TableName() string        { return "leaders" }
func (l Leader) RecordID() uint         { return l.ID }
func (l Leader) SearchFields() []string { return []string{l.Name, l.Position} }

// ScripturePost is a scripture reference with a short message. Likes is only
// ever changed by the like flow; administrators edit everything else.
type ScripturePost struct {
	ID         uint      `json:"id"         gorm:"primaryKey"`
	Scriptures string    `json:"scriptures" gorm:"type:varchar(200);not null"`
	Message    string    `json:"message"    gorm:"type:text;not null"`
	Image      string    `json:"image"      gorm:"type:varchar(500);not null"`
	Likes      int       `json:"likes"      gorm:"not null;default:0;check:likes >= 0"`
	IsActive   bool      `json:"is_active"  gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (ScripturePost) TableName() string        { return "scripture_posts" }
func (p ScripturePost) RecordID() uint         { return p.ID }
func (p ScripturePost) SearchFields() []string { return []string{p.Scriptures, p.Message} }

// Announcement is a dated notice for upcoming events.
type Announcement struct {
	ID        uint      `json:"id"           gorm:"primaryKey"`
	Topic     string    `json:"topic"        gorm:"type:varchar(200);not null"`
	Body      string    `json:"announcement" gorm:"type:text;not null"`
	Date      Date      `json:"date"         gorm:"type:date;not null;index"`
	Image     *string   `json:"image,omitempty" gorm:"type:varchar(500)"`
	IsActive  bool      `json:"is_active"    gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Announcement) TableName() string        { return "announcements" }
func (a Announcement) RecordID() uint         { return a.ID }
func (a Announcement) SearchFields() []string { return []string{a.Topic, a.Body} }

// Testimony is a visitor testimony. It is only published once approved.
type Testimony struct {
	ID         uint      `json:"id"          gorm:"primaryKey"`
	Testifier  string    `json:"testifier"   gorm:"type:varchar(100);not null"`
	Topic      string    `json:"topic"       gorm:"type:varchar(200);not null"`
	Body       string    `json:"testimony"   gorm:"type:text;not null"`
	Image      *string   `json:"image,omitempty" gorm:"type:varchar(500)"`
	Date       Date      `json:"date"        gorm:"type:date;not null;index"`
	IsApproved bool      `json:"is_approved" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Testimony) TableName() string        { return "testimonies" }
func (t Testimony) RecordID() uint         { return t.ID }
func (t Testimony) SearchFields() []string { return []string{t.Testifier, t.Topic, t.Body} }

// MinistryUnit is a service unit (choir, ushering, media, ...) and the person
// leading it.
type MinistryUnit struct {
	ID             uint      `json:"id"              gorm:"primaryKey"`
	Name           string    `json:"name"            gorm:"type:varchar(100);not null"`
	Duty           string    `json:"duty"            gorm:"type:varchar(200);not null"`
	Description    string    `json:"description"     gorm:"type:text;not null"`
	Leader         string    `json:"leader"          gorm:"type:varchar(100);not null"`
	LeaderWhatsApp *string   `json:"leader_whatsapp,omitempty" gorm:"type:varchar(20)"`
	Image          string    `json:"image"           gorm:"type:varchar(500);not null"`
	IsActive       bool      `json:"is_active"       gorm:"not null;index"`
	Order          int       `json:"order"           gorm:"column:sort_order;not null;index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MinistryUnit) TableName() string        { return "ministry_units" }
func (m MinistryUnit) RecordID() uint         { return m.ID }
func (m MinistryUnit) SearchFields() []string { return []string{m.Name, m.Leader, m.Duty} }

// Belief is a statement of faith.
type Belief struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(100);not null"`
	Detail    string    `json:"detail"     gorm:"type:text;not null"`
	Image     string    `json:"image"      gorm:"type:varchar(500);not null"`
	Order     int       `json:"order"      gorm:"column:sort_order;not null;index"`
	IsActive  bool      `json:"is_active"  gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Belief) TableName() string        { return "beliefs" }
func (b Belief) RecordID() uint         { return b.ID }
func (b Belief) SearchFields() []string { return []string{b.Name, b.Detail} }

// ContactInfo holds the church contact details. At most one row may exist;
// the admin service enforces the singleton guard on create.
type ContactInfo struct {
	ID             uint      `json:"id"              gorm:"primaryKey"`
	ChurchName     string    `json:"church_name"     gorm:"type:varchar(200);not null"`
	Address        string    `json:"address"         gorm:"type:text;not null"`
	PhoneNumber    string    `json:"phone_number"    gorm:"type:varchar(20);not null"`
	Email          string    `json:"email"           gorm:"type:varchar(254);not null"`
	WhatsAppNumber string    `json:"whatsapp_number" gorm:"type:varchar(20);not null"`
	ServiceTimes   string    `json:"service_times"   gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Singleton is true on every row; its unique index caps the table at one.
	Singleton bool `json:"-" gorm:"not null;default:true;uniqueIndex:ux_contact_info_singleton"`
}

// BeforeSave pins the singleton column.
func (c *ContactInfo) BeforeSave(*gorm.DB) error {
	c.Singleton = true
	return nil
}

func (ContactInfo) TableName() string        { return "contact_info" }
func (c ContactInfo) RecordID() uint         { return c.ID }
func (c ContactInfo) SearchFields() []string { return []string{c.ChurchName, c.PhoneNumber, c.Email} }

// ContentModels lists every content model, in migration order.
func ContentModels() []any {
	return []any{
		&HeroSlide{},
		&Leader{},
		&ScripturePost{},
		&Announcement{},
		&Testimony{},
		&MinistryUnit{},
		&Belief{},
		&ContactInfo{},
	}
}
