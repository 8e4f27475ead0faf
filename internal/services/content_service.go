// Package services – ContentService
//
// ContentService assembles the public page: every active (or approved)
// record of each content type plus the contact info singleton and the site
// SEO metadata. Snapshots are kept in an expiring LRU; writes through the
// admin surface and accepted likes invalidate it. A snapshot whose load
// overlapped an invalidation is served once but never cached.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/repo"
)

const homeCacheKey = "home"

// SiteMeta is the SEO metadata rendered into the page head.
type SiteMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// HomePage is a snapshot of everything the public page shows.
type HomePage struct {
	Site          SiteMeta               `json:"site"`
	HeroSlides    []domain.HeroSlide     `json:"hero_slides"`
	Leaders       []domain.Leader        `json:"leaders"`
	Counselors    []domain.Leader        `json:"counselors"`
	Posts         []domain.ScripturePost `json:"scripture_posts"`
	Announcements []domain.Announcement  `json:"announcements"`
	Testimonies   []domain.Testimony     `json:"testimonies"`
	Units         []domain.MinistryUnit  `json:"ministry_units"`
	Beliefs       []domain.Belief        `json:"beliefs"`
	ContactInfo   *domain.ContactInfo    `json:"contact_info"`
	GeneratedAt   time.Time              `json:"generated_at"`
}

// ContentService serves read-only views of the content store.
type ContentService struct {
	DB   *gorm.DB
	Site SiteMeta
	TTL  time.Duration

	mu    sync.Mutex
	gen   uint64 // bumped by Invalidate
	cache *expirable.LRU[string, *HomePage]
}

// NewContentService constructs a ContentService with a snapshot cache of the
// given size. A non-positive ttl disables caching.
func NewContentService(db *gorm.DB, site SiteMeta, size int, ttl time.Duration) (*ContentService, error) {
	if size <= 0 {
		size = 8
	}
	return &ContentService{
		DB:    db,
		Site:  site,
		TTL:   ttl,
		cache: expirable.NewLRU[string, *HomePage](size, nil, ttl),
	}, nil
}

var (
	activeOnly   = true
	byNewest     = []string{"created_at desc", "id desc"}
	bySortOrder  = []string{"sort_order asc", "id asc"}
	byDateNewest = []string{"date desc", "id desc"}
)

func activeFilter(col string, order []string) repo.Filter {
	return repo.Filter{FlagColumn: col, Flag: &activeOnly, Order: order}
}

// HomePage returns the current public page snapshot, from cache when fresh.
func (s *ContentService) HomePage(ctx context.Context) (*HomePage, error) {
	if s.TTL > 0 {
		if page, ok := s.cache.Get(homeCacheKey); ok {
			return page, nil
		}
	}
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	tr := otel.Tracer("services/ContentService")
	ctx, span := tr.Start(ctx, "HomePage")
	defer span.End()

	page, err := s.load(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if s.TTL > 0 {
		s.mu.Lock()
		if s.gen == gen {
			s.cache.Add(homeCacheKey, page)
		}
		s.mu.Unlock()
	}
	return page, nil
}

// Invalidate drops any cached snapshot and keeps loads already in flight
// from caching theirs.
func (s *ContentService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Purge()
}

// Stats returns the aggregate used to derive the page ETag.
func (s *ContentService) Stats(ctx context.Context) (repo.ContentStats, error) {
	return repo.SiteContentStats(ctx, s.DB)
}

func (s *ContentService) load(ctx context.Context) (*HomePage, error) {
	db := s.DB
	page := &HomePage{Site: s.Site, GeneratedAt: time.Now().UTC()}

	var err error
	if page.HeroSlides, err = repo.ListRecords[domain.HeroSlide](ctx, db, activeFilter("is_active", byNewest)); err != nil {
		return nil, err
	}
	if page.Leaders, err = repo.ListRecords[domain.Leader](ctx, db, activeFilter("is_active", bySortOrder)); err != nil {
		return nil, err
	}
	counselors := activeFilter("is_active", bySortOrder)
	counselors.Extra = map[string]any{"is_counselor": true}
	if page.Counselors, err = repo.ListRecords[domain.Leader](ctx, db, counselors); err != nil {
		return nil, err
	}
	if page.Posts, err = repo.ListRecords[domain.ScripturePost](ctx, db, activeFilter("is_active", byNewest)); err != nil {
		return nil, err
	}
	if page.Announcements, err = repo.ListRecords[domain.Announcement](ctx, db, activeFilter("is_active", byDateNewest)); err != nil {
		return nil, err
	}
	if page.Testimonies, err = repo.ListRecords[domain.Testimony](ctx, db, activeFilter("is_approved", byDateNewest)); err != nil {
		return nil, err
	}
	if page.Units, err = repo.ListRecords[domain.MinistryUnit](ctx, db, activeFilter("is_active", bySortOrder)); err != nil {
		return nil, err
	}
	if page.Beliefs, err = repo.ListRecords[domain.Belief](ctx, db, activeFilter("is_active", bySortOrder)); err != nil {
		return nil, err
	}

	contact, err := repo.FirstRecord[domain.ContactInfo](ctx, db)
	switch {
	case err == nil:
		page.ContactInfo = contact
	case errors.Is(err, repo.ErrNotFound):
	default:
		return nil, err
	}
	return page, nil
}
