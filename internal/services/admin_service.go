// Package services – AdminService
//
// AdminService is the content management surface: list (filter, search,
// sort, paginate), get, create, update and delete over every content type.
// Each content type is registered as a resource with its publishing flag,
// allowed sort keys, defaults, read-only fields and validation.
//
// Semantics:
//   - Creates may carry an idempotency key; a replay within the TTL returns
//     the originally created record instead of inserting again.
//   - Contact info is a singleton; a second create yields ErrContactInfoExists.
//   - Updates merge the submitted fields over the stored record.
//   - Every successful write calls OnChange.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/repo"
	"github.com/tbourn/go-ministry-site/internal/search"
)

// Admin resource names as they appear in URLs.
const (
	ResourceHeroSlides     = "hero-slides"
	ResourceLeaders        = "leaders"
	ResourceScripturePosts = "scripture-posts"
	ResourceAnnouncements  = "announcements"
	ResourceTestimonies    = "testimonies"
	ResourceMinistryUnits  = "ministry-units"
	ResourceBeliefs        = "beliefs"
	ResourceContactInfo    = "contact-info"
)

// DefaultChurchName is the contact info church name when none is given.
const DefaultChurchName = "LFC Teens Byazhin"

// ListParams narrows an admin list request.
//
// Flag filters on the resource's publishing flag (active, or approved for
// testimonies). Sort is one of the resource's sort keys ("order", "date",
// "created", "likes"), optionally prefixed with "-" for descending.
type ListParams struct {
	Flag     *bool
	Query    string
	Sort     string
	Page     int
	PageSize int
}

// ListPage is a page of records of one resource.
type ListPage struct {
	Items    any   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

// AdminService manages content records.
type AdminService struct {
	DB *gorm.DB

	// IdemTTL bounds how long a create idempotency key is remembered.
	IdemTTL time.Duration

	// OnChange, when set, runs after every committed write.
	OnChange func(resource string)

	// Now is the clock; nil means time.Now.
	Now func() time.Time

	resources map[string]resourceOps
}

// NewAdminService constructs an AdminService with every content resource
// registered.
func NewAdminService(db *gorm.DB, idemTTL time.Duration) *AdminService {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	s := &AdminService{DB: db, IdemTTL: idemTTL, Now: time.Now}
	s.resources = map[string]resourceOps{
		ResourceHeroSlides:     heroSlides(),
		ResourceLeaders:        leaders(),
		ResourceScripturePosts: scripturePosts(),
		ResourceAnnouncements:  announcements(),
		ResourceTestimonies:    testimonies(),
		ResourceMinistryUnits:  ministryUnits(),
		ResourceBeliefs:        beliefs(),
		ResourceContactInfo:    contactInfo(),
	}
	return s
}

// Resources returns the registered resource names, sorted.
func (s *AdminService) Resources() []string {
	out := make([]string, 0, len(s.resources))
	for name := range s.resources {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *AdminService) resource(name string) (resourceOps, error) {
	r, ok := s.resources[name]
	if !ok {
		return nil, ErrUnknownResource
	}
	return r, nil
}

func (s *AdminService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *AdminService) changed(resource string) {
	if s.OnChange != nil {
		s.OnChange(resource)
	}
}

func (s *AdminService) span(ctx context.Context, op, resource string) (context.Context, trace.Span) {
	tr := otel.Tracer("services/AdminService")
	return tr.Start(ctx, op, trace.WithAttributes(attribute.String("admin.resource", resource)))
}

// List returns a page of records of resource.
func (s *AdminService) List(ctx context.Context, resource string, p ListParams) (ListPage, error) {
	ctx, span := s.span(ctx, "List", resource)
	defer span.End()

	r, err := s.resource(resource)
	if err != nil {
		return ListPage{}, err
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	items, total, err := r.list(ctx, s.DB, p)
	if err != nil {
		return ListPage{}, err
	}
	return ListPage{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

// Get returns a single record.
func (s *AdminService) Get(ctx context.Context, resource string, id uint) (domain.Record, error) {
	ctx, span := s.span(ctx, "Get", resource)
	defer span.End()

	r, err := s.resource(resource)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, s.DB, id)
}

// Create inserts a record decoded from payload. When key is non-empty the
// create is idempotent per (actor, resource, key): replayed reports whether
// an earlier result was returned instead of inserting.
func (s *AdminService) Create(ctx context.Context, actor, resource, key string, payload []byte) (rec domain.Record, replayed bool, err error) {
	ctx, span := s.span(ctx, "Create", resource)
	defer span.End()

	r, err := s.resource(resource)
	if err != nil {
		return nil, false, err
	}
	key = strings.TrimSpace(key)

	if key != "" {
		if prev, ok, err := s.replay(ctx, r, actor, resource, key); err != nil || ok {
			return prev, ok, err
		}
		if err := repo.PurgeExpiredIdempotency(ctx, s.DB, actor, resource, key, s.now()); err != nil {
			return nil, false, err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := r.create(ctx, tx, payload)
		if err != nil {
			return err
		}
		if key != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, actor, resource, key, created.RecordID(), 201, s.IdemTTL); err != nil {
				return err
			}
		}
		rec = created
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) && key != "" {
		// A concurrent request with the same key won.
		prev, ok, rerr := s.replay(ctx, r, actor, resource, key)
		if rerr != nil {
			return nil, false, rerr
		}
		if ok {
			return prev, true, nil
		}
	}
	if err != nil {
		return nil, false, err
	}
	s.changed(resource)
	return rec, false, nil
}

func (s *AdminService) replay(ctx context.Context, r resourceOps, actor, resource, key string) (domain.Record, bool, error) {
	idem, err := repo.GetIdempotency(ctx, s.DB, actor, resource, key, s.now())
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	prev, err := r.get(ctx, s.DB, idem.RecordID)
	if err != nil {
		return nil, false, err
	}
	return prev, true, nil
}

// Update merges payload over the stored record and saves it.
func (s *AdminService) Update(ctx context.Context, resource string, id uint, payload []byte) (domain.Record, error) {
	ctx, span := s.span(ctx, "Update", resource)
	defer span.End()

	r, err := s.resource(resource)
	if err != nil {
		return nil, err
	}
	var rec domain.Record
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err = r.update(ctx, tx, id, payload)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.changed(resource)
	return rec, nil
}

// Delete removes a record.
func (s *AdminService) Delete(ctx context.Context, resource string, id uint) error {
	ctx, span := s.span(ctx, "Delete", resource)
	defer span.End()

	r, err := s.resource(resource)
	if err != nil {
		return err
	}
	if err := r.delete(ctx, s.DB, id); err != nil {
		return err
	}
	s.changed(resource)
	return nil
}

// ----------------------------------------------------------------------------
// Generic resource

type resourceOps interface {
	list(ctx context.Context, db *gorm.DB, p ListParams) (any, int64, error)
	get(ctx context.Context, db *gorm.DB, id uint) (domain.Record, error)
	create(ctx context.Context, tx *gorm.DB, payload []byte) (domain.Record, error)
	update(ctx context.Context, tx *gorm.DB, id uint, payload []byte) (domain.Record, error)
	delete(ctx context.Context, db *gorm.DB, id uint) error
}

type resource[T domain.Record] struct {
	flagColumn string
	// sorts maps a sort key to its column.
	sorts        map[string]string
	defaultOrder []string
	// readonly lists JSON keys that clients may not set.
	readonly     []string
	newRecord    func() T
	validate     func(T) error
	beforeCreate func(ctx context.Context, tx *gorm.DB) error
	// onDuplicate replaces a unique-index violation on insert.
	onDuplicate error
}

var protectedKeys = []string{"id", "created_at", "updated_at"}

func (r resource[T]) order(key string) []string {
	desc := strings.HasPrefix(key, "-")
	col, ok := r.sorts[strings.TrimPrefix(key, "-")]
	if !ok {
		return r.defaultOrder
	}
	dir := "asc"
	if desc {
		dir = "desc"
	}
	return []string{col + " " + dir, "id " + dir}
}

func (r resource[T]) filter(p ListParams) repo.Filter {
	f := repo.Filter{Order: r.order(p.Sort)}
	if r.flagColumn != "" {
		f.FlagColumn = r.flagColumn
		f.Flag = p.Flag
	}
	return f
}

func (r resource[T]) list(ctx context.Context, db *gorm.DB, p ListParams) (any, int64, error) {
	f := r.filter(p)
	offset := (p.Page - 1) * p.PageSize

	if strings.TrimSpace(p.Query) == "" {
		total, err := repo.CountRecords[T](ctx, db, f)
		if err != nil {
			return nil, 0, err
		}
		if total == 0 {
			return []T{}, 0, nil
		}
		items, err := repo.ListRecordsPage[T](ctx, db, f, offset, p.PageSize)
		return items, total, err
	}

	all, err := repo.ListRecords[T](ctx, db, f)
	if err != nil {
		return nil, 0, err
	}
	docs := make([]search.Doc, len(all))
	for i, rec := range all {
		docs[i] = search.Doc{Ref: i, Text: strings.Join(rec.SearchFields(), " ")}
	}
	hits := search.NewIndex(docs).TopK(p.Query, len(docs))
	ranked := make([]T, 0, len(hits))
	for _, h := range hits {
		ranked = append(ranked, all[h.Ref])
	}
	total := int64(len(ranked))
	if offset >= len(ranked) {
		return []T{}, total, nil
	}
	end := offset + p.PageSize
	if end > len(ranked) {
		end = len(ranked)
	}
	return ranked[offset:end], total, nil
}

func (r resource[T]) get(ctx context.Context, db *gorm.DB, id uint) (domain.Record, error) {
	rec, err := repo.GetRecord[T](ctx, db, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return *rec, nil
}

func (r resource[T]) create(ctx context.Context, tx *gorm.DB, payload []byte) (domain.Record, error) {
	rec := r.newRecord()
	if err := r.decode(payload, &rec); err != nil {
		return nil, err
	}
	if err := r.validate(rec); err != nil {
		return nil, err
	}
	if r.beforeCreate != nil {
		if err := r.beforeCreate(ctx, tx); err != nil {
			return nil, err
		}
	}
	if err := repo.CreateRecord(ctx, tx, &rec); err != nil {
		if r.onDuplicate != nil && repo.IsDuplicate(err) {
			return nil, r.onDuplicate
		}
		return nil, err
	}
	return rec, nil
}

func (r resource[T]) update(ctx context.Context, tx *gorm.DB, id uint, payload []byte) (domain.Record, error) {
	rec, err := repo.GetRecord[T](ctx, tx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	if err := r.decode(payload, rec); err != nil {
		return nil, err
	}
	if err := r.validate(*rec); err != nil {
		return nil, err
	}
	if err := repo.SaveRecord(ctx, tx, rec); err != nil {
		return nil, err
	}
	return *rec, nil
}

func (r resource[T]) delete(ctx context.Context, db *gorm.DB, id uint) error {
	if err := repo.DeleteRecord[T](ctx, db, id); err != nil {
		if isNotFound(err) {
			return ErrRecordNotFound
		}
		return err
	}
	return nil
}

// decode strips protected and read-only keys from payload and unmarshals the
// remainder over dst.
func (r resource[T]) decode(payload []byte, dst *T) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("%w: body must be a JSON object", ErrInvalidRecord)
	}
	for _, k := range protectedKeys {
		delete(fields, k)
	}
	for _, k := range r.readonly {
		delete(fields, k)
	}
	clean, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(clean, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// ----------------------------------------------------------------------------
// Registrations

var (
	sortsCreated      = map[string]string{"created": "created_at"}
	sortsOrdered      = map[string]string{"order": "sort_order", "created": "created_at"}
	sortsDated        = map[string]string{"date": "date", "created": "created_at"}
	defaultNewestSort = []string{"created_at desc", "id desc"}
	defaultOrderSort  = []string{"sort_order asc", "id asc"}
	defaultDateSort   = []string{"date desc", "id desc"}
)

func heroSlides() resourceOps {
	return resource[domain.HeroSlide]{
		flagColumn:   "is_active",
		sorts:        sortsCreated,
		defaultOrder: defaultNewestSort,
		newRecord: func() domain.HeroSlide {
			return domain.HeroSlide{ButtonText: "Learn More", ButtonLink: "#", IsActive: true}
		},
		validate: func(h domain.HeroSlide) error {
			return required(map[string]string{"title": h.Title, "image": h.Image})
		},
	}
}

func leaders() resourceOps {
	return resource[domain.Leader]{
		flagColumn:   "is_active",
		sorts:        sortsOrdered,
		defaultOrder: defaultOrderSort,
		newRecord:    func() domain.Leader { return domain.Leader{IsActive: true} },
		validate: func(l domain.Leader) error {
			return required(map[string]string{"name": l.Name, "position": l.Position})
		},
	}
}

func scripturePosts() resourceOps {
	return resource[domain.ScripturePost]{
		flagColumn:   "is_active",
		sorts:        map[string]string{"created": "created_at", "likes": "likes"},
		defaultOrder: defaultNewestSort,
		readonly:     []string{"likes"},
		newRecord:    func() domain.ScripturePost { return domain.ScripturePost{IsActive: true} },
		validate: func(p domain.ScripturePost) error {
			return required(map[string]string{"scriptures": p.Scriptures, "message": p.Message})
		},
	}
}

func announcements() resourceOps {
	return resource[domain.Announcement]{
		flagColumn:   "is_active",
		sorts:        sortsDated,
		defaultOrder: defaultDateSort,
		newRecord:    func() domain.Announcement { return domain.Announcement{IsActive: true} },
		validate: func(a domain.Announcement) error {
			if err := required(map[string]string{"topic": a.Topic, "announcement": a.Body}); err != nil {
				return err
			}
			if a.Date.IsZero() {
				return fmt.Errorf("%w: date is required", ErrInvalidRecord)
			}
			return nil
		},
	}
}

func testimonies() resourceOps {
	return resource[domain.Testimony]{
		flagColumn:   "is_approved",
		sorts:        sortsDated,
		defaultOrder: defaultDateSort,
		newRecord: func() domain.Testimony {
			return domain.Testimony{Date: domain.NewDate(time.Now().UTC())}
		},
		validate: func(t domain.Testimony) error {
			return required(map[string]string{"testifier": t.Testifier, "topic": t.Topic, "testimony": t.Body})
		},
	}
}

func ministryUnits() resourceOps {
	return resource[domain.MinistryUnit]{
		flagColumn:   "is_active",
		sorts:        sortsOrdered,
		defaultOrder: defaultOrderSort,
		newRecord:    func() domain.MinistryUnit { return domain.MinistryUnit{IsActive: true} },
		validate: func(m domain.MinistryUnit) error {
			return required(map[string]string{"name": m.Name, "leader": m.Leader})
		},
	}
}

func beliefs() resourceOps {
	return resource[domain.Belief]{
		flagColumn:   "is_active",
		sorts:        sortsOrdered,
		defaultOrder: defaultOrderSort,
		newRecord:    func() domain.Belief { return domain.Belief{IsActive: true} },
		validate: func(b domain.Belief) error {
			return required(map[string]string{"name": b.Name, "detail": b.Detail})
		},
	}
}

func contactInfo() resourceOps {
	return resource[domain.ContactInfo]{
		sorts:        sortsCreated,
		defaultOrder: []string{"id asc"},
		newRecord:    func() domain.ContactInfo { return domain.ContactInfo{ChurchName: DefaultChurchName} },
		validate: func(c domain.ContactInfo) error {
			if err := required(map[string]string{
				"church_name":  c.ChurchName,
				"address":      c.Address,
				"phone_number": c.PhoneNumber,
				"email":        c.Email,
			}); err != nil {
				return err
			}
			if _, err := mail.ParseAddress(c.Email); err != nil {
				return fmt.Errorf("%w: email is not a valid address", ErrInvalidRecord)
			}
			return nil
		},
		beforeCreate: func(ctx context.Context, tx *gorm.DB) error {
			exists, err := repo.ExistsAny[domain.ContactInfo](ctx, tx)
			if err != nil {
				return err
			}
			if exists {
				return ErrContactInfoExists
			}
			return nil
		},
		onDuplicate: ErrContactInfoExists,
	}
}

// required reports the first blank field, in name order.
func required(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(fields[name]) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidRecord, name)
		}
	}
	return nil
}
