// Package handlers implements the HTTP endpoints of the ministry site.
//
// Handlers are transport-thin: they validate input, call application services
// through the narrow interfaces below, and translate results and service
// errors into HTTP responses.
package handlers

import (
	"context"
	"io"

	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/repo"
	"github.com/tbourn/go-ministry-site/internal/services"
)

//
// Service contracts (context-aware)
//

// ContentService serves the public page snapshot.
type ContentService interface {
	HomePage(ctx context.Context) (*services.HomePage, error)
	// Stats returns the aggregate used for the page ETag.
	Stats(ctx context.Context) (repo.ContentStats, error)
}

// LikeService registers likes on scripture posts.
type LikeService interface {
	RegisterLike(ctx context.Context, postID uint, rc services.RequestContext) (services.LikeResult, error)
}

// AdminService manages content records by resource name.
type AdminService interface {
	Resources() []string
	List(ctx context.Context, resource string, p services.ListParams) (services.ListPage, error)
	Get(ctx context.Context, resource string, id uint) (domain.Record, error)
	Create(ctx context.Context, actor, resource, key string, payload []byte) (domain.Record, bool, error)
	Update(ctx context.Context, resource string, id uint, payload []byte) (domain.Record, error)
	Delete(ctx context.Context, resource string, id uint) error
}

// PageRenderer writes the HTML public page.
type PageRenderer interface {
	RenderHome(w io.Writer, page *services.HomePage) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints.
type Handlers struct {
	content  ContentService
	likes    LikeService
	admin    AdminService
	renderer PageRenderer
}

// New constructs Handlers bound to the given services. admin and renderer may
// be nil when the corresponding routes are not mounted.
func New(content ContentService, likes LikeService, admin AdminService, renderer PageRenderer) *Handlers {
	return &Handlers{content: content, likes: likes, admin: admin, renderer: renderer}
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
