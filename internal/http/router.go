// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, sessions, admin auth, idempotency, and
// rate limiting.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/go-ministry-site/docs"
	"github.com/tbourn/go-ministry-site/internal/config"
	"github.com/tbourn/go-ministry-site/internal/http/handlers"
	"github.com/tbourn/go-ministry-site/internal/http/middleware"
	"github.com/tbourn/go-ministry-site/internal/http/views"
	"github.com/tbourn/go-ministry-site/internal/repo"
	"github.com/tbourn/go-ministry-site/internal/services"
)

// LikeFormPath is the form action of the like buttons on the public page.
const LikeFormPath = "/add-like/"

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and builds the services behind them.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger + RequestLogger: access line and request-scoped logger
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Compression
//  8. CORS and security headers
//
// Route groups then add sessions (page and like routes), rate limiting, and
// for the admin API: token auth, no-store, and idempotency validation ahead of
// the limiter so replays bypass it.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) error {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))
	r.Use(middleware.RequestLogger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression for the page, assets, and JSON
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 8) CORS posture and baseline security headers
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", handlers.Health)
	r.GET("/health/", handlers.Health)

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	content, err := services.NewContentService(db, services.SiteMeta{
		Name:        cfg.Site.Name,
		Description: cfg.Site.Description,
		Keywords:    strings.Join(cfg.Site.Keywords, ", "),
	}, cfg.Cache.Size, cfg.Cache.TTL)
	if err != nil {
		return err
	}
	sessions := services.NewSessionService(db, cfg.Session.TTL)
	likes := services.NewLikeService(db)
	likes.OnAccepted = func(uint) { content.Invalidate() }
	admin := services.NewAdminService(db, cfg.IdempotencyTTL)
	admin.OnChange = func(string) { content.Invalidate() }

	renderer, err := views.New(LikeFormPath)
	if err != nil {
		return err
	}
	h := handlers.New(content, likes, admin, renderer)

	sessionOpts := middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	}
	loadSession := middleware.Session(sessions, sessionOpts)
	sessionOpts.Create = true
	ensureSession := middleware.Session(sessions, sessionOpts)

	likeLimit := middleware.NewRateLimiter(cfg.LikeRateRPS, cfg.LikeRateBurst, middleware.KeyByIP()).Handler()
	apiLimit := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).Handler()

	// Public page
	page := middleware.SecurityHeaders(middleware.SecurityOptions{CSP: middleware.DefaultContentSecurityPolicy})
	r.StaticFS("/static", http.FS(views.Static()))
	r.GET("/", page, ensureSession, h.Home)
	r.POST(LikeFormPath, likeLimit, loadSession, h.AddLike)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/home", apiLimit, h.HomeJSON)
		api.POST("/posts/:id/like", likeLimit, loadSession, h.LikePost)
	}

	// Admin API
	adm := api.Group("/admin",
		middleware.AdminAuth(cfg.AdminTokenHash),
		middleware.SecurityHeaders(middleware.SecurityOptions{NoStore: true}),
		middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, idempotencyLookup(db)),
		apiLimit,
	)
	{
		adm.GET("/resources", h.ListResources)
		adm.GET("/:resource", h.ListRecords)
		adm.POST("/:resource", h.CreateRecord)
		adm.GET("/:resource/:id", h.GetRecord)
		adm.PUT("/:resource/:id", h.UpdateRecord)
		adm.DELETE("/:resource/:id", h.DeleteRecord)
	}
	return nil
}

// idempotencyLookup reports whether a live stored result exists. Lookup
// failures are treated as a miss; the create path re-checks inside its
// transaction.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, actor, resource, key string, now time.Time) (bool, error) {
		rec, err := repo.GetIdempotency(ctx, db, actor, resource, key, now)
		if errors.Is(err, repo.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return rec != nil, nil
	}
}

// corsMiddleware allows every origin when none are configured. With an
// allowlist it echoes allowed origins and permits credentials so the session
// cookie reaches the JSON like endpoint.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	allowHeaders := []string{"Origin", "Content-Type", "Accept", middleware.HeaderAdminToken, middleware.HeaderIdempotencyKey}
	methods := []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	expose := []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After"}

	if len(origins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(cors.Config{
				AllowAllOrigins:  true,
				AllowMethods:     methods,
				AllowHeaders:     allowHeaders,
				ExposeHeaders:    expose,
				AllowCredentials: false, // must remain false with AllowAllOrigins
				MaxAge:           12 * time.Hour,
			}),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     methods,
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    expose,
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
