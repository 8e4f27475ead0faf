package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	sqlite "github.com/glebarez/sqlite"

	"github.com/tbourn/go-ministry-site/internal/config"
	"github.com/tbourn/go-ministry-site/internal/domain"
	"github.com/tbourn/go-ministry-site/internal/http/middleware"
	"github.com/tbourn/go-ministry-site/internal/repo"
)

const adminToken = "s3cret-admin"

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return config.Config{
		APIBasePath:    "/api/v1",
		RateRPS:        100,
		RateBurst:      50,
		LikeRateRPS:    100,
		LikeRateBurst:  50,
		IdempotencyTTL: time.Hour,
		Session:        config.SessionConfig{CookieName: "ministry_session", TTL: time.Hour},
		AdminTokenHash: string(hash),
		Site:           config.SiteConfig{Name: "LFC Teens Byazhin", Keywords: []string{"teens"}},
		Cache:          config.CacheConfig{Size: 4, TTL: time.Minute},
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, db *gorm.DB, cfg config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if err := RegisterRoutes(r, db, cfg); err != nil {
		t.Fatalf("RegisterRoutes: %v", err)
	}
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r := newRouter(t, newTestDB(t), testConfig(t))

	for _, path := range []string{"/health", "/health/"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s = %d", path, w.Code)
		}
		var body map[string]string
		_ = json.Unmarshal(w.Body.Bytes(), &body)
		if body["status"] != "healthy" || body["message"] != "Server is running" {
			t.Fatalf("GET %s body = %v", path, body)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("AllowAllOrigins expected '*', got %q", got)
		}
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("GET /metrics bad: code=%d", w.Code)
	}

	if w = serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}
	if w = serve(r, httptest.NewRequest(http.MethodPost, "/health", nil)); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
	if w = serve(r, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off by default, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig(t)
	cfg.CORS.AllowedOrigins = []string{"http://example.com"}
	r := newRouter(t, newTestDB(t), cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_PageIssuesSessionAndServesAssets(t *testing.T) {
	r := newRouter(t, newTestDB(t), testConfig(t))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET / = %d %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "LFC Teens Byazhin") {
		t.Fatalf("page should carry the site name")
	}
	if csp := w.Header().Get("Content-Security-Policy"); csp != middleware.DefaultContentSecurityPolicy {
		t.Fatalf("csp = %q", csp)
	}
	if rid := w.Header().Get("X-Request-ID"); rid == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
	var issued bool
	for _, c := range w.Result().Cookies() {
		if c.Name == "ministry_session" && c.HttpOnly && c.Value != "" {
			issued = true
		}
	}
	if !issued {
		t.Fatalf("GET / should issue the session cookie")
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/static/site.js", nil))
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /static/site.js = %d", w.Code)
	}
}

func TestRegisterRoutes_LikeFlowInvalidatesSnapshot(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db, testConfig(t))

	post := domain.ScripturePost{Scriptures: "Psalm 23", Message: "The Lord is my shepherd", Image: "https://cdn/p.jpg", IsActive: true}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Warm the snapshot cache and remember the validator.
	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/home", nil))
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || etag == "" {
		t.Fatalf("GET /home = %d etag=%q", w.Code, etag)
	}

	page := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	cookie := page.Result().Cookies()[0]

	form := url.Values{"post_id": {fmt.Sprint(post.ID)}}
	req := httptest.NewRequest(http.MethodPost, LikeFormPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	if w = serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("like = %d %s", w.Code, w.Body.String())
	}

	// Same visitor through the JSON route is a repeat.
	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/posts/%d/like", post.ID), nil)
	req.AddCookie(cookie)
	w = serve(r, req)
	var lr struct {
		Likes        int  `json:"likes"`
		AlreadyLiked bool `json:"already_liked"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &lr)
	if w.Code != http.StatusOK || lr.Likes != 1 || !lr.AlreadyLiked {
		t.Fatalf("repeat like = %d %+v", w.Code, lr)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	req.Header.Set("If-None-Match", etag)
	if w = serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("like should change the validator, got %d", w.Code)
	}
	var home struct {
		Posts []struct {
			Likes int `json:"likes"`
		} `json:"scripture_posts"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &home)
	if len(home.Posts) != 1 || home.Posts[0].Likes != 1 {
		t.Fatalf("snapshot not refreshed: %+v", home)
	}

	// Without a session the like is refused.
	req = httptest.NewRequest(http.MethodPost, LikeFormPath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if w = serve(r, req); w.Code != http.StatusBadRequest {
		t.Fatalf("sessionless like = %d", w.Code)
	}
}

func TestRegisterRoutes_LikeRateLimitByIP(t *testing.T) {
	cfg := testConfig(t)
	cfg.LikeRateRPS = 0.001
	cfg.LikeRateBurst = 2
	r := newRouter(t, newTestDB(t), cfg)

	sessionFor := func() *http.Cookie {
		t.Helper()
		for _, c := range serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Result().Cookies() {
			if c.Name == "ministry_session" {
				return c
			}
		}
		t.Fatalf("no session cookie")
		return nil
	}
	like := func(remote string, cookie *http.Cookie) *httptest.ResponseRecorder {
		form := url.Values{"post_id": {"9999"}}
		req := httptest.NewRequest(http.MethodPost, LikeFormPath, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = remote
		req.AddCookie(cookie)
		return serve(r, req)
	}

	cookie := sessionFor()
	for i := 0; i < cfg.LikeRateBurst; i++ {
		if w := like("198.51.100.7:4000", cookie); w.Code != http.StatusNotFound {
			t.Fatalf("like %d within burst = %d %s", i, w.Code, w.Body.String())
		}
	}

	w := like("198.51.100.7:4000", cookie)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("over burst = %d Retry-After=%q", w.Code, w.Header().Get("Retry-After"))
	}
	var er struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil || er.Code != "rate_limited" {
		t.Fatalf("body = %s (err %v)", w.Body.String(), err)
	}

	// A fresh session from the same address shares the bucket.
	if w = like("198.51.100.7:4001", sessionFor()); w.Code != http.StatusTooManyRequests {
		t.Fatalf("new cookie, same IP = %d", w.Code)
	}
	// Another address is unaffected, and so is the rest of the API.
	if w = like("203.0.113.50:4000", cookie); w.Code != http.StatusNotFound {
		t.Fatalf("other IP = %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/home", nil)
	req.RemoteAddr = "198.51.100.7:4000"
	if w = serve(r, req); w.Code != http.StatusOK {
		t.Fatalf("home after like limit = %d", w.Code)
	}
}

func TestRegisterRoutes_AdminGuardAndReplay(t *testing.T) {
	db := newTestDB(t)
	r := newRouter(t, db, testConfig(t))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/admin/resources", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d", w.Code)
	}

	create := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/beliefs",
			bytes.NewBufferString(`{"name":"Salvation","detail":"By grace","image":"https://cdn/b.jpg"}`))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(middleware.HeaderAdminToken, adminToken)
		req.Header.Set(middleware.HeaderIdempotencyKey, "belief-1")
		return serve(r, req)
	}
	if w = create(); w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	if cc := w.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("admin responses should not be cached, got %q", cc)
	}
	if w = create(); w.Code != http.StatusOK || w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("replay = %d", w.Code)
	}

	var n int64
	db.Model(&domain.Belief{}).Count(&n)
	if n != 1 {
		t.Fatalf("beliefs = %d, want 1", n)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/home", nil))
	var home struct {
		Beliefs []map[string]any `json:"beliefs"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &home)
	if len(home.Beliefs) != 1 {
		t.Fatalf("admin write should show on the page snapshot: %s", w.Body.String())
	}
}

func TestRegisterRoutes_AdminDisabledAndSwagger(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminTokenHash = ""
	cfg.SwaggerEnabled = true
	r := newRouter(t, newTestDB(t), cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/resources", nil)
	req.Header.Set(middleware.HeaderAdminToken, adminToken)
	if w := serve(r, req); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("disabled admin = %d", w.Code)
	}
	if w := serve(r, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)); w.Code != http.StatusOK {
		t.Fatalf("swagger doc = %d", w.Code)
	}
}

func Test_idempotencyLookup(t *testing.T) {
	db := newTestDB(t)
	lookup := idempotencyLookup(db)
	ctx := context.Background()
	now := time.Now().UTC()

	if ok, err := lookup(ctx, "admin", "beliefs", "k", now); ok || err != nil {
		t.Fatalf("miss = %v, %v", ok, err)
	}
	if _, err := repo.CreateIdempotency(ctx, db, "admin", "beliefs", "k", 1, http.StatusCreated, time.Hour); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if ok, err := lookup(ctx, "admin", "beliefs", "k", now); !ok || err != nil {
		t.Fatalf("hit = %v, %v", ok, err)
	}

	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
	if ok, err := lookup(ctx, "admin", "beliefs", "other", now); ok || err == nil {
		t.Fatalf("closed db should error, got %v, %v", ok, err)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// tiny cap to trigger MaxBytesReader
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		rec := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK || rec.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, rec.Code, rec.Body.String())
		}
	}
}
