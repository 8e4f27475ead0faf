// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, storage, sessions, the admin credential, site metadata, caching,
// rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// SessionConfig controls the browsing-session cookie.
type SessionConfig struct {
	CookieName string        // SESSION_COOKIE_NAME
	TTL        time.Duration // SESSION_TTL
	Secure     bool          // SESSION_COOKIE_SECURE
}

// SiteConfig holds the page metadata rendered into <head>.
type SiteConfig struct {
	Name        string   // SITE_NAME
	Description string   // SITE_DESCRIPTION
	Keywords    []string // SITE_KEYWORDS (CSV)
}

// CacheConfig sizes the public page snapshot cache.
type CacheConfig struct {
	TTL  time.Duration // CONTENT_CACHE_TTL
	Size int           // CONTENT_CACHE_SIZE
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "ministry-site")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Storage
	DatabaseURL string // sqlite://path or postgres://...

	// Rate limiting
	RateRPS       float64 // tokens per second (>= 0), admin and API
	RateBurst     int     // bucket size (>= 1)
	LikeRateRPS   float64 // like endpoints, per client IP
	LikeRateBurst int

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Visitors / admin
	Session        SessionConfig
	AdminTokenHash string // bcrypt hash; empty disables the admin surface

	// Public page
	Site  SiteConfig
	Cache CacheConfig

	// Observability
	OTEL OTELConfig
}

// AdminEnabled reports whether an admin credential is configured.
func (c Config) AdminEnabled() bool { return strings.TrimSpace(c.AdminTokenHash) != "" }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// Storage
		DatabaseURL: getenv("DATABASE_URL", "sqlite://ministry.db"),

		// Rate limiting
		RateRPS:       getfloat("RATE_RPS", 5.0),
		RateBurst:     getint("RATE_BURST", 10),
		LikeRateRPS:   getfloat("LIKE_RATE_RPS", 2.0),
		LikeRateBurst: getint("LIKE_RATE_BURST", 5),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Visitors / admin
		Session: SessionConfig{
			CookieName: getenv("SESSION_COOKIE_NAME", "ministry_session"),
			TTL:        getdur("SESSION_TTL", 14*24*time.Hour),
			Secure:     getbool("SESSION_COOKIE_SECURE", false),
		},
		AdminTokenHash: getenv("ADMIN_TOKEN_HASH", ""),

		// Public page
		Site: SiteConfig{
			Name:        getenv("SITE_NAME", "LFC Teens Byazhin"),
			Description: getenv("SITE_DESCRIPTION", "Youth ministry of Living Faith Church, Byazhin"),
			Keywords:    splitCSV(getenv("SITE_KEYWORDS", "church,teens,youth ministry")),
		},
		Cache: CacheConfig{
			TTL:  getdur("CONTENT_CACHE_TTL", 30*time.Second),
			Size: getint("CONTENT_CACHE_SIZE", 4),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "ministry-site"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if !validDatabaseURL(cfg.DatabaseURL) {
		return cfg, errors.New("DATABASE_URL must start with sqlite:// or postgres://")
	}
	if cfg.RateRPS < 0 || cfg.LikeRateRPS < 0 {
		return cfg, errors.New("RATE_RPS and LIKE_RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 || cfg.LikeRateBurst < 1 {
		return cfg, errors.New("RATE_BURST and LIKE_RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if strings.TrimSpace(cfg.Session.CookieName) == "" || strings.ContainsAny(cfg.Session.CookieName, " ;,=") {
		return cfg, errors.New("SESSION_COOKIE_NAME must be a non-empty cookie token")
	}
	if cfg.Session.TTL <= 0 {
		return cfg, errors.New("SESSION_TTL must be > 0")
	}
	if h := cfg.AdminTokenHash; h != "" && !strings.HasPrefix(h, "$2") {
		return cfg, errors.New("ADMIN_TOKEN_HASH must be a bcrypt hash (see `ministryd hash-token`)")
	}
	if cfg.Cache.Size < 1 {
		return cfg, errors.New("CONTENT_CACHE_SIZE must be >= 1")
	}
	if cfg.Cache.TTL < 0 {
		return cfg, errors.New("CONTENT_CACHE_TTL must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

func validDatabaseURL(u string) bool {
	u = strings.TrimSpace(u)
	for _, p := range []string{"sqlite://", "postgres://", "postgresql://"} {
		if strings.HasPrefix(u, p) && len(u) > len(p) {
			return true
		}
	}
	return false
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
