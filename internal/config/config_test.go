package config

import (
	"os"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBasePath != "/api/v1" || cfg.DatabaseURL != "sqlite://ministry.db" {
		t.Fatalf("defaults unexpected: %+v", cfg)
	}
	if cfg.Session.CookieName != "ministry_session" || cfg.Session.TTL != 14*24*time.Hour || cfg.Session.Secure {
		t.Fatalf("session defaults unexpected: %+v", cfg.Session)
	}
	if cfg.AdminEnabled() {
		t.Fatalf("admin should be disabled without ADMIN_TOKEN_HASH")
	}
	if cfg.Site.Name != "LFC Teens Byazhin" || len(cfg.Site.Keywords) == 0 {
		t.Fatalf("site defaults unexpected: %+v", cfg.Site)
	}
	if cfg.Cache.Size != 4 || cfg.Cache.TTL != 30*time.Second {
		t.Fatalf("cache defaults unexpected: %+v", cfg.Cache)
	}
	if cfg.OTEL.ServiceName != "ministry-site" {
		t.Fatalf("otel service name = %q", cfg.OTEL.ServiceName)
	}
}

func TestLoad_Success_Overrides(t *testing.T) {
	// Server
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // normalizes to "release"

	// Logging / Docs
	t.Setenv("LOG_LEVEL", "warning")
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("SWAGGER_ENABLED", "on")
	t.Setenv("API_BASE_PATH", "api/v2/")

	// Storage
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/ministry?sslmode=disable")

	// Rate limiting (invalid parse falls back to defaults)
	t.Setenv("RATE_RPS", "x")
	t.Setenv("RATE_BURST", "nope")
	t.Setenv("LIKE_RATE_RPS", "0.5")
	t.Setenv("LIKE_RATE_BURST", "3")

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")
	t.Setenv("IDEMPOTENCY_TTL", "48h")

	// Visitors / admin
	t.Setenv("SESSION_COOKIE_NAME", "sid")
	t.Setenv("SESSION_TTL", "72h")
	t.Setenv("SESSION_COOKIE_SECURE", "1")
	t.Setenv("ADMIN_TOKEN_HASH", "$2a$10$abcdefghijklmnopqrstuu1234567890123456789012345678901")

	// Public page
	t.Setenv("SITE_NAME", "Teens Church")
	t.Setenv("SITE_DESCRIPTION", "desc")
	t.Setenv("SITE_KEYWORDS", "a, b")
	t.Setenv("CONTENT_CACHE_TTL", "1m")
	t.Setenv("CONTENT_CACHE_SIZE", "8")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}
	if cfg.LogLevel != "warn" || !cfg.LogPretty || !cfg.SwaggerEnabled || cfg.APIBasePath != "/api/v2" {
		t.Fatalf("logging/docs unexpected: %+v", cfg)
	}
	if !strings.HasPrefix(cfg.DatabaseURL, "postgres://") {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 || cfg.LikeRateRPS != 0.5 || cfg.LikeRateBurst != 3 {
		t.Fatalf("rate limiting unexpected: %+v", cfg)
	}
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour || cfg.IdempotencyTTL != 48*time.Hour {
		t.Fatalf("security/idempotency unexpected: %+v", cfg)
	}
	if cfg.Session != (SessionConfig{CookieName: "sid", TTL: 72 * time.Hour, Secure: true}) || !cfg.AdminEnabled() {
		t.Fatalf("session/admin unexpected: %+v", cfg.Session)
	}
	if cfg.Site.Name != "Teens Church" || !reflect.DeepEqual(cfg.Site.Keywords, []string{"a", "b"}) ||
		cfg.Cache.TTL != time.Minute || cfg.Cache.Size != 8 {
		t.Fatalf("site/cache unexpected: %+v %+v", cfg.Site, cfg.Cache)
	}
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure || cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel unexpected: %+v", cfg.OTEL)
	}
}

// Each case triggers exactly one validation error.
func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name, key, val, want string
	}{
		{"invalid LOG_LEVEL", "LOG_LEVEL", "verbose", "LOG_LEVEL"},
		{"empty PORT via spaces", "PORT", "   ", "PORT must not be empty"},
		{"non-positive timeouts", "READ_TIMEOUT", "0s", "timeouts must be positive"},
		{"max header bytes <= 0", "MAX_HEADER_BYTES", "0", "MAX_HEADER_BYTES"},
		{"unsupported database", "DATABASE_URL", "mysql://x", "DATABASE_URL"},
		{"empty sqlite path", "DATABASE_URL", "sqlite://", "DATABASE_URL"},
		{"rate rps negative", "RATE_RPS", "-1", "RATE_RPS"},
		{"like rate negative", "LIKE_RATE_RPS", "-2", "LIKE_RATE_RPS"},
		{"rate burst < 1", "RATE_BURST", "0", "RATE_BURST"},
		{"like burst < 1", "LIKE_RATE_BURST", "0", "LIKE_RATE_BURST"},
		{"hsts max age negative", "HSTS_MAX_AGE", "-1s", "HSTS_MAX_AGE"},
		{"idempotency ttl non-positive", "IDEMPOTENCY_TTL", "0s", "IDEMPOTENCY_TTL"},
		{"bad cookie name", "SESSION_COOKIE_NAME", "a b", "SESSION_COOKIE_NAME"},
		{"session ttl non-positive", "SESSION_TTL", "-1h", "SESSION_TTL"},
		{"plaintext admin token", "ADMIN_TOKEN_HASH", "letmein", "ADMIN_TOKEN_HASH"},
		{"cache size < 1", "CONTENT_CACHE_SIZE", "0", "CONTENT_CACHE_SIZE"},
		{"cache ttl negative", "CONTENT_CACHE_TTL", "-1s", "CONTENT_CACHE_TTL"},
		{"otel sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5", "OTEL_TRACES_SAMPLER_ARG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(); err == nil || !containsErr(err, tc.want) {
				t.Fatalf("expected %s validation error, got: %v", tc.want, err)
			}
		})
	}
}

func TestHelpers_getenv(t *testing.T) {
	t.Setenv("X_EMPTY", "")
	if getenv("X_EMPTY", "d") != "d" {
		t.Fatalf("getenv should fall back to default on empty var")
	}
	t.Setenv("X_SET", "val")
	if getenv("X_SET", "d") != "val" {
		t.Fatalf("getenv should read set value")
	}
}

func TestHelpers_getfloat_getint_getdur(t *testing.T) {
	t.Setenv("F_VALID", "3.14")
	if getfloat("F_VALID", 0) != 3.14 {
		t.Fatalf("getfloat parse failed")
	}
	t.Setenv("F_BAD", "nope")
	if getfloat("F_BAD", 1.23) != 1.23 {
		t.Fatalf("getfloat default on bad parse failed")
	}

	t.Setenv("I_VALID", "42")
	if getint("I_VALID", 0) != 42 {
		t.Fatalf("getint parse failed")
	}
	t.Setenv("I_BAD", "x")
	if getint("I_BAD", 7) != 7 {
		t.Fatalf("getint default on bad parse failed")
	}

	t.Setenv("D_VALID", "150ms")
	if getdur("D_VALID", time.Second) != 150*time.Millisecond {
		t.Fatalf("getdur parse failed")
	}
	t.Setenv("D_BAD", "zzz")
	if getdur("D_BAD", 2*time.Second) != 2*time.Second {
		t.Fatalf("getdur default on bad parse failed")
	}
}

func TestHelpers_getbool(t *testing.T) {
	for i, v := range []string{"1", "true", "TRUE", " yes ", "Y", "on", "On"} {
		k := "B_T_" + string(rune('a'+i))
		t.Setenv(k, v)
		if !getbool(k, false) {
			t.Fatalf("getbool(%q) = false; want true", v)
		}
	}
	for i, v := range []string{"0", "false", "FALSE", " no ", "N", "off", "Off"} {
		k := "B_F_" + string(rune('a'+i))
		t.Setenv(k, v)
		if getbool(k, true) {
			t.Fatalf("getbool(%q) = true; want false", v)
		}
	}
	t.Setenv("B_EMPTY", "")
	if !getbool("B_EMPTY", true) || getbool("B_EMPTY", false) {
		t.Fatalf("getbool default behavior unexpected")
	}
}

func TestHelpers_splitCSV_and_normalizeBasePath(t *testing.T) {
	if out := splitCSV(""); out != nil {
		t.Fatalf("splitCSV empty should return nil")
	}
	if got := splitCSV(" a, ,b ,  c  ,"); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("splitCSV mismatch: got %#v", got)
	}

	cases := map[string]string{"": "/", "v1": "/v1", "/v1/": "/v1", " / ": "/"}
	for in, want := range cases {
		if got := normalizeBasePath(in); got != want {
			t.Fatalf("normalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMain(m *testing.M) {
	for _, k := range []string{"PORT", "DATABASE_URL", "ADMIN_TOKEN_HASH", "API_BASE_PATH"} {
		os.Unsetenv(k)
	}
	os.Exit(m.Run())
}

// containsErr reports whether err's message contains the given substring.
func containsErr(err error, want string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), want)
}
