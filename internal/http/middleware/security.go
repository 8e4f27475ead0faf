// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides SecurityHeaders. The public page is server-rendered
// HTML, so a Content-Security-Policy is sent alongside the usual hardening
// headers. The admin API group installs a second copy with NoStore.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultContentSecurityPolicy allows same-origin scripts and styles plus
// images from any https origin (leader and slide photos live on a CDN).
const DefaultContentSecurityPolicy = "default-src 'self'; img-src 'self' https: data:; " +
	"style-src 'self' 'unsafe-inline'; script-src 'self'; frame-ancestors 'none'; " +
	"base-uri 'self'; form-action 'self'"

// SecurityOptions configures SecurityHeaders.
//
// HSTS is only ever sent on HTTPS requests; enable it only when traffic is
// HTTPS end-to-end. HSTSMaxAge defaults to 180 days.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool   // Cache-Control: no-store plus legacy Pragma/Expires
	EnablePolicy bool   // Permissions-Policy and X-Permitted-Cross-Domain-Policies
	CSP          string // Content-Security-Policy; empty sends none
}

// SecurityHeaders always sets nosniff, X-Frame-Options: DENY and
// Referrer-Policy: same-origin, adds the optional headers selected in opt,
// and exposes X-Request-ID to browser clients.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds()) // 180 days default
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "same-origin")

		if opt.CSP != "" {
			h.Set("Content-Security-Policy", opt.CSP)
		}
		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}

		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}

		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security",
				"max-age="+strconv.Itoa(maxAge)+"; includeSubDomains; preload")
		}

		if rid := h.Get("X-Request-ID"); rid != "" {
			const hdr = "Access-Control-Expose-Headers"
			cur := h.Get(hdr)
			if cur == "" {
				h.Set(hdr, "X-Request-ID")
			} else if !strings.Contains(cur, "X-Request-ID") {
				h.Set(hdr, cur+", X-Request-ID")
			}
		}

		c.Next()
	}
}

// isHTTPS reports whether the request arrived over TLS, directly or through
// a proxy setting X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
