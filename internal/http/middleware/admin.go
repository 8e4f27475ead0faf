// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file guards the admin API with a shared token. The server stores only
// a bcrypt hash of the token; requests present the plain value in the
// X-Admin-Token header.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// HeaderAdminToken carries the admin credential.
const HeaderAdminToken = "X-Admin-Token"

// AdminActor is the identity stored under "userID" for authenticated admin
// requests.
const AdminActor = "admin"

// HashAdminToken returns the bcrypt hash to configure as ADMIN_TOKEN_HASH.
func HashAdminToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// AdminAuth rejects requests whose X-Admin-Token does not match hash.
// An empty hash disables the admin surface entirely (503 admin_disabled).
func AdminAuth(hash string) gin.HandlerFunc {
	hashed := []byte(strings.TrimSpace(hash))

	return func(c *gin.Context) {
		rid, _ := c.Get(requestIDKey)
		if len(hashed) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"request_id": asString(rid),
				"code":       "admin_disabled",
				"message":    "admin API is not configured",
			})
			return
		}

		token := c.GetHeader(HeaderAdminToken)
		if token == "" || bcrypt.CompareHashAndPassword(hashed, []byte(token)) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": asString(rid),
				"code":       "unauthorized",
				"message":    "invalid admin token",
			})
			return
		}

		c.Set(ctxKeyUserID, AdminActor)
		c.Next()
	}
}
