// Response helpers shared by every handler.
//
// Failures always carry the ErrorResponse envelope with a stable code from
// errors.go. Successes are plain JSON bodies; the like endpoints answer with
// LikeResponse and admin creates answer 201, or 200 plus
// Idempotency-Replayed when a stored result is returned.
//
//	HTTP/1.1 503 Service Unavailable
//	Retry-After: 1
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "like_conflict",
//	  "message": "like conflict, retry"
//	}
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-ministry-site/internal/http/middleware"
	"github.com/tbourn/go-ministry-site/internal/services"
)

// HeaderIdempotencyReplayed marks an admin create answered from a stored result.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	// Echo of X-Request-ID
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"no_session"`
	// Human-readable message
	Message string `json:"message" example:"load the page before liking a post"`
}

// fail aborts with the error envelope. 5xx responses are logged through the
// request-scoped logger; 4xx are left to the access log.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is fail for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// unavailable fails with 503 and asks the client to retry after d (whole
// seconds, at least one).
func unavailable(c *gin.Context, code, msg string, d time.Duration) {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	c.Header("Retry-After", strconv.Itoa(secs))
	fail(c, http.StatusServiceUnavailable, code, msg)
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// liked writes the like outcome. Liked is true on every success since the
// visitor likes the post either way.
func liked(c *gin.Context, res services.LikeResult) {
	ok(c, http.StatusOK, LikeResponse{
		PostID:       res.PostID,
		Likes:        res.Likes,
		Liked:        true,
		AlreadyLiked: res.AlreadyLiked(),
	})
}

// created answers an admin create: 201 for a new record, 200 with the
// replay header for a stored one.
func created(c *gin.Context, rec any, replayed bool) {
	if replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
		ok(c, http.StatusOK, rec)
		return
	}
	ok(c, http.StatusCreated, rec)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
