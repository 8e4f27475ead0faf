// Package handlers defines HTTP-layer error codes used across all endpoints.
//
// Codes are stable, lowercase snake_case strings returned in the `code` field
// of every error envelope (see fail() in response.go). Clients branch on the
// code; the message is for humans.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "no_session",
//	  "message": "load the page before liking a post"
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "rate_limited"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeMissingPostID    = "missing_post_id"
	ErrCodeNoSession        = "no_session"
	ErrCodeLikeConflict     = "like_conflict"
	ErrCodeInvalidRecord    = "invalid_record"
	ErrCodeListFailed       = "list_failed"
	ErrCodeRenderFailed     = "render_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
