// Package services defines the business logic of the ministry site: the like
// flow, browsing sessions, the public page snapshot and the admin content
// surface. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Like-related errors.
var (
	// ErrPostNotFound indicates that the post does not exist or is not active.
	ErrPostNotFound = errors.New("post not found")

	// ErrMissingPostID is returned when a like request carries no post id.
	ErrMissingPostID = errors.New("post id is required")

	// ErrNoSession is returned when a like arrives without a live browsing
	// session.
	ErrNoSession = errors.New("no active session")

	// ErrLikeConflict is returned when the like could not be settled after
	// one local retry of a persistence conflict.
	ErrLikeConflict = errors.New("like conflict, try again")
)

// Admin-related errors.
var (
	// ErrRecordNotFound indicates that the requested content record does not
	// exist.
	ErrRecordNotFound = errors.New("record not found")

	// ErrUnknownResource is returned for admin resource names that are not
	// registered.
	ErrUnknownResource = errors.New("unknown resource")

	// ErrInvalidRecord is returned when a submitted record fails to decode or
	// validate. It is usually wrapped with the field-level reason.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrContactInfoExists is returned when a second contact info row is
	// created.
	ErrContactInfoExists = errors.New("contact info already exists")
)
