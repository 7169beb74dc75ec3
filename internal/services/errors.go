// Package services defines the business logic for the catalog cache,
// engagement, community content, activity tracking, and AI curation.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

// Catalog-related errors.
var (
	// ErrBookNotFound indicates the requested ISBN is unknown both to the
	// local cache and to the upstream catalog.
	ErrBookNotFound = errors.New("book not found")

	// ErrUpstream indicates the external catalog or text-generation service
	// was unreachable or returned a malformed payload. Cached read paths may
	// degrade to stale data instead of surfacing this.
	ErrUpstream = errors.New("upstream service failed")
)

// Community / engagement errors.
var (
	// ErrUnauthorized is returned when an action requires a logged-in user
	// and none was supplied.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden is returned when a user attempts to mutate content owned
	// by someone else.
	ErrForbidden = errors.New("forbidden")

	// ErrBoardNotFound indicates the addressed board slug does not exist.
	ErrBoardNotFound = errors.New("board not found")

	// ErrPostNotFound indicates the addressed post does not exist on the board.
	ErrPostNotFound = errors.New("post not found")

	// ErrReviewNotFound indicates the addressed review does not exist.
	ErrReviewNotFound = errors.New("review not found")

	// ErrCommentNotFound indicates the addressed comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")

	// ErrEmptyContent is returned when a post, review, or comment body is
	// blank after trimming whitespace.
	ErrEmptyContent = errors.New("content is empty")

	// ErrInvalidRating is returned when a review rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrParentMismatch is returned when a reply's parent comment belongs to
	// a different target; a comment can only reply within its own tree.
	ErrParentMismatch = errors.New("parent comment target mismatch")

	// ErrInvalidTarget is returned for unknown engagement target kinds.
	ErrInvalidTarget = errors.New("invalid engagement target")
)
