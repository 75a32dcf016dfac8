package services

import "errors"

// Sentinel errors returned by the service layer. Controllers translate them
// to HTTP responses with errors.Is; anything else is a storage fault and
// surfaces as a generic 500.
var (
	// ErrNotFound means a slug, username or post id did not resolve.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the caller is not allowed to mutate the record.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation means the input was malformed or missing required fields.
	ErrValidation = errors.New("validation failed")
	// ErrSelfFollow means a user attempted to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrConflict means a uniqueness constraint was violated.
	ErrConflict = errors.New("already exists")
)
