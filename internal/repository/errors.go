package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicateEmail indicates the email collides with an existing row.
	ErrDuplicateEmail = errors.New("repository: email already exists")
	// ErrDuplicateUsername indicates the username collides with an existing row.
	ErrDuplicateUsername = errors.New("repository: username already exists")
	// ErrRateLimited indicates a conditional insert was rejected because a
	// valid row for the same subject already exists inside the window.
	ErrRateLimited = errors.New("repository: rate limited")
)
