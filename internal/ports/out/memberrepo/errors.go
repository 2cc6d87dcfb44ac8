package memberrepo

import "errors"

var (
	// ErrNotFound indicates the requested member does not exist.
	ErrNotFound = errors.New("member not found")

	// ErrDuplicateUsername indicates another member already holds the
	// username (case-insensitive).
	ErrDuplicateUsername = errors.New("username already in use")

	// ErrDuplicateEmail indicates another member already holds the email.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrAlreadyExists indicates a member already exists with the provided ID.
	ErrAlreadyExists = errors.New("member already exists")
)
