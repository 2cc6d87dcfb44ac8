package eventrepo

import "errors"

var (
	// ErrNotFound indicates the requested event does not exist.
	ErrNotFound = errors.New("event not found")

	// ErrAlreadyExists indicates an event already exists with the provided ID.
	ErrAlreadyExists = errors.New("event already exists")
)
