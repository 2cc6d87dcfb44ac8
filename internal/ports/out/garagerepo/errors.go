package garagerepo

import "errors"

var (
	// ErrNotFound indicates the requested car does not exist.
	ErrNotFound = errors.New("car not found")

	// ErrAlreadyExists indicates a car already exists with the provided ID.
	ErrAlreadyExists = errors.New("car already exists")
)
