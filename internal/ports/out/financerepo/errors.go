package financerepo

import "errors"

var (
	// ErrAlreadyExists indicates a record already exists with the provided ID.
	ErrAlreadyExists = errors.New("record already exists")
)
