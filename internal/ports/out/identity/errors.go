package identity

import "errors"

var (
	// ErrInvalidCredentials indicates the email/password pair did not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountExists indicates the email is already registered.
	ErrAccountExists = errors.New("account already exists")

	// ErrNoSession indicates an operation that needs an ambient session was
	// called without one.
	ErrNoSession = errors.New("no active provider session")
)
