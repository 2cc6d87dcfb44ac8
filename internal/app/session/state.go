package session

import "github.com/offroadmga/club-manager-api/internal/domain"

// State is the coordinator's authentication state.
type State int

const (
	// Uninitialized: constructed but Start has not run.
	Uninitialized State = iota
	// Loading: waiting for the provider's first stream event. Also the
	// guarded transitional state during logout, so concurrent readers never
	// observe a stale authenticated session.
	Loading
	// Authenticated: an identity is active. The profile may still be
	// provisional (nil) until the async fetch lands.
	Authenticated
	// Anonymous: no active identity.
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

// Snapshot is an immutable view of the coordinator's state. Session is
// meaningful only when State is Authenticated.
type Snapshot struct {
	State   State
	Session domain.Session
}
