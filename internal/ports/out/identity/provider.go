package identity

import (
	"context"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Event is an identity-provider stream event.
type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedUp       Event = "SIGNED_UP"
	EventSignedOut      Event = "SIGNED_OUT"
	EventInitialSession Event = "INITIAL_SESSION"
	EventUserUpdated    Event = "USER_UPDATED"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

// Callback receives stream events in the order the provider raises them.
// identity is nil for events that clear the session (SIGNED_OUT, and
// INITIAL_SESSION with no active identity).
type Callback func(event Event, identity *domain.Identity)

// Unsubscribe detaches a previously registered callback.
type Unsubscribe func()

// Provider is the identity-provider contract consumed by the session
// coordinator. Implementations: the in-process local provider, or an adapter
// over a remote identity service.
type Provider interface {
	// SignIn verifies credentials and establishes the ambient session.
	// Fails with ErrInvalidCredentials on a bad email/password pair.
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)

	// SignUp registers a new account and establishes the ambient session.
	// Fails with ErrAccountExists when the email is already registered.
	SignUp(ctx context.Context, email, password string) (domain.Identity, error)

	// SignOut clears the ambient session. Safe to call when already signed out.
	SignOut(ctx context.Context) error

	// Subscribe registers cb for stream events. The provider emits events
	// sequentially; a subscriber never observes them out of order.
	Subscribe(cb Callback) Unsubscribe

	// Reauthenticate re-verifies the current identity's password.
	Reauthenticate(ctx context.Context, currentPassword string) error

	// ChangePassword re-authenticates and then replaces the password.
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error

	// Isolated returns a secondary provider handle sharing the same account
	// records but with its own ambient session and no event stream. Used for
	// admin-driven account provisioning so the admin's own session is never
	// disturbed. Callers must Close the handle when done.
	Isolated() (IsolatedProvider, error)
}

// IsolatedProvider is a detached secondary session used only to create
// accounts on behalf of someone else.
type IsolatedProvider interface {
	SignUp(ctx context.Context, email, password string) (domain.Identity, error)
	Close(ctx context.Context) error
}
