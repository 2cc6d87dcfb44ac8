package eventrepo

import (
	"context"
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Event is the persistence shape used by the event repository. Attendance is
// carried as an edge set on the record; some backings store it inline, some
// as a separate link table. The contract is identical either way.
type Event struct {
	ID          domain.EventID
	Title       string
	Date        time.Time
	Location    string
	Description string
	Type        domain.EventType

	Attendees []domain.MemberID
}

// Repository provides access to persisted events and their attendance edges.
//
// Events are never hard-deleted.
type Repository interface {
	Create(ctx context.Context, e Event) error
	Update(ctx context.Context, e Event) error

	GetByID(ctx context.Context, id domain.EventID) (Event, error)
	List(ctx context.Context) ([]Event, error)

	// AddAttendee inserts the (event, member) link only if absent and
	// reports whether an insertion occurred. Joining twice is not an error.
	AddAttendee(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (created bool, err error)

	// RemoveAttendee is the symmetric idempotent removal.
	RemoveAttendee(ctx context.Context, eventID domain.EventID, memberID domain.MemberID) (removed bool, err error)

	// RemoveAttendeeEverywhere strips the member from every event's
	// attendee set. Used when a member record is deleted.
	RemoveAttendeeEverywhere(ctx context.Context, memberID domain.MemberID) error
}
