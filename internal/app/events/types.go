package events

import (
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Optional is a tri-state patch field (omitted / null / value).
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// Actor is the authenticated caller a command runs on behalf of.
type Actor struct {
	MemberID domain.MemberID
	Role     domain.Role
	Status   domain.MemberStatus
}

func (a Actor) IsAdmin() bool  { return a.Role == domain.RoleAdmin }
func (a Actor) IsActive() bool { return a.Status == domain.MemberStatusActive }

type CreateEventInput struct {
	Title       string
	Date        time.Time
	Location    string
	Description string
	Type        domain.EventType
}

// UpdateEventInput is a shallow patch over an event's own fields.
// Attendance is not patchable here; it is owned by Join/Leave.
type UpdateEventInput struct {
	Title       Optional[string]
	Date        Optional[time.Time]
	Location    Optional[string]
	Description Optional[string]
	Type        Optional[domain.EventType]
}

// JoinResult reports what Join did. AlreadyJoined is informational, not an
// error: joining twice is idempotent.
type JoinResult struct {
	Event         domain.Event
	AlreadyJoined bool
}

// LeaveResult mirrors JoinResult for the symmetric removal.
type LeaveResult struct {
	Event       domain.Event
	WasAttendee bool
}
