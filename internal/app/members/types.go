package members

import (
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
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
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type CreateMemberInput struct {
	Subject  domain.SubjectID
	Email    string
	Username string
	Name     string
	Role     domain.Role
	Status   domain.MemberStatus

	BirthDate *time.Time
	Avatar    string
	Gender    string
}

// UpdateMemberInput is a shallow patch: specified fields are authoritative,
// unspecified fields are retained.
type UpdateMemberInput struct {
	Email    Optional[string] // cannot be null
	Username Optional[string] // cannot be null
	Name     Optional[string] // cannot be null

	BirthDate Optional[time.Time] // may be null
	Avatar    Optional[string]
	Gender    Optional[string]
}
