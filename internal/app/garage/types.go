package garage

import "github.com/offroadmga/club-manager-api/internal/domain"

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
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type AddCarInput struct {
	MemberID    domain.MemberID
	Make        string
	Model       string
	Year        int
	Description string
	PhotoURL    string
}

// UpdateCarInput is a shallow patch over a car's descriptive fields.
// Ownership is not patchable; a car stays in the garage it was added to.
type UpdateCarInput struct {
	Make        Optional[string]
	Model       Optional[string]
	Year        Optional[int]
	Description Optional[string]
	PhotoURL    Optional[string]
}
