package memberrepo

import (
	"context"
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Member is the persistence shape used by the member repository.
type Member struct {
	ID      domain.MemberID
	Subject domain.SubjectID

	Email string
	// Username is stored lowercase; implementations enforce case-insensitive
	// uniqueness by normalizing before comparison.
	Username string
	Name     string

	Role   domain.Role
	Status domain.MemberStatus

	JoinDate  time.Time
	BirthDate *time.Time
	Avatar    string
	Gender    string
}

// Repository provides access to persisted members.
//
// Uniqueness: Create and Update fail with ErrDuplicateUsername or
// ErrDuplicateEmail when the candidate record collides with another record
// (the record itself is excluded on Update). A failed write must leave the
// collection untouched.
type Repository interface {
	Create(ctx context.Context, m Member) error
	Update(ctx context.Context, m Member) error

	GetByID(ctx context.Context, id domain.MemberID) (Member, error)
	GetBySubject(ctx context.Context, subject domain.SubjectID) (Member, error)
	GetByEmail(ctx context.Context, email string) (Member, error)
	GetByUsername(ctx context.Context, username string) (Member, error)

	List(ctx context.Context) ([]Member, error)

	// Delete is idempotent: deleting an absent id is not an error.
	Delete(ctx context.Context, id domain.MemberID) error
}
