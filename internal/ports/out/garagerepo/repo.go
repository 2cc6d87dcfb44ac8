package garagerepo

import (
	"context"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Car is the persistence shape for a garage car.
type Car struct {
	ID       domain.CarID
	MemberID domain.MemberID

	Make        string
	Model       string
	Year        int
	Description string
	PhotoURL    string
}

// Repository provides access to persisted garage cars.
type Repository interface {
	Create(ctx context.Context, c Car) error

	// Update replaces the record's own fields. Ownership (MemberID) is part
	// of the record and travels with it.
	Update(ctx context.Context, c Car) error

	GetByID(ctx context.Context, id domain.CarID) (Car, error)

	List(ctx context.Context) ([]Car, error)
	ListByMember(ctx context.Context, memberID domain.MemberID) ([]Car, error)

	// Delete is idempotent: deleting an absent id is not an error.
	Delete(ctx context.Context, id domain.CarID) error

	// DeleteByMember removes every car owned by the member. Used by the
	// member-delete cascade policy.
	DeleteByMember(ctx context.Context, memberID domain.MemberID) error
}
