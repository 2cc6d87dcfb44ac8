package garage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

type Service struct {
	repo    garagerepo.Repository
	members memberrepo.Repository

	newCarID func() domain.CarID
}

func NewService(repo garagerepo.Repository, members memberrepo.Repository) *Service {
	return &Service{
		repo:    repo,
		members: members,
		newCarID: func() domain.CarID {
			return domain.CarID(uuid.NewString())
		},
	}
}

// SetNewCarIDForTest overrides car ID generation for deterministic tests.
// It should not be used in production code.
func (s *Service) SetNewCarIDForTest(fn func() domain.CarID) {
	if fn != nil {
		s.newCarID = fn
	}
}

// ListCars returns all cars, or only memberID's when it is non-empty. The
// garage is a club-wide showcase: any authenticated member may browse it.
func (s *Service) ListCars(ctx context.Context, memberID domain.MemberID) ([]domain.Car, error) {
	var (
		cs  []garagerepo.Car
		err error
	)
	if memberID == "" {
		cs, err = s.repo.List(ctx)
	} else {
		cs, err = s.repo.ListByMember(ctx, memberID)
	}
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Car, 0, len(cs))
	for _, c := range cs {
		out = append(out, domain.Car(c))
	}
	return out, nil
}

func (s *Service) GetCar(ctx context.Context, id domain.CarID) (domain.Car, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, garagerepo.ErrNotFound) {
			return domain.Car{}, notFound()
		}
		return domain.Car{}, storageError(err)
	}
	return domain.Car(c), nil
}

// AddCar puts a car in a member's garage. Members add to their own garage;
// an admin may add to anyone's.
func (s *Service) AddCar(ctx context.Context, actor Actor, in AddCarInput) (domain.Car, error) {
	if in.MemberID != actor.MemberID && !actor.IsAdmin() {
		return domain.Car{}, unauthorized()
	}
	carMake := strings.TrimSpace(in.Make)
	if carMake == "" {
		return domain.Car{}, validationError("make", "must be non-empty")
	}
	model := strings.TrimSpace(in.Model)
	if model == "" {
		return domain.Car{}, validationError("model", "must be non-empty")
	}
	if _, err := s.members.GetByID(ctx, in.MemberID); err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Car{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "member not found"}
		}
		return domain.Car{}, storageError(err)
	}

	c := garagerepo.Car{
		ID:          s.newCarID(),
		MemberID:    in.MemberID,
		Make:        carMake,
		Model:       model,
		Year:        in.Year,
		Description: in.Description,
		PhotoURL:    in.PhotoURL,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return domain.Car{}, storageError(err)
	}
	return domain.Car(c), nil
}

// UpdateCar edits a car's descriptive fields. Owner or admin only.
func (s *Service) UpdateCar(ctx context.Context, actor Actor, id domain.CarID, in UpdateCarInput) (domain.Car, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, garagerepo.ErrNotFound) {
			return domain.Car{}, notFound()
		}
		return domain.Car{}, storageError(err)
	}
	if c.MemberID != actor.MemberID && !actor.IsAdmin() {
		return domain.Car{}, unauthorized()
	}

	if in.Make.IsSpecified() {
		if in.Make.IsNull() {
			return domain.Car{}, validationError("make", "cannot be null")
		}
		carMake := strings.TrimSpace(in.Make.Value())
		if carMake == "" {
			return domain.Car{}, validationError("make", "must be non-empty")
		}
		c.Make = carMake
	}
	if in.Model.IsSpecified() {
		if in.Model.IsNull() {
			return domain.Car{}, validationError("model", "cannot be null")
		}
		model := strings.TrimSpace(in.Model.Value())
		if model == "" {
			return domain.Car{}, validationError("model", "must be non-empty")
		}
		c.Model = model
	}
	if in.Year.IsSpecified() && !in.Year.IsNull() {
		c.Year = in.Year.Value()
	}
	if in.Description.IsSpecified() && !in.Description.IsNull() {
		c.Description = in.Description.Value()
	}
	if in.PhotoURL.IsSpecified() && !in.PhotoURL.IsNull() {
		c.PhotoURL = in.PhotoURL.Value()
	}

	if err := s.repo.Update(ctx, c); err != nil {
		if errors.Is(err, garagerepo.ErrNotFound) {
			return domain.Car{}, notFound()
		}
		return domain.Car{}, storageError(err)
	}
	return domain.Car(c), nil
}

// DeleteCar removes a car from its garage. Owner or admin only; deleting an
// absent car is a no-op.
func (s *Service) DeleteCar(ctx context.Context, actor Actor, id domain.CarID) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, garagerepo.ErrNotFound) {
			return nil // delete is idempotent
		}
		return storageError(err)
	}
	if c.MemberID != actor.MemberID && !actor.IsAdmin() {
		return unauthorized()
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storageError(err)
	}
	return nil
}

func notFound() *Error {
	return &Error{Status: 404, Code: "NOT_FOUND", Message: "car not found"}
}

func unauthorized() *Error {
	return &Error{Status: 403, Code: "UNAUTHORIZED", Message: "operation not permitted for this actor"}
}

func validationError(field, msg string) *Error {
	return &Error{
		Status:  422,
		Code:    "VALIDATION_ERROR",
		Message: "invalid " + field,
		Details: map[string]any{field: msg},
	}
}

func storageError(err error) *Error {
	return &Error{Status: 500, Code: "STORAGE_FAILURE", Message: err.Error()}
}
