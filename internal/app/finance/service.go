package finance

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/memberrepo"
)

// Actor is the authenticated caller a command runs on behalf of.
type Actor struct {
	MemberID domain.MemberID
	Role     domain.Role
}

func (a Actor) IsAdmin() bool { return a.Role == domain.RoleAdmin }

type AddContributionInput struct {
	MemberID domain.MemberID
	Date     time.Time
	Amount   float64
}

type AddExpenseInput struct {
	Date        time.Time
	Description string
	Amount      float64
}

type Service struct {
	repo    financerepo.Repository
	members memberrepo.Repository

	newContributionID func() domain.ContributionID
	newExpenseID      func() domain.ExpenseID
}

func NewService(repo financerepo.Repository, members memberrepo.Repository) *Service {
	return &Service{
		repo:    repo,
		members: members,
		newContributionID: func() domain.ContributionID {
			return domain.ContributionID(uuid.NewString())
		},
		newExpenseID: func() domain.ExpenseID {
			return domain.ExpenseID(uuid.NewString())
		},
	}
}

// ListContributions returns all contributions, or only memberID's when it is
// non-empty. Members may list their own; listing everything is admin only.
func (s *Service) ListContributions(ctx context.Context, actor Actor, memberID domain.MemberID) ([]domain.Contribution, error) {
	if memberID == "" && !actor.IsAdmin() {
		return nil, unauthorized()
	}
	if memberID != "" && memberID != actor.MemberID && !actor.IsAdmin() {
		return nil, unauthorized()
	}

	var (
		cs  []financerepo.Contribution
		err error
	)
	if memberID == "" {
		cs, err = s.repo.ListContributions(ctx)
	} else {
		cs, err = s.repo.ListContributionsByMember(ctx, memberID)
	}
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Contribution, 0, len(cs))
	for _, c := range cs {
		out = append(out, domain.Contribution(c))
	}
	return out, nil
}

// AddContribution records a contribution against a member. Admin only.
// Contributions are immutable once created.
func (s *Service) AddContribution(ctx context.Context, actor Actor, in AddContributionInput) (domain.Contribution, error) {
	if !actor.IsAdmin() {
		return domain.Contribution{}, unauthorized()
	}
	if in.Amount <= 0 {
		return domain.Contribution{}, validationError("amount", "must be positive")
	}
	if _, err := s.members.GetByID(ctx, in.MemberID); err != nil {
		if errors.Is(err, memberrepo.ErrNotFound) {
			return domain.Contribution{}, &Error{Status: 404, Code: "NOT_FOUND", Message: "member not found"}
		}
		return domain.Contribution{}, storageError(err)
	}

	c := financerepo.Contribution{
		ID:       s.newContributionID(),
		MemberID: in.MemberID,
		Date:     in.Date,
		Amount:   in.Amount,
	}
	if err := s.repo.AddContribution(ctx, c); err != nil {
		return domain.Contribution{}, storageError(err)
	}
	return domain.Contribution(c), nil
}

// RemoveContribution deletes a contribution record. Admin only, idempotent.
func (s *Service) RemoveContribution(ctx context.Context, actor Actor, id domain.ContributionID) error {
	if !actor.IsAdmin() {
		return unauthorized()
	}
	if err := s.repo.RemoveContribution(ctx, id); err != nil {
		return storageError(err)
	}
	return nil
}

// ListExpenses returns all expenses. Admin only.
func (s *Service) ListExpenses(ctx context.Context, actor Actor) ([]domain.Expense, error) {
	if !actor.IsAdmin() {
		return nil, unauthorized()
	}
	es, err := s.repo.ListExpenses(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	out := make([]domain.Expense, 0, len(es))
	for _, e := range es {
		out = append(out, domain.Expense(e))
	}
	return out, nil
}

// AddExpense records a club expense. Admin only.
func (s *Service) AddExpense(ctx context.Context, actor Actor, in AddExpenseInput) (domain.Expense, error) {
	if !actor.IsAdmin() {
		return domain.Expense{}, unauthorized()
	}
	if in.Amount <= 0 {
		return domain.Expense{}, validationError("amount", "must be positive")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return domain.Expense{}, validationError("description", "must be non-empty")
	}

	e := financerepo.Expense{
		ID:          s.newExpenseID(),
		Date:        in.Date,
		Description: desc,
		Amount:      in.Amount,
	}
	if err := s.repo.AddExpense(ctx, e); err != nil {
		return domain.Expense{}, storageError(err)
	}
	return domain.Expense(e), nil
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
