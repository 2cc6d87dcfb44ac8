package financerepo

import (
	"context"
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
)

// Contribution is the persistence shape for a member contribution.
type Contribution struct {
	ID       domain.ContributionID
	MemberID domain.MemberID
	Date     time.Time
	Amount   float64
}

// Expense is the persistence shape for a club expense.
type Expense struct {
	ID          domain.ExpenseID
	Date        time.Time
	Description string
	Amount      float64
}

// Repository provides access to persisted contributions and expenses.
type Repository interface {
	AddContribution(ctx context.Context, c Contribution) error
	ListContributions(ctx context.Context) ([]Contribution, error)
	ListContributionsByMember(ctx context.Context, memberID domain.MemberID) ([]Contribution, error)

	// RemoveContribution is idempotent: removing an absent id is not an error.
	RemoveContribution(ctx context.Context, id domain.ContributionID) error

	// CountContributionsByMember reports how many contribution records
	// reference the member. Used by the member-delete cascade policy.
	CountContributionsByMember(ctx context.Context, memberID domain.MemberID) (int, error)

	AddExpense(ctx context.Context, e Expense) error
	ListExpenses(ctx context.Context) ([]Expense, error)
}
