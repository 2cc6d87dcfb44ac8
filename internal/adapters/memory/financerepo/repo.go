package financerepo

import (
	"context"
	"sort"
	"sync"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
)

// Repo is an in-memory implementation of financerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	contributions map[domain.ContributionID]financerepo.Contribution
	expenses      map[domain.ExpenseID]financerepo.Expense
}

func NewRepo() *Repo {
	return &Repo{
		contributions: make(map[domain.ContributionID]financerepo.Contribution),
		expenses:      make(map[domain.ExpenseID]financerepo.Expense),
	}
}

func (r *Repo) AddContribution(ctx context.Context, c financerepo.Contribution) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.contributions[c.ID]; ok {
		return financerepo.ErrAlreadyExists
	}
	r.contributions[c.ID] = c
	return nil
}

func (r *Repo) ListContributions(ctx context.Context) ([]financerepo.Contribution, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]financerepo.Contribution, 0, len(r.contributions))
	for _, c := range r.contributions {
		out = append(out, c)
	}
	sortContributions(out)
	return out, nil
}

func (r *Repo) ListContributionsByMember(ctx context.Context, memberID domain.MemberID) ([]financerepo.Contribution, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]financerepo.Contribution, 0)
	for _, c := range r.contributions {
		if c.MemberID == memberID {
			out = append(out, c)
		}
	}
	sortContributions(out)
	return out, nil
}

func (r *Repo) RemoveContribution(ctx context.Context, id domain.ContributionID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contributions, id)
	return nil
}

func (r *Repo) CountContributionsByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.contributions {
		if c.MemberID == memberID {
			n++
		}
	}
	return n, nil
}

func (r *Repo) AddExpense(ctx context.Context, e financerepo.Expense) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.expenses[e.ID]; ok {
		return financerepo.ErrAlreadyExists
	}
	r.expenses[e.ID] = e
	return nil
}

func (r *Repo) ListExpenses(ctx context.Context) ([]financerepo.Expense, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]financerepo.Expense, 0, len(r.expenses))
	for _, e := range r.expenses {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return string(out[i].ID) < string(out[j].ID)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func sortContributions(cs []financerepo.Contribution) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Date.Equal(cs[j].Date) {
			return string(cs[i].ID) < string(cs[j].ID)
		}
		return cs[i].Date.Before(cs[j].Date)
	})
}
