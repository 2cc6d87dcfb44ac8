package financerepo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
	"github.com/offroadmga/club-manager-api/internal/ports/out/kvstore"
)

const (
	contributionsKey = "club_contributions"
	expensesKey      = "club_expenses"
)

type contributionRecord struct {
	ID       string    `json:"id"`
	MemberID string    `json:"member_id"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"`
}

type expenseRecord struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}

// Repo persists contributions and expenses as JSON documents in a
// kvstore.Store, one document per collection.
type Repo struct {
	mu sync.Mutex
	kv kvstore.Store
}

func NewRepo(kv kvstore.Store) *Repo {
	return &Repo{kv: kv}
}

func (r *Repo) AddContribution(ctx context.Context, c financerepo.Contribution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.loadContributions(ctx)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ID == string(c.ID) {
			return financerepo.ErrAlreadyExists
		}
	}
	recs = append(recs, contributionRecord{
		ID:       string(c.ID),
		MemberID: string(c.MemberID),
		Date:     c.Date,
		Amount:   c.Amount,
	})
	return r.saveDoc(ctx, contributionsKey, recs)
}

func (r *Repo) ListContributions(ctx context.Context) ([]financerepo.Contribution, error) {
	return r.listContributions(ctx, "")
}

func (r *Repo) ListContributionsByMember(ctx context.Context, memberID domain.MemberID) ([]financerepo.Contribution, error) {
	return r.listContributions(ctx, memberID)
}

func (r *Repo) listContributions(ctx context.Context, memberID domain.MemberID) ([]financerepo.Contribution, error) {
	r.mu.Lock()
	recs, err := r.loadContributions(ctx)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]financerepo.Contribution, 0, len(recs))
	for _, rec := range recs {
		if memberID != "" && rec.MemberID != string(memberID) {
			continue
		}
		out = append(out, financerepo.Contribution{
			ID:       domain.ContributionID(rec.ID),
			MemberID: domain.MemberID(rec.MemberID),
			Date:     rec.Date,
			Amount:   rec.Amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return string(out[i].ID) < string(out[j].ID)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (r *Repo) RemoveContribution(ctx context.Context, id domain.ContributionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.loadContributions(ctx)
	if err != nil {
		return err
	}
	kept := recs[:0]
	for _, rec := range recs {
		if rec.ID == string(id) {
			continue
		}
		kept = append(kept, rec)
	}
	return r.saveDoc(ctx, contributionsKey, kept)
}

func (r *Repo) CountContributionsByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	cs, err := r.ListContributionsByMember(ctx, memberID)
	if err != nil {
		return 0, err
	}
	return len(cs), nil
}

func (r *Repo) AddExpense(ctx context.Context, e financerepo.Expense) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var recs []expenseRecord
	if err := r.loadDoc(ctx, expensesKey, &recs); err != nil {
		return err
	}
	for _, rec := range recs {
		if rec.ID == string(e.ID) {
			return financerepo.ErrAlreadyExists
		}
	}
	recs = append(recs, expenseRecord{
		ID:          string(e.ID),
		Date:        e.Date,
		Description: e.Description,
		Amount:      e.Amount,
	})
	return r.saveDoc(ctx, expensesKey, recs)
}

func (r *Repo) ListExpenses(ctx context.Context) ([]financerepo.Expense, error) {
	r.mu.Lock()
	var recs []expenseRecord
	err := r.loadDoc(ctx, expensesKey, &recs)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := make([]financerepo.Expense, 0, len(recs))
	for _, rec := range recs {
		out = append(out, financerepo.Expense{
			ID:          domain.ExpenseID(rec.ID),
			Date:        rec.Date,
			Description: rec.Description,
			Amount:      rec.Amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return string(out[i].ID) < string(out[j].ID)
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (r *Repo) loadContributions(ctx context.Context) ([]contributionRecord, error) {
	var recs []contributionRecord
	if err := r.loadDoc(ctx, contributionsKey, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *Repo) loadDoc(ctx context.Context, key string, v any) error {
	doc, ok, err := r.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *Repo) saveDoc(ctx context.Context, key string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, doc); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
