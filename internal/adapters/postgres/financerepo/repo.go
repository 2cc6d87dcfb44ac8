package financerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/financerepo"
)

// Repo is a Postgres implementation of financerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) AddContribution(ctx context.Context, c financerepo.Contribution) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(c.ID))
	if err != nil {
		return fmt.Errorf("invalid contribution id: %w", err)
	}
	mid, err := uuid.Parse(string(c.MemberID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO contributions (id, member_id, date, amount)
		VALUES ($1, $2, $3, $4)
	`, id, mid, c.Date.UTC(), c.Amount)
	return err
}

func (r *Repo) ListContributions(ctx context.Context) ([]financerepo.Contribution, error) {
	return r.queryContributions(ctx, `
		SELECT id, member_id, date, amount FROM contributions ORDER BY date, id
	`)
}

func (r *Repo) ListContributionsByMember(ctx context.Context, memberID domain.MemberID) ([]financerepo.Contribution, error) {
	mid, err := uuid.Parse(string(memberID))
	if err != nil {
		return []financerepo.Contribution{}, nil
	}
	return r.queryContributions(ctx, `
		SELECT id, member_id, date, amount FROM contributions
		WHERE member_id = $1 ORDER BY date, id
	`, mid)
}

func (r *Repo) RemoveContribution(ctx context.Context, id domain.ContributionID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	cid, err := uuid.Parse(string(id))
	if err != nil {
		return nil // unparseable id cannot exist; remove is idempotent
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM contributions WHERE id = $1`, cid)
	return err
}

func (r *Repo) CountContributionsByMember(ctx context.Context, memberID domain.MemberID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	mid, err := uuid.Parse(string(memberID))
	if err != nil {
		return 0, nil
	}
	var n int
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM contributions WHERE member_id = $1
	`, mid).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *Repo) AddExpense(ctx context.Context, e financerepo.Expense) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(e.ID))
	if err != nil {
		return fmt.Errorf("invalid expense id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO expenses (id, date, description, amount)
		VALUES ($1, $2, $3, $4)
	`, id, e.Date.UTC(), e.Description, e.Amount)
	return err
}

func (r *Repo) ListExpenses(ctx context.Context) ([]financerepo.Expense, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, date, description, amount FROM expenses ORDER BY date, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]financerepo.Expense, 0)
	for rows.Next() {
		var (
			id     uuid.UUID
			date   time.Time
			desc   string
			amount float64
		)
		if err := rows.Scan(&id, &date, &desc, &amount); err != nil {
			return nil, err
		}
		out = append(out, financerepo.Expense{
			ID:          domain.ExpenseID(id.String()),
			Date:        date,
			Description: desc,
			Amount:      amount,
		})
	}
	return out, rows.Err()
}

func (r *Repo) queryContributions(ctx context.Context, sql string, args ...any) ([]financerepo.Contribution, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]financerepo.Contribution, 0)
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContribution(row pgx.Row) (financerepo.Contribution, error) {
	var (
		id     uuid.UUID
		mid    uuid.UUID
		date   time.Time
		amount float64
	)
	if err := row.Scan(&id, &mid, &date, &amount); err != nil {
		return financerepo.Contribution{}, err
	}
	return financerepo.Contribution{
		ID:       domain.ContributionID(id.String()),
		MemberID: domain.MemberID(mid.String()),
		Date:     date,
		Amount:   amount,
	}, nil
}
