package garagerepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/offroadmga/club-manager-api/internal/domain"
	"github.com/offroadmga/club-manager-api/internal/ports/out/garagerepo"
)

// Repo is a Postgres implementation of garagerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const carColumns = `id, member_id, make, model, year, description, photo_url`

func (r *Repo) Create(ctx context.Context, c garagerepo.Car) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(c.ID))
	if err != nil {
		return fmt.Errorf("invalid car id: %w", err)
	}
	mid, err := uuid.Parse(string(c.MemberID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO cars (`+carColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, id, mid, c.Make, c.Model, c.Year, c.Description, c.PhotoURL)
	return err
}

func (r *Repo) Update(ctx context.Context, c garagerepo.Car) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	id, err := uuid.Parse(string(c.ID))
	if err != nil {
		return garagerepo.ErrNotFound
	}
	mid, err := uuid.Parse(string(c.MemberID))
	if err != nil {
		return fmt.Errorf("invalid member id: %w", err)
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE cars
		SET member_id = $2, make = $3, model = $4, year = $5,
		    description = $6, photo_url = $7
		WHERE id = $1
	`, id, mid, c.Make, c.Model, c.Year, c.Description, c.PhotoURL)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return garagerepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.CarID) (garagerepo.Car, error) {
	if r.pool == nil {
		return garagerepo.Car{}, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return garagerepo.Car{}, garagerepo.ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+carColumns+` FROM cars WHERE id = $1`, uid)
	return scanCar(row)
}

func (r *Repo) List(ctx context.Context) ([]garagerepo.Car, error) {
	return r.queryCars(ctx, `
		SELECT `+carColumns+` FROM cars ORDER BY lower(make), model, id
	`)
}

func (r *Repo) ListByMember(ctx context.Context, memberID domain.MemberID) ([]garagerepo.Car, error) {
	mid, err := uuid.Parse(string(memberID))
	if err != nil {
		return []garagerepo.Car{}, nil
	}
	return r.queryCars(ctx, `
		SELECT `+carColumns+` FROM cars
		WHERE member_id = $1 ORDER BY lower(make), model, id
	`, mid)
}

func (r *Repo) Delete(ctx context.Context, id domain.CarID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return nil // unparseable id cannot exist; delete is idempotent
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM cars WHERE id = $1`, uid)
	return err
}

func (r *Repo) DeleteByMember(ctx context.Context, memberID domain.MemberID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	mid, err := uuid.Parse(string(memberID))
	if err != nil {
		return nil
	}
	_, err = r.pool.Exec(ctx, `DELETE FROM cars WHERE member_id = $1`, mid)
	return err
}

func (r *Repo) queryCars(ctx context.Context, sql string, args ...any) ([]garagerepo.Car, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]garagerepo.Car, 0)
	for rows.Next() {
		c, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCar(row pgx.Row) (garagerepo.Car, error) {
	var (
		id       uuid.UUID
		memberID uuid.UUID
		carMake  string
		model    string
		year     int
		desc     string
		photoURL string
	)
	err := row.Scan(&id, &memberID, &carMake, &model, &year, &desc, &photoURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return garagerepo.Car{}, garagerepo.ErrNotFound
	}
	if err != nil {
		return garagerepo.Car{}, err
	}
	return garagerepo.Car{
		ID:          domain.CarID(id.String()),
		MemberID:    domain.MemberID(memberID.String()),
		Make:        carMake,
		Model:       model,
		Year:        year,
		Description: desc,
		PhotoURL:    photoURL,
	}, nil
}
